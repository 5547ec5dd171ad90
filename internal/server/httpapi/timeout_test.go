package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

// acceptAllUsers authenticates any token as "u1".
type acceptAllUsers struct{}

func (acceptAllUsers) Register(context.Context, string, string, string) (*models.User, error) {
	return nil, common.ErrorInternal
}
func (acceptAllUsers) Login(context.Context, string, string) (*services.LoginResult, error) {
	return nil, common.ErrorInternal
}
func (acceptAllUsers) Verify(context.Context, string) (string, error) { return "u1", nil }
func (acceptAllUsers) Logout(context.Context, string) error             { return nil }
func (acceptAllUsers) Profile(context.Context, string) (*models.User, error) {
	return nil, common.ErrorNotFound
}

// stalledTasks blocks until the request context ends, like a database call
// stuck behind a lock.
type stalledTasks struct{}

func (stalledTasks) stall(ctx context.Context, op string) error {
	<-ctx.Done()
	return fmt.Errorf("%w: %s: %w", common.ErrorInternal, op, ctx.Err())
}

func (s stalledTasks) List(ctx context.Context, _ string) ([]*models.Task, error) {
	return nil, s.stall(ctx, "list tasks")
}
func (s stalledTasks) Get(ctx context.Context, _, _ string) (*models.Task, error) {
	return nil, s.stall(ctx, "get task")
}
func (s stalledTasks) Create(ctx context.Context, _, _, _ string) (*models.Task, error) {
	return nil, s.stall(ctx, "create task")
}
func (s stalledTasks) Update(ctx context.Context, _, _, _, _ string, _ bool) (*models.Task, error) {
	return nil, s.stall(ctx, "update task")
}
func (s stalledTasks) Delete(ctx context.Context, _, _ string) error {
	return s.stall(ctx, "delete task")
}

func TestRequestTimeout_Returns504(t *testing.T) {
	srv := httptest.NewServer(NewRouter(Options{
		Users:          acceptAllUsers{},
		Tasks:          stalledTasks{},
		RequestTimeout: 50 * time.Millisecond,
	}))
	t.Cleanup(srv.Close)
	s := &testServer{t: t, server: srv}

	resp, data := s.do(http.MethodGet, "/api/tasks", "tok", nil)
	require.Equal(t, http.StatusGatewayTimeout, resp.StatusCode, string(data))
	assert.Equal(t, "Request timed out", s.message(data))

	resp, data = s.do(http.MethodDelete, "/api/tasks/x", "tok", nil)
	require.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.Equal(t, "Request timed out", s.message(data))
}

func TestWriteError_InternalStays500(t *testing.T) {
	rt := &Router{logger: logging.Nop()}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)

	rt.writeError(rec, req, fmt.Errorf("%w: list tasks: boom", common.ErrorInternal))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, rec.Body.String())
}
