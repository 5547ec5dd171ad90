package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

var errBoom = errors.New("boom")

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.BcryptCost = bcrypt.MinCost
	return cfg
}

// brokenRepos fails every storage call so the internal-error paths can be
// exercised.
type brokenRepos struct{}

func (brokenRepos) RunMigrations(context.Context) error { return nil }
func (brokenRepos) Ping(context.Context) error          { return errBoom }
func (brokenRepos) Close() error                        { return nil }
func (brokenRepos) Users() users.Repository             { return brokenUsers{} }
func (brokenRepos) Tasks() tasks.Repository             { return brokenTasks{} }

type brokenUsers struct{}

func (brokenUsers) Create(context.Context, *models.User) (*models.User, error) { return nil, errBoom }
func (brokenUsers) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, errBoom
}
func (brokenUsers) GetUserByID(context.Context, string) (*models.User, error) { return nil, errBoom }

type brokenTasks struct{}

func (brokenTasks) Create(context.Context, *models.Task) (*models.Task, error) { return nil, errBoom }
func (brokenTasks) GetByID(context.Context, string) (*models.Task, error)      { return nil, errBoom }
func (brokenTasks) ListByUser(context.Context, string) ([]*models.Task, error) { return nil, errBoom }
func (brokenTasks) Update(context.Context, *models.Task) (*models.Task, error) { return nil, errBoom }
func (brokenTasks) Delete(context.Context, string, string) error               { return errBoom }

var _ repomanager.RepositoryManager = brokenRepos{}
