package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const contextKeyUserID contextKey = "taskkeeper-user-id"

// userIDFromContext returns the id placed by requireAuth.
func userIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(contextKeyUserID).(string)
	return uid
}

// bearerToken extracts the token from an Authorization header. present is
// false when there is no token at all; a non-Bearer scheme yields ok=false.
func bearerToken(header string) (token string, present bool, ok bool) {
	parts := strings.Fields(header)
	if len(parts) < 2 {
		return "", false, false
	}
	if len(parts) != 2 || !strings.EqualFold(parts[0], common.BearerScheme) {
		return "", true, false
	}
	return parts[1], true, true
}

// requireAuth verifies the bearer token and stores the caller's id in the
// request context.
func (rt *Router) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, present, ok := bearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if !present {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		uid, err := rt.users.Verify(r.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				rt.logger.Debug(r.Context(), "token rejected", "error", err, "path", r.URL.Path)
				writeMessage(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			rt.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// observe logs one line per request and records request metrics labelled by
// the matched route pattern.
func (rt *Router) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		duration := time.Since(start)

		rt.metrics.ObserveRequest(r.Method, route, status, duration)
		rt.logger.Info(r.Context(), "http request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", duration,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
