// Package services contains server-side business logic: UserService handles
// registration, login and token verification, TaskService enforces per-owner
// access to tasks.
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// internalError reports a storage failure as common.ErrorInternal. The cause
// stays in the chain so transports can spot context deadlines.
func internalError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrorInternal, op, err)
}

// storedTime drops precision PostgreSQL timestamps cannot hold, so a record
// returned by Create equals the one read back later.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrValidation, fmt.Sprintf(format, args...))
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
