package repomanager

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
)

// RepositoryManager owns the storage backend and vends repositories bound to it.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
	Users() users.Repository
	Tasks() tasks.Repository
}
