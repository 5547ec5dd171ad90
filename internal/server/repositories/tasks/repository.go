package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository persists tasks. GetByID, Update and Delete return
// common.ErrorNotFound when no row matches. Update and Delete are scoped to
// the owner recorded on the task so a row can never change hands.
type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id string, userID string) error
}
