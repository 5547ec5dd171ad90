package tasks

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// MemoryRepository keeps tasks in process memory, preserving insertion order
// so that tasks created within the same instant still list newest first.
type MemoryRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*models.Task
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*models.Task)}
}

func (r *MemoryRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *task
	r.byID[stored.ID] = &stored
	r.order = append(r.order, stored.ID)

	return task, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	t := *stored
	return &t, nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Task, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		stored, ok := r.byID[r.order[i]]
		if !ok || stored.UserID != userID {
			continue
		}
		t := *stored
		result = append(result, &t)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *MemoryRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[task.ID]
	if !ok || stored.UserID != task.UserID {
		return nil, common.ErrorNotFound
	}

	stored.Title = task.Title
	stored.Description = task.Description
	stored.Completed = task.Completed

	t := *stored
	return &t, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok || stored.UserID != userID {
		return common.ErrorNotFound
	}

	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}
