package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// TaskService scopes every task read and mutation to the authenticated owner.
//
// For a task that exists but belongs to someone else, Get, Update and Delete
// return common.ErrForbidden rather than common.ErrorNotFound. The ownership
// check runs before payload validation.
type TaskService struct {
	repomanager repomanager.RepositoryManager
	now         func() time.Time
	logger      logging.Logger
}

type TaskServiceOption func(*TaskService)

func WithTaskClock(now func() time.Time) TaskServiceOption {
	return func(s *TaskService) {
		s.now = now
	}
}

func WithTaskLogger(l logging.Logger) TaskServiceOption {
	return func(s *TaskService) {
		s.logger = l
	}
}

func NewTaskService(m repomanager.RepositoryManager, opts ...TaskServiceOption) *TaskService {
	s := &TaskService{
		repomanager: m,
		now:         time.Now,
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the owner's tasks, newest first. No tasks is an empty slice.
func (s *TaskService) List(ctx context.Context, userID string) ([]*models.Task, error) {
	tasks, err := s.repomanager.Tasks().ListByUser(ctx, userID)
	if err != nil {
		return nil, internalError("list tasks", err)
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*models.Task, error) {
	return s.loadOwned(ctx, userID, taskID)
}

func (s *TaskService) Create(ctx context.Context, userID, title, description string) (*models.Task, error) {
	if blank(title) {
		return nil, validationError("title is required")
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Completed:   false,
		CreatedAt:   storedTime(s.now()),
	}

	created, err := s.repomanager.Tasks().Create(ctx, task)
	if err != nil {
		return nil, internalError("create task", err)
	}

	s.logger.Debug(ctx, "task created", "task_id", created.ID, "user_id", userID)
	return created, nil
}

// Update overwrites title, description and completed on an owned task.
func (s *TaskService) Update(ctx context.Context, userID, taskID, title, description string, completed bool) (*models.Task, error) {
	task, err := s.loadOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if blank(title) {
		return nil, validationError("title is required")
	}

	task.Title = strings.TrimSpace(title)
	task.Description = description
	task.Completed = completed

	updated, err := s.repomanager.Tasks().Update(ctx, task)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, internalError("update task", err)
	}

	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	task, err := s.loadOwned(ctx, userID, taskID)
	if err != nil {
		return err
	}

	if err := s.repomanager.Tasks().Delete(ctx, task.ID, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return internalError("delete task", err)
	}

	s.logger.Debug(ctx, "task deleted", "task_id", task.ID, "user_id", userID)
	return nil
}

// loadOwned fetches a task and checks it belongs to userID. Ids that are not
// uuids cannot exist and are reported as not found.
func (s *TaskService) loadOwned(ctx context.Context, userID, taskID string) (*models.Task, error) {
	id, err := uuid.Parse(taskID)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	task, err := s.repomanager.Tasks().GetByID(ctx, id.String())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, internalError("get task", err)
	}

	if !task.OwnedBy(userID) {
		return nil, common.ErrForbidden
	}

	return task, nil
}
