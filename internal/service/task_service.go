package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cosmonotes/internal/logger"
	"cosmonotes/internal/models"
	"cosmonotes/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskService orchestrates repository calls and logs every operation. It
// adds no business rules beyond defaulting new tasks and building share
// URLs.
type TaskService struct {
	repo    repository.TaskRepository
	baseURL string
}

func NewTaskService(repo repository.TaskRepository, baseURL string) TaskService {
	return TaskService{
		repo:    repo,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type CreateTaskParams struct {
	Title   string
	Content string
	DueDate *time.Time
	Tags    []string
}

type ShareResult struct {
	ShareID  string
	ShareURL string
	IsPublic bool
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("service health check: %w", err)
	}
	return nil
}

func (s *TaskService) ListTasks(ctx context.Context, filter repository.Filter) ([]*models.Task, error) {
	logger.Info("Service: listing tasks",
		zap.String("tag", filter.Tag),
		zap.String("user_id", filter.UserID))

	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) CreateTask(ctx context.Context, params CreateTaskParams, userID string) (*models.Task, error) {
	now := time.Now()
	t := &models.Task{
		ID:        uuid.New().String(),
		Title:     params.Title,
		Content:   params.Content,
		DueDate:   params.DueDate,
		Tags:      params.Tags,
		IsOverdue: models.OverdueAt(params.DueDate, now),
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    userID,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	logger.Info("Service: task created",
		zap.String("task_id", t.ID),
		zap.Bool("is_overdue", t.IsOverdue))
	return t, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return t, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, id string, patch repository.TaskPatch) (*models.Task, error) {
	t, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("updating task %s: %w", id, err)
	}

	logger.Info("Service: task updated", zap.String("task_id", id))
	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("deleting task %s: %w", id, err)
	}

	logger.Info("Service: task delete finished",
		zap.String("task_id", id),
		zap.Bool("deleted", deleted))
	return deleted, nil
}

// ShareTask publishes the task under a fresh token. Re-sharing an already
// public task replaces its token.
func (s *TaskService) ShareTask(ctx context.Context, id string) (*ShareResult, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("sharing task %s: %w", id, err)
	}

	shareID, err := NewShareToken()
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.SetPublic(ctx, id, shareID)
	if err != nil {
		return nil, fmt.Errorf("sharing task %s: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("sharing task %s: %w", id, repository.ErrNotFound)
	}

	result := &ShareResult{
		ShareID:  shareID,
		ShareURL: s.baseURL + "/shared/" + shareID,
		IsPublic: true,
	}

	logger.Info("Service: task shared",
		zap.String("task_id", id),
		zap.String("share_id", shareID),
		zap.String("share_url", result.ShareURL))
	return result, nil
}

// UnshareTask reverts the task to private. Calling it on an already private
// task is a success.
func (s *TaskService) UnshareTask(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("unsharing task %s: %w", id, err)
	}

	ok, err := s.repo.SetPrivate(ctx, id)
	if err != nil {
		return fmt.Errorf("unsharing task %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("unsharing task %s: %w", id, repository.ErrNotFound)
	}

	logger.Info("Service: task unshared", zap.String("task_id", id))
	return nil
}

// ResolveShared looks a public task up by its share token. This read path is
// unauthenticated: holding the token grants access.
func (s *TaskService) ResolveShared(ctx context.Context, shareID string) (*models.Task, error) {
	t, err := s.repo.GetByShareID(ctx, shareID)
	if err != nil {
		return nil, fmt.Errorf("resolving shared task: %w", err)
	}

	logger.Info("Service: shared task accessed",
		zap.String("share_id", shareID),
		zap.String("task_id", t.ID))
	return t, nil
}
