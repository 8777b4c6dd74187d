package handlers

import (
	"context"

	"cosmonotes/internal/models"
	"cosmonotes/internal/repository"
	"cosmonotes/internal/service"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	ListTasks(ctx context.Context, filter repository.Filter) ([]*models.Task, error)
	CreateTask(ctx context.Context, params service.CreateTaskParams, userID string) (*models.Task, error)
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, patch repository.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) (bool, error)
	ShareTask(ctx context.Context, id string) (*service.ShareResult, error)
	UnshareTask(ctx context.Context, id string) error
	ResolveShared(ctx context.Context, shareID string) (*models.Task, error)
}

type OverdueService interface {
	UpdateOverdueStatus(ctx context.Context) (*service.SweepResult, error)
	GetOverdueTasks(ctx context.Context, userID string) ([]*models.Task, error)
	SendOverdueNotifications(ctx context.Context, userID string) (int, error)
}
