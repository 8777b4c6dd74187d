package service

import (
	"context"
	"fmt"
	"time"

	"cosmonotes/internal/logger"
	"cosmonotes/internal/models"
	"cosmonotes/internal/repository"

	"go.uber.org/zap"
)

// OverdueService owns overdue reconciliation: the sweep, the overdue read
// path and the notification stub.
type OverdueService struct {
	repo repository.TaskRepository
}

func NewOverdueService(repo repository.TaskRepository) OverdueService {
	return OverdueService{repo: repo}
}

type SweepResult struct {
	// UpdatedCount is the number of rows written by the sweep, which is
	// every row with a due date, not just the rows whose flag flipped.
	UpdatedCount int64
	OverdueTasks []*models.Task
}

// UpdateOverdueStatus recomputes the overdue flag for every task with a due
// date and returns the current overdue set.
func (s *OverdueService) UpdateOverdueStatus(ctx context.Context) (*SweepResult, error) {
	start := time.Now()
	logger.Info("Service: starting overdue status update")

	updated, err := s.repo.RecomputeOverdue(ctx, time.Now())
	if err != nil {
		logger.Error("Service: overdue status update failed", err)
		return nil, fmt.Errorf("updating overdue status: %w", err)
	}

	overdueTasks, err := s.repo.GetOverdue(ctx, "")
	if err != nil {
		logger.Error("Service: overdue status update failed", err)
		return nil, fmt.Errorf("getting overdue tasks: %w", err)
	}

	logger.Info("Service: overdue status update completed",
		zap.Int64("updated_count", updated),
		zap.Int("overdue_count", len(overdueTasks)),
		zap.Duration("ms", time.Since(start)))

	return &SweepResult{UpdatedCount: updated, OverdueTasks: overdueTasks}, nil
}

func (s *OverdueService) GetOverdueTasks(ctx context.Context, userID string) ([]*models.Task, error) {
	overdueTasks, err := s.repo.GetOverdue(ctx, userID)
	if err != nil {
		logger.Error("Service: failed to get overdue tasks", err)
		return nil, fmt.Errorf("getting overdue tasks: %w", err)
	}

	logger.Info("Service: retrieved overdue tasks",
		zap.Int("count", len(overdueTasks)),
		zap.String("user_id", userID))
	return overdueTasks, nil
}

// SendOverdueNotifications is a stub extension point: it reports how many
// notifications would be sent without performing any delivery.
func (s *OverdueService) SendOverdueNotifications(ctx context.Context, userID string) (int, error) {
	overdueTasks, err := s.GetOverdueTasks(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("sending overdue notifications: %w", err)
	}

	for _, t := range overdueTasks {
		fields := []zap.Field{
			zap.String("task_id", t.ID),
			zap.String("title", t.Title),
		}
		if t.DueDate != nil {
			fields = append(fields, zap.Time("due_date", *t.DueDate))
		}
		logger.Info("Service: overdue notification would be sent", fields...)
	}

	logger.Info("Service: overdue notifications reported",
		zap.Int("task_count", len(overdueTasks)))
	return len(overdueTasks), nil
}
