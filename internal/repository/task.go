package repository

import (
	"context"
	"time"

	"cosmonotes/internal/models"
)

// Filter narrows List results. Nil boolean pointers mean "don't filter".
type Filter struct {
	Tag     string
	Overdue *bool
	Public  *bool
	UserID  string
}

// TaskPatch carries a partial update. Nil pointers mean the field was not
// supplied and must stay untouched. DueDateSet distinguishes "clear the due
// date" (set with nil DueDate) from "not supplied".
type TaskPatch struct {
	Title      *string
	Content    *string
	DueDate    *time.Time
	DueDateSet bool
	Tags       *[]string
	IsPublic   *bool
}

// Empty reports whether the patch carries no fields at all.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && !p.DueDateSet &&
		p.Tags == nil && p.IsPublic == nil
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context, filter Filter) ([]*models.Task, error)
	// Update applies the patch and refreshes updatedAt. IsOverdue is
	// recomputed only when the patch supplies a due date. An empty patch
	// returns the current row unchanged.
	Update(ctx context.Context, id string, patch TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id string) (bool, error)

	GetByShareID(ctx context.Context, shareID string) (*models.Task, error)
	SetPublic(ctx context.Context, id, shareID string) (bool, error)
	SetPrivate(ctx context.Context, id string) (bool, error)

	// RecomputeOverdue rewrites isOverdue for every row with a due date and
	// returns the number of rows written, not the number that changed value.
	RecomputeOverdue(ctx context.Context, now time.Time) (int64, error)
	GetOverdue(ctx context.Context, userID string) ([]*models.Task, error)

	HealthCheck(ctx context.Context) error
}
