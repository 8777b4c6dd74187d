package models

import "time"

// Task is the sole domain entity: a note with optional due date, tags and
// sharing state. ShareID is non-empty iff IsPublic is true; the pair is only
// ever changed together by the sharing transitions.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	IsPublic  bool       `json:"isPublic"`
	IsOverdue bool       `json:"isOverdue"`
	ShareID   string     `json:"shareId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	UserID    string     `json:"userId,omitempty"`
}

// OverdueAt reports whether a task with the given due date counts as overdue
// at the given moment. A task without a due date is never overdue.
func OverdueAt(dueDate *time.Time, now time.Time) bool {
	if dueDate == nil {
		return false
	}
	return dueDate.Before(now)
}
