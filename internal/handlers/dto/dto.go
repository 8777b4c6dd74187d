package dto

import (
	"fmt"
	"time"

	"cosmonotes/internal/repository"
)

type CreateTaskRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	DueDate string   `json:"dueDate"`
	Tags    []string `json:"tags"`
	UserID  string   `json:"userId"`
}

func (r *CreateTaskRequest) ParseDueDate() (*time.Time, error) {
	if r.DueDate == "" {
		return nil, nil
	}
	due, err := time.Parse(time.RFC3339, r.DueDate)
	if err != nil {
		return nil, fmt.Errorf("dueDate must be an RFC 3339 timestamp")
	}
	return &due, nil
}

// UpdateTaskRequest carries a partial update. Absent fields stay untouched;
// an empty dueDate or content string clears the field.
type UpdateTaskRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	DueDate  *string   `json:"dueDate"`
	Tags     *[]string `json:"tags"`
	IsPublic *bool     `json:"isPublic"`
}

func (r *UpdateTaskRequest) ToPatch() (repository.TaskPatch, error) {
	patch := repository.TaskPatch{
		Title:    r.Title,
		Content:  r.Content,
		Tags:     r.Tags,
		IsPublic: r.IsPublic,
	}

	if r.DueDate != nil {
		patch.DueDateSet = true
		if *r.DueDate != "" {
			due, err := time.Parse(time.RFC3339, *r.DueDate)
			if err != nil {
				return repository.TaskPatch{}, fmt.Errorf("dueDate must be an RFC 3339 timestamp")
			}
			patch.DueDate = &due
		}
	}

	return patch, nil
}

type ShareResponse struct {
	ShareID  string `json:"shareId"`
	ShareURL string `json:"shareUrl"`
	IsPublic bool   `json:"isPublic"`
}

type UnshareResponse struct {
	IsPublic bool `json:"isPublic"`
}

type SweepResponse struct {
	UpdatedCount      int64 `json:"updatedCount"`
	OverdueTasksCount int   `json:"overdueTasksCount"`
}

type SendNotificationsRequest struct {
	UserID string `json:"userId"`
}

type SendNotificationsResponse struct {
	NotificationsSent int `json:"notificationsSent"`
}
