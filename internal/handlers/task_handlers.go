package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"cosmonotes/internal/handlers/dto"
	"cosmonotes/internal/logger"
	"cosmonotes/internal/repository"
	"cosmonotes/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	tasks   TaskService
	overdue OverdueService
}

func NewTaskHandler(tasks TaskService, overdue OverdueService) TaskHandler {
	return TaskHandler{
		tasks:   tasks,
		overdue: overdue,
	}
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: list tasks")

	query := r.URL.Query()
	filter := repository.Filter{
		Tag:     query.Get("tag"),
		Overdue: parseBoolParam(query.Get("overdue")),
		Public:  parseBoolParam(query.Get("public")),
		UserID:  query.Get("userId"),
	}

	tasks, err := h.tasks.ListTasks(r.Context(), filter)
	if err != nil {
		logger.Error("HTTP: failed to list tasks", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch tasks", err.Error())
		return
	}

	respondList(w, tasks, len(tasks))
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: create task")

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: invalid JSON body", zap.Error(err))
		respondError(w, http.StatusBadRequest, "Validation failed", "Invalid JSON body")
		return
	}

	if strings.TrimSpace(request.Title) == "" {
		logger.Warn("HTTP: validation failed",
			zap.String("field", "title"),
			zap.String("reason", "empty"))
		respondError(w, http.StatusBadRequest, "Validation failed", "Title is required")
		return
	}

	dueDate, err := request.ParseDueDate()
	if err != nil {
		logger.Warn("HTTP: validation failed",
			zap.String("field", "dueDate"),
			zap.Error(err))
		respondError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), service.CreateTaskParams{
		Title:   request.Title,
		Content: request.Content,
		DueDate: dueDate,
		Tags:    request.Tags,
	}, request.UserID)
	if err != nil {
		logger.Error("HTTP: failed to create task", err)
		respondError(w, http.StatusInternalServerError, "Failed to create task", err.Error())
		return
	}

	respondData(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: get task")
	id := chi.URLParam(r, "id")

	task, err := h.tasks.GetTaskByID(r.Context(), id)
	if err != nil {
		respondTaskError(w, err, id, "Failed to fetch task")
		return
	}

	respondData(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: update task")
	id := chi.URLParam(r, "id")

	var request dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: invalid JSON body", zap.Error(err))
		respondError(w, http.StatusBadRequest, "Validation failed", "Invalid JSON body")
		return
	}

	patch, err := request.ToPatch()
	if err != nil {
		logger.Warn("HTTP: validation failed",
			zap.String("field", "dueDate"),
			zap.Error(err))
		respondError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), id, patch)
	if err != nil {
		respondTaskError(w, err, id, "Failed to update task")
		return
	}

	respondData(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: delete task")
	id := chi.URLParam(r, "id")

	deleted, err := h.tasks.DeleteTask(r.Context(), id)
	if err != nil {
		logger.Error("HTTP: failed to delete task", err, zap.String("task_id", id))
		respondError(w, http.StatusInternalServerError, "Failed to delete task", err.Error())
		return
	}
	if !deleted {
		logger.Warn("HTTP: task not found", zap.String("task_id", id))
		respondError(w, http.StatusNotFound, "Task not found",
			"Task with ID "+id+" does not exist")
		return
	}

	respond(w, http.StatusOK, Response{Success: true, Message: "Task deleted successfully"})
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: health check")

	if err := h.tasks.HealthCheck(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "Service unhealthy", err.Error())
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseBoolParam(value string) *bool {
	switch value {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		return nil
	}
}
