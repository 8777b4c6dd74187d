package handlers

import (
	"errors"
	"net/http"

	"cosmonotes/internal/handlers/dto"
	"cosmonotes/internal/logger"
	"cosmonotes/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (h *TaskHandler) ShareTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: share task")
	id := chi.URLParam(r, "id")

	result, err := h.tasks.ShareTask(r.Context(), id)
	if err != nil {
		respondTaskError(w, err, id, "Failed to share task")
		return
	}

	respondData(w, http.StatusOK, dto.ShareResponse{
		ShareID:  result.ShareID,
		ShareURL: result.ShareURL,
		IsPublic: result.IsPublic,
	})
}

func (h *TaskHandler) UnshareTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: unshare task")
	id := chi.URLParam(r, "id")

	if err := h.tasks.UnshareTask(r.Context(), id); err != nil {
		respondTaskError(w, err, id, "Failed to unshare task")
		return
	}

	respond(w, http.StatusOK, Response{
		Success: true,
		Message: "Task is now private",
		Data:    dto.UnshareResponse{IsPublic: false},
	})
}

// GetSharedTask is the unauthenticated read path: anyone holding the share
// token can view the task.
func (h *TaskHandler) GetSharedTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: resolve shared task")
	shareID := chi.URLParam(r, "shareId")

	task, err := h.tasks.ResolveShared(r.Context(), shareID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("HTTP: shared task not found", zap.String("share_id", shareID))
			respondError(w, http.StatusNotFound, "Shared task not found",
				"No public task found with share ID "+shareID)
			return
		}
		logger.Error("HTTP: failed to resolve shared task", err, zap.String("share_id", shareID))
		respondError(w, http.StatusInternalServerError, "Failed to access shared task", err.Error())
		return
	}

	respondData(w, http.StatusOK, task)
}
