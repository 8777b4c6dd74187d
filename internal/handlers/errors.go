package handlers

import (
	"errors"
	"net/http"

	"cosmonotes/internal/logger"
	"cosmonotes/internal/repository"

	"go.uber.org/zap"
)

// respondTaskError maps service errors to the envelope: unknown ids become
// 404 with a descriptive message, everything else a 500 carrying the
// operation-specific error label.
func respondTaskError(w http.ResponseWriter, err error, id, failLabel string) {
	if errors.Is(err, repository.ErrNotFound) {
		logger.Warn("HTTP: task not found", zap.String("task_id", id))
		respondError(w, http.StatusNotFound, "Task not found",
			"Task with ID "+id+" does not exist")
		return
	}

	logger.Error("HTTP: service call failed", err, zap.String("task_id", id))
	respondError(w, http.StatusInternalServerError, failLabel, err.Error())
}
