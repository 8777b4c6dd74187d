package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"cosmonotes/internal/handlers/dto"
	"cosmonotes/internal/logger"
)

func (h *TaskHandler) GetOverdueTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: get overdue tasks")

	userID := r.URL.Query().Get("userId")

	overdueTasks, err := h.overdue.GetOverdueTasks(r.Context(), userID)
	if err != nil {
		logger.Error("HTTP: failed to get overdue tasks", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch overdue tasks", err.Error())
		return
	}

	message := "No overdue tasks found"
	if len(overdueTasks) > 0 {
		message = fmt.Sprintf("Found %d overdue task(s)", len(overdueTasks))
	}

	count := len(overdueTasks)
	respond(w, http.StatusOK, Response{
		Success: true,
		Data:    overdueTasks,
		Count:   &count,
		Message: message,
	})
}

func (h *TaskHandler) TriggerOverdueUpdate(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: trigger overdue sweep")

	result, err := h.overdue.UpdateOverdueStatus(r.Context())
	if err != nil {
		logger.Error("HTTP: overdue sweep failed", err)
		respondError(w, http.StatusInternalServerError, "Failed to update overdue status", err.Error())
		return
	}

	respond(w, http.StatusOK, Response{
		Success: true,
		Data: dto.SweepResponse{
			UpdatedCount:      result.UpdatedCount,
			OverdueTasksCount: len(result.OverdueTasks),
		},
		Message: fmt.Sprintf("Updated %d task(s), %d task(s) are now overdue",
			result.UpdatedCount, len(result.OverdueTasks)),
	})
}

func (h *TaskHandler) SendOverdueNotifications(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: send overdue notifications")

	// the body is optional, a missing or invalid one means "all users"
	var request dto.SendNotificationsRequest
	_ = json.NewDecoder(r.Body).Decode(&request)

	sent, err := h.overdue.SendOverdueNotifications(r.Context(), request.UserID)
	if err != nil {
		logger.Error("HTTP: failed to send overdue notifications", err)
		respondError(w, http.StatusInternalServerError, "Failed to send overdue notifications", err.Error())
		return
	}

	respond(w, http.StatusOK, Response{
		Success: true,
		Data:    dto.SendNotificationsResponse{NotificationsSent: sent},
		Message: fmt.Sprintf("Would send %d notification(s) for overdue tasks", sent),
	})
}
