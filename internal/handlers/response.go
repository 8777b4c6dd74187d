package handlers

import (
	"encoding/json"
	"net/http"
)

// Response is the uniform envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func respond(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}

func respondData(w http.ResponseWriter, code int, data any) {
	respond(w, code, Response{Success: true, Data: data})
}

func respondList(w http.ResponseWriter, data any, count int) {
	respond(w, http.StatusOK, Response{Success: true, Data: data, Count: &count})
}

func respondError(w http.ResponseWriter, code int, errMsg, message string) {
	respond(w, code, Response{Success: false, Error: errMsg, Message: message})
}
