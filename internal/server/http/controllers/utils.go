package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/lowmanm/q-logic/internal/queue"
	"github.com/lowmanm/q-logic/internal/records"
	"github.com/lowmanm/q-logic/internal/registry"
	"github.com/lowmanm/q-logic/internal/workforce"
)

// Helper functions for common HTTP responses

// writeError writes the error envelope with the given status and code.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// writeDomainError maps store errors onto HTTP statuses and envelope codes.
// Queue exhaustion gets its own code on 404 so pollers can tell "no more
// records" from a genuinely missing entity.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, queue.ErrQueueEmpty):
		writeError(w, http.StatusNotFound, "queue_exhausted", err.Error())
	case errors.Is(err, registry.ErrNotFound),
		errors.Is(err, records.ErrNotFound),
		errors.Is(err, queue.ErrNotFound),
		errors.Is(err, workforce.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, queue.ErrInvalidState),
		errors.Is(err, workforce.ErrInvalidState):
		writeError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, registry.ErrDuplicateName),
		errors.Is(err, workforce.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

// parseLimit parses a limit string and returns a valid limit value.
//
// Returns 0 for empty strings or invalid values.
func parseLimit(limitStr string) int {
	if limitStr == "" {
		return 0
	}
	if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
		return limit
	}
	return 0
}
