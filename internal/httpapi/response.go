// Package httpapi exposes the ingest and browse core over HTTP: thin
// chi handlers that decode a request, call into internal/browse,
// internal/catalog, internal/multipart and internal/pipeline, and
// encode the result (spec §6).
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/lumenvault/photovault/internal/apperr"
)

// Result is the standard response envelope for every endpoint in this
// package.
type Result struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Success writes data wrapped in a 200 Result.
func Success(w http.ResponseWriter, data any) {
	writeResult(w, http.StatusOK, &Result{Code: 0, Message: "success", Data: data})
}

// Created writes data wrapped in a 201 Result.
func Created(w http.ResponseWriter, data any) {
	writeResult(w, http.StatusCreated, &Result{Code: 0, Message: "success", Data: data})
}

// Error maps err's apperr.Kind to an HTTP status code and writes a
// Result carrying the message and the underlying error text.
func Error(w http.ResponseWriter, message string, err error) {
	status := statusForKind(apperr.KindOf(err))
	writeResult(w, status, &Result{Code: status, Message: message, Error: err.Error()})
}

func writeResult(w http.ResponseWriter, status int, result *Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(result)
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindShuttingDown:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
