package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/taskcourse/apiserver/internal/apperr"
	"github.com/taskcourse/apiserver/internal/policy"
)

type contextKey string

const contextCallerKey contextKey = "caller"

// SuccessResponse is the uniform envelope for successful requests.
type SuccessResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
}

// ErrorResponse is the uniform envelope for failed requests.
type ErrorResponse struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
}

func callerFromContext(ctx context.Context) (policy.Caller, error) {
	caller, ok := ctx.Value(contextCallerKey).(policy.Caller)
	if !ok || caller.ID < 1 {
		return policy.Caller{}, errors.New("missing caller")
	}
	return caller, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, SuccessResponse{
		Success:    true,
		Message:    message,
		StatusCode: status,
		Data:       data,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Message:    message,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Path:       r.URL.Path,
	})
}

// writeAppError shapes a service error into the error envelope.
// Unexpected internals are logged with full detail; expected kinds are
// left to the request logger.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		log.Printf("ERROR [%s] %s: %v", r.Method, r.URL.Path, err)
	}
	writeError(w, r, apperr.HTTPStatus(kind), apperr.MessageOf(err))
}

// parseID extracts a positive integer URL parameter.
func parseID(r *http.Request, param string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// clientIP returns the caller's network address without the port.
// chi's RealIP middleware has already folded forwarding headers into
// RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
