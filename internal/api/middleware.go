package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	logErr "github.com/mumo-labs/ingest/internal/errors"

	"github.com/gorilla/mux"
)

// responseWriter is a custom response writer that captures the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// SecretGuard rejects requests whose key query parameter does not match the
// configured shared secret. Guarded requests never reach the handlers.
func SecretGuard(secret string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("key") != secret {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs request details
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}

// RecoveryMiddleware recovers panics and writes a JSON internal error. A
// handler that dies mid-request must surface as a server error, never as a
// dropped connection.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				err := logErr.RecoverError(rec)
				writeErrorResponse(w, err)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// writeErrorResponse maps an error class to a status code and writes the
// JSON envelope.
func writeErrorResponse(w http.ResponseWriter, err error) {
	var statusCode int
	var errType string

	switch {
	case logErr.IsNotFound(err):
		statusCode = http.StatusNotFound
		errType = string(logErr.ErrorTypeNotFound)
	case logErr.IsInvalidInput(err):
		statusCode = http.StatusBadRequest
		errType = string(logErr.ErrorTypeInvalidInput)
	case logErr.IsPayloadTooLarge(err):
		statusCode = http.StatusBadRequest
		errType = string(logErr.ErrorTypePayloadTooLarge)
	default:
		statusCode = http.StatusInternalServerError
		errType = string(logErr.ErrorTypeInternal)
	}

	response := ErrorResponse{}
	response.Error.Type = errType
	response.Error.Message = err.Error()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
