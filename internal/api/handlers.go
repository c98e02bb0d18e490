package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	logErr "github.com/mumo-labs/ingest/internal/errors"
	"github.com/mumo-labs/ingest/internal/logstore"
	"github.com/mumo-labs/ingest/internal/pagination"
)

// handleRead handles GET requests for retrieving a record by its sequence
// number, carried as the index query parameter. The response body is the raw
// payload; a Link header advertises first/prev/next/last neighbours.
func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("index")
	if raw == "" {
		s.handleError(w,
			logErr.New(logErr.ErrorTypeInvalidInput, "index query parameter is required", nil),
			http.StatusBadRequest,
		)
		return
	}
	seq, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		s.handleError(w,
			logErr.New(logErr.ErrorTypeInvalidInput, "index must be an unsigned integer", err),
			http.StatusBadRequest,
		)
		return
	}

	var (
		payload []byte
		entry   logstore.IndexEntry
	)
	readErr := s.traceStoreOp(r, "read", func() error {
		var err error
		payload, entry, err = s.store.Read(seq)
		return err
	})
	if readErr != nil {
		// Out-of-range and failed positional reads are indistinguishable at
		// the store; both answer not-found.
		s.metrics.RecordStoreError("read")
		s.handleError(w,
			logErr.New(logErr.ErrorTypeNotFound, "no such record", readErr),
			http.StatusNotFound,
		)
		return
	}

	links := pagination.Links{Current: entry.Sequence, Bound: s.store.LastSequence()}
	if header := links.Header(r.URL); header != "" {
		w.Header().Set("Link", header)
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// handleWrite handles POST requests appending the raw request body as a new
// record. The body is read through a hard size cap; nothing is committed for
// an oversized request. A successful append is always durable.
func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxPayload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.handleError(w,
				logErr.New(logErr.ErrorTypePayloadTooLarge, "request body exceeds size cap", err),
				http.StatusBadRequest,
			)
			return
		}
		s.handleError(w,
			logErr.New(logErr.ErrorTypeInvalidInput, "failed to read request body", err),
			http.StatusBadRequest,
		)
		return
	}

	var written logstore.Written
	writeErr := s.traceStoreOp(r, "append", func() error {
		var err error
		written, err = s.store.Append(body, true)
		return err
	})
	if writeErr != nil {
		// Existing consumers expect a failed append to answer not-found,
		// not a server error.
		s.metrics.RecordStoreError("append")
		s.handleError(w,
			logErr.New(logErr.ErrorTypeStorage, "failed to append record", writeErr),
			http.StatusNotFound,
		)
		return
	}

	s.metrics.ObserveAppend(written.Size, s.store.LastSequence())
	s.writeJSON(w, written, http.StatusOK)
}

// handleHealth handles health check requests, probing the store for its
// record count.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "ok",
		"records": s.store.LastSequence(),
		"time":    time.Now().UTC(),
	}
	s.writeJSON(w, response, http.StatusOK)
}

// traceStoreOp runs fn inside a store-operation span when tracing is enabled.
func (s *Server) traceStoreOp(r *http.Request, operation string, fn func() error) error {
	if s.tracer == nil {
		return fn()
	}
	return s.tracer.TraceStoreOperation(r.Context(), operation, fn)
}

// handleError writes an error response
func (s *Server) handleError(w http.ResponseWriter, err error, status int) {
	response := map[string]interface{}{
		"error": err.Error(),
	}
	s.writeJSON(w, response, status)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
