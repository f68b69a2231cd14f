package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/platform/obs"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		obs.Logger(r.Context()).Warn("encode failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// statusFor maps domain sentinels to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrOracleUnavailable),
		errors.Is(err, domain.ErrFinalizeFailed),
		errors.Is(err, domain.ErrMalformedOracleOutput):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeServiceError logs err and answers with its mapped status. Unmapped
// errors are reported as a generic internal server error.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)

	obs.Logger(r.Context()).Error(op+" failed",
		zap.String("req_id", obs.RequestID(r.Context())),
		zap.Int("status", status),
		zap.Error(err),
	)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeError(w, r, status, msg)
}

// decodeJSON reads exactly one JSON value into v. On failure it writes a
// 400 response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON value")
		return false
	}
	return true
}
