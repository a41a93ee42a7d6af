package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"lifelink/pkg/types"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Kind   types.ErrorKind   `json:"kind,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to encode json response")
	}
}

// statusFor maps a domain rejection to its HTTP status. Anything that is not
// a *types.Error is a server fault.
func statusFor(err error) int {
	var e *types.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case types.KindValidation:
		return http.StatusBadRequest
	case types.KindNotFound:
		return http.StatusNotFound
	case types.KindPrecondition:
		return http.StatusConflict
	case types.KindUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		s.writeJSON(w, status, errorResponse{Error: "Internal server error."})
		return
	}

	e, _ := types.AsError(err)
	s.writeJSON(w, status, errorResponse{Error: e.Message, Kind: e.Kind, Fields: e.Fields})
}

// decodeJSON reads a JSON body into dst, reporting malformed input as a
// validation failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "application/json") {
		return types.ValidationError("Content-Type must be application/json.", nil)
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return types.ValidationError("Request body must be valid JSON.", nil)
	}
	return nil
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
