package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sandevgo/ragway/internal/core"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}

// writeGenerationError maps a generation failure to its HTTP status. Caller
// mistakes are 400, upstream failures 502, anything else 500.
func writeGenerationError(w http.ResponseWriter, err error) {
	var pe *core.ProviderError
	if !errors.As(err, &pe) {
		writeError(w, http.StatusInternalServerError, "InternalError", "Failed to process message")
		return
	}

	status := http.StatusBadGateway
	if pe.Kind.CallerFault() {
		status = http.StatusBadRequest
	}
	writeError(w, status, string(pe.Kind), pe.Message)
}

// decodeJSON accepts an empty body as the zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after JSON object")
	}
	return nil
}
