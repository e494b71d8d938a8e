package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	apperrors "github.com/signoria/signoria/internal/platform/errors"
)

// maxRequestBodySize caps POST bodies at 1 MB.
const maxRequestBodySize = 1 << 20

// errorBody is the wire form of a rejected request.
type errorBody struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidArgument, "request body is not valid JSON", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("governance api: write response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.CodeOf(err)
	body := errorBody{Code: string(code), Message: err.Error()}
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		body.Metadata = domainErr.Metadata
	}

	status := code.HTTPStatus()
	if status == http.StatusInternalServerError {
		if traceID := traceIDFromContext(r.Context()); traceID != "" {
			log.Printf("governance api: trace %s: %v", traceID, err)
		} else {
			log.Printf("governance api: %v", err)
		}
		body.Message = "internal error"
		body.Metadata = nil
	}
	writeJSON(w, status, errorEnvelope{Error: body})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
