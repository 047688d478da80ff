// Package httputil maps domain errors onto HTTP responses so handlers stay
// thin and the mapping stays in one place.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "relato/pkg/domain-errors"
)

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeValidation: http.StatusBadRequest,
	dErrors.CodeConflict:   http.StatusConflict,
	dErrors.CodeNotFound:   http.StatusNotFound,
	dErrors.CodeExternal:   http.StatusBadGateway,
	dErrors.CodeInternal:   http.StatusInternalServerError,
}

var labelByCode = map[dErrors.Code]string{
	dErrors.CodeValidation: "validation_error",
	dErrors.CodeConflict:   "conflict",
	dErrors.CodeNotFound:   "not_found",
	dErrors.CodeExternal:   "external_error",
	dErrors.CodeInternal:   "internal_error",
}

// WriteError renders err as a JSON error response. Internal errors omit the
// description so store and process details never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)

	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
		code = dErrors.CodeInternal
	}

	body := map[string]string{"error": labelByCode[code]}
	if code != dErrors.CodeInternal {
		body["error_description"] = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSON renders v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
