package ui

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"rolstat/domain/core"
	"rolstat/domain/rol"
	"rolstat/internal/errors"
)

type errorResponse struct {
	Code   string   `json:"code"`
	Error  string   `json:"error"`
	Values []string `json:"values,omitempty"`
}

var statusByCode = map[string]int{
	errors.CodeNonNumeric:      http.StatusConflict,
	errors.CodeEmptyInput:      http.StatusUnprocessableEntity,
	errors.CodeInvalidInput:    http.StatusUnprocessableEntity,
	errors.CodeValidationError: http.StatusBadRequest,
	errors.CodeStorageError:    http.StatusServiceUnavailable,
	errors.CodeDatabaseError:   http.StatusServiceUnavailable,
	errors.CodeNotFound:        http.StatusNotFound,
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Warn("encoding response: %v", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "UNKNOWN" && core.IsInputError(err) {
		code = errors.CodeInvalidInput
	}
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	resp := errorResponse{Code: code, Error: err.Error()}
	var nonNumeric *rol.NonNumericError
	if stderrors.As(err, &nonNumeric) {
		resp.Values = nonNumeric.Values
	}
	if status >= http.StatusInternalServerError {
		a.log.Error("request failed: %v", err)
	}
	a.writeJSON(w, status, resp)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.ValidationError("malformed JSON body: " + err.Error())
	}
	return nil
}
