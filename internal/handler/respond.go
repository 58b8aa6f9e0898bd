package handler

import (
	stderrors "errors"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"gamezone-be/pkg/errors"
	"gamezone-be/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}, log *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// writeError converts an error into the portal's JSON error envelope.
// AppErrors keep their type and status; anything else becomes an internal
// error without leaking details.
func writeError(w http.ResponseWriter, err error, log *logger.Logger) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		log.WithError(err).Error("Unhandled error")
		appErr = errors.NewInternalError("Something went wrong. Please try again.", err)
	} else if appErr.Internal != nil {
		log.WithError(appErr).Error("Request failed")
	}

	response := &errors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Message = appErr.Message
	response.Error.Details = appErr.Details
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	writeJSON(w, appErr.StatusCode, response, log)
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.NewValidationError("Invalid request body.", nil)
	}
	return nil
}
