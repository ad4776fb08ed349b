// Package handlers implements the browsefs HTTP API endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ebogdum/browsefs/connectors"
	"github.com/ebogdum/browsefs/internal/pathutil"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SendErrorResponse sends a standardized JSON error response
func SendErrorResponse(w http.ResponseWriter, logger *zap.Logger, err error, defaultStatusCode int) {
	w.Header().Set("Content-Type", "application/json")

	var statusCode int
	var errorCode string

	switch {
	case errors.Is(err, connectors.ErrUnresolvedConnector):
		statusCode = http.StatusNotFound
		errorCode = "UNRESOLVED_CONNECTOR"
	case errors.Is(err, pathutil.ErrForbidden):
		statusCode = http.StatusBadRequest
		errorCode = "INVALID_PATH"
	case errors.Is(err, connectors.ErrContentNotSupported):
		statusCode = http.StatusNotImplemented
		errorCode = "PREVIEW_NOT_SUPPORTED"
	default:
		statusCode = defaultStatusCode
		errorCode = "INTERNAL_ERROR"
	}

	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Code:    errorCode,
		Message: err.Error(),
	}

	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		logger.Error("Failed to encode error response", zap.Error(encodeErr))
	}
}
