package identitysdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes returned by the identity service.
const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeNotFound          = "not_found"
	ErrorCodeForbidden         = "forbidden"
	ErrorCodeConflict          = "conflict"
	ErrorCodeServerError       = "server_error"
	ErrorCodeRateLimitExceeded = "rate_limit_exceeded"
)

// APIError represents an error body returned by the identity service. It
// implements the error interface so SDK callers can inspect the code and
// status directly.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// parseErrorResponse builds an APIError from a non-success response body.
// Falls back to the raw status when the body isn't the standard shape.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        er.Error,
			Description: er.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("unexpected status %d", resp.StatusCode),
	}
}
