package errors

const (
	HttpInternalError           = "internal_error"
	HttpInvalidRequestError     = "invalid_request"
	HttpInvalidControlsError    = "invalid_controls"
	HttpSlideNotFoundError      = "slide_not_found"
	HttpSessionNotFoundError    = "session_not_found"
	HttpSessionBusyError        = "session_busy"
	HttpDatasetUnavailableError = "dataset_unavailable"
)

// ErrorResponse is the error response body of every API endpoint.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
