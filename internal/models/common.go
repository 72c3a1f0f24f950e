package models

// ErrorDetail provides a structured way to represent an error.
type ErrorDetail struct {
	// Code is an application-specific error code.
	Code int `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Data holds additional context about the error, like the path or operation.
	Data map[string]string `json:"data,omitempty"`
}

// Error lets an ErrorDetail travel through plain error returns.
func (e *ErrorDetail) Error() string {
	return e.Message
}

// ErrorResponse is the body of a failed HTTP invoke.
type ErrorResponse struct {
	// Error contains the details of the error.
	Error ErrorDetail `json:"error"`
}

// InvokeResponse is the body of a successful HTTP invoke.
type InvokeResponse struct {
	Result interface{} `json:"result"`
}
