// Package apierror holds the JSON envelopes for every 4xx/5xx response of the
// cochera API. Internal details (DB errors, panics) never reach the client.
package apierror

// APIError is the canonical error envelope. RequestID is only filled on 5xx
// so an operator can match the response against the server log.
type APIError struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Interno is the opaque 500 body.
func Interno(requestID string) *APIError {
	return &APIError{Detail: "Error interno del servidor", RequestID: requestID}
}

// ValidationError carries one message per offending field, keyed by the
// struct field name.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
