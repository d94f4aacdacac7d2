package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	// ErrCodeInvalidInput marks a malformed argument, rejected before any
	// value is pulled.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates a terminal search found no matching value.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeExhausted indicates an iterator was pulled after it was exhausted.
	ErrCodeExhausted ErrorCode = "EXHAUSTED"
)
