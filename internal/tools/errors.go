package tools

import "errors"

// Tool registry errors.
var (
	// ErrToolNotFound is returned when a tool is not registered.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolNameEmpty is returned when a tool has no name.
	ErrToolNameEmpty = errors.New("tool name cannot be empty")

	// ErrToolExecuteNil is returned when a tool has no call function.
	ErrToolExecuteNil = errors.New("tool call function cannot be nil")

	// ErrToolAlreadyRegistered is returned when registering a duplicate.
	ErrToolAlreadyRegistered = errors.New("tool already registered")

	// ErrToolPrefix is returned when a forwarding tool lacks the w_ prefix.
	ErrToolPrefix = errors.New("forwarding tool name must start with " + ForwardPrefix)

	// ErrInvalidSignature is returned for malformed parameter lists.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInvalidArgs is returned when tool-call arguments are not a JSON object.
	ErrInvalidArgs = errors.New("tool arguments must be a JSON object")
)
