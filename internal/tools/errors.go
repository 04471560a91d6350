package tools

import "errors"

var (
	// ErrToolNotFound means no tool with the given name is registered.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolAlreadyRegistered means a duplicate registration was attempted.
	ErrToolAlreadyRegistered = errors.New("tool already registered")

	// ErrToolNameEmpty means a tool was defined without a name.
	ErrToolNameEmpty = errors.New("tool name is empty")

	// ErrToolExecuteNil means a tool was defined without a handler.
	ErrToolExecuteNil = errors.New("tool execute function is nil")

	// ErrMissingRequiredArg means a required argument was absent.
	ErrMissingRequiredArg = errors.New("missing required argument")

	// ErrInvalidArgument means an argument failed coercion or positivity.
	ErrInvalidArgument = errors.New("invalid argument")
)
