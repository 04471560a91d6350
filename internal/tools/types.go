// Package tools provides the statically registered tool table the plan
// stage dispatches into. Each tool declares its required arguments and
// numeric coercion rules; its handler performs exactly one persistent write.
//
// Tool names arrive from model output as plain strings; lookup misses are a
// caller concern (dropped with a warning), never a panic.
package tools

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Property describes a single argument.
type Property struct {
	Type        string `json:"type"` // string or number
	Description string `json:"description"`

	// Positive requires number arguments to be > 0 after coercion.
	Positive bool `json:"positive,omitempty"`
}

// Schema defines the expected arguments for a tool.
type Schema struct {
	// Required lists argument names that must be provided.
	Required []string `json:"required"`

	// Properties describes each argument.
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc is the signature for tool execution. The returned message is
// user-facing; payload is the written record.
type ExecuteFunc func(ctx context.Context, userID string, args map[string]any) (string, map[string]any, error)

// Tool defines one side-effecting action the model may propose.
type Tool struct {
	// Name is the unique identifier, matching the directive's tool field.
	Name string

	// Description explains what the tool does; embedded in the prompt.
	Description string

	// Schema defines the expected arguments.
	Schema Schema

	// Execute runs the tool.
	Execute ExecuteFunc
}

// Validate checks the tool definition.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// MissingArgs returns the required argument names absent from args.
func (t *Tool) MissingArgs(args map[string]any) []string {
	var missing []string
	for _, name := range t.Schema.Required {
		v, ok := args[name]
		if !ok || v == nil {
			missing = append(missing, name)
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Result wraps one tool execution with metadata.
type Result struct {
	// ToolName identifies which tool was executed.
	ToolName string `json:"tool_name"`

	// Message is the user-facing confirmation or failure string.
	Message string `json:"message"`

	// Payload is the written record, nil on failure.
	Payload map[string]any `json:"payload,omitempty"`

	// Err is set if the tool failed.
	Err error `json:"-"`

	// Duration is how long execution took.
	Duration time.Duration `json:"duration_ns"`
}

// IsSuccess returns true if the tool executed without error.
func (r *Result) IsSuccess() bool {
	return r.Err == nil
}

// CoerceNumber converts a JSON-decoded argument into a float64.
// Model output delivers numbers as float64 or as numeric strings.
func CoerceNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not numeric", ErrInvalidArgument, n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: unexpected type %T", ErrInvalidArgument, v)
	}
}
