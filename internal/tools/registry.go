package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/logging"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/telemetry"
)

// Registry holds all available tools and provides lookup and execution.
// It is built once at engine construction; registration after that point is
// allowed but not expected.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool

	telemetry *telemetry.Collector
}

// NewRegistry creates an empty registry. The collector may be nil.
func NewRegistry(collector *telemetry.Collector) *Registry {
	return &Registry{
		tools:     make(map[string]*Tool),
		telemetry: collector,
	}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name already exists.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}
	r.tools[tool.Name] = tool

	logging.ToolsDebug("Registered tool: %s", tool.Name)
	return nil
}

// MustRegister registers a tool and panics on error.
// Use this for static tool registration at construction time.
func (r *Registry) MustRegister(tool *Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("failed to register tool %s: %v", tool.Name, err))
	}
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Has returns true if a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute runs a tool by name with the given arguments.
// Returns ErrToolNotFound if the tool doesn't exist. Handler panics are
// caught and converted to errors so one bad invocation cannot take the
// batch down.
func (r *Registry) Execute(ctx context.Context, name, userID string, args map[string]any) *Result {
	tool := r.Get(name)
	if tool == nil {
		return &Result{
			ToolName: name,
			Message:  fmt.Sprintf("I don't know how to do %q.", name),
			Err:      fmt.Errorf("%w: %s", ErrToolNotFound, name),
		}
	}
	return r.ExecuteTool(ctx, tool, userID, args)
}

// ExecuteTool runs a specific tool with the given arguments.
func (r *Registry) ExecuteTool(ctx context.Context, tool *Tool, userID string, args map[string]any) (res *Result) {
	start := time.Now()
	res = &Result{ToolName: tool.Name}

	defer func() {
		if rec := recover(); rec != nil {
			res.Err = fmt.Errorf("tool %s panicked: %v", tool.Name, rec)
			res.Message = "Something went wrong recording that entry."
			logging.Get(logging.CategoryTools).Error("Tool %s panicked: %v", tool.Name, rec)
		}
		res.Duration = time.Since(start)
		r.telemetry.RecordTool(tool.Name, res.Duration, res.Err != nil)
	}()

	coerced, err := r.validateArgs(tool, args)
	if err != nil {
		res.Err = err
		res.Message = fmt.Sprintf("I couldn't record that: %v.", err)
		return res
	}

	logging.ToolsDebug("Executing tool: %s user=%s", tool.Name, userID)
	message, payload, err := tool.Execute(ctx, userID, coerced)
	if err != nil {
		res.Err = err
		res.Message = fmt.Sprintf("Recording via %s failed.", tool.Name)
		logging.Get(logging.CategoryTools).Error("Tool %s failed: %v", tool.Name, err)
		return res
	}

	res.Message = message
	res.Payload = payload
	logging.ToolsDebug("Tool %s completed in %v", tool.Name, time.Since(start))
	return res
}

// validateArgs checks required presence and coerces numeric arguments,
// enforcing positivity where the schema demands it. Returns a copy of args
// with numbers normalized to float64.
func (r *Registry) validateArgs(tool *Tool, args map[string]any) (map[string]any, error) {
	if missing := tool.MissingArgs(args); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequiredArg, missing[0])
	}

	coerced := make(map[string]any, len(args))
	for k, v := range args {
		coerced[k] = v
	}

	for name, prop := range tool.Schema.Properties {
		v, ok := coerced[name]
		if !ok || v == nil {
			continue
		}
		if prop.Type != "number" {
			continue
		}
		f, err := CoerceNumber(v)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", name, err)
		}
		if prop.Positive && f <= 0 {
			return nil, fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidArgument, name, f)
		}
		coerced[name] = f
	}
	return coerced, nil
}
