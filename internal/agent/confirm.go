package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/logging"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/tools"
)

// Coordinator runs the two-turn confirmation protocol: invocations with
// missing parameters are parked on the session, and the user's next
// message gets one extraction attempt to fill the gaps. Whatever the
// outcome, the session is back to idle after that one attempt.
type Coordinator struct {
	registry *tools.Registry
}

// NewCoordinator creates a coordinator over the given tool registry.
func NewCoordinator(registry *tools.Registry) *Coordinator {
	return &Coordinator{registry: registry}
}

// NeedsConfirmation reports whether any proposed invocation is missing a
// required parameter. Unknown tools don't defer; they fail at execution.
func (c *Coordinator) NeedsConfirmation(invocations []*ToolInvocation) bool {
	for _, inv := range invocations {
		tool := c.registry.Get(inv.Tool)
		if tool == nil {
			continue
		}
		if len(tool.MissingArgs(inv.Args)) > 0 {
			return true
		}
	}
	return false
}

// Defer parks the whole proposed batch on the session and opens the
// confirmation cycle. Complete siblings wait alongside incomplete ones so
// the batch executes together on resume.
func (c *Coordinator) Defer(sess *Session, invocations []*ToolInvocation) {
	sess.setPending(invocations)
	logging.Confirm("Deferred %d invocation(s) for user %s pending confirmation", len(invocations), sess.UserID)
}

// Resume closes the open confirmation cycle using the new message: missing
// fields are extracted via per-tool pattern rules, merged, and completeness
// is re-checked. Invocations that become complete are returned for
// execution; the rest are dropped with a warning. There is no second
// attempt.
func (c *Coordinator) Resume(sess *Session, message string) (ready []*ToolInvocation, dropped []string) {
	pending := sess.takePending()
	for _, inv := range pending {
		tool := c.registry.Get(inv.Tool)
		if tool == nil {
			dropped = append(dropped, inv.Tool)
			logging.ConfirmWarn("Dropping pending invocation for unknown tool %s", inv.Tool)
			continue
		}

		if inv.Args == nil {
			inv.Args = make(map[string]any)
		}
		for _, field := range tool.MissingArgs(inv.Args) {
			if v, ok := extractField(inv.Tool, field, message); ok {
				inv.Args[field] = v
				logging.ConfirmDebug("Extracted %s=%v for %s", field, v, inv.Tool)
			}
		}

		if missing := tool.MissingArgs(inv.Args); len(missing) > 0 {
			dropped = append(dropped, inv.Tool)
			logging.ConfirmWarn("Dropping invocation %s after failed extraction, still missing %s",
				inv.Tool, strings.Join(missing, ", "))
			continue
		}
		ready = append(ready, inv)
	}
	return ready, dropped
}

// ExecuteBatch runs a batch of invocations, isolating failures per
// invocation. All outcomes come back as records; siblings of a failed
// invocation still run.
func (c *Coordinator) ExecuteBatch(ctx context.Context, userID string, invocations []*ToolInvocation) ([]ToolCallRecord, []string) {
	records := make([]ToolCallRecord, 0, len(invocations))
	var actions []string
	for _, inv := range invocations {
		res := c.registry.Execute(ctx, inv.Tool, userID, inv.Args)
		rec := ToolCallRecord{
			Tool:     inv.Tool,
			Args:     inv.Args,
			Duration: res.Duration,
		}
		if res.Err != nil {
			rec.Err = res.Err.Error()
			rec.Result = res.Message
		} else {
			rec.Result = res.Message
			actions = append(actions, inv.Tool)
		}
		records = append(records, rec)
	}
	return records, actions
}

// summarizeRecords merges per-invocation outcomes into one user-facing
// summary, reporting partial successes transparently.
func summarizeRecords(records []ToolCallRecord, dropped []string) string {
	var parts []string
	for _, rec := range records {
		if rec.Result != "" {
			parts = append(parts, rec.Result)
		}
	}
	if len(dropped) > 0 {
		parts = append(parts, fmt.Sprintf("I couldn't get enough detail to record %s, so I skipped it.",
			strings.Join(dropped, " and ")))
	}
	return strings.Join(parts, " ")
}
