// Package agent implements the conversational turn-orchestration engine:
// stage sequencing, context caching, tool dispatch, and the two-turn
// confirmation protocol that turns a free-text user message into a reply
// plus zero or more validated, side-effecting actions.
package agent

import (
	"errors"
	"time"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/store"
)

// Stage names used for telemetry and logging.
const (
	StageLoadProfile    = "load_profile"
	StageRefreshContext = "refresh_context"
	StagePlan           = "plan"
	StageTools          = "tools"
	StageFinalize       = "finalize"
)

// Sentinel errors for turn outcomes.
var (
	// ErrUserNotFound means the user has no profile; terminal for the turn.
	ErrUserNotFound = errors.New("user not found")

	// ErrStorageUnavailable wraps storage failures; terminal for the turn.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrModelCall wraps model failures; recovered locally with a canned reply.
	ErrModelCall = errors.New("model call failed")
)

// FallbackReply is the canned message users see when a turn fails
// unrecoverably. Raw errors are never shown.
const FallbackReply = "Sorry, I ran into a problem handling that. Please try again in a moment."

// ToolInvocation is a structured, named side-effecting action proposed by
// the plan stage, validated before execution.
type ToolInvocation struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// ToolCallRecord is one executed (or failed) invocation, folded into
// conversation history at finalize.
type ToolCallRecord struct {
	Tool     string         `json:"tool"`
	Args     map[string]any `json:"args"`
	Result   string         `json:"result,omitempty"`
	Err      string         `json:"error,omitempty"`
	Duration time.Duration  `json:"duration_ns"`
}

// Message is one in-memory conversation history entry.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// TurnResult is what HandleTurn returns to the transport layer.
type TurnResult struct {
	Reply     string           `json:"reply"`
	Actions   []string         `json:"actions"`
	ToolCalls []ToolCallRecord `json:"tool_calls"`
	Err       error            `json:"-"`
}

// turn is the per-turn working state threaded through the stages.
type turn struct {
	userID  string
	message string

	profile     *store.Profile
	checkins    []store.Checkin
	lastRefresh time.Time

	draft       string
	reply       string
	invocations []*ToolInvocation

	toolCalls []ToolCallRecord
	actions   []string

	err error
}
