package agent

import (
	"context"
	"errors"
	"time"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/logging"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/telemetry"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/tools"
)

// notFoundReply is shown when the user has no profile yet. Unlike other
// terminal errors it is actionable, so it gets its own wording instead of
// the generic fallback.
const notFoundReply = "I don't have a profile for you yet. Please set one up before we start tracking."

// HistoryWriter persists conversation turns. *store.Store satisfies it.
type HistoryWriter interface {
	AppendHistory(userID string, ts time.Time, role, content string) error
}

// Engine is the turn orchestrator: a five-stage state machine sequencing
// profile load, context refresh, planning, tool execution, and finalize.
// Any stage setting the turn error short-circuits the rest except
// finalize, which always runs.
type Engine struct {
	sessions    *SessionStore
	profiles    *ProfileLoader
	cache       *ContextCache
	planner     *Planner
	coordinator *Coordinator
	history     HistoryWriter
	telemetry   *telemetry.Collector
}

// NewEngine wires the orchestrator from its collaborators.
func NewEngine(
	sessions *SessionStore,
	profiles *ProfileLoader,
	cache *ContextCache,
	planner *Planner,
	registry *tools.Registry,
	history HistoryWriter,
	collector *telemetry.Collector,
) *Engine {
	return &Engine{
		sessions:    sessions,
		profiles:    profiles,
		cache:       cache,
		planner:     planner,
		coordinator: NewCoordinator(registry),
		history:     history,
		telemetry:   collector,
	}
}

// Sessions exposes the session store for inspection endpoints.
func (e *Engine) Sessions() *SessionStore {
	return e.sessions
}

// HandleTurn runs one complete user-message-to-reply cycle. Turns for the
// same user are serialized; turns for different users run independently.
// The caller bounds the turn with the context deadline; a timeout is a
// stage error feeding the fallback path. The user always receives a
// reply, never a raw error.
func (e *Engine) HandleTurn(ctx context.Context, userID, message string) *TurnResult {
	sess := e.sessions.Get(userID)
	sess.turnMu.Lock()
	defer sess.turnMu.Unlock()
	sess.touch()

	t := &turn{userID: userID, message: message}
	logging.Session("Turn start: user=%s session=%s", userID, sess.ID)

	e.runStage(StageLoadProfile, t, func() error {
		profile, err := e.profiles.Load(userID)
		if err != nil {
			return err
		}
		t.profile = profile
		return nil
	})

	e.runStage(StageRefreshContext, t, func() error {
		checkins, lastRefresh, hit, err := e.cache.GetOrRefresh(userID, false)
		if err != nil {
			return err
		}
		t.checkins = checkins
		t.lastRefresh = lastRefresh
		if hit {
			logging.SessionDebug("Context served from cache for %s", userID)
		}
		return nil
	})

	if sess.State() == StateAwaitingConfirmation {
		e.resumeConfirmation(ctx, sess, t)
	} else {
		e.planAndExecute(ctx, sess, t)
	}

	return e.finalize(sess, t)
}

// planAndExecute is the PLAN stage plus its conditional TOOLS branch.
func (e *Engine) planAndExecute(ctx context.Context, sess *Session, t *turn) {
	e.runStage(StagePlan, t, func() error {
		draft, invocations, err := e.planner.Plan(ctx, t, sess.History())
		if err != nil {
			return err
		}
		t.draft = draft
		t.invocations = invocations
		return nil
	})

	// A model failure is recovered locally: canned reply, no invocations,
	// but the turn error stays set for the caller.
	if errors.Is(t.err, ErrModelCall) {
		t.draft = FallbackReply
		t.invocations = nil
	}

	if len(t.invocations) == 0 || t.err != nil {
		t.reply = t.draft
		return
	}

	e.runStage(StageTools, t, func() error {
		if e.coordinator.NeedsConfirmation(t.invocations) {
			// Nothing executes this turn; the draft should already ask
			// for the missing value.
			e.coordinator.Defer(sess, t.invocations)
			t.reply = t.draft
			return nil
		}

		records, actions := e.coordinator.ExecuteBatch(ctx, t.userID, t.invocations)
		t.toolCalls = records
		t.actions = actions
		t.reply = e.planner.FoldResults(ctx, t, summarizeRecords(records, nil))
		return nil
	})
}

// resumeConfirmation closes an open confirmation cycle: one extraction
// attempt over the new message, then execute what became complete and drop
// the rest. No model call on this path; the reply is built from tool
// outcomes.
func (e *Engine) resumeConfirmation(ctx context.Context, sess *Session, t *turn) {
	if t.err != nil {
		// The cycle still closes so a broken turn cannot wedge the session.
		sess.takePending()
		return
	}

	e.runStage(StageTools, t, func() error {
		ready, dropped := e.coordinator.Resume(sess, t.message)

		var records []ToolCallRecord
		var actions []string
		if len(ready) > 0 {
			records, actions = e.coordinator.ExecuteBatch(ctx, t.userID, ready)
		}
		t.toolCalls = records
		t.actions = actions

		reply := summarizeRecords(records, dropped)
		if reply == "" {
			reply = "Nothing was recorded. Tell me again with the details and I'll log it."
		}
		t.reply = reply
		return nil
	})
}

// finalize always runs: it persists the turn halves, updates the session
// window, and shapes the outward result. On an error turn it persists
// whatever partial state exists and emits a safe reply.
func (e *Engine) finalize(sess *Session, t *turn) *TurnResult {
	var result *TurnResult
	e.runStage(StageFinalize, t, func() error {
		if t.reply == "" {
			if errors.Is(t.err, ErrUserNotFound) {
				t.reply = notFoundReply
			} else {
				t.reply = FallbackReply
			}
		}

		now := time.Now()
		if err := e.history.AppendHistory(t.userID, now, "user", t.message); err != nil {
			logging.Get(logging.CategorySession).Error("Persisting user turn failed: %v", err)
		}
		if err := e.history.AppendHistory(t.userID, now, "assistant", t.reply); err != nil {
			logging.Get(logging.CategorySession).Error("Persisting assistant turn failed: %v", err)
		}
		sess.AppendTurn(t.message, t.reply)

		result = &TurnResult{
			Reply:     t.reply,
			Actions:   t.actions,
			ToolCalls: t.toolCalls,
			Err:       t.err,
		}
		return nil
	})

	logging.Session("Turn end: user=%s actions=%d err=%v", t.userID, len(t.actions), t.err)
	return result
}

// runStage executes one stage with telemetry, skipping it when a prior
// stage already failed. Finalize never arrives here with a skip because
// its closure ignores t.err.
func (e *Engine) runStage(stage string, t *turn, fn func() error) {
	if t.err != nil && stage != StageFinalize {
		return
	}

	start := time.Now()
	err := fn()
	e.telemetry.RecordStage(stage, time.Since(start), err != nil)
	if err != nil {
		t.err = err
		logging.Get(logging.CategorySession).Error("Stage %s failed for %s: %v", stage, t.userID, err)
	}
}

// InvalidateContext drops the user's cached checkins so the next turn sees
// out-of-band writes immediately.
func (e *Engine) InvalidateContext(userID string) {
	e.cache.Invalidate(userID)
}
