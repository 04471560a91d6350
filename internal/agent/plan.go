package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/llm"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/logging"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/store"
)

// defaultDigestLimit bounds how many recent checkins are embedded in the
// planning prompt when no limit is configured.
const defaultDigestLimit = 10

const planSystemPrompt = `You are a supportive personal health coach. You help the user track weight, meals, exercise, water, and sleep, and you answer questions about their progress.

When the user reports something that should be recorded, emit a tool directive on its own line in this exact form:
[TOOL_CALL]{"tool": "<name>", "args": {...}}[/TOOL_CALL]

Available tools:
- log_weight, args: {"weight": <kg>}
- log_meal, args: {"description": <text>, "meal_type": <breakfast|lunch|dinner|snack>, "calories": <number>}
- log_exercise, args: {"activity": <text>, "duration": <minutes>, "calories_burned": <number>}
- log_water, args: {"amount": <ml>}
- log_sleep, args: {"hours": <number>, "quality": <text>}

Omit optional args you don't know. If a required value is missing from the user's message, still emit the directive with the args you have and ask for the missing value in your reply. Keep replies short, warm, and concrete.`

// Planner turns a user message plus context into a draft reply and zero or
// more proposed tool invocations.
type Planner struct {
	client      llm.Client
	digestLimit int
}

// NewPlanner creates a planner over the given model client. digestLimit
// bounds the checkin digest embedded in the prompt; <=0 uses the default.
func NewPlanner(client llm.Client, digestLimit int) *Planner {
	if digestLimit <= 0 {
		digestLimit = defaultDigestLimit
	}
	return &Planner{client: client, digestLimit: digestLimit}
}

// Plan calls the model once and scans the reply for tool directives.
// A model failure is returned to the caller; the engine converts it into
// the canned fallback with empty invocations.
func (p *Planner) Plan(ctx context.Context, t *turn, history []Message) (string, []*ToolInvocation, error) {
	prompt := p.buildPrompt(t, history)

	raw, err := p.client.CompleteWithSystem(ctx, planSystemPrompt, prompt)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrModelCall, err)
	}

	draft, invocations := parseDirectives(raw)
	logging.Plan("Planned turn for %s: %d invocation(s)", t.userID, len(invocations))
	if draft == "" {
		draft = "Got it."
	}
	return draft, invocations, nil
}

// FoldResults makes the second model call that folds tool outcomes into
// the final reply. On model failure the joined tool summaries stand on
// their own; results were already persisted, so this path never loses data.
func (p *Planner) FoldResults(ctx context.Context, t *turn, summary string) string {
	prompt := fmt.Sprintf("The user said: %q\nYou recorded the following: %s\nConfirm what was recorded in one or two friendly sentences, adding one short relevant remark if natural. Do not emit tool directives.",
		t.message, summary)

	reply, err := p.client.CompleteWithSystem(ctx, planSystemPrompt, prompt)
	if err != nil {
		logging.PlanWarn("Result fold failed, using tool summaries directly: %v", err)
		return summary
	}
	// The fold turn must not propose new work.
	folded, _ := parseDirectives(reply)
	if folded == "" {
		return summary
	}
	return folded
}

func (p *Planner) buildPrompt(t *turn, history []Message) string {
	var b strings.Builder

	b.WriteString("User profile:\n")
	b.WriteString(profileSummary(t.profile))

	b.WriteString("\nRecent checkins:\n")
	b.WriteString(checkinDigest(t.checkins, p.digestLimit))

	if len(history) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, m := range history {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
	}

	b.WriteString("\nUser message: ")
	b.WriteString(t.message)
	return b.String()
}

func profileSummary(p *store.Profile) string {
	if p == nil {
		return "(unknown)\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "- name: %s\n", p.Name)
	if p.Age > 0 {
		fmt.Fprintf(&b, "- age: %d\n", p.Age)
	}
	if p.Gender != "" {
		fmt.Fprintf(&b, "- gender: %s\n", p.Gender)
	}
	if p.HeightCm > 0 {
		fmt.Fprintf(&b, "- height: %.0f cm\n", p.HeightCm)
	}
	if p.TargetWeightKg > 0 {
		fmt.Fprintf(&b, "- target weight: %.1f kg\n", p.TargetWeightKg)
	}
	if p.Goal != "" {
		fmt.Fprintf(&b, "- goal: %s\n", p.Goal)
	}
	return b.String()
}

// checkinDigest renders the most recent checkins grouped by type, newest
// first within each group, bounded overall.
func checkinDigest(checkins []store.Checkin, limit int) string {
	if len(checkins) == 0 {
		return "(none in the last week)\n"
	}

	if len(checkins) < limit {
		limit = len(checkins)
	}
	recent := checkins[:limit]

	groups := make(map[store.CheckinType][]store.Checkin)
	for _, c := range recent {
		groups[c.Type] = append(groups[c.Type], c)
	}

	types := make([]string, 0, len(groups))
	for t := range groups {
		types = append(types, string(t))
	}
	sort.Strings(types)

	var b strings.Builder
	for _, ct := range types {
		fmt.Fprintf(&b, "- %s:\n", ct)
		for _, c := range groups[store.CheckinType(ct)] {
			fmt.Fprintf(&b, "  - %s %s\n", c.Timestamp.Format("Jan 2 15:04"), describeCheckin(c))
		}
	}
	return b.String()
}

func describeCheckin(c store.Checkin) string {
	switch c.Type {
	case store.CheckinWeight:
		return fmt.Sprintf("%.1f kg", num(c.Fields["weight_kg"]))
	case store.CheckinMeal:
		desc, _ := c.Fields["description"].(string)
		if cal := num(c.Fields["calories"]); cal > 0 {
			return fmt.Sprintf("%s (%.0f kcal)", desc, cal)
		}
		return desc
	case store.CheckinExercise:
		activity, _ := c.Fields["activity"].(string)
		return fmt.Sprintf("%s, %.0f min", activity, num(c.Fields["duration_min"]))
	case store.CheckinWater:
		return fmt.Sprintf("%.0f ml", num(c.Fields["amount_ml"]))
	case store.CheckinSleep:
		return fmt.Sprintf("%.1f h", num(c.Fields["hours"]))
	}
	return string(c.Type)
}

func num(v any) float64 {
	f, _ := v.(float64)
	return f
}
