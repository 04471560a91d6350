package agent

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/logging"
)

// Tool-call directives are embedded in the model's reply as
// [TOOL_CALL]{"tool": "...", "args": {...}}[/TOOL_CALL] blocks. The reply
// text around and between directives is the draft reply shown to the user.
var toolCallPattern = regexp.MustCompile(`(?s)\[TOOL_CALL\](.*?)\[/TOOL_CALL\]`)

// parseDirectives extracts tool invocations from a raw model reply and
// returns the reply with the directive blocks stripped. Malformed payloads
// get one best-effort repair pass; directives that still fail to parse are
// dropped with a warning, never fatal.
func parseDirectives(raw string) (string, []*ToolInvocation) {
	matches := toolCallPattern.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return strings.TrimSpace(raw), nil
	}

	var invocations []*ToolInvocation
	for _, m := range matches {
		payload := strings.TrimSpace(m[1])
		inv, ok := parsePayload(payload)
		if !ok {
			logging.PlanWarn("Dropping unparseable tool directive: %.120s", payload)
			continue
		}
		if inv.Tool == "" {
			logging.PlanWarn("Dropping tool directive with empty tool name")
			continue
		}
		if inv.Args == nil {
			inv.Args = make(map[string]any)
		}
		invocations = append(invocations, inv)
	}

	reply := toolCallPattern.ReplaceAllString(raw, "")
	return strings.TrimSpace(reply), invocations
}

func parsePayload(payload string) (*ToolInvocation, bool) {
	var inv ToolInvocation
	if err := json.Unmarshal([]byte(payload), &inv); err == nil {
		return &inv, true
	}

	repaired := repairJSON(payload)
	if err := json.Unmarshal([]byte(repaired), &inv); err != nil {
		return nil, false
	}
	logging.PlanDebug("Repaired malformed tool directive payload")
	return &inv, true
}

var trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)

// repairJSON applies a best-effort fix for the two malformations models
// actually produce: trailing commas and unclosed braces/brackets. It is a
// boundary shim; anything it cannot fix is dropped upstream.
func repairJSON(s string) string {
	s = strings.TrimSpace(s)
	s = trailingCommaPattern.ReplaceAllString(s, "$1")

	// Balance braces and brackets, ignoring characters inside strings.
	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			stack = append(stack, '}')
		case c == '[':
			stack = append(stack, ']')
		case c == '}' || c == ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if inString {
		s += `"`
	}
	for i := len(stack) - 1; i >= 0; i-- {
		s += string(stack[i])
	}
	return s
}
