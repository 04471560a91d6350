package agent

import "testing"

func TestParseDirectivesExtractsToolAndStripsReply(t *testing.T) {
	raw := "Got it, logging that now.\n[TOOL_CALL]{\"tool\": \"log_weight\", \"args\": {\"weight\": 65.5}}[/TOOL_CALL]"

	reply, invs := parseDirectives(raw)

	if reply != "Got it, logging that now." {
		t.Errorf("reply = %q", reply)
	}
	if len(invs) != 1 {
		t.Fatalf("got %d invocations, want 1", len(invs))
	}
	if invs[0].Tool != "log_weight" {
		t.Errorf("tool = %q", invs[0].Tool)
	}
	if w, ok := invs[0].Args["weight"].(float64); !ok || w != 65.5 {
		t.Errorf("weight arg = %v", invs[0].Args["weight"])
	}
}

func TestParseDirectivesMultipleBlocks(t *testing.T) {
	raw := "[TOOL_CALL]{\"tool\": \"log_weight\", \"args\": {\"weight\": 66}}[/TOOL_CALL]\n" +
		"Both noted.\n" +
		"[TOOL_CALL]{\"tool\": \"log_water\", \"args\": {\"amount\": 500}}[/TOOL_CALL]"

	reply, invs := parseDirectives(raw)

	if reply != "Both noted." {
		t.Errorf("reply = %q", reply)
	}
	if len(invs) != 2 {
		t.Fatalf("got %d invocations, want 2", len(invs))
	}
	if invs[0].Tool != "log_weight" || invs[1].Tool != "log_water" {
		t.Errorf("tools = %q, %q", invs[0].Tool, invs[1].Tool)
	}
}

func TestParseDirectivesNoDirectives(t *testing.T) {
	reply, invs := parseDirectives("  Just keep drinking water through the day.  ")
	if reply != "Just keep drinking water through the day." {
		t.Errorf("reply = %q", reply)
	}
	if invs != nil {
		t.Errorf("invocations = %v, want none", invs)
	}
}

func TestParseDirectivesRepairsTrailingComma(t *testing.T) {
	raw := `[TOOL_CALL]{"tool": "log_weight", "args": {"weight": 65.5,},}[/TOOL_CALL]`

	_, invs := parseDirectives(raw)

	if len(invs) != 1 {
		t.Fatalf("trailing-comma payload should repair, got %d invocations", len(invs))
	}
	if w := invs[0].Args["weight"].(float64); w != 65.5 {
		t.Errorf("weight = %v", w)
	}
}

func TestParseDirectivesRepairsUnclosedBraces(t *testing.T) {
	raw := `[TOOL_CALL]{"tool": "log_meal", "args": {"description": "salad"[/TOOL_CALL]`

	_, invs := parseDirectives(raw)

	if len(invs) != 1 {
		t.Fatalf("unclosed payload should repair, got %d invocations", len(invs))
	}
	if invs[0].Tool != "log_meal" {
		t.Errorf("tool = %q", invs[0].Tool)
	}
	if d := invs[0].Args["description"]; d != "salad" {
		t.Errorf("description = %v", d)
	}
}

func TestParseDirectivesDropsGarbage(t *testing.T) {
	fixtures := []string{
		`[TOOL_CALL]this is not json at all[/TOOL_CALL]`,
		`[TOOL_CALL]{"tool": 42}[/TOOL_CALL]`,
		`[TOOL_CALL]{"args": {"weight": 65}}[/TOOL_CALL]`, // no tool name
		`[TOOL_CALL][/TOOL_CALL]`,
	}
	for _, raw := range fixtures {
		reply, invs := parseDirectives("Noted!\n" + raw)
		if len(invs) != 0 {
			t.Errorf("fixture %q should yield no invocations, got %v", raw, invs)
		}
		if reply != "Noted!" {
			t.Errorf("fixture %q: reply = %q", raw, reply)
		}
	}
}

func TestRepairJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trailing comma", `{"a": 1,}`, `{"a": 1}`},
		{"unclosed object", `{"a": {"b": 2}`, `{"a": {"b": 2}}`},
		{"unclosed array", `{"a": [1, 2`, `{"a": [1, 2]}`},
		{"unclosed string", `{"a": "hi`, `{"a": "hi"}`},
		{"brace inside string untouched", `{"a": "}{"}`, `{"a": "}{"}`},
		{"already valid", `{"a": 1}`, `{"a": 1}`},
	}
	for _, tc := range cases {
		if got := repairJSON(tc.in); got != tc.want {
			t.Errorf("%s: repairJSON(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}
