package ai

import "testing"

func TestParsePlanJSON_CodeFence(t *testing.T) {
	raw := "```json\n{\"summary\": \"stack sats\", \"options\": []}\n```"
	plan := ParsePlanJSON(raw)
	if plan["summary"] != "stack sats" {
		t.Errorf("expected fenced JSON to parse, got %v", plan)
	}
}

func TestParsePlanJSON_LeadingProse(t *testing.T) {
	raw := "Here is your plan: {\"summary\": \"quiet grind\"}"
	plan := ParsePlanJSON(raw)
	if plan["summary"] != "quiet grind" {
		t.Errorf("expected leading prose to be skipped, got %v", plan)
	}
}

func TestParsePlanJSON_GarbageBecomesSummary(t *testing.T) {
	plan := ParsePlanJSON("sorry, I cannot do that")
	if plan["summary"] != "sorry, I cannot do that" {
		t.Errorf("expected raw text as summary fallback, got %v", plan)
	}
}

func TestStampActions_FillsMissingTimestamps(t *testing.T) {
	plan := map[string]any{
		"actions": []any{
			map[string]any{"verb": "stake"},
			map[string]any{"verb": "swap", "timestamp": "2026-01-01T00:00:00Z"},
		},
	}
	stampActions(plan)

	actions := plan["actions"].([]any)
	first := actions[0].(map[string]any)
	if _, ok := first["timestamp"]; !ok {
		t.Error("expected missing timestamp to be stamped")
	}
	second := actions[1].(map[string]any)
	if second["timestamp"] != "2026-01-01T00:00:00Z" {
		t.Error("existing timestamp should be preserved")
	}
}
