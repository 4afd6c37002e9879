package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"goblin_bot/internal/models"
)

// Buckets are the three fixed risk profiles every plan is normalized into.
var Buckets = [3]string{"Conservative", "Standard", "Aggressive"}

const fallbackStrategy = "Validate funds first"

// OptionDraft is a normalized option whose plan has not been sanitized yet.
// The assembler runs each draft through SanitizeActions with its own budget.
type OptionDraft struct {
	Name      string
	Bucket    string
	Strategy  string
	Rationale string
	Tradeoffs models.Tradeoffs
	Plan      []any
}

// NormalizeOptions coerces the planner's free-form options field into exactly
// three drafts tagged Conservative/Standard/Aggressive in that order. The
// input may be a list of mappings, a list of strings (JSON-encoded or plain
// prose), a bare string, or missing entirely; surplus entries are dropped and
// missing buckets are padded with synthetic placeholders.
func NormalizeOptions(raw any) []OptionDraft {
	sources := asSlice(raw)
	if sources == nil {
		// A bare prose string still counts as one proposed option.
		if s := strings.TrimSpace(asString(raw)); s != "" {
			sources = []any{s}
		}
	}

	drafts := make([]OptionDraft, 0, len(Buckets))
	for idx, bucket := range Buckets {
		var source any
		if idx < len(sources) {
			source = sources[idx]
		}
		drafts = append(drafts, draftOption(source, bucket))
	}
	return drafts
}

func draftOption(source any, bucket string) OptionDraft {
	if s, ok := source.(string); ok {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(s), &parsed); err == nil && parsed != nil {
			source = parsed
		} else {
			// Plain prose: wrap it into a safe scenario that only checks funds.
			return OptionDraft{
				Name:      bucket,
				Bucket:    bucket,
				Strategy:  fallbackStrategy,
				Rationale: strings.TrimSpace(s),
				Plan:      []any{map[string]any{"verb": models.VerbBalance, "params": map[string]any{}}},
			}
		}
	}

	m := asMap(source)
	draft := OptionDraft{
		Name:      strings.TrimSpace(asString(m["name"])),
		Bucket:    bucket,
		Rationale: strings.TrimSpace(asString(m["rationale"])),
		Tradeoffs: models.Tradeoffs{
			Pros: stringList(asMap(m["tradeoffs"])["pros"]),
			Cons: stringList(asMap(m["tradeoffs"])["cons"]),
		},
		Plan: asSlice(m["plan"]),
	}
	if draft.Name == "" {
		draft.Name = bucket
	}

	strategy := firstNonEmpty(
		asString(m["strategy"]),
		asString(m["summary"]),
		asString(m["plan_summary"]),
	)
	if strategy == "" {
		strategy = strategyFromVerbs(draft.Plan)
	}
	if strategy == "" {
		strategy = fmt.Sprintf("%s scenario", bucket)
	}
	draft.Strategy = strategy
	return draft
}

// strategyFromVerbs derives a one-line label from the plan's verbs,
// e.g. "QUOTE → SWAP".
func strategyFromVerbs(plan []any) string {
	var verbs []string
	for _, step := range plan {
		verb := strings.TrimSpace(asString(asMap(step)["verb"]))
		if verb != "" {
			verbs = append(verbs, strings.ToUpper(verb))
		}
	}
	return strings.Join(verbs, " → ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
