package planner

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"goblin_bot/internal/models"
)

func wallet(sol string) models.WalletSnapshot {
	d, _ := decimal.NewFromString(sol)
	return models.WalletSnapshot{SOLBalance: d}
}

func TestAssemble_HardCapBound(t *testing.T) {
	// Balance 0.42, no explicit sizing anywhere: the envelope defaults to
	// min(0.42 - 0.003, 0.25) and the hard cap wins.
	plan := map[string]any{"summary": "grow the stack"}
	out := Assemble("grow 1 SOL", plan, wallet("0.42"), models.DefaultPolicy())

	if out.Sizing.FinalLamports != 250_000_000 {
		t.Errorf("final lamports = %d, want 250000000 (hard cap)", out.Sizing.FinalLamports)
	}
	if !out.Sizing.FinalSOL.Equal(decimal.NewFromFloat(0.25)) {
		t.Errorf("final SOL = %s, want 0.25", out.Sizing.FinalSOL)
	}
}

func TestAssemble_BalanceBound(t *testing.T) {
	plan := map[string]any{
		"sizing": map[string]any{"desired_sol": 0.25},
	}
	out := Assemble("grow", plan, wallet("0.1"), models.DefaultPolicy())

	if out.Sizing.FinalLamports != 97_000_000 {
		t.Errorf("final lamports = %d, want 97000000 (balance - buffer)", out.Sizing.FinalLamports)
	}
}

func TestAssemble_DesiredCascade(t *testing.T) {
	cases := []struct {
		name     string
		plan     map[string]any
		expected int64
	}{
		{
			"explicit lamports win",
			map[string]any{
				"sizing": map[string]any{"desired_lamports": 120_000_000, "desired_sol": 0.9},
				"budget": map[string]any{"per_trade_sol": 0.5},
			},
			120_000_000,
		},
		{
			"budget keys next",
			map[string]any{
				"budget": map[string]any{"per_trade_sol": 0.08},
			},
			80_000_000,
		},
		{
			"root actions next",
			map[string]any{
				"actions": []any{
					map[string]any{"verb": "swap", "params": map[string]any{"amount": "0.07"}},
				},
			},
			70_000_000,
		},
		{
			"amountLamports preferred inside actions",
			map[string]any{
				"actions": []any{
					map[string]any{"verb": "swap", "params": map[string]any{"amountLamports": 60_000_000.0, "amount": "0.9"}},
				},
			},
			60_000_000,
		},
		{
			"first option plan last",
			map[string]any{
				"options": []any{
					map[string]any{"plan": []any{
						map[string]any{"verb": "stake", "params": map[string]any{"amount": "0.06"}},
					}},
				},
			},
			60_000_000,
		},
		{
			"nothing found defaults to the hard cap",
			map[string]any{},
			250_000_000,
		},
	}

	for _, tc := range cases {
		out := Assemble("goal", tc.plan, wallet("10"), models.DefaultPolicy())
		if out.Sizing.DesiredLamports != tc.expected {
			t.Errorf("%s: desired = %d, want %d", tc.name, out.Sizing.DesiredLamports, tc.expected)
		}
	}
}

func TestAssemble_MalformedOptionsString(t *testing.T) {
	plan := map[string]any{"options": "do something safe"}

	out := Assemble("goal", plan, wallet("0.5"), models.DefaultPolicy())

	if len(out.Options) != 3 {
		t.Fatalf("got %d options, want 3", len(out.Options))
	}
	if out.Options[0].Strategy != "Validate funds first" {
		t.Errorf("first strategy = %q, want validate-funds fallback", out.Options[0].Strategy)
	}
	for _, opt := range out.Options {
		if len(opt.Plan) == 0 || opt.Plan[0].Verb != models.VerbBalance {
			t.Errorf("option %s: sanitized plan does not start with balance", opt.Bucket)
		}
	}
}

func TestAssemble_ToleratesGarbageInput(t *testing.T) {
	// No input shape may panic or produce an invalid structure.
	inputs := []any{
		nil,
		"not a plan at all",
		map[string]any{"options": 42, "risks": true, "sizing": "huge", "budget": []any{1, 2}},
		[]any{"wrong", "shape"},
	}

	for i, in := range inputs {
		out := Assemble("goal", in, models.WalletSnapshot{}, models.DefaultPolicy())
		if len(out.Options) != 3 {
			t.Errorf("case %d: %d options", i, len(out.Options))
		}
		if out.Sizing.FinalLamports != 0 {
			t.Errorf("case %d: final = %d with empty wallet", i, out.Sizing.FinalLamports)
		}
		if len(out.Actions) == 0 || out.Actions[0].Verb != models.VerbBalance {
			t.Errorf("case %d: root actions missing leading balance", i)
		}
		if out.PlaybackText == "" {
			t.Errorf("case %d: empty playback text", i)
		}
	}
}

func TestAssemble_DefaultOptionPromoted(t *testing.T) {
	plan := map[string]any{
		"default_option": "aggressive",
		"options": []any{
			map[string]any{"name": "Careful", "plan": []any{}},
			map[string]any{"name": "Middle", "plan": []any{}},
			map[string]any{"name": "Aggressive", "plan": []any{
				map[string]any{"verb": "stake", "params": map[string]any{"amount": "0.1"}},
			}},
		},
	}
	out := Assemble("goal", plan, wallet("0.5"), models.DefaultPolicy())

	// Root actions mirror the aggressive option: balance + stake.
	if len(out.Actions) != 2 || out.Actions[1].Verb != models.VerbStake {
		t.Errorf("promoted actions = %+v", out.Actions)
	}
}

func TestAssemble_PerOptionBudgetsIndependent(t *testing.T) {
	// Two options each requesting the full affordable balance: both get it,
	// because every option is sized as if it alone were executed.
	plan := map[string]any{
		"options": []any{
			map[string]any{"plan": []any{
				map[string]any{"verb": "stake", "params": map[string]any{"amount": "0.2"}},
			}},
			map[string]any{"plan": []any{
				map[string]any{"verb": "stake", "params": map[string]any{"amount": "0.2"}},
			}},
		},
	}
	out := Assemble("goal", plan, wallet("0.5"), models.DefaultPolicy())

	for i := 0; i < 2; i++ {
		amount := out.Options[i].Plan[1].Params["amount"].(string)
		if amount != "0.2" {
			t.Errorf("option %d amount = %s, want 0.2", i, amount)
		}
	}
}

func TestAssemble_HorizonAndMetadata(t *testing.T) {
	plan := map[string]any{
		"summary":    "Stake and hold",
		"risks":      []any{"volatility", "depeg"},
		"simulation": map[string]any{"horizon_days": 14.0},
		"account":    "GobLiN1111111111111111111111111111111111111",
		"understanding": map[string]any{
			"goal_rewrite": "Grow the wallet to 2 SOL",
		},
	}
	out := Assemble("grow", plan, wallet("0.5"), models.DefaultPolicy())

	if out.HorizonDays != 14 {
		t.Errorf("horizon = %d, want 14", out.HorizonDays)
	}
	if out.Goal != "Grow the wallet to 2 SOL" {
		t.Errorf("goal = %q", out.Goal)
	}
	if out.Account == "" {
		t.Errorf("account not echoed")
	}
	if len(out.Risks) != 2 {
		t.Errorf("risks = %+v", out.Risks)
	}
	if !strings.Contains(out.PlaybackText, "Grow the wallet to 2 SOL") {
		t.Errorf("playback text missing goal: %q", out.PlaybackText)
	}
	if out.Baseline["name"] != "Hold SOL" {
		t.Errorf("baseline default missing: %+v", out.Baseline)
	}
}

func TestAssemble_HorizonDefaults(t *testing.T) {
	for _, plan := range []map[string]any{
		{},
		{"horizon_days": 0},
		{"horizon_days": -5},
		{"simulation": map[string]any{"horizon_days": "soon"}},
	} {
		out := Assemble("goal", plan, wallet("0.5"), models.DefaultPolicy())
		if out.HorizonDays != 30 {
			t.Errorf("horizon for %+v = %d, want 30", plan, out.HorizonDays)
		}
	}
}
