package planner

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"goblin_bot/internal/models"
)

const defaultFrame = "CSA"
const defaultHorizonDays = 30
const defaultOptionName = "Standard"

// Assemble combines the raw LLM plan and the wallet snapshot into an
// execution-ready plan. It never fails: every extraction degrades to a
// documented default, so even a nil raw plan yields a structurally valid
// result with three options and a leading balance action.
func Assemble(goal string, rawPlan any, wallet models.WalletSnapshot, policy models.Policy) models.ExecReadyPlan {
	planData := asMap(rawPlan)

	balanceLamports := wallet.Lamports
	if balanceLamports == 0 {
		balanceLamports = ToLamports(wallet.SOLBalance)
	}

	feeBuffer := ToLamports(policy.MinFeeBufferSOL)
	hardCap := ToLamports(policy.HardCapSOL)

	desired := extractDesiredLamports(planData)
	if desired <= 0 {
		// No usable desire anywhere in the plan: size to the full envelope
		// and let balance and cap decide.
		desired = hardCap
	}
	final := DecideSize(balanceLamports, desired, feeBuffer, hardCap)

	sizing := models.Sizing{
		DesiredLamports: desired,
		DesiredSOL:      FromLamports(desired),
		FinalLamports:   final,
		FinalSOL:        FromLamports(final),
		BuffersLamports: feeBuffer,
	}

	// Each option gets a fresh budget: it is sized as if it were the only
	// one executed, against the full affordable balance.
	affordable := balanceLamports - feeBuffer
	if affordable < 0 {
		affordable = 0
	}
	budget := FromLamports(affordable)

	drafts := NormalizeOptions(planData["options"])
	options := make([]models.Option, 0, len(drafts))
	for _, draft := range drafts {
		options = append(options, models.Option{
			Name:      draft.Name,
			Bucket:    draft.Bucket,
			Strategy:  draft.Strategy,
			Rationale: draft.Rationale,
			Tradeoffs: draft.Tradeoffs,
			Plan: SanitizeActions(draft.Plan, budget, policy.HardCapSOL,
				policy.AutoMicroSOL, policy.MaxActions, policy.Chain),
		})
	}

	defaultOpt := pickDefaultOption(options, asString(planData["default_option"]))

	goalText := resolveGoal(goal, planData)
	summary := strings.TrimSpace(asString(planData["summary"]))
	frame := strings.TrimSpace(asString(planData["frame"]))
	if frame == "" {
		frame = defaultFrame
	}
	risks := stringList(planData["risks"])

	baseline := asMap(planData["baseline"])
	if baseline == nil {
		baseline = map[string]any{"name": "Hold SOL"}
	}

	simulation := asMap(planData["simulation"])
	horizon := int(safeInt(simulation["horizon_days"], safeInt(planData["horizon_days"], defaultHorizonDays)))
	if horizon <= 0 {
		horizon = defaultHorizonDays
	}

	plan := models.ExecReadyPlan{
		Goal:         goalText,
		Summary:      summary,
		Frame:        frame,
		Options:      options,
		Baseline:     baseline,
		Sizing:       sizing,
		PlaybackText: buildPlaybackText(goalText, summary, frame, options, risks, sizing.FinalSOL),
		Risks:        risks,
		HorizonDays:  horizon,
		Actions:      defaultOpt.Plan,
		RawPlan:      planData,
	}

	if account := firstNonEmpty(asString(planData["account"]), asString(planData["wallet"])); account != "" {
		plan.Account = account
	}
	return plan
}

// extractDesiredLamports walks the raw plan's known sizing locations in
// priority order and returns the first positive amount found. This is a
// cascade, not an aggregation: later sources are only consulted when every
// earlier one came up empty.
func extractDesiredLamports(plan map[string]any) int64 {
	if plan == nil {
		return 0
	}

	if sizing := asMap(plan["sizing"]); sizing != nil {
		if lamports := safeInt(sizing["desired_lamports"], 0); lamports > 0 {
			return lamports
		}
		if sol := safeDecimal(sizing["desired_sol"]); sol.IsPositive() {
			return ToLamports(sol)
		}
	}

	if budget := asMap(plan["budget"]); budget != nil {
		for _, key := range []string{"per_trade_sol", "per_action_cap_sol", "per_tick_sol"} {
			if sol := safeDecimal(budget[key]); sol.IsPositive() {
				return ToLamports(sol)
			}
		}
	}

	if lamports := amountFromActions(plan["actions"]); lamports > 0 {
		return lamports
	}

	for _, opt := range asSlice(plan["options"]) {
		if lamports := amountFromActions(asMap(opt)["plan"]); lamports > 0 {
			return lamports
		}
	}
	return 0
}

func amountFromActions(actions any) int64 {
	for _, step := range asSlice(actions) {
		params := asMap(asMap(step)["params"])
		if params == nil {
			continue
		}
		if _, ok := params["amountLamports"]; ok {
			if lamports := safeInt(params["amountLamports"], 0); lamports > 0 {
				return lamports
			}
		}
		if lamports := ParseAmountLamports(params["amount"]); lamports > 0 {
			return lamports
		}
	}
	return 0
}

func pickDefaultOption(options []models.Option, requested string) models.Option {
	name := strings.TrimSpace(requested)
	if name == "" {
		name = defaultOptionName
	}
	for _, opt := range options {
		if strings.EqualFold(opt.Name, name) || strings.EqualFold(opt.Bucket, name) {
			return opt
		}
	}
	for _, opt := range options {
		if opt.Bucket == defaultOptionName {
			return opt
		}
	}
	if len(options) > 0 {
		return options[0]
	}
	return models.Option{}
}

func resolveGoal(defaultGoal string, plan map[string]any) string {
	if understanding := asMap(plan["understanding"]); understanding != nil {
		for _, key := range []string{"goal_rewrite", "goal", "summary"} {
			if value := strings.TrimSpace(asString(understanding[key])); value != "" {
				return value
			}
		}
	}
	return defaultGoal
}

// buildPlaybackText renders the one-message briefing shown in chat. It is
// informational output only and is never re-parsed.
func buildPlaybackText(goal, summary, frame string, options []models.Option, risks []string, finalSOL decimal.Decimal) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("*Goal:* %s", goal))
	if summary != "" {
		lines = append(lines, fmt.Sprintf("*Summary:* %s", summary))
	}
	if finalSOL.IsPositive() {
		lines = append(lines, fmt.Sprintf("*Size:* %s SOL after buffers", finalSOL.StringFixed(4)))
	}
	lines = append(lines, fmt.Sprintf("*Frame:* %s (Conservative · Standard · Aggressive)", frame))
	if len(options) > 0 {
		lines = append(lines, "*Paths:*")
		for _, opt := range options {
			lines = append(lines, fmt.Sprintf("• *%s*: %s", opt.Name, opt.Strategy))
			if rationale := strings.TrimSpace(opt.Rationale); rationale != "" {
				lines = append(lines, fmt.Sprintf("  · Why: %s", rationale))
			}
		}
	}
	if len(risks) > 0 {
		lines = append(lines, "*Risks:* "+strings.Join(risks, ", "))
	}
	lines = append(lines, "Simulate before executing")
	return strings.Join(lines, "\n")
}
