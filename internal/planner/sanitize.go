package planner

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"goblin_bot/internal/models"
)

// DefaultMaxActions bounds how many non-balance actions survive sanitization.
const DefaultMaxActions = 3

const defaultProtocol = "jito"

var allowedVerbs = map[string]bool{
	models.VerbBalance: true,
	models.VerbQuote:   true,
	models.VerbSwap:    true,
	models.VerbStake:   true,
	models.VerbUnstake: true,
}

var monetaryVerbs = map[string]bool{
	models.VerbQuote:   true,
	models.VerbSwap:    true,
	models.VerbStake:   true,
	models.VerbUnstake: true,
}

// approvalVerbs are the state-changing verbs that need an explicit user
// confirmation before the executor may run them.
var approvalVerbs = map[string]bool{
	models.VerbSwap:    true,
	models.VerbStake:   true,
	models.VerbUnstake: true,
}

// SanitizeActions turns an arbitrary proposed action list into a bounded,
// execution-safe sequence. remainingBudget is consumed sequentially: each
// clamped amount shrinks what later actions in the same list may spend.
//
// The returned list always starts with a balance action. Existing balance
// steps are lifted out before the monetary actions are truncated to
// maxActions, then exactly one balance action (the first found, or a
// synthesized one) is prepended, so the result may legitimately hold
// maxActions+1 entries. Running the output through SanitizeActions again with
// the same budget yields the same list.
func SanitizeActions(raw any, remainingBudget, perActionCap, defaultAmount decimal.Decimal, maxActions int, chain string) []models.SanitizedAction {
	if maxActions <= 0 {
		maxActions = DefaultMaxActions
	}

	var kept []models.SanitizedAction
	var balanceAct *models.SanitizedAction

	for _, step := range coerceSteps(raw) {
		verb := strings.ToLower(strings.TrimSpace(asString(step["verb"])))
		if !allowedVerbs[verb] {
			continue // filtering policy, not an error
		}

		params := copyParams(asMap(step["params"]))
		act := models.SanitizedAction{
			Verb:             verb,
			Params:           params,
			Why:              strings.TrimSpace(asString(step["why"])),
			Risk:             strings.TrimSpace(asString(step["risk"])),
			RequiresApproval: asBool(step["requires_approval"], approvalVerbs[verb]),
			Timestamp:        timestampOr(step),
			Chain:            chain,
		}

		switch verb {
		case models.VerbBalance:
			if balanceAct == nil {
				balanceAct = &act
			}
			continue
		case models.VerbQuote, models.VerbSwap:
			if asString(params["in"]) == "" && asString(params["out"]) == "" {
				continue // malformed: nothing to price
			}
		case models.VerbStake, models.VerbUnstake:
			if asString(params["protocol"]) == "" {
				params["protocol"] = defaultProtocol
			}
		}

		kept = append(kept, act)
	}

	if len(kept) > maxActions {
		kept = kept[:maxActions]
	}
	kept = reorderQuoteBeforeSwap(kept)

	// Budget fold runs over the final ordering so later actions see the
	// remainder left by earlier ones.
	remaining := remainingBudget
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	for i := range kept {
		if !monetaryVerbs[kept[i].Verb] {
			continue
		}
		amount := CoerceAmount(kept[i].Params["amount"], defaultAmount)
		if amount.GreaterThan(perActionCap) {
			amount = perActionCap
		}
		if amount.GreaterThan(remaining) {
			amount = remaining
		}
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		remaining = remaining.Sub(amount)
		kept[i].Params["amount"] = amount.String()
	}

	if balanceAct == nil {
		balanceAct = &models.SanitizedAction{
			Verb:             models.VerbBalance,
			Params:           map[string]any{},
			Why:              "Check wallet balance before sizing",
			RequiresApproval: false,
			Timestamp:        nowRFC3339(),
			Chain:            chain,
		}
	}
	return append([]models.SanitizedAction{*balanceAct}, kept...)
}

// reorderQuoteBeforeSwap enforces the pricing invariant: when both verbs are
// present, the first quote must sit at or before the first swap.
func reorderQuoteBeforeSwap(actions []models.SanitizedAction) []models.SanitizedAction {
	swapIdx, quoteIdx := -1, -1
	for i, act := range actions {
		if swapIdx == -1 && act.Verb == models.VerbSwap {
			swapIdx = i
		}
		if quoteIdx == -1 && act.Verb == models.VerbQuote {
			quoteIdx = i
		}
	}
	if swapIdx == -1 || quoteIdx == -1 || quoteIdx < swapIdx {
		return actions
	}

	// Relocate the quote immediately before the swap.
	quote := actions[quoteIdx]
	out := make([]models.SanitizedAction, 0, len(actions))
	out = append(out, actions[:quoteIdx]...)
	out = append(out, actions[quoteIdx+1:]...)
	result := make([]models.SanitizedAction, 0, len(actions))
	result = append(result, out[:swapIdx]...)
	result = append(result, quote)
	result = append(result, out[swapIdx:]...)
	return result
}

// coerceSteps flattens the accepted input shapes into loose maps.
func coerceSteps(raw any) []map[string]any {
	var steps []map[string]any
	appendAction := func(a models.SanitizedAction) {
		steps = append(steps, map[string]any{
			"verb":              a.Verb,
			"params":            a.Params,
			"why":               a.Why,
			"risk":              a.Risk,
			"requires_approval": a.RequiresApproval,
			"timestamp":         a.Timestamp,
		})
	}

	switch t := raw.(type) {
	case nil:
		return nil
	case []models.SanitizedAction:
		for _, a := range t {
			appendAction(a)
		}
	case []models.RawAction:
		for _, a := range t {
			steps = append(steps, map[string]any{"verb": a.Verb, "params": a.Params})
		}
	case []map[string]any:
		steps = append(steps, t...)
	case []any:
		for _, item := range t {
			switch it := item.(type) {
			case map[string]any:
				steps = append(steps, it)
			case models.SanitizedAction:
				appendAction(it)
			case models.RawAction:
				steps = append(steps, map[string]any{"verb": it.Verb, "params": it.Params})
			}
		}
	}
	return steps
}

func copyParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

// timestampOr keeps an existing timestamp so re-sanitizing a list is stable.
func timestampOr(step map[string]any) string {
	if ts := strings.TrimSpace(asString(step["timestamp"])); ts != "" {
		return ts
	}
	return nowRFC3339()
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
