// Package render formats assembled plans for chat. The layout follows the
// bot's design system: disclaimer first, emoji section headers, lines clamped
// to 80 chars so mobile Telegram doesn't wrap mid-word.
package render

import (
	"fmt"
	"strings"

	"goblin_bot/internal/models"
)

const maxLineChars = 80

var abbrevMap = []struct{ from, to string }{
	{"CSA", "Conservative · Standard · Aggressive"},
	{"LSD", "liquid staking"},
	{"APR", "annual percentage rate"},
	{"TVL", "total value locked"},
	{"DeFi", "decentralized finance"},
	{"defi", "decentralized finance"},
}

var defaultRisks = []string{
	"Market volatility",
	"Protocol risk (staking/contracts)",
	"Stablecoin depeg (USDC/USDT)",
	"Slippage or price impact if liquidity is low",
}

// Plan renders the chat-facing plan summary.
func Plan(plan models.ExecReadyPlan) string {
	var lines []string

	lines = append(lines, "⚠️ DISCLAIMER - NOT FINANCIAL ADVICE", "")
	lines = append(lines, "🧠 Goal: "+plan.Goal, "")

	lines = append(lines, "📋 Plan Summary")
	lines = append(lines, clampLine(fmt.Sprintf("- 📦 %d strategies generated", len(plan.Options))))
	lines = append(lines, clampLine(fmt.Sprintf("- 🪙 Using ~%s SOL (after buffer)", fmtSize(plan.Sizing.FinalSOL))))
	lines = append(lines, clampLine("- 🧭 Frame: "+ExpandAbbrev(plan.Frame)), "")

	lines = append(lines, "🚀 Strategies")
	for i, opt := range plan.Options {
		if i >= 3 {
			break
		}
		name := strings.TrimSpace(opt.Name)
		if name == "" {
			name = "Strategy"
		}
		if len(name) > 40 {
			name = strings.TrimSpace(name[:40])
		}
		why := ExpandAbbrev(firstNonEmpty(opt.Strategy, opt.Rationale, opt.Bucket))
		lines = append(lines, clampLine(fmt.Sprintf("- %s %s: %s", strategyEmoji(name+" "+why), name, shortenWords(why, 12))))
	}
	lines = append(lines, "")

	lines = append(lines, "⚠️ Risks")
	risks := plan.Risks
	if len(risks) == 0 {
		risks = defaultRisks
	}
	for i, r := range risks {
		if i >= 4 {
			break
		}
		lines = append(lines, clampLine("- "+r))
	}

	lines = append(lines, "", "▶️ Tap a button below to execute, or /plan again to rethink")

	return strings.Join(lines, "\n")
}

// Quote renders a swap quote.
func Quote(q models.SwapQuote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💱 *%s → %s*\n", q.InToken, q.OutToken)
	fmt.Fprintf(&b, "In: %s %s\n", fmtSize(q.InAmount), q.InToken)
	fmt.Fprintf(&b, "Out: %s %s\n", fmtSize(q.OutAmount), q.OutToken)
	fmt.Fprintf(&b, "Price impact: %s%%\n", q.PriceImpactPct.StringFixed(4))
	if len(q.Route) > 0 {
		fmt.Fprintf(&b, "Route: %s", strings.Join(q.Route, " → "))
	}
	return b.String()
}

// Balance renders a wallet snapshot.
func Balance(address string, snap models.WalletSnapshot) string {
	short := address
	if len(short) > 8 {
		short = short[:4] + "…" + short[len(short)-4:]
	}
	return fmt.Sprintf("👛 Wallet `%s`\n💰 %s SOL (%d lamports)", short, snap.SOLBalance.StringFixed(4), snap.Lamports)
}

// ExpandAbbrev spells out the jargon the model likes to emit.
func ExpandAbbrev(text string) string {
	for _, a := range abbrevMap {
		text = strings.ReplaceAll(text, a.from, a.to)
	}
	return text
}

// clampLine trims a line to maxLineChars on a word boundary with an ellipsis.
func clampLine(text string) string {
	s := strings.TrimSpace(text)
	if len([]rune(s)) <= maxLineChars {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:maxLineChars-1])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

func shortenWords(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ")
}

func fmtSize(v fmt.Stringer) string {
	s := v.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

func strategyEmoji(key string) string {
	k := strings.ToLower(key)
	switch {
	case containsAny(k, "stake", "staking", "yield", "jito", "msol", "bsol", "stsol"):
		return "🌱"
	case containsAny(k, "usdc", "bluechip", "stable"):
		return "💎"
	case containsAny(k, "momentum", "trend", "narrative", "pump"):
		return "📈"
	case containsAny(k, "arbitrage", "rotation", "hedge"):
		return "🔀"
	case containsAny(k, "defensive", "riskoff", "hold"):
		return "🛡️"
	default:
		return "🧪"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
