package render

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"goblin_bot/internal/models"
)

func samplePlan() models.ExecReadyPlan {
	return models.ExecReadyPlan{
		Goal:  "grow the stack quietly",
		Frame: "CSA",
		Options: []models.Option{
			{Name: "Conservative", Strategy: "stake SOL with jito"},
			{Name: "Standard", Strategy: "BALANCE → QUOTE → SWAP"},
			{Name: "Aggressive", Rationale: "momentum rotation into trending tokens"},
		},
		Sizing: models.Sizing{FinalSOL: decimal.RequireFromString("0.250")},
	}
}

func TestPlan_LayoutAndDisclaimer(t *testing.T) {
	out := Plan(samplePlan())

	if !strings.HasPrefix(out, "⚠️ DISCLAIMER - NOT FINANCIAL ADVICE") {
		t.Error("disclaimer must lead the message")
	}
	if !strings.Contains(out, "🧠 Goal: grow the stack quietly") {
		t.Error("goal header missing")
	}
	if !strings.Contains(out, "3 strategies generated") {
		t.Error("strategy count missing")
	}
	if !strings.Contains(out, "Using ~0.25 SOL") {
		t.Errorf("size not trimmed of trailing zeros:\n%s", out)
	}
	if !strings.Contains(out, "Conservative · Standard · Aggressive") {
		t.Error("CSA abbreviation should be expanded")
	}

	for _, line := range strings.Split(out, "\n") {
		if len([]rune(line)) > 82 {
			t.Errorf("line too long (%d runes): %q", len([]rune(line)), line)
		}
	}
}

func TestPlan_DefaultRisks(t *testing.T) {
	out := Plan(samplePlan())
	if !strings.Contains(out, "Market volatility") {
		t.Error("default risks should appear when plan has none")
	}
}

func TestPlan_StrategyEmojis(t *testing.T) {
	out := Plan(samplePlan())
	if !strings.Contains(out, "🌱 Conservative") {
		t.Errorf("staking option should get the staking emoji:\n%s", out)
	}
	if !strings.Contains(out, "📈 Aggressive") {
		t.Errorf("momentum option should get the momentum emoji:\n%s", out)
	}
}

func TestClampLine_WordBoundary(t *testing.T) {
	long := strings.Repeat("volatility ", 12)
	out := clampLine(long)
	if len([]rune(out)) > maxLineChars {
		t.Errorf("clamped line still too long: %d", len([]rune(out)))
	}
	if !strings.HasSuffix(out, "…") {
		t.Error("clamped line should end with ellipsis")
	}
}

func TestBalance_ShortensAddress(t *testing.T) {
	snap := models.WalletSnapshot{
		SOLBalance: decimal.RequireFromString("0.42"),
		Lamports:   420_000_000,
	}
	out := Balance("GoBLiNWaLLeT1111111111111111111111111111111", snap)
	if !strings.Contains(out, "GoBL…1111") {
		t.Errorf("address not shortened: %s", out)
	}
	if !strings.Contains(out, "0.4200 SOL") {
		t.Errorf("balance missing: %s", out)
	}
}

func TestQuote_Render(t *testing.T) {
	out := Quote(models.SwapQuote{
		InToken:        "SOL",
		OutToken:       "USDC",
		InAmount:       decimal.RequireFromString("0.25"),
		OutAmount:      decimal.RequireFromString("41.5"),
		PriceImpactPct: decimal.RequireFromString("0.0012"),
		Route:          []string{"Orca", "Raydium"},
	})
	if !strings.Contains(out, "SOL → USDC") || !strings.Contains(out, "Orca → Raydium") {
		t.Errorf("quote render incomplete:\n%s", out)
	}
}
