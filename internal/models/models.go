package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action verbs understood by the execution service. Anything else coming out
// of the LLM is dropped during sanitization, not rejected with an error.
const (
	VerbBalance = "balance"
	VerbQuote   = "quote"
	VerbSwap    = "swap"
	VerbStake   = "stake"
	VerbUnstake = "unstake"
)

// WalletSnapshot is the balance of the managed wallet at planning time.
// Either field may be populated depending on which RPC shape answered;
// lamports win when both are set.
type WalletSnapshot struct {
	SOLBalance decimal.Decimal `json:"sol_balance"`
	Lamports   int64           `json:"lamports"`
}

// Policy holds the sizing and safety knobs for plan normalization.
// It is passed explicitly into the planner; there is no ambient config state.
type Policy struct {
	AutoMicroSOL      decimal.Decimal `json:"auto_micro_sol"`     // default per-action size when the LLM gave none
	HardCapSOL        decimal.Decimal `json:"hard_cap_sol"`       // absolute ceiling per allocation
	MinFeeBufferSOL   decimal.Decimal `json:"min_fee_buffer_sol"` // balance reserved for fees, never allocated
	AllowedTokens     []string        `json:"allowed_tokens"`     // may contain "*"
	AllowedProtocols  []string        `json:"allowed_protocols"`
	MaxPriceImpactBps int             `json:"max_price_impact_bps"` // advisory, enforced downstream
	MinTokenMcapUSD   decimal.Decimal `json:"min_token_mcap_usd"`   // advisory liquidity filter
	MaxActions        int             `json:"max_actions"`
	Chain             string          `json:"chain"`
}

// DefaultPolicy returns the stock policy used when no env overrides are set.
func DefaultPolicy() Policy {
	return Policy{
		AutoMicroSOL:      decimal.NewFromFloat(0.05),
		HardCapSOL:        decimal.NewFromFloat(0.25),
		MinFeeBufferSOL:   decimal.NewFromFloat(0.003),
		AllowedTokens:     []string{"*"},
		AllowedProtocols:  []string{"jito", "marinade", "solblaze"},
		MaxPriceImpactBps: 200,
		MinTokenMcapUSD:   decimal.NewFromInt(1_000_000),
		MaxActions:        3,
		Chain:             "solana",
	}
}

// RawAction is a single unvalidated step as the LLM proposed it.
type RawAction struct {
	Verb   string         `json:"verb"`
	Params map[string]any `json:"params"`
}

// SanitizedAction is a step that passed the whitelist and clamping rules and
// is safe to hand to the execution service. The amount inside Params (when
// present) is a string-encoded decimal already bounded by cap and budget.
type SanitizedAction struct {
	Verb             string         `json:"verb"`
	Params           map[string]any `json:"params"`
	Why              string         `json:"why,omitempty"`
	Risk             string         `json:"risk,omitempty"`
	RequiresApproval bool           `json:"requires_approval"`
	Timestamp        string         `json:"timestamp"`
	Chain            string         `json:"chain"`
}

// Tradeoffs carries the pros/cons bullets of one option.
type Tradeoffs struct {
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}

// Option is one of the three risk-profile scenarios of a plan.
type Option struct {
	Name      string            `json:"name"`
	Bucket    string            `json:"bucket"` // Conservative, Standard or Aggressive
	Strategy  string            `json:"strategy"`
	Rationale string            `json:"rationale"`
	Tradeoffs Tradeoffs         `json:"tradeoffs"`
	Plan      []SanitizedAction `json:"plan"`
}

// Sizing is the allocation envelope computed from the wallet balance,
// the extracted desired amount and the policy caps.
type Sizing struct {
	DesiredLamports int64           `json:"desired_lamports"`
	DesiredSOL      decimal.Decimal `json:"desired_sol"`
	FinalLamports   int64           `json:"final_lamports"`
	FinalSOL        decimal.Decimal `json:"final_sol"`
	BuffersLamports int64           `json:"buffers_lamports"`
}

// ExecReadyPlan is the normalized output of the planning core. It is always
// structurally valid no matter how malformed the raw LLM plan was.
type ExecReadyPlan struct {
	Goal         string            `json:"goal"`
	Summary      string            `json:"summary"`
	Frame        string            `json:"frame"`
	Options      []Option          `json:"options"`
	Baseline     map[string]any    `json:"baseline"`
	Sizing       Sizing            `json:"sizing"`
	PlaybackText string            `json:"playback_text"`
	Risks        []string          `json:"risks"`
	HorizonDays  int               `json:"horizon_days"`
	Actions      []SanitizedAction `json:"actions"` // mirrors the default option's plan
	Account      string            `json:"account,omitempty"`
	RawPlan      map[string]any    `json:"raw_plan"`
}

// StoredPlan wraps an assembled plan with bot-layer bookkeeping so it can be
// cached per chat and journaled to disk.
type StoredPlan struct {
	ID        string        `json:"id"`
	ChatID    int64         `json:"chat_id"`
	Goal      string        `json:"goal"`
	Plan      ExecReadyPlan `json:"plan"`
	CreatedAt time.Time     `json:"created_at"`
}

// SwapQuote is a normalized Jupiter quote for display.
type SwapQuote struct {
	InToken        string          `json:"in_token"`
	OutToken       string          `json:"out_token"`
	InAmount       decimal.Decimal `json:"in_amount"`
	OutAmount      decimal.Decimal `json:"out_amount"`
	PriceImpactPct decimal.Decimal `json:"price_impact_pct"`
	Route          []string        `json:"route"`
}
