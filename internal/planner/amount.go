package planner

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LamportsPerSOL is the fixed subunit ratio of the chain asset.
const LamportsPerSOL = 1_000_000_000

// FromLamports converts an integer lamport amount to SOL.
func FromLamports(lamports int64) decimal.Decimal {
	return decimal.New(lamports, -9)
}

// ToLamports converts a SOL amount to lamports, truncating sub-lamport dust.
func ToLamports(sol decimal.Decimal) int64 {
	return sol.Shift(9).IntPart()
}

// CoerceAmount parses an arbitrary value into a non-negative SOL amount.
// Numbers, numeric strings and lamport-scale integer strings are all accepted;
// anything missing, unparseable, zero or negative yields def. It never errors.
func CoerceAmount(value any, def decimal.Decimal) decimal.Decimal {
	lamports := ParseAmountLamports(value)
	if lamports <= 0 {
		return def
	}
	return FromLamports(lamports)
}

// ParseAmountLamports interprets a loosely-typed amount as lamports.
//
// Tie-break for ambiguous inputs: a digit-only string of 5 or more characters
// is taken to already be lamports ("1500000000" is 1.5 SOL), while anything
// with a decimal point or fewer digits is SOL ("1.5" is 1.5 SOL). Whole
// numeric values larger than one SOL's worth of lamports are treated the same
// way. Unparseable input yields 0, never an error.
func ParseAmountLamports(value any) int64 {
	switch v := value.(type) {
	case nil:
		return 0
	case bool:
		return 0
	case int:
		return intAmountLamports(int64(v))
	case int64:
		return intAmountLamports(v)
	case float64:
		d := decimal.NewFromFloat(v)
		if d.IsInteger() && d.Abs().GreaterThan(decimal.NewFromInt(LamportsPerSOL)) {
			return d.IntPart()
		}
		return ToLamports(d)
	case decimal.Decimal:
		return ToLamports(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		if isDigits(s) && len(s) >= 5 {
			d, err := decimal.NewFromString(s)
			if err != nil {
				return 0
			}
			return d.IntPart()
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0
		}
		return ToLamports(d)
	default:
		return 0
	}
}

func intAmountLamports(v int64) int64 {
	// A bare integer above one SOL's lamports is assumed to be lamports.
	if v > LamportsPerSOL || v < -LamportsPerSOL {
		return v
	}
	return v * LamportsPerSOL
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
