package planner

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Loose coercion helpers. The raw plan is whatever the LLM produced, so every
// field access goes through one of these instead of a type assertion that
// could panic.

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asBool(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func safeInt(v any, def int64) int64 {
	switch t := v.(type) {
	case bool:
		return def
	case int:
		return int64(t)
	case int64:
		return t
	case float64:
		return int64(t)
	case decimal.Decimal:
		return t.IntPart()
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return def
		}
		return d.IntPart()
	default:
		return def
	}
}

func safeDecimal(v any) decimal.Decimal {
	switch t := v.(type) {
	case bool:
		return decimal.Zero
	case int:
		return decimal.NewFromInt(int64(t))
	case int64:
		return decimal.NewFromInt(t)
	case float64:
		return decimal.NewFromFloat(t)
	case decimal.Decimal:
		return t
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func stringList(v any) []string {
	var out []string
	switch t := v.(type) {
	case []string:
		return t
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range t {
			switch it := item.(type) {
			case string:
				if s := strings.TrimSpace(it); s != "" {
					out = append(out, s)
				}
			case float64, int, int64:
				out = append(out, fmt.Sprint(it))
			}
		}
	}
	return out
}
