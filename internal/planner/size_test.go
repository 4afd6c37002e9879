package planner

import "testing"

func TestDecideSize_Bounds(t *testing.T) {
	feeBuffer := int64(3_000_000)   // 0.003 SOL
	hardCap := int64(250_000_000)   // 0.25 SOL

	cases := []struct {
		name     string
		balance  int64
		desired  int64
		expected int64
	}{
		{"capped by hard cap", 420_000_000, 1_000_000_000, 250_000_000},
		{"capped by affordability", 100_000_000, 250_000_000, 97_000_000},
		{"capped by desire", 420_000_000, 50_000_000, 50_000_000},
		{"zero desired", 420_000_000, 0, 0},
		{"negative desired", 420_000_000, -5, 0},
		{"balance below buffer", 1_000_000, 250_000_000, 0},
		{"zero balance", 0, 250_000_000, 0},
	}

	for _, tc := range cases {
		got := DecideSize(tc.balance, tc.desired, feeBuffer, hardCap)
		if got != tc.expected {
			t.Errorf("%s: DecideSize(%d, %d) = %d, want %d", tc.name, tc.balance, tc.desired, got, tc.expected)
		}
	}
}

func TestDecideSize_Monotonicity(t *testing.T) {
	feeBuffer := int64(3_000_000)
	hardCap := int64(250_000_000)

	// For a grid of balances and desires, the result must never exceed any
	// of the three bounds and never go negative.
	balances := []int64{0, 1, 2_999_999, 3_000_000, 50_000_000, 420_000_000, 10_000_000_000}
	desires := []int64{-1, 0, 1, 97_000_000, 250_000_000, 250_000_001, 999_999_999_999}

	for _, balance := range balances {
		for _, desired := range desires {
			got := DecideSize(balance, desired, feeBuffer, hardCap)
			if got < 0 {
				t.Fatalf("DecideSize(%d, %d) went negative: %d", balance, desired, got)
			}
			if got > hardCap {
				t.Errorf("DecideSize(%d, %d) = %d exceeds hard cap", balance, desired, got)
			}
			affordable := balance - feeBuffer
			if affordable < 0 {
				affordable = 0
			}
			if got > affordable {
				t.Errorf("DecideSize(%d, %d) = %d exceeds affordable %d", balance, desired, got, affordable)
			}
			if desired >= 0 && got > desired {
				t.Errorf("DecideSize(%d, %d) = %d exceeds desired", balance, desired, got)
			}
		}
	}
}
