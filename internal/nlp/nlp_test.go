package nlp

import "testing"

func TestRewrite(t *testing.T) {
	cases := []struct {
		in        string
		want      string
		rewritten bool
	}{
		{"quote 0.5 sol to usdc", "/quote SOL USDC 0.5", true},
		{"Swap 1.25 SOL to bonk", "/swap SOL BONK 1.25", true},
		{"stake 0.1 sol", "/stake SOL 0.1", true},
		{"  unstake 2 msol ", "/unstake MSOL 2", true},
		{"plan grow my stack slowly", "/plan grow my stack slowly", true},
		{"PLAN   compound yield  ", "/plan compound yield", true},
		{"swap sol to usdc", "swap sol to usdc", false},
		{"/balance", "/balance", false},
		{"gm", "gm", false},
		{"", "", false},
	}

	for _, c := range cases {
		got, ok := Rewrite(c.in)
		if got != c.want || ok != c.rewritten {
			t.Errorf("Rewrite(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.rewritten)
		}
	}
}
