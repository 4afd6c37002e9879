// Package nlp rewrites natural phrasing like "swap 0.1 sol to usdc" into the
// slash commands the bot already understands. Anything that doesn't match a
// pattern passes through untouched.
package nlp

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reQuote   = regexp.MustCompile(`(?i)^\s*quote\s+([\d.]+)\s+(\w+)\s+to\s+(\w+)\s*$`)
	reSwap    = regexp.MustCompile(`(?i)^\s*swap\s+([\d.]+)\s+(\w+)\s+to\s+(\w+)\s*$`)
	reStake   = regexp.MustCompile(`(?i)^\s*stake\s+([\d.]+)\s+(\w+)\s*$`)
	reUnstake = regexp.MustCompile(`(?i)^\s*unstake\s+([\d.]+)\s+(\w+)\s*$`)
	rePlan    = regexp.MustCompile(`(?i)^\s*plan\s+(.+)$`)
)

// Rewrite maps free text to a slash command when a pattern matches. The
// second return reports whether a rewrite happened.
func Rewrite(text string) (string, bool) {
	if m := reQuote.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("/quote %s %s %s", strings.ToUpper(m[2]), strings.ToUpper(m[3]), m[1]), true
	}
	if m := reSwap.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("/swap %s %s %s", strings.ToUpper(m[2]), strings.ToUpper(m[3]), m[1]), true
	}
	if m := reStake.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("/stake %s %s", strings.ToUpper(m[2]), m[1]), true
	}
	if m := reUnstake.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("/unstake %s %s", strings.ToUpper(m[2]), m[1]), true
	}
	if m := rePlan.FindStringSubmatch(text); m != nil {
		return "/plan " + strings.TrimSpace(m[1]), true
	}
	return text, false
}
