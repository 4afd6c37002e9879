package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"goblin_bot/internal/models"
)

const systemPrompt = `You are Goblin, a degen-but-careful Solana portfolio assistant.
Given a user goal, the wallet state and the risk policy, respond with a single JSON
object shaped like:
{
  "understanding": {"goal_rewrite": "...", "horizon_days": 30},
  "summary": "...",
  "frame": "CSA",
  "options": [
    {"name": "Conservative", "strategy": "...", "rationale": "...",
     "tradeoffs": {"pros": ["..."], "cons": ["..."]},
     "plan": [{"verb": "balance|quote|swap|stake|unstake", "params": {}, "why": "..."}]},
    {"name": "Standard", ...},
    {"name": "Aggressive", ...}
  ],
  "baseline": {"name": "Hold SOL", "rationale": "..."},
  "risks": ["..."],
  "sizing": {"desired_sol": 0.1}
}
Amounts are in SOL unless a key says lamports. Never exceed the policy hard cap.
Only use whitelisted protocols. No prose outside the JSON.`

// Client wraps the OpenAI chat API for plan generation.
type Client struct {
	api   *openai.Client
	model string
}

func NewClient(apiKey, model string) *Client {
	if apiKey == "" {
		log.Println("WARNING: OPENAI_API_KEY not found. Plan generation will fail.")
	}
	return &Client{
		api:   openai.NewClient(apiKey),
		model: model,
	}
}

// GeneratePlan asks the model for a raw plan for the given goal. The result is
// deliberately loose: whatever JSON comes back is handed to the planner, which
// tolerates missing or malformed fields.
func (c *Client) GeneratePlan(ctx context.Context, goal string, wallet models.WalletSnapshot, policy models.Policy) (map[string]any, error) {
	userMsg := fmt.Sprintf(
		"Goal: %s\nWallet: %s SOL (%d lamports)\nPolicy: hard cap %s SOL, fee buffer %s SOL, default size %s SOL, protocols %s, max %d actions per path.",
		goal,
		wallet.SOLBalance.StringFixed(4), wallet.Lamports,
		policy.HardCapSOL, policy.MinFeeBufferSOL, policy.AutoMicroSOL,
		strings.Join(policy.AllowedProtocols, ", "), policy.MaxActions,
	)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("plan generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in AI response")
	}

	raw := resp.Choices[0].Message.Content
	plan := ParsePlanJSON(raw)
	stampActions(plan)
	return plan, nil
}

// ParsePlanJSON turns model output into a plan map. Code fences and leading
// prose are stripped; if no JSON object can be recovered the raw text becomes
// the plan summary so the planner's prose fallback still produces options.
func ParsePlanJSON(raw string) map[string]any {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}
	if i := strings.Index(text, "{"); i > 0 {
		text = text[i:]
	}

	var plan map[string]any
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		log.Printf("⚠️ AI returned non-JSON plan, falling back to summary-only: %v", err)
		return map[string]any{"summary": strings.TrimSpace(raw)}
	}
	return plan
}

// stampActions adds a timestamp to root-level actions that lack one, so the
// journal keeps a stable record of when the model proposed them.
func stampActions(plan map[string]any) {
	actions, ok := plan["actions"].([]any)
	if !ok {
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, a := range actions {
		if m, ok := a.(map[string]any); ok {
			if _, ok := m["timestamp"]; !ok {
				m["timestamp"] = now
			}
		}
	}
}
