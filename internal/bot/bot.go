package bot

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"goblin_bot/internal/executor"
	"goblin_bot/internal/logger"
	"goblin_bot/internal/models"
	"goblin_bot/internal/nlp"
	"goblin_bot/internal/planner"
	"goblin_bot/internal/render"
	"goblin_bot/internal/storage"
	"goblin_bot/internal/telegram"
)

// pendingTTL bounds how long a confirm prompt stays valid.
const pendingTTL = 2 * time.Minute

// PlanGenerator produces a raw plan for a goal.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, goal string, wallet models.WalletSnapshot, policy models.Policy) (map[string]any, error)
}

// BalanceProvider reads wallet state.
type BalanceProvider interface {
	Snapshot(ctx context.Context) (models.WalletSnapshot, error)
	Address() string
}

// QuoteProvider fetches swap quotes and spot prices.
type QuoteProvider interface {
	Quote(ctx context.Context, inToken, outToken string, amount decimal.Decimal) (*models.SwapQuote, error)
	Price(ctx context.Context, tokens []string) (map[string]decimal.Decimal, error)
}

// ActionExecutor submits approved actions.
type ActionExecutor interface {
	Execute(ctx context.Context, account string, action models.SanitizedAction) (*executor.Result, error)
}

// PlanCache stores plans between preview and execution.
type PlanCache interface {
	Put(ctx context.Context, plan models.StoredPlan, ttl time.Duration) error
	Get(ctx context.Context, id string) (models.StoredPlan, bool, error)
	Delete(ctx context.Context, id string) error
}

// Sender pushes messages to the chat outside the request/reply cycle.
type Sender interface {
	Notify(text string)
	SendInteractive(text string, rows ...[]telegram.Button)
}

// Bot holds the command logic shared by the Telegram listener and the Slack
// front-end. All state lives behind the mutex; handlers may run concurrently.
type Bot struct {
	ai      PlanGenerator
	wallet  BalanceProvider
	quotes  QuoteProvider
	exec    ActionExecutor
	cache   PlanCache
	sender  Sender
	policy  models.Policy
	chatID  int64
	planTTL time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
}

func New(ai PlanGenerator, wallet BalanceProvider, quotes QuoteProvider, exec ActionExecutor, cache PlanCache, sender Sender, policy models.Policy, chatID int64, planTTL time.Duration) *Bot {
	return &Bot{
		ai:      ai,
		wallet:  wallet,
		quotes:  quotes,
		exec:    exec,
		cache:   cache,
		sender:  sender,
		policy:  policy,
		chatID:  chatID,
		planTTL: planTTL,
		pending: make(map[string]time.Time),
	}
}

// HandleMessage dispatches one inbound message. Free text goes through the
// natural-language rewriter first, then unmatched text is treated as a goal.
func (b *Bot) HandleMessage(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if !strings.HasPrefix(text, "/") {
		rewritten, ok := nlp.Rewrite(text)
		if !ok {
			// Plain chat becomes a planning goal.
			rewritten = "/plan " + text
		}
		text = rewritten
	}

	fields := strings.Fields(text)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	switch cmd {
	case "/start", "/help":
		return helpText
	case "/ping":
		return "🏓 pong"
	case "/balance":
		return b.cmdBalance(ctx)
	case "/quote":
		return b.cmdQuote(ctx, args)
	case "/price":
		return b.cmdPrice(ctx, args)
	case "/swap":
		return b.cmdDirectAction(ctx, models.VerbSwap, args)
	case "/stake":
		return b.cmdDirectAction(ctx, models.VerbStake, args)
	case "/unstake":
		return b.cmdDirectAction(ctx, models.VerbUnstake, args)
	case "/plan":
		return b.cmdPlan(ctx, strings.Join(args, " "))
	case "/config":
		return b.cmdConfig()
	default:
		return "Unknown command. Try /help."
	}
}

func (b *Bot) cmdBalance(ctx context.Context) string {
	snap, err := b.wallet.Snapshot(ctx)
	if err != nil {
		log.Printf("❌ Balance fetch failed: %v", err)
		return "❌ Could not reach the wallet RPC. Try again in a minute."
	}
	return render.Balance(b.wallet.Address(), snap)
}

func (b *Bot) cmdQuote(ctx context.Context, args []string) string {
	if len(args) != 3 {
		return "Usage: /quote <from> <to> <amount>"
	}
	amount, err := decimal.NewFromString(args[2])
	if err != nil || amount.Sign() <= 0 {
		return "Amount must be a positive number."
	}
	quote, err := b.quotes.Quote(ctx, args[0], args[1], amount)
	if err != nil {
		log.Printf("❌ Quote failed: %v", err)
		return fmt.Sprintf("❌ Quote failed: %v", err)
	}
	return render.Quote(*quote)
}

func (b *Bot) cmdPrice(ctx context.Context, args []string) string {
	if len(args) == 0 {
		args = []string{"SOL"}
	}
	prices, err := b.quotes.Price(ctx, args)
	if err != nil {
		log.Printf("❌ Price lookup failed: %v", err)
		return fmt.Sprintf("❌ Price lookup failed: %v", err)
	}
	if len(prices) == 0 {
		return "No prices found for those tokens."
	}

	syms := make([]string, 0, len(prices))
	for sym := range prices {
		syms = append(syms, sym)
	}
	sort.Strings(syms)

	var lines []string
	for _, sym := range syms {
		lines = append(lines, fmt.Sprintf("💲 %s: $%s", sym, prices[sym].StringFixed(4)))
	}
	return strings.Join(lines, "\n")
}

// cmdDirectAction handles /swap, /stake and /unstake: a single-action plan
// that goes through the same sizing and confirm flow as generated plans.
func (b *Bot) cmdDirectAction(ctx context.Context, verb string, args []string) string {
	var params map[string]any
	switch verb {
	case models.VerbSwap:
		if len(args) != 3 {
			return "Usage: /swap <from> <to> <amount>"
		}
		params = map[string]any{"in": args[0], "out": args[1], "amount": args[2]}
	default:
		if len(args) != 2 {
			return fmt.Sprintf("Usage: /%s <token> <amount>", verb)
		}
		params = map[string]any{"token": args[0], "amount": args[1]}
	}

	snap, err := b.wallet.Snapshot(ctx)
	if err != nil {
		log.Printf("❌ Balance fetch failed: %v", err)
		return "❌ Could not reach the wallet RPC. Try again in a minute."
	}

	goal := fmt.Sprintf("%s %s", verb, strings.Join(args, " "))
	raw := map[string]any{
		"summary": goal,
		"options": []any{map[string]any{
			"name": "Standard",
			"plan": []any{map[string]any{"verb": verb, "params": params}},
		}},
	}

	plan := planner.Assemble(goal, raw, snap, b.policy)
	return b.storeAndPreview(ctx, plan, goal)
}

func (b *Bot) cmdPlan(ctx context.Context, goal string) string {
	if strings.TrimSpace(goal) == "" {
		return "Usage: /plan <goal>, e.g. /plan grow 0.2 SOL with low risk"
	}

	snap, err := b.wallet.Snapshot(ctx)
	if err != nil {
		log.Printf("❌ Balance fetch failed: %v", err)
		return "❌ Could not reach the wallet RPC. Try again in a minute."
	}

	plan, err := b.BuildPlan(ctx, goal, snap)
	if err != nil {
		log.Printf("❌ Plan generation failed: %v", err)
		return "❌ The planner is unavailable right now. Try again shortly."
	}

	return b.storeAndPreview(ctx, plan, goal)
}

// BuildPlan runs the full pipeline: model, then sizing and sanitization
// against the live wallet. Shared with the Slack front-end.
func (b *Bot) BuildPlan(ctx context.Context, goal string, snap models.WalletSnapshot) (models.ExecReadyPlan, error) {
	raw, err := b.ai.GeneratePlan(ctx, goal, snap, b.policy)
	if err != nil {
		return models.ExecReadyPlan{}, err
	}
	logger.Debugf("raw plan for %q: %v", goal, raw)
	return planner.Assemble(goal, raw, snap, b.policy), nil
}

// storeAndPreview journals the plan, caches it for execution, and sends the
// preview with one execute button per option.
func (b *Bot) storeAndPreview(ctx context.Context, plan models.ExecReadyPlan, goal string) string {
	stored := models.StoredPlan{
		ID:        newPlanID(),
		ChatID:    b.chatID,
		Goal:      goal,
		Plan:      plan,
		CreatedAt: time.Now().UTC(),
	}

	if err := storage.Append(stored); err != nil {
		log.Printf("⚠️ Journal append failed: %v", err)
	}
	if err := b.cache.Put(ctx, stored, b.planTTL); err != nil {
		log.Printf("⚠️ Plan cache put failed: %v", err)
		return render.Plan(plan) + "\n\n⚠️ Execution unavailable: plan could not be cached."
	}

	var row []telegram.Button
	for i, opt := range plan.Options {
		if len(opt.Plan) == 0 {
			continue
		}
		row = append(row, telegram.Button{
			Text:         "▶️ " + opt.Name,
			CallbackData: fmt.Sprintf("exec:%s:%d", stored.ID, i),
		})
	}

	if b.sender != nil && len(row) > 0 {
		b.sender.SendInteractive(render.Plan(plan), row)
		return ""
	}
	return render.Plan(plan)
}

// HandleCallback processes inline button taps:
// exec:<planID>:<idx> asks for confirmation, confirm/cancel resolve it.
func (b *Bot) HandleCallback(data string) string {
	parts := strings.Split(data, ":")
	if len(parts) != 3 {
		return ""
	}
	kind, planID := parts[0], parts[1]
	optIdx, err := strconv.Atoi(parts[2])
	if err != nil || optIdx < 0 {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	switch kind {
	case "exec":
		return b.askConfirm(ctx, planID, optIdx)
	case "confirm":
		return b.confirmExec(ctx, planID, optIdx)
	case "cancel":
		b.clearPending(planID, optIdx)
		return "🚫 Cancelled. Nothing was executed."
	default:
		return ""
	}
}

func (b *Bot) askConfirm(ctx context.Context, planID string, optIdx int) string {
	stored, opt, errMsg := b.lookupOption(ctx, planID, optIdx)
	if errMsg != "" {
		return errMsg
	}

	b.mu.Lock()
	b.pending[pendingKey(planID, optIdx)] = time.Now().Add(pendingTTL)
	b.mu.Unlock()

	var steps []string
	for _, a := range opt.Plan {
		if amount, ok := a.Params["amount"].(string); ok && amount != "" {
			steps = append(steps, fmt.Sprintf("• %s %s SOL", a.Verb, amount))
		} else {
			steps = append(steps, "• "+a.Verb)
		}
	}
	text := fmt.Sprintf("⚠️ *Confirm execution of %s*\nGoal: %s\n%s\n\nThis will sign real transactions.",
		opt.Name, stored.Goal, strings.Join(steps, "\n"))

	if b.sender != nil {
		b.sender.SendInteractive(text, []telegram.Button{
			{Text: "✅ Confirm", CallbackData: fmt.Sprintf("confirm:%s:%d", planID, optIdx)},
			{Text: "❌ Cancel", CallbackData: fmt.Sprintf("cancel:%s:%d", planID, optIdx)},
		})
		return ""
	}
	return text
}

func (b *Bot) confirmExec(ctx context.Context, planID string, optIdx int) string {
	key := pendingKey(planID, optIdx)

	b.mu.Lock()
	deadline, ok := b.pending[key]
	delete(b.pending, key)
	b.mu.Unlock()

	if !ok || time.Now().After(deadline) {
		return "⌛ Confirmation expired. Tap the plan button again."
	}

	stored, opt, errMsg := b.lookupOption(ctx, planID, optIdx)
	if errMsg != "" {
		return errMsg
	}

	// A plan is single-shot: drop it from the cache before submitting so a
	// double tap cannot replay the same allocation.
	if err := b.cache.Delete(ctx, planID); err != nil {
		log.Printf("⚠️ Plan cache delete failed: %v", err)
	}

	account := stored.Plan.Account
	if account == "" {
		account = b.wallet.Address()
	}

	var lines []string
	for _, action := range opt.Plan {
		if action.Verb == models.VerbBalance {
			continue
		}
		res, err := b.exec.Execute(ctx, account, action)
		if err != nil {
			lines = append(lines, fmt.Sprintf("❌ %s failed: %v", action.Verb, err))
			log.Printf("❌ Execution halted at %s: %v", action.Verb, err)
			break
		}
		lines = append(lines, fmt.Sprintf("✅ %s submitted (%s)", action.Verb, res.Signature))
	}

	if len(lines) == 0 {
		return "Nothing to execute in that path."
	}
	return "*Execution report*\n" + strings.Join(lines, "\n")
}

func (b *Bot) lookupOption(ctx context.Context, planID string, optIdx int) (models.StoredPlan, models.Option, string) {
	stored, ok, err := b.cache.Get(ctx, planID)
	if err != nil {
		log.Printf("⚠️ Plan cache get failed: %v", err)
		return models.StoredPlan{}, models.Option{}, "⚠️ Plan store unavailable. Try /plan again."
	}
	if !ok {
		return models.StoredPlan{}, models.Option{}, "⌛ That plan expired. Run /plan again for fresh sizing."
	}
	if optIdx >= len(stored.Plan.Options) {
		return models.StoredPlan{}, models.Option{}, "⚠️ That option no longer exists."
	}
	return stored, stored.Plan.Options[optIdx], ""
}

func (b *Bot) clearPending(planID string, optIdx int) {
	b.mu.Lock()
	delete(b.pending, pendingKey(planID, optIdx))
	b.mu.Unlock()
}

func (b *Bot) cmdConfig() string {
	p := b.policy
	return fmt.Sprintf(
		"⚙️ *Policy*\nDefault size: %s SOL\nHard cap: %s SOL\nFee buffer: %s SOL\nMax actions/path: %d\nProtocols: %s\nMax price impact: %d bps",
		p.AutoMicroSOL, p.HardCapSOL, p.MinFeeBufferSOL, p.MaxActions,
		strings.Join(p.AllowedProtocols, ", "), p.MaxPriceImpactBps,
	)
}

func pendingKey(planID string, optIdx int) string {
	return fmt.Sprintf("%s:%d", planID, optIdx)
}

func newPlanID() string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("p-%d", time.Now().UnixNano())
	}
	return "p-" + hex.EncodeToString(buf[:])
}

const helpText = `🤖 *Goblin* — balance-aware Solana planning

/plan <goal> — generate sized strategy options
/balance — wallet balance
/quote <from> <to> <amount> — swap quote
/price [tokens...] — spot prices in USD
/swap <from> <to> <amount> — swap with confirmation
/stake <token> <amount> — stake with confirmation
/unstake <token> <amount> — unstake with confirmation
/config — current risk policy
/ping — liveness check

You can also just type: "swap 0.1 sol to usdc" or describe a goal.`
