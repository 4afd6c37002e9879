package main

import (
	"context"
	"log"
	"time"

	"goblin_bot/internal/ai"
	"goblin_bot/internal/bot"
	"goblin_bot/internal/cache"
	"goblin_bot/internal/config"
	"goblin_bot/internal/executor"
	"goblin_bot/internal/jupiter"
	"goblin_bot/internal/logger"
	"goblin_bot/internal/storage"
	"goblin_bot/internal/telegram"
	"goblin_bot/internal/wallet"
)

func main() {
	cfg := config.Load()
	logger.Setup("goblin_bot.log", cfg.MaxLogSizeMB, cfg.MaxLogBackups, cfg.LogLevel)

	log.Println("🤖 Goblin Bot starting...")

	journal, err := storage.LoadJournal()
	if err != nil {
		log.Fatalf("CRITICAL: Failed to load plan journal: %v", err)
	}
	log.Printf("📒 Journal loaded: %d plans on record", len(journal.Plans))

	ctx := context.Background()

	walletClient := wallet.NewClient(cfg.SolanaRPCURL, cfg.WalletAddress)
	aiClient := ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	jupiterClient := jupiter.NewClient(cfg.JupiterAPIKey)
	execClient := executor.NewClient(cfg.ExecutorURL)
	planCache := cache.New(ctx, cfg.RedisEnabled, cfg.RedisAddress)
	tg := telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramChatID)

	goblin := bot.New(
		aiClient,
		walletClient,
		jupiterClient,
		execClient,
		planCache,
		tg,
		cfg.Policy,
		cfg.TelegramChatID,
		time.Duration(cfg.PlanTTLSec)*time.Second,
	)

	if snap, err := walletClient.Snapshot(ctx); err != nil {
		log.Printf("⚠️ Startup balance check failed: %v", err)
	} else {
		log.Printf("💰 Wallet %s: %s SOL", cfg.WalletAddress, snap.SOLBalance.StringFixed(4))
	}

	tg.Notify("🤖 Goblin online. Send /plan <goal> or /help.")

	// Blocks until the process is killed.
	tg.StartListener(goblin)
}
