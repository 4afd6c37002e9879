package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"goblin_bot/internal/ai"
	"goblin_bot/internal/bot"
	"goblin_bot/internal/cache"
	"goblin_bot/internal/config"
	"goblin_bot/internal/executor"
	"goblin_bot/internal/jupiter"
	"goblin_bot/internal/logger"
	"goblin_bot/internal/slack"
	"goblin_bot/internal/wallet"
)

func main() {
	cfg := config.Load()
	logger.Setup("goblin_slack.log", cfg.MaxLogSizeMB, cfg.MaxLogBackups, cfg.LogLevel)

	log.Println("🤖 Goblin Slack server starting...")

	walletClient := wallet.NewClient(cfg.SolanaRPCURL, cfg.WalletAddress)
	aiClient := ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	jupiterClient := jupiter.NewClient(cfg.JupiterAPIKey)
	execClient := executor.NewClient(cfg.ExecutorURL)
	planCache := cache.New(context.Background(), cfg.RedisEnabled, cfg.RedisAddress)

	// No push sender: replies go back through Slack's response_url.
	goblin := bot.New(
		aiClient,
		walletClient,
		jupiterClient,
		execClient,
		planCache,
		nil,
		cfg.Policy,
		0,
		time.Duration(cfg.PlanTTLSec)*time.Second,
	)

	server := slack.NewServer(cfg.SlackSigningSecret, goblin)
	mux := http.NewServeMux()
	server.Routes(mux)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("🌐 Listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("CRITICAL: HTTP server failed: %v", err)
	}
}
