package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"goblin_bot/internal/models"
)

// Config holds everything the bot needs at startup. It is loaded once in main
// and passed down explicitly; no package reads policy values from the
// environment after Load returns.
type Config struct {
	OpenAIAPIKey       string
	OpenAIModel        string
	TelegramBotToken   string
	TelegramChatID     int64
	SlackSigningSecret string
	ExecutorURL        string
	SolanaRPCURL       string
	JupiterAPIKey      string
	WalletAddress      string

	Policy models.Policy

	RedisEnabled bool
	RedisAddress string
	PlanTTLSec   int

	LogLevel      string
	MaxLogSizeMB  int64
	MaxLogBackups int
	Port          int
}

// Load initializes the configuration.
// It tries to read a .env file and checks for necessary environment variables.
func Load() *Config {
	// Load .env variables into the process environment
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using system environment variables")
	}

	// Define which variables are critical and confidential.
	requiredSecretVars := map[string]bool{
		"OPENAI_API_KEY":     true,
		"TELEGRAM_BOT_TOKEN": true,
		"TELEGRAM_CHAT_ID":   true,
		"WALLET_ADDRESS":     true,
	}

	// 1. Check for missing required variables (in actual environment)
	var missing []string
	for key := range requiredSecretVars {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		log.Fatalf("CRITICAL: Missing required environment variables: %v", missing)
	}

	// 2. Print variables defined in .env file, masking anything secret-shaped
	envMap, err := godotenv.Read()
	if err == nil {
		log.Println("--- .env File Variables ---")
		for key, val := range envMap {
			if requiredSecretVars[key] || strings.Contains(key, "KEY") || strings.Contains(key, "TOKEN") || strings.Contains(key, "SECRET") {
				// Mask secret values: show only last 4 chars
				masked := "***"
				if len(val) > 4 {
					masked = "***" + val[len(val)-4:]
				}
				log.Printf("%s=%s", key, masked)
			} else {
				log.Printf("%s=%s", key, val)
			}
		}
		log.Println("---------------------------")
	}

	policy := models.DefaultPolicy()
	policy.AutoMicroSOL = getEnvAsDecimal("AUTO_MICRO_SOL", policy.AutoMicroSOL)
	policy.HardCapSOL = getEnvAsDecimal("HARD_CAP_SOL", policy.HardCapSOL)
	policy.MinFeeBufferSOL = getEnvAsDecimal("MIN_FEE_BUFFER_SOL", policy.MinFeeBufferSOL)
	policy.AllowedTokens = getEnvAsList("ALLOWED_TOKENS", policy.AllowedTokens)
	policy.AllowedProtocols = getEnvAsList("ALLOWED_PROTOCOLS", policy.AllowedProtocols)
	policy.MaxPriceImpactBps = getEnvAsInt("MAX_PRICE_IMPACT_BPS", policy.MaxPriceImpactBps)
	policy.MinTokenMcapUSD = getEnvAsDecimal("MIN_TOKEN_MCAP_USD", policy.MinTokenMcapUSD)
	policy.MaxActions = getEnvAsInt("MAX_ACTIONS", policy.MaxActions)

	return &Config{
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        getEnvAsString("OPENAI_MODEL", "gpt-4.1"),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:     getEnvAsInt64("TELEGRAM_CHAT_ID", 0),
		SlackSigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),
		ExecutorURL:        getEnvAsString("EXECUTOR_URL", "http://localhost:9090"),
		SolanaRPCURL:       getEnvAsString("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		JupiterAPIKey:      os.Getenv("JUPITER_API_KEY"),
		WalletAddress:      os.Getenv("WALLET_ADDRESS"),
		Policy:             policy,
		RedisEnabled:       getEnvAsBool("REDIS_ENABLED", false),
		RedisAddress:       getEnvAsString("REDIS_ADDRESS", "localhost:6379"),
		PlanTTLSec:         getEnvAsInt("PLAN_TTL_SEC", 900),
		LogLevel:           getEnvAsString("BOT_LOG_LEVEL", "INFO"),
		MaxLogSizeMB:       int64(getEnvAsInt("MAX_LOG_SIZE_MB", 10)),
		MaxLogBackups:      getEnvAsInt("MAX_LOG_BACKUPS", 3),
		Port:               getEnvAsInt("PORT", 8080),
	}
}
