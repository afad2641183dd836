package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the order engine needs to boot: operator
// signing key, chain RPC endpoints, scheduler timing and storage.
type Config struct {
	// Operator signing key used by the Submission Client to sign child
	// orders on behalf of makers' delegate proxies.
	OperatorPrivateKey string

	// Per-chain RPC endpoints, keyed by chain id as a string (e.g. "137").
	ChainRPCEndpoints map[string]string
	ChainID           int64
	ExchangeAddress   string

	// Watcher Scheduler.
	PollInterval       time.Duration
	StalenessThreshold time.Duration

	// Storage.
	DatabaseURL  string
	DatabasePath string

	// Submission Client transport.
	SubmissionBaseURL string
	SubmissionTimeout time.Duration

	// Operational notifications (internal/ops).
	TelegramToken  string
	TelegramChatID int64

	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		OperatorPrivateKey: os.Getenv("OPERATOR_PRIVATE_KEY"),
		ChainID:            int64(getEnvInt("CHAIN_ID", 137)),
		ExchangeAddress:    getEnv("EXCHANGE_ADDRESS", "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E"),
		PollInterval:       getEnvDuration("POLL_INTERVAL", 5*time.Second),
		StalenessThreshold: getEnvDuration("STALENESS_THRESHOLD", 60*time.Second),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DatabasePath:       getEnv("DATABASE_PATH", "data/orderengine.db"),
		SubmissionBaseURL:  getEnv("SUBMISSION_BASE_URL", "https://clob.polymarket.com"),
		SubmissionTimeout:  getEnvDuration("SUBMISSION_TIMEOUT", 30*time.Second),
		TelegramToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		Debug:              getEnvBool("DEBUG", false),
	}

	cfg.ChainRPCEndpoints = parseRPCEndpoints(os.Getenv("CHAIN_RPC_ENDPOINTS"))
	if len(cfg.ChainRPCEndpoints) == 0 {
		cfg.ChainRPCEndpoints = map[string]string{
			"137": getEnv("POLYGON_RPC_URL", "https://polygon-rpc.com"),
		}
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	if cfg.OperatorPrivateKey == "" {
		return nil, fmt.Errorf("OPERATOR_PRIVATE_KEY is required")
	}

	return cfg, nil
}

// parseRPCEndpoints parses "137=https://...,1=https://..." into a map.
func parseRPCEndpoints(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		out[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
