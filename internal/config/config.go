// Package config loads the oracle's environment-variable configuration,
// following the variable names and defaults in the external interfaces spec.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds everything the oracle daemon needs at startup.
type Config struct {
	RPCURL                   string
	WSURL                    string
	ProgramID                string
	HMACSecret               []byte
	AuthorityKeypairPath     string
	Cluster                  string
	HTTPPort                 string
	MaxRetries               int
	InitialRetryDelay        time.Duration
	PriorityFeeMicroLamports uint64
	FulfillmentConcurrency   int
	DiceProgramID            string
	LogFormat                string
	JobStorePath             string
	JobStoreTTL              time.Duration
}

// Load reads Config from the environment, applying the defaults from the
// external interfaces spec. HMAC_SECRET and PROGRAM_ID are required;
// everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{
		RPCURL:                   getEnv("RPC_URL", "http://127.0.0.1:8899"),
		WSURL:                    getEnv("WS_URL", "ws://127.0.0.1:8900"),
		Cluster:                  getEnv("CLUSTER", "devnet"),
		HTTPPort:                 getEnv("HTTP_PORT", "8080"),
		AuthorityKeypairPath:     getEnv("AUTHORITY_KEYPAIR_PATH", defaultKeypairPath()),
		DiceProgramID:            os.Getenv("DICE_PROGRAM_ID"),
		LogFormat:                getEnv("LOG_FORMAT", "console"),
		JobStorePath:             getEnv("JOB_STORE_PATH", "./data/jobstore"),
	}

	programID, ok := os.LookupEnv("PROGRAM_ID")
	if !ok || programID == "" {
		return nil, fmt.Errorf("PROGRAM_ID is required")
	}
	cfg.ProgramID = programID

	secretRaw, ok := os.LookupEnv("HMAC_SECRET")
	if !ok || secretRaw == "" {
		return nil, fmt.Errorf("HMAC_SECRET is required")
	}
	secret, err := decodeSecret(secretRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid HMAC_SECRET: %w", err)
	}
	cfg.HMACSecret = secret

	maxRetries, err := getEnvInt("MAX_RETRIES", 5)
	if err != nil {
		return nil, err
	}
	cfg.MaxRetries = maxRetries

	retryDelayMs, err := getEnvInt("INITIAL_RETRY_DELAY_MS", 500)
	if err != nil {
		return nil, err
	}
	cfg.InitialRetryDelay = time.Duration(retryDelayMs) * time.Millisecond

	priorityFee, err := getEnvUint64("PRIORITY_FEE_MICRO_LAMPORTS", 0)
	if err != nil {
		return nil, err
	}
	cfg.PriorityFeeMicroLamports = priorityFee

	concurrency, err := getEnvInt("FULFILLMENT_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}
	cfg.FulfillmentConcurrency = concurrency

	ttlHours, err := getEnvInt("JOB_STORE_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cfg.JobStoreTTL = time.Duration(ttlHours) * time.Hour

	return cfg, nil
}

// decodeSecret accepts either a base64-encoded secret (preferred, so the
// env var can carry arbitrary bytes) or a plain string, used verbatim as
// the HMAC key bytes.
func decodeSecret(raw string) ([]byte, error) {
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	return []byte(raw), nil
}

func defaultKeypairPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./authority.json"
	}
	return home + "/.config/solana/id.json"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvUint64(key string, fallback uint64) (uint64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a non-negative integer: %w", key, err)
	}
	return n, nil
}
