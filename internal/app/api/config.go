package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-gin-shipment-api/internal/clients/http/ledger"
)

// DefaultProofMaxBytes bounds proof uploads when PROOF_MAX_BYTES is unset.
const DefaultProofMaxBytes int64 = 10 << 20

// Config carries environment-driven settings for the API and worker processes.
type Config struct {
	Port              string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	JWTSecret         string
	LedgerSecretSeed  string
	LedgerNetwork     ledger.Network
	LedgerHorizonURL  string
	ProofStorageDir   string
	ProofBaseURL      string
	ProofMaxBytes     int64
	KafkaBrokers      []string
	KafkaTopic        string
	LogFile           string
}

// LoadConfig reads .env (when present) and the environment, applies defaults, and validates.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	network, err := ledger.ParseNetwork(os.Getenv("LEDGER_NETWORK"))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		LedgerSecretSeed:  strings.TrimSpace(os.Getenv("LEDGER_SECRET_SEED")),
		LedgerNetwork:     network,
		LedgerHorizonURL:  envDefault("LEDGER_HORIZON_URL", defaultHorizonURL(network)),
		ProofStorageDir:   strings.TrimSpace(os.Getenv("PROOF_STORAGE_DIR")),
		ProofBaseURL:      strings.TrimSpace(os.Getenv("PROOF_BASE_URL")),
		ProofMaxBytes:     DefaultProofMaxBytes,
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:        envDefault("KAFKA_TOPIC", "shipments.events"),
		LogFile:           strings.TrimSpace(os.Getenv("LOG_FILE")),
	}
	if raw := strings.TrimSpace(os.Getenv("PROOF_MAX_BYTES")); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit <= 0 {
			return Config{}, fmt.Errorf("PROOF_MAX_BYTES must be a positive integer")
		}
		cfg.ProofMaxBytes = limit
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func defaultHorizonURL(network ledger.Network) string {
	if network == ledger.NetworkPublic {
		return "https://horizon.stellar.org"
	}
	return "https://horizon-testnet.stellar.org"
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
