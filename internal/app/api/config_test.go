package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-shipment-api/internal/clients/http/ledger"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LEDGER_NETWORK", "")
	t.Setenv("LEDGER_HORIZON_URL", "")
	t.Setenv("PROOF_MAX_BYTES", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ledger.NetworkTestnet, cfg.LedgerNetwork)
	assert.Equal(t, "https://horizon-testnet.stellar.org", cfg.LedgerHorizonURL)
	assert.Equal(t, DefaultProofMaxBytes, cfg.ProofMaxBytes)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadConfig_ReadsEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LEDGER_NETWORK", "public")
	t.Setenv("LEDGER_HORIZON_URL", "")
	t.Setenv("PROOF_MAX_BYTES", "2048")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("TEMPORAL_DISABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ledger.NetworkPublic, cfg.LedgerNetwork)
	assert.Equal(t, "https://horizon.stellar.org", cfg.LedgerHorizonURL)
	assert.Equal(t, int64(2048), cfg.ProofMaxBytes)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.TemporalDisabled)
}

func TestLoadConfig_Rejects(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEDGER_NETWORK", "")
	t.Setenv("PROOF_MAX_BYTES", "")
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PROOF_MAX_BYTES", "-1")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "PROOF_MAX_BYTES")

	t.Setenv("PROOF_MAX_BYTES", "")
	t.Setenv("LEDGER_NETWORK", "futurenet")
	_, err = LoadConfig()
	assert.Error(t, err)
}
