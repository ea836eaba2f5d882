//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

const (
	ProviderName = "shipment-api"
	ConsumerName = "shipment-portal"

	StateShipmentsBaseline = "shipments baseline"
	StateShipmentExists    = "shipment s-101 exists"
	StateShipmentMissing   = "no shipment s-404"
)

const (
	ExistingShipmentID = "s-101"
	MissingShipmentID  = "s-404"

	ExistingTrackingNumber = "TRK-PACT-101"
	NewTrackingNumber      = "TRK-PACT-201"

	// JWTSecret signs the bearer token the consumer records; the provider verifies with it.
	JWTSecret   = "pact-shared-secret"
	ManagerID   = "u-pact-manager"
	ManagerRole = "MANAGER"
	TokenTTL    = 365 * 24 * time.Hour
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the shipment portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleCreatePayload is the body the portal sends when registering a shipment.
func ExampleCreatePayload() map[string]any {
	return map[string]any{
		"trackingNumber": NewTrackingNumber,
		"origin":         "Lagos",
		"destination":    "Nairobi",
		"enterpriseId":   "ent-pact",
		"logisticsId":    "log-pact",
	}
}

// ExistingShipment describes the record seeded for StateShipmentExists.
func ExistingShipment() map[string]any {
	return map[string]any{
		"id":             ExistingShipmentID,
		"trackingNumber": ExistingTrackingNumber,
		"origin":         "Accra",
		"destination":    "Kigali",
		"enterpriseId":   "ent-pact",
		"logisticsId":    "log-pact",
		"status":         "CREATED",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
