package proofstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
	"github.com/Apurer/go-gin-shipment-api/internal/shared/formdata"
)

// MockBaseURL prefixes every reference handed out by MockStorage.
const MockBaseURL = "https://mock-storage.com"

// MockStorage discards file contents and returns a timestamped placeholder URL.
type MockStorage struct {
	now func() time.Time
}

// NewMockStorage builds the placeholder gateway.
func NewMockStorage() *MockStorage {
	return &MockStorage{now: time.Now}
}

// WithClock overrides the timestamp embedded in references.
func (m *MockStorage) WithClock(now func() time.Time) *MockStorage {
	if now != nil {
		m.now = now
	}
	return m
}

// Store returns "{MockBaseURL}/proof{unix-millis}{ext}".
func (m *MockStorage) Store(_ context.Context, file *formdata.File) (string, error) {
	if file == nil {
		return "", errors.New("no file to store")
	}
	return fmt.Sprintf("%s/proof%d%s", MockBaseURL, m.now().UnixMilli(), extension(file.OriginalName)), nil
}

func extension(name string) string {
	return strings.ToLower(filepath.Ext(filepath.Base(name)))
}

var _ ports.ProofStorage = (*MockStorage)(nil)
