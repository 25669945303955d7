package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/pricofy/crypto-price-api/internal/apperr"
	"github.com/pricofy/crypto-price-api/internal/domain"
)

// Memory is an in-process record store for local runs and tests.
// Records are kept in insertion order.
type Memory struct {
	mu      sync.Mutex
	records []domain.SearchRecord
	ids     map[string]struct{}
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{ids: make(map[string]struct{})}
}

// PutRecord stores rec unless its searchId already exists.
func (m *Memory) PutRecord(_ context.Context, rec domain.SearchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[rec.SearchID]; ok {
		return apperr.New(apperr.ErrPersistenceWriteFailed, fmt.Errorf("search %s already exists", rec.SearchID), "failed to store search history")
	}
	m.ids[rec.SearchID] = struct{}{}
	m.records = append(m.records, rec)
	return nil
}

// ScanByEmail returns the records addressed to email.
func (m *Memory) ScanByEmail(_ context.Context, email string) ([]domain.SearchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.SearchRecord, 0)
	for _, rec := range m.records {
		if rec.RecipientEmail == email {
			out = append(out, rec)
		}
	}
	return out, nil
}
