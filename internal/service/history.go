package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pricofy/crypto-price-api/internal/domain"
)

// RecordScanner lists stored records by recipient.
type RecordScanner interface {
	ScanByEmail(ctx context.Context, email string) ([]domain.SearchRecord, error)
}

// History answers search history queries.
type History struct {
	store  RecordScanner
	logger zerolog.Logger
}

// NewHistory constructs the history service.
func NewHistory(store RecordScanner, logger zerolog.Logger) *History {
	return &History{store: store, logger: logger.With().Str("component", "history").Logger()}
}

// ForEmail returns every search recorded for email.
func (h *History) ForEmail(ctx context.Context, email string) ([]domain.SearchRecord, error) {
	h.logger.Info().Str("recipient", email).Msg("fetching history")

	records, err := h.store.ScanByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.SearchRecord{}
	}
	return records, nil
}
