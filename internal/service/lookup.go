// Package service implements the price lookup and search history use cases.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pricofy/crypto-price-api/internal/domain"
)

// PriceFetcher returns the current price of a cryptocurrency.
type PriceFetcher interface {
	FetchPrice(ctx context.Context, cryptoID, currency string) (decimal.Decimal, error)
}

// RecordWriter persists search records.
type RecordWriter interface {
	PutRecord(ctx context.Context, rec domain.SearchRecord) error
}

// Renderer builds notification content for a record.
type Renderer interface {
	Render(rec domain.SearchRecord) domain.EmailContent
}

// Notifier delivers notifications. Delivery problems are handled by the
// notifier; a nil receipt means nothing was sent.
type Notifier interface {
	SendNotification(ctx context.Context, searchID string, content domain.EmailContent, recipient string) *domain.Receipt
}

// Lookup records price lookups and notifies the requester.
type Lookup struct {
	prices   PriceFetcher
	store    RecordWriter
	renderer Renderer
	notifier Notifier
	currency string
	logger   zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewLookup constructs the lookup orchestrator. currency is the quote
// currency used for every lookup.
func NewLookup(prices PriceFetcher, store RecordWriter, renderer Renderer, notifier Notifier, currency string, logger zerolog.Logger) *Lookup {
	return &Lookup{
		prices:   prices,
		store:    store,
		renderer: renderer,
		notifier: notifier,
		currency: currency,
		logger:   logger.With().Str("component", "lookup").Logger(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// RecordSearchAndNotify fetches the price of cryptoID, stores the outcome
// and emails it to recipient.
//
// The record is stored whether or not the fetch succeeded. A storage
// failure is returned immediately and takes priority over a fetch failure.
// Notification problems never fail the call. When the fetch failed, the
// stored record is returned together with the fetch error.
func (l *Lookup) RecordSearchAndNotify(ctx context.Context, cryptoID, recipient string) (*domain.SearchRecord, error) {
	searchID := l.newID()
	log := l.logger.With().Str("search_id", searchID).Str("crypto_id", cryptoID).Str("recipient", recipient).Logger()
	log.Info().Msg("orchestrating search")

	rec := domain.SearchRecord{
		SearchID:         searchID,
		Timestamp:        l.now().UnixMilli(),
		CryptocurrencyID: cryptoID,
		QueriedCurrency:  l.currency,
	}

	price, fetchErr := l.prices.FetchPrice(ctx, cryptoID, l.currency)
	if fetchErr != nil {
		log.Error().Err(fetchErr).Msg("price fetch failed; recording failed search")
		rec.FetchStatus = domain.FetchStatusFailedPrefix + fetchErr.Error()
	} else {
		s := price.String()
		rec.QueriedPrice = &s
		rec.FetchStatus = domain.FetchStatusSuccess
	}
	rec.RecipientEmail = recipient

	if err := l.store.PutRecord(ctx, rec); err != nil {
		return nil, err
	}

	content := l.renderer.Render(rec)
	if receipt := l.notifier.SendNotification(ctx, searchID, content, recipient); receipt == nil {
		log.Warn().Msg("notification not delivered; search was recorded")
	}

	if fetchErr != nil {
		return &rec, fetchErr
	}
	return &rec, nil
}
