package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pricofy/crypto-price-api/internal/apperr"
	"github.com/pricofy/crypto-price-api/internal/domain"
)

// HistoryLister lists recorded searches for a recipient.
type HistoryLister interface {
	ForEmail(ctx context.Context, email string) ([]domain.SearchRecord, error)
}

// HistoryHandler serves the search history endpoint.
type HistoryHandler struct {
	svc    HistoryLister
	logger zerolog.Logger
}

// NewHistoryHandler creates the history endpoint handler.
func NewHistoryHandler(svc HistoryLister, logger zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{svc: svc, logger: logger.With().Str("component", "history_handler").Logger()}
}

// Handle processes a history request.
func (h *HistoryHandler) Handle(ctx context.Context, req Request) (Response, error) {
	method := req.Method()

	email, err := historyEmail(req)
	if err != nil {
		return errorResponse(err, method, historyMessages, h.logger), nil
	}

	records, err := h.svc.ForEmail(ctx, email)
	if err != nil {
		return errorResponse(err, method, historyMessages, h.logger), nil
	}
	return jsonResponse(http.StatusOK, records), nil
}

func historyEmail(req Request) (string, error) {
	if method := req.Method(); method != http.MethodGet {
		return "", apperr.New(apperr.ErrUnsupportedMethod, nil, "Unsupported HTTP method: %s", method)
	}

	email := req.QueryStringParameters["email"]
	if email == "" {
		return "", apperr.New(apperr.ErrMissingField, nil, "Missing 'email' query string parameter")
	}
	if !domain.ValidEmail(email) {
		return "", apperr.New(apperr.ErrInvalidField, nil, "Invalid 'email' format in query string parameter")
	}
	return email, nil
}
