package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pricofy/crypto-price-api/internal/apperr"
	"github.com/pricofy/crypto-price-api/internal/domain"
)

// SearchRecorder runs a price lookup.
type SearchRecorder interface {
	RecordSearchAndNotify(ctx context.Context, cryptoID, recipient string) (*domain.SearchRecord, error)
}

// LookupHandler serves the price lookup endpoint.
type LookupHandler struct {
	svc    SearchRecorder
	logger zerolog.Logger
}

// NewLookupHandler creates the lookup endpoint handler.
func NewLookupHandler(svc SearchRecorder, logger zerolog.Logger) *LookupHandler {
	return &LookupHandler{svc: svc, logger: logger.With().Str("component", "lookup_handler").Logger()}
}

// Handle processes a lookup request. Failures are reported through the
// response status; the returned error is always nil.
func (h *LookupHandler) Handle(ctx context.Context, req Request) (Response, error) {
	method := req.Method()
	h.logger.Info().Str("method", method).Msg("processing request")

	body, err := parseLookupRequest(req)
	if err != nil {
		return errorResponse(err, method, lookupMessages, h.logger), nil
	}

	rec, err := h.svc.RecordSearchAndNotify(ctx, body.CryptoID, body.Email)
	if err != nil {
		return errorResponse(err, method, lookupMessages, h.logger), nil
	}
	return jsonResponse(http.StatusOK, rec), nil
}

func parseLookupRequest(req Request) (domain.LookupRequest, error) {
	var body domain.LookupRequest

	if method := req.Method(); method != http.MethodPost {
		return body, apperr.New(apperr.ErrUnsupportedMethod, nil, "Unsupported HTTP method: %s", method)
	}

	raw, err := req.DecodedBody()
	if err != nil {
		return body, apperr.New(apperr.ErrMalformedBody, err, "Invalid base64 encoding in request body")
	}
	if raw == "" {
		return body, apperr.New(apperr.ErrMissingField, nil, "Missing request body for POST")
	}

	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return body, apperr.New(apperr.ErrInvalidField, err, "Invalid '%s' in request body: expected a string", typeErr.Field)
		}
		return body, apperr.New(apperr.ErrMalformedBody, err, "Invalid JSON format in request body: %s", err.Error())
	}

	if body.CryptoID == "" {
		return body, apperr.New(apperr.ErrMissingField, nil, "Missing 'cryptoId' in request body")
	}
	if body.Email == "" {
		return body, apperr.New(apperr.ErrMissingField, nil, "Missing 'email' in request body")
	}
	if !domain.ValidEmail(body.Email) {
		return body, apperr.New(apperr.ErrInvalidField, nil, "Invalid 'email' format in request body")
	}
	return body, nil
}
