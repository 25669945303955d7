// Package app wires configuration, AWS clients and services into the
// request handlers used by the Lambda entrypoints and the local runner.
package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog"

	"github.com/pricofy/crypto-price-api/internal/config"
	"github.com/pricofy/crypto-price-api/internal/handler"
	"github.com/pricofy/crypto-price-api/internal/notify"
	"github.com/pricofy/crypto-price-api/internal/pricing"
	"github.com/pricofy/crypto-price-api/internal/secrets"
	"github.com/pricofy/crypto-price-api/internal/service"
	"github.com/pricofy/crypto-price-api/internal/store"
	"github.com/pricofy/crypto-price-api/internal/warmup"
)

// Clients holds the AWS service clients shared by a process.
type Clients struct {
	SSM    secrets.ParameterAPI
	Dynamo store.API
	Lambda warmup.Invoker
}

// RecordStore is a search record store serving both endpoints.
type RecordStore interface {
	service.RecordWriter
	service.RecordScanner
}

// NewClients builds AWS clients from cfg.
func NewClients(cfg aws.Config) Clients {
	return Clients{
		SSM:    ssm.NewFromConfig(cfg),
		Dynamo: dynamodb.NewFromConfig(cfg),
		Lambda: lambdasdk.NewFromConfig(cfg),
	}
}

// NewLookup builds the lookup endpoint handler.
func NewLookup(cfg *config.Config, params secrets.ParameterAPI, records service.RecordWriter, logger zerolog.Logger) (*handler.LookupHandler, error) {
	mailToken := secrets.New(params, cfg.Mail.SSMParameter, "Mailtrap token", logger)
	priceKey := secrets.New(params, cfg.Price.SSMParameter, "CoinGecko API key", logger)

	renderer, err := notify.NewRenderer(cfg.Display.Timezone)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	prices := pricing.NewCoinGecko(pricing.Options{
		BaseURL: cfg.Price.BaseURL,
		Timeout: cfg.Price.Timeout,
	}, priceKey, logger)

	mailer := notify.NewMailer(notify.MailerOptions{
		From: cfg.Mail.From,
		User: cfg.Mail.User,
	}, mailToken, notify.SMTPTransport(cfg.Mail.Host, cfg.Mail.Port), logger)

	svc := service.NewLookup(prices, records, renderer, mailer, cfg.Price.Currency, logger)
	return handler.NewLookupHandler(svc, logger), nil
}

// NewHistory builds the history endpoint handler.
func NewHistory(records service.RecordScanner, logger zerolog.Logger) *handler.HistoryHandler {
	return handler.NewHistoryHandler(service.NewHistory(records, logger), logger)
}

// HandleFunc is the signature shared by the endpoint handlers.
type HandleFunc func(ctx context.Context, req handler.Request) (handler.Response, error)

// Entrypoint returns the raw Lambda handler. Warmup events are answered
// before the payload is parsed as an API Gateway request.
func Entrypoint(w *warmup.Handler, handle HandleFunc) func(ctx context.Context, event json.RawMessage) (interface{}, error) {
	return func(ctx context.Context, event json.RawMessage) (interface{}, error) {
		if ev, ok := warmup.Detect(event); ok {
			return w.Handle(ctx, ev)
		}

		var req handler.Request
		if err := json.Unmarshal(event, &req); err != nil {
			return nil, fmt.Errorf("decode request: %w", err)
		}
		return handle(ctx, req)
	}
}
