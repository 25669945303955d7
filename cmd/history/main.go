// Package main is the entry point for the search history Lambda function.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/rs/zerolog/log"

	"github.com/pricofy/crypto-price-api/internal/app"
	"github.com/pricofy/crypto-price-api/internal/config"
	"github.com/pricofy/crypto-price-api/internal/logging"
	"github.com/pricofy/crypto-price-api/internal/store"
	"github.com/pricofy/crypto-price-api/internal/warmup"
)

func main() {
	cfg, err := config.LoadHistory()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := logging.NewLogger(cfg.Logging).With().Str("function", "history").Logger()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("load aws config")
	}
	clients := app.NewClients(awsCfg)

	history := app.NewHistory(store.NewDynamo(clients.Dynamo, cfg.TableName, logger), logger)
	warm := warmup.NewHandler(clients.Lambda, os.Getenv("AWS_LAMBDA_FUNCTION_NAME"), logger)

	lambda.Start(app.Entrypoint(warm, history.Handle))
}
