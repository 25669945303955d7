// Package main is the entry point for the price lookup Lambda function.
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
	cfg, err := config.LoadLookup()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := logging.NewLogger(cfg.Logging).With().Str("function", "lookup").Logger()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("load aws config")
	}
	clients := app.NewClients(awsCfg)

	lookup, err := app.NewLookup(cfg, clients.SSM, store.NewDynamo(clients.Dynamo, cfg.TableName, logger), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build lookup handler")
	}
	warm := warmup.NewHandler(clients.Lambda, os.Getenv("AWS_LAMBDA_FUNCTION_NAME"), logger)

	lambda.Start(app.Entrypoint(warm, lookup.Handle))
}
