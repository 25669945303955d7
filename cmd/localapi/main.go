// Package main runs both API functions behind a local HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pricofy/crypto-price-api/internal/app"
	"github.com/pricofy/crypto-price-api/internal/config"
	"github.com/pricofy/crypto-price-api/internal/localapi"
	"github.com/pricofy/crypto-price-api/internal/logging"
	"github.com/pricofy/crypto-price-api/internal/store"
)

var (
	addr      string
	useMemory bool
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "localapi",
	Short: "Run the crypto price API locally",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve /search and /history over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cmd.Flags().Changed("log-format"))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL")
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	serveCmd.Flags().BoolVar(&useMemory, "memory", false, "Keep search records in memory instead of DynamoDB")
	serveCmd.Flags().StringVar(&logFormat, "log-format", "console", "Log format (console or json); LOG_FORMAT applies when unset")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveLogFormat picks the log format for the local runner. An explicit
// flag wins, then LOG_FORMAT, then the flag default.
func resolveLogFormat(configured, flagValue string, flagChanged, envSet bool) string {
	if flagChanged || !envSet {
		return flagValue
	}
	return configured
}

func serve(ctx context.Context, formatChanged bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !useMemory {
		if err := cfg.ValidateLookup(); err != nil {
			return err
		}
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	_, envSet := os.LookupEnv("LOG_FORMAT")
	cfg.Logging.Format = resolveLogFormat(cfg.Logging.Format, logFormat, formatChanged, envSet)
	logger := logging.NewLogger(cfg.Logging)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}
	clients := app.NewClients(awsCfg)

	var records app.RecordStore = store.NewDynamo(clients.Dynamo, cfg.TableName, logger)
	if useMemory {
		records = store.NewMemory()
	}

	lookup, err := app.NewLookup(cfg, clients.SSM, records, logger)
	if err != nil {
		return err
	}
	history := app.NewHistory(records, logger)

	srv := &http.Server{
		Addr:              addr,
		Handler:           localapi.NewRouter(lookup.Handle, history.Handle, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return run(ctx, srv, logger)
}

func run(ctx context.Context, srv *http.Server, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Bool("memory", useMemory).Msg("local api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}
