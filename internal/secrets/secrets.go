// Package secrets memoizes SSM parameters for the lifetime of the process.
package secrets

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/pricofy/crypto-price-api/internal/apperr"
)

// ParameterAPI is the subset of the SSM client used by Cache.
type ParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Cache holds one decrypted SSM parameter. The first successful Get
// fetches it; later calls are served from memory. Failed fetches are not
// remembered, so the next Get tries again.
type Cache struct {
	name   string
	label  string
	api    ParameterAPI
	logger zerolog.Logger

	mu    sync.RWMutex
	value string
	group singleflight.Group
}

// New creates a cache for the parameter called name. label is used in
// log lines and error messages, e.g. "Mailtrap token".
func New(api ParameterAPI, name, label string, logger zerolog.Logger) *Cache {
	return &Cache{
		name:   name,
		label:  label,
		api:    api,
		logger: logger.With().Str("component", "secrets").Str("parameter", name).Logger(),
	}
}

// Get returns the parameter value. Concurrent callers share one fetch,
// which is detached from the cancellation of whichever caller started it.
func (c *Cache) Get(ctx context.Context) (string, error) {
	if v, ok := c.cached(); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(c.name, func() (interface{}, error) {
		if v, ok := c.cached(); ok {
			return v, nil
		}
		return c.fetch(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Cache) cached() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.value != ""
}

func (c *Cache) fetch(ctx context.Context) (string, error) {
	c.logger.Info().Msgf("fetching %s from SSM", c.label)

	out, err := c.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(c.name),
		WithDecryption: aws.Bool(true),
	})
	if err == nil && (out == nil || out.Parameter == nil || aws.ToString(out.Parameter.Value) == "") {
		err = errors.New("parameter value not found in SSM response")
	}
	if err != nil {
		c.logger.Error().Err(err).Msgf("failed to fetch %s", c.label)
		return "", apperr.New(apperr.ErrSecretUnavailable, err, "could not retrieve %s from SSM parameter %s", c.label, c.name)
	}

	value := aws.ToString(out.Parameter.Value)
	c.mu.Lock()
	c.value = value
	c.mu.Unlock()

	c.logger.Info().Msgf("cached %s", c.label)
	return value, nil
}
