package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain error", cause, KindUnknown},
		{"missing field", New(ErrMissingField, nil, "missing 'email'"), KindValidation},
		{"malformed body", New(ErrMalformedBody, cause, "invalid JSON"), KindValidation},
		{"method", New(ErrUnsupportedMethod, nil, "Unsupported HTTP method: GET"), KindMethodNotAllowed},
		{"price not found", New(ErrPriceNotFound, nil, "no price"), KindUpstreamFetch},
		{"price fetch failed", New(ErrPriceFetchFailed, cause, "fetch"), KindUpstreamFetch},
		{"write", New(ErrPersistenceWriteFailed, cause, "store"), KindPersistence},
		{"read", New(ErrPersistenceReadFailed, cause, "scan"), KindPersistence},
		{"secret", New(ErrSecretUnavailable, cause, "ssm"), KindConfiguration},
		{"wrapped", fmt.Errorf("outer: %w", New(ErrSecretUnavailable, cause, "ssm")), KindConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := New(ErrPriceFetchFailed, cause, "failed to fetch price for %s", "bitcoin")

	assert.True(t, errors.Is(err, ErrPriceFetchFailed))
	assert.False(t, errors.Is(err, ErrPriceNotFound))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "failed to fetch price for bitcoin: connection reset", err.Error())
	assert.Equal(t, "failed to fetch price for bitcoin", PublicMessage(err))
}

func TestError_NoCause(t *testing.T) {
	err := New(ErrMissingField, nil, "missing 'cryptoId' in request body")
	assert.Equal(t, "missing 'cryptoId' in request body", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
