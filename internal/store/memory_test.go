package store

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricofy/crypto-price-api/internal/apperr"
)

func TestMemory_PutAndScan(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.PutRecord(ctx, record("id-1", "a@b.com", aws.String("1"))))
	require.NoError(t, m.PutRecord(ctx, record("id-2", "c@d.com", nil)))
	require.NoError(t, m.PutRecord(ctx, record("id-3", "a@b.com", nil)))

	got, err := m.ScanByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "id-1", got[0].SearchID)
	assert.Equal(t, "id-3", got[1].SearchID)

	none, err := m.ScanByEmail(ctx, "x@y.com")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemory_RejectsDuplicateID(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.PutRecord(ctx, record("id-1", "a@b.com", nil)))
	err := m.PutRecord(ctx, record("id-1", "a@b.com", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrPersistenceWriteFailed)

	got, _ := m.ScanByEmail(ctx, "a@b.com")
	assert.Len(t, got, 1)
}
