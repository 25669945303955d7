package notify

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricofy/crypto-price-api/internal/domain"
)

// 2023-11-14T22:13:20Z, which is 15 Nov 2023 09:13:20 in Sydney (AEDT).
const testTimestamp = 1700000000000

func TestRender_Success(t *testing.T) {
	r, err := NewRenderer("Australia/Sydney")
	require.NoError(t, err)

	content := r.Render(domain.SearchRecord{
		SearchID:         "search-1",
		Timestamp:        testTimestamp,
		CryptocurrencyID: "Bitcoin",
		QueriedPrice:     aws.String("65000"),
		QueriedCurrency:  "usd",
		FetchStatus:      domain.FetchStatusSuccess,
		RecipientEmail:   "a@b.com",
	})

	assert.Equal(t, "Crypto Price Search: Bitcoin", content.Subject)

	assert.Contains(t, content.HTML, "<strong>Bitcoin</strong>")
	assert.Contains(t, content.HTML, "<strong>65000 USD</strong>")
	assert.Contains(t, content.HTML, "Timestamp: 15 Nov 2023, 9:13:20 am AEDT")
	assert.Contains(t, content.HTML, "Search ID: search-1")

	want := "Cryptocurrency Price Information:\n" +
		"Cryptocurrency: Bitcoin\n" +
		"Current Price: 65000 USD\n" +
		"Timestamp: 2023-11-14T22:13:20.000Z\n" +
		"Search ID: search-1\n" +
		"Fetch Status: Success"
	assert.Equal(t, want, content.Text)
}

func TestRender_FailedFetch(t *testing.T) {
	r, err := NewRenderer("UTC")
	require.NoError(t, err)

	rec := domain.SearchRecord{
		SearchID:         "search-2",
		Timestamp:        testTimestamp,
		CryptocurrencyID: "notacoin",
		QueriedCurrency:  "usd",
		FetchStatus:      "Failed: price data not found for notacoin in usd",
	}
	content := r.Render(rec)

	display := "Could not be fetched (Failed: price data not found for notacoin in usd)"
	assert.Equal(t, display, PriceDisplay(rec))
	assert.Contains(t, content.Text, "Current Price: "+display)
	assert.Contains(t, content.HTML, display)
	assert.Contains(t, content.HTML, "14 Nov 2023, 10:13:20 pm UTC")
}

func TestRender_EscapesHTML(t *testing.T) {
	r, err := NewRenderer("UTC")
	require.NoError(t, err)

	content := r.Render(domain.SearchRecord{
		SearchID:         "search-3",
		Timestamp:        testTimestamp,
		CryptocurrencyID: "<script>alert(1)</script>",
		QueriedCurrency:  "usd",
		FetchStatus:      "Failed: x",
	})

	assert.NotContains(t, content.HTML, "<script>")
	assert.Contains(t, content.HTML, "&lt;script&gt;")
	assert.Contains(t, content.Text, "<script>alert(1)</script>")
}

func TestNewRenderer_UnknownZone(t *testing.T) {
	_, err := NewRenderer("Nowhere/Special")
	assert.Error(t, err)
}
