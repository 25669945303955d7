// Package notify renders search notifications and delivers them over SMTP.
package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/pricofy/crypto-price-api/internal/domain"
)

const (
	// displayLayout is the medium date, long time form shown in the HTML body,
	// e.g. "15 Nov 2023, 9:13:20 am AEDT".
	displayLayout = "2 Jan 2006, 3:04:05 pm MST"
	isoLayout     = "2006-01-02T15:04:05.000Z07:00"
)

var htmlBody = template.Must(template.New("email").Parse(`
<h1>Cryptocurrency Price Information</h1>
<p>You requested the price for:</p>
<ul>
    <li>Cryptocurrency: <strong>{{.CryptocurrencyID}}</strong></li>
    <li>Current Price: <strong>{{.Price}}</strong></li>
    <li>Timestamp: {{.Timestamp}}</li>
    <li>Search ID: {{.SearchID}}</li>
    <li>Fetch Status: {{.FetchStatus}}</li>
</ul>
`))

// Renderer turns a search record into email content. Timestamps in the
// HTML body are shown in loc.
type Renderer struct {
	loc *time.Location
}

// NewRenderer returns a renderer for the named IANA zone.
func NewRenderer(timezone string) (*Renderer, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Renderer{loc: loc}, nil
}

// Render builds the subject, HTML and plain text bodies for rec.
func (r *Renderer) Render(rec domain.SearchRecord) domain.EmailContent {
	ts := time.UnixMilli(rec.Timestamp)
	price := PriceDisplay(rec)

	var html bytes.Buffer
	// Execute only fails on template or writer errors, neither possible here.
	_ = htmlBody.Execute(&html, struct {
		CryptocurrencyID string
		Price            string
		Timestamp        string
		SearchID         string
		FetchStatus      string
	}{
		CryptocurrencyID: rec.CryptocurrencyID,
		Price:            price,
		Timestamp:        ts.In(r.loc).Format(displayLayout),
		SearchID:         rec.SearchID,
		FetchStatus:      rec.FetchStatus,
	})

	text := strings.Join([]string{
		"Cryptocurrency Price Information:",
		"Cryptocurrency: " + rec.CryptocurrencyID,
		"Current Price: " + price,
		"Timestamp: " + ts.UTC().Format(isoLayout),
		"Search ID: " + rec.SearchID,
		"Fetch Status: " + rec.FetchStatus,
	}, "\n")

	return domain.EmailContent{
		Subject: "Crypto Price Search: " + rec.CryptocurrencyID,
		HTML:    html.String(),
		Text:    text,
	}
}

// PriceDisplay formats the price line of a notification.
func PriceDisplay(rec domain.SearchRecord) string {
	if !rec.Fetched() {
		return fmt.Sprintf("Could not be fetched (%s)", rec.FetchStatus)
	}
	return *rec.QueriedPrice + " " + strings.ToUpper(rec.QueriedCurrency)
}
