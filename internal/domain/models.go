// Package domain contains the core domain types for the crypto price API.
package domain

import "strings"

// FetchStatusSuccess marks a record whose price lookup succeeded.
const FetchStatusSuccess = "Success"

// FetchStatusFailedPrefix prefixes the fetch status of a failed lookup.
const FetchStatusFailedPrefix = "Failed: "

// SearchRecord is the persisted outcome of one price lookup.
type SearchRecord struct {
	SearchID         string  `json:"searchId" dynamodbav:"searchId"`
	Timestamp        int64   `json:"timestamp" dynamodbav:"timestamp"`
	CryptocurrencyID string  `json:"cryptocurrencyId" dynamodbav:"cryptocurrencyId"`
	QueriedPrice     *string `json:"queriedPrice" dynamodbav:"queriedPrice"`
	QueriedCurrency  string  `json:"queriedCurrency" dynamodbav:"queriedCurrency"`
	FetchStatus      string  `json:"fetchStatus" dynamodbav:"fetchStatus"`
	RecipientEmail   string  `json:"recipientEmail" dynamodbav:"recipientEmail"`
}

// Fetched reports whether the lookup produced a price.
func (r SearchRecord) Fetched() bool {
	return r.QueriedPrice != nil
}

// EmailContent is a rendered notification.
type EmailContent struct {
	Subject string
	HTML    string
	Text    string
}

// Receipt confirms a notification was handed to the mail relay.
type Receipt struct {
	MessageID string
}

// LookupRequest is the body accepted by the lookup endpoint.
type LookupRequest struct {
	CryptoID string `json:"cryptoId"`
	Email    string `json:"email"`
}

// ValidEmail reports whether addr looks like an email address.
// Only the presence of '@' is checked.
func ValidEmail(addr string) bool {
	return addr != "" && strings.Contains(addr, "@")
}
