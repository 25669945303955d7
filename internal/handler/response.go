package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pricofy/crypto-price-api/internal/apperr"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// errorMessages holds per-endpoint wording for server-side failures.
type errorMessages struct {
	allowedMethod string
	persistence   string
}

var (
	lookupMessages = errorMessages{
		allowedMethod: http.MethodPost,
		persistence:   "Failed to record search.",
	}
	historyMessages = errorMessages{
		allowedMethod: http.MethodGet,
		persistence:   "Failed to retrieve search history.",
	}
)

func jsonResponse(status int, body interface{}) Response {
	payload, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		payload = []byte(`{"error":"An internal server error occurred.","details":"response encoding failed"}`)
	}
	return Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(payload),
	}
}

// errorResponse maps a classified error to its HTTP response. Causes of
// server-side failures are logged here and not returned to the caller.
func errorResponse(err error, method string, msgs errorMessages, logger zerolog.Logger) Response {
	status, body := classify(err, method, msgs)

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Int("status", status).Str("kind", apperr.KindOf(err).String()).Msg("request failed")

	return jsonResponse(status, body)
}

func classify(err error, method string, msgs errorMessages) (int, ErrorBody) {
	switch apperr.KindOf(err) {
	case apperr.KindMethodNotAllowed:
		return http.StatusMethodNotAllowed, ErrorBody{
			Error:   fmt.Sprintf("Unsupported HTTP method: %s", method),
			Details: fmt.Sprintf("Only %s method is accepted.", msgs.allowedMethod),
		}
	case apperr.KindValidation:
		return http.StatusBadRequest, ErrorBody{
			Error:   "Bad Request",
			Details: apperr.PublicMessage(err),
		}
	case apperr.KindUpstreamFetch:
		return http.StatusBadGateway, ErrorBody{
			Error:   "Failed to retrieve cryptocurrency data.",
			Details: apperr.PublicMessage(err),
		}
	case apperr.KindPersistence:
		return http.StatusInternalServerError, ErrorBody{
			Error:   msgs.persistence,
			Details: "The search store is unavailable. Please try again later.",
		}
	case apperr.KindConfiguration:
		return http.StatusInternalServerError, ErrorBody{
			Error:   "Internal configuration error.",
			Details: "The service is not configured correctly.",
		}
	default:
		return http.StatusInternalServerError, ErrorBody{
			Error:   "An internal server error occurred.",
			Details: "Unexpected error.",
		}
	}
}
