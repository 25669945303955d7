// Package handler adapts API Gateway events to the lookup and history
// services.
package handler

import (
	"encoding/base64"

	"github.com/aws/aws-lambda-go/events"
)

// Request is an API Gateway proxy event. It accepts HTTP API (payload v2)
// events and REST API (payload v1) events, whose method is in httpMethod.
type Request struct {
	events.APIGatewayV2HTTPRequest
	HTTPMethod string `json:"httpMethod,omitempty"`
}

// Method returns the HTTP method of the request.
func (r Request) Method() string {
	if r.HTTPMethod != "" {
		return r.HTTPMethod
	}
	return r.RequestContext.HTTP.Method
}

// DecodedBody returns the request body, decoding base64 bodies.
func (r Request) DecodedBody() (string, error) {
	if !r.IsBase64Encoded {
		return r.Body, nil
	}
	b, err := base64.StdEncoding.DecodeString(r.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Response is returned to API Gateway.
type Response = events.APIGatewayV2HTTPResponse
