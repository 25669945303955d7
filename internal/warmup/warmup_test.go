package warmup

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvoker struct {
	mu     sync.Mutex
	inputs []*lambdasdk.InvokeInput
	err    error
}

func (f *fakeInvoker) Invoke(_ context.Context, in *lambdasdk.InvokeInput, _ ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &lambdasdk.InvokeOutput{StatusCode: 202}, nil
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		event       string
		isWarmup    bool
		concurrency int
	}{
		{"warmup without concurrency", `{"source":"warmup"}`, true, 0},
		{"warmup with concurrency", `{"source":"warmup","concurrency":3}`, true, 3},
		{"negative concurrency ignored", `{"source":"warmup","concurrency":-2}`, true, 0},
		{"string concurrency ignored", `{"source":"warmup","concurrency":"3"}`, true, 0},
		{"null concurrency ignored", `{"source":"warmup","concurrency":null}`, true, 0},
		{"non-string source", `{"source":7}`, false, 0},
		{"api gateway event", `{"requestContext":{"http":{"method":"POST"}},"body":"{}"}`, false, 0},
		{"other source", `{"source":"aws.events"}`, false, 0},
		{"not an object", `[1,2]`, false, 0},
		{"invalid json", `{`, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := Detect(json.RawMessage(tt.event))
			assert.Equal(t, tt.isWarmup, ok)
			if ok {
				assert.Equal(t, tt.concurrency, ev.Concurrency)
			}
		})
	}
}

func newTestHandler(inv Invoker) *Handler {
	h := NewHandler(inv, "crypto-price-lookup", zerolog.Nop())
	h.delay = 0
	return h
}

func warmedCount(t *testing.T, out map[string]interface{}) int {
	t.Helper()
	assert.Equal(t, 200, out["statusCode"])
	body, ok := out["body"].(Response)
	require.True(t, ok)
	assert.Equal(t, "warm", body.Status)
	return body.InstancesWarmed
}

func TestHandle_SelfInvokes(t *testing.T) {
	inv := &fakeInvoker{}
	out, err := newTestHandler(inv).Handle(context.Background(), &Event{Source: Source, Concurrency: 3})
	require.NoError(t, err)

	assert.Equal(t, 4, warmedCount(t, out))
	require.Len(t, inv.inputs, 3)
	for _, in := range inv.inputs {
		assert.Equal(t, "crypto-price-lookup", aws.ToString(in.FunctionName))
		assert.Equal(t, types.InvocationTypeEvent, in.InvocationType)
		assert.JSONEq(t, `{"source":"warmup","concurrency":0}`, string(in.Payload))
	}
}

func TestHandle_NoConcurrency(t *testing.T) {
	inv := &fakeInvoker{}
	out, err := newTestHandler(inv).Handle(context.Background(), &Event{Source: Source})
	require.NoError(t, err)

	assert.Equal(t, 1, warmedCount(t, out))
	assert.Empty(t, inv.inputs)
}

func TestHandle_InvokeFailure(t *testing.T) {
	inv := &fakeInvoker{err: errors.New("TooManyRequestsException")}
	out, err := newTestHandler(inv).Handle(context.Background(), &Event{Source: Source, Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, 1, warmedCount(t, out))
}
