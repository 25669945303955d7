// Package warmup answers scheduled warmup events so both functions stay
// warm between real requests.
package warmup

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/rs/zerolog"
)

const (
	// Source identifies warmup events from the CloudWatch schedule.
	Source = "warmup"

	// DefaultDelay keeps the instance busy long enough for self-invoked
	// copies to land on other instances.
	DefaultDelay = 75 * time.Millisecond
)

// Event is the scheduled warmup payload.
type Event struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// Response is the body returned for a warmup.
type Response struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// Invoker is the subset of the Lambda client used to self-invoke.
type Invoker interface {
	Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

// Detect reports whether event is a warmup event. A concurrency that is
// missing, negative or not a number leaves Concurrency at zero.
func Detect(event json.RawMessage) (*Event, bool) {
	var fields map[string]interface{}
	if err := json.Unmarshal(event, &fields); err != nil {
		return nil, false
	}

	source, ok := fields["source"].(string)
	if !ok || source != Source {
		return nil, false
	}

	ev := &Event{Source: Source}
	if n, ok := fields["concurrency"].(float64); ok && n > 0 {
		ev.Concurrency = int(n)
	}
	return ev, true
}

// Handler answers warmup events for one function.
type Handler struct {
	invoker      Invoker
	functionName string
	delay        time.Duration
	logger       zerolog.Logger
}

// NewHandler creates a warmup handler that self-invokes functionName.
func NewHandler(invoker Invoker, functionName string, logger zerolog.Logger) *Handler {
	return &Handler{
		invoker:      invoker,
		functionName: functionName,
		delay:        DefaultDelay,
		logger:       logger.With().Str("component", "warmup").Logger(),
	}
}

// Handle processes a warmup event, invoking Concurrency extra copies of
// the function asynchronously.
func (h *Handler) Handle(ctx context.Context, ev *Event) (map[string]interface{}, error) {
	warmed := 1

	if ev.Concurrency > 0 && h.invoker != nil && h.functionName != "" {
		if err := h.selfInvoke(ctx, ev.Concurrency); err != nil {
			h.logger.Warn().Err(err).Int("concurrency", ev.Concurrency).Msg("self-invoke failed")
		} else {
			warmed += ev.Concurrency
		}
	}

	time.Sleep(h.delay)

	return map[string]interface{}{
		"statusCode": 200,
		"body": Response{
			Status:          "warm",
			InstancesWarmed: warmed,
		},
	}, nil
}

func (h *Handler) selfInvoke(ctx context.Context, count int) error {
	// Children get concurrency 0 so they do not invoke further copies.
	payload, err := json.Marshal(Event{Source: Source, Concurrency: 0})
	if err != nil {
		return err
	}

	var (
		wg        sync.WaitGroup
		errMu     sync.Mutex
		invokeErr error
	)
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := h.invoker.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(h.functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			if err != nil {
				errMu.Lock()
				if invokeErr == nil {
					invokeErr = err
				}
				errMu.Unlock()
			}
		}()
	}

	wg.Wait()
	return invokeErr
}
