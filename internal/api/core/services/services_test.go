package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"

	"github.com/jcmexdev/foodme/internal/api/core/domain"
	"github.com/jcmexdev/foodme/internal/api/core/faults"
	"github.com/jcmexdev/foodme/internal/pkg/telemetry"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// script returns its draws in order; running out fails loudly.
type script struct {
	mu    sync.Mutex
	draws []float64
}

func (s *script) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.draws) == 0 {
		panic("script: no draws left")
	}
	v := s.draws[0]
	s.draws = s.draws[1:]
	return v
}

// never is a source that never triggers a checkpoint.
type never struct{}

func (never) Float64() float64 { return 0.99 }

type countingCounter struct {
	n       atomic.Int64
	explode bool
}

func (c *countingCounter) Add(context.Context) {
	if c.explode {
		var m map[string]int
		m["boom"]++
	}
	c.n.Add(1)
}

type harness struct {
	recorder *tracetest.SpanRecorder
	logs     *syncBuffer
	counter  *countingCounter
	slept    []time.Duration
	mu       sync.Mutex
	tp       *sdktrace.TracerProvider
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func newHarness() *harness {
	rec := tracetest.NewSpanRecorder()
	return &harness{
		recorder: rec,
		logs:     &syncBuffer{},
		counter:  &countingCounter{},
		tp:       sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)),
	}
}

func (h *harness) injector(src faults.Source) *faults.Injector {
	return faults.New(faults.DefaultPolicy(), src, faults.WithSleep(func(d time.Duration) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.slept = append(h.slept, d)
	}))
}

func (h *harness) orderService(src faults.Source) *OrderService {
	logger := telemetry.NewLogger(h.logs, telemetry.LoggerConfig{Service: "foodme-api", Level: "debug"})
	return NewOrderService(h.tp, h.injector(src), h.counter, logger)
}

func (h *harness) paymentService(src faults.Source) *PaymentService {
	logger := telemetry.NewLogger(h.logs, telemetry.LoggerConfig{Service: "foodme-api", Level: "debug"})
	return NewPaymentService(h.tp, h.injector(src), logger)
}

func (h *harness) records(t *testing.T) []map[string]any {
	t.Helper()

	h.logs.mu.Lock()
	defer h.logs.mu.Unlock()

	var out []map[string]any
	dec := json.NewDecoder(bytes.NewReader(h.logs.buf.Bytes()))
	for {
		var rec map[string]any
		err := dec.Decode(&rec)
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func (h *harness) record(t *testing.T, msg string) map[string]any {
	t.Helper()
	for _, rec := range h.records(t) {
		if rec["msg"] == msg {
			return rec
		}
	}
	t.Fatalf("no log record %q", msg)
	return nil
}

// onlySpan asserts exactly one span was started and ended and returns it.
func (h *harness) onlySpan(t *testing.T) sdktrace.ReadOnlySpan {
	t.Helper()
	require.Len(t, h.recorder.Started(), 1)
	ended := h.recorder.Ended()
	require.Len(t, ended, 1)
	return ended[0]
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func items(pairs ...string) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.LineItem{Qty: json.RawMessage(pairs[i]), Price: json.RawMessage(pairs[i+1])})
	}
	return out
}
