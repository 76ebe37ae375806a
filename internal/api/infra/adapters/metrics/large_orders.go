package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jcmexdev/foodme/internal/api/core/ports"
)

const (
	MeterName          = "foodme-metrics"
	LargeOrdersCounter = "orders.large"
)

var _ ports.LargeOrderCounter = (*LargeOrders)(nil)

// LargeOrders adds to the orders.large counter, tagged type=large.
type LargeOrders struct {
	counter metric.Int64Counter
	attrs   metric.AddOption
}

func NewLargeOrders(mp metric.MeterProvider) (*LargeOrders, error) {
	counter, err := mp.Meter(MeterName).Int64Counter(LargeOrdersCounter,
		metric.WithDescription("Number of large orders"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: create %s counter: %w", LargeOrdersCounter, err)
	}
	return &LargeOrders{
		counter: counter,
		attrs:   metric.WithAttributeSet(attribute.NewSet(attribute.String("type", "large"))),
	}, nil
}

func (l *LargeOrders) Add(ctx context.Context) {
	l.counter.Add(ctx, 1, l.attrs)
}
