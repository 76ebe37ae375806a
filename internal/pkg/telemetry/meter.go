package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"google.golang.org/grpc"
)

const metricExportInterval = 15 * time.Second

// Metrics owns the process MeterProvider. Instruments are always readable on
// the Prometheus registry and additionally pushed over OTLP when an
// endpoint is configured.
type Metrics struct {
	Provider *sdkmetric.MeterProvider
	Registry *prometheus.Registry
	conn     *grpc.ClientConn
}

// SetupMeter initialises the global MeterProvider.
func SetupMeter(ctx context.Context, cfg Config) (*Metrics, error) {
	res, err := newResource(cfg)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	promExporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to create prometheus exporter: %w", err)
	}

	opts := []sdkmetric.Option{
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExporter),
	}

	var conn *grpc.ClientConn
	if cfg.Endpoint != "" {
		conn, err = dialCollector(cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		exporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("telemetry: failed to create OTLP metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(metricExportInterval)),
		))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)

	return &Metrics{Provider: mp, Registry: reg, conn: conn}, nil
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Shutdown flushes pending exports and closes the collector connection.
func (m *Metrics) Shutdown(ctx context.Context) error {
	err := m.Provider.Shutdown(ctx)
	if err != nil {
		err = fmt.Errorf("telemetry: error shutting down MeterProvider: %w", err)
	}
	if m.conn != nil {
		err = errors.Join(err, m.conn.Close())
	}
	return err
}
