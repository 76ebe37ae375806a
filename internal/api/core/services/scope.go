// Package services holds the order and payment pipelines. Every pipeline
// run owns exactly one span; each decision is mirrored on that span and in
// a log record written with the span's context.
package services

import (
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/foodme/internal/api/core/domain"
)

const TracerName = "foodme-order"

// spanScope guards the span of one pipeline run. It is confined to the
// request goroutine.
type spanScope struct {
	span  trace.Span
	ended bool
}

func (s *spanScope) set(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

// fail records err as an exception, tags error.type and marks the span as
// errored.
func (s *spanScope) fail(err error, attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attribute.String("error.type", domain.ErrorKind(err)))
	s.span.SetAttributes(attrs...)
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// end is safe to call more than once; only the first call ends the span.
func (s *spanScope) end() {
	if s.ended {
		return
	}
	s.ended = true
	s.span.End()
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
