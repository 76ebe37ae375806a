package services

import (
	"context"
	"log/slog"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/foodme/internal/api/core/domain"
	"github.com/jcmexdev/foodme/internal/api/core/faults"
	"github.com/jcmexdev/foodme/internal/api/core/ports"
)

var _ ports.PaymentService = (*PaymentService)(nil)

// PaymentService fakes a payment gateway with a single failure checkpoint.
type PaymentService struct {
	tracer trace.Tracer
	faults *faults.Injector
	logger *slog.Logger
}

func NewPaymentService(tp trace.TracerProvider, inj *faults.Injector, logger *slog.Logger) *PaymentService {
	if tp == nil || inj == nil {
		panic("services.NewPaymentService: nil dependency")
	}
	return &PaymentService{
		tracer: tp.Tracer(TracerName),
		faults: inj,
		logger: loggerOrDefault(logger),
	}
}

func (s *PaymentService) Pay(ctx context.Context, req domain.PaymentRequest) (out domain.PaymentOutcome) {
	s.faults.Checkpoint()

	ctx, span := s.tracer.Start(ctx, "process.payment")
	scope := &spanScope{span: span}

	defer func() {
		if r := recover(); r != nil {
			uerr := domain.NewUnexpectedError(r, debug.Stack())
			scope.fail(uerr)
			s.logger.ErrorContext(ctx, "Payment failed",
				"error", uerr.Error(),
				"amount", req.Amount,
				"stack", uerr.Stack,
			)
			out = domain.PaymentOutcome{Status: domain.PaymentRejected, Err: uerr}
		}
		scope.end()
	}()

	if err := s.faults.PaymentGateway(); err != nil {
		scope.fail(err)
		s.logger.ErrorContext(ctx, "Payment failed",
			"error", err.Error(),
			"amount", req.Amount,
		)
		return domain.PaymentOutcome{Status: domain.PaymentRejected, Err: err}
	}

	scope.set(attribute.String("paymentStatus", "SUCCESS"))
	s.logger.InfoContext(ctx, "Payment successful", "amount", req.Amount)

	return domain.PaymentOutcome{Status: domain.PaymentPaid}
}
