package services

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/foodme/internal/api/core/domain"
	"github.com/jcmexdev/foodme/internal/api/core/faults"
	"github.com/jcmexdev/foodme/internal/api/core/ports"
)

// LargeOrderThreshold is the unit count above which an order is large.
const LargeOrderThreshold = 8

var _ ports.OrderService = (*OrderService)(nil)

// OrderService runs the order pipeline:
//
//	validate -> accumulate -> inventory -> dependency -> large-order metric
//	-> latency -> item limit -> accepted
//
// The first failing checkpoint ends the run.
type OrderService struct {
	tracer      trace.Tracer
	faults      *faults.Injector
	largeOrders ports.LargeOrderCounter
	logger      *slog.Logger
	now         func() time.Time
	lastID      atomic.Int64
}

func NewOrderService(tp trace.TracerProvider, inj *faults.Injector, largeOrders ports.LargeOrderCounter, logger *slog.Logger) *OrderService {
	if tp == nil || inj == nil || largeOrders == nil {
		panic("services.NewOrderService: nil dependency")
	}
	return &OrderService{
		tracer:      tp.Tracer(TracerName),
		faults:      inj,
		largeOrders: largeOrders,
		logger:      loggerOrDefault(logger),
		now:         time.Now,
	}
}

// PlaceOrder never panics: a fault inside the pipeline is turned into an
// OutcomeFailed carrying a *domain.UnexpectedError.
func (s *OrderService) PlaceOrder(ctx context.Context, req domain.OrderRequest) (out domain.Outcome) {
	s.faults.Checkpoint()

	ctx, span := s.tracer.Start(ctx, "process.order")
	scope := &spanScope{span: span}

	defer func() {
		if r := recover(); r != nil {
			uerr := domain.NewUnexpectedError(r, debug.Stack())
			scope.fail(uerr)
			s.logger.ErrorContext(ctx, "Unexpected error while processing order",
				"error", uerr.Error(),
				"stack", uerr.Stack,
			)
			out = domain.Rejected(uerr)
		}
		scope.end()
	}()

	return s.process(ctx, scope, req)
}

func (s *OrderService) process(ctx context.Context, scope *spanScope, req domain.OrderRequest) domain.Outcome {
	if len(req.Items) == 0 {
		err := domain.NewMissingItemsError()
		scope.fail(err)
		s.logger.WarnContext(ctx, "Order validation failed", "order", req)
		return domain.Rejected(err)
	}

	acc, err := domain.Accumulate(req.Items)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) && verr.Line >= 0 {
			scope.fail(err, attribute.Int("order.line", verr.Line))
			s.logger.ErrorContext(ctx, "Invalid order item data", "item", req.Items[verr.Line], "line", verr.Line)
		} else {
			scope.fail(err)
			s.logger.ErrorContext(ctx, "Invalid order item data", "error", err.Error())
		}
		return domain.Rejected(err)
	}

	scope.set(
		attribute.Float64("itemCount", acc.ItemCount),
		attribute.Float64("orderTotal", acc.OrderTotal),
	)

	s.faults.Checkpoint()
	if err := s.faults.Inventory(acc.ItemCount); err != nil {
		var invErr *domain.InventoryError
		errors.As(err, &invErr)
		scope.fail(err,
			attribute.Int("inventory.available", invErr.Available),
			attribute.Float64("inventory.requested", invErr.Requested),
		)
		s.logger.WarnContext(ctx, "Order rejected due to insufficient inventory",
			"itemCount", acc.ItemCount,
			"availableStock", invErr.Available,
			"orderTotal", acc.OrderTotal,
		)
		return domain.Rejected(err)
	}

	s.faults.Checkpoint()
	if err := s.faults.Dependency(); err != nil {
		var depErr *domain.DependencyTimeoutError
		errors.As(err, &depErr)
		scope.fail(err,
			attribute.String("dependency.name", depErr.Dependency),
			attribute.Int64("dependency.timeout_ms", depErr.Timeout.Milliseconds()),
		)
		s.logger.ErrorContext(ctx, "Inventory service timeout",
			"itemCount", acc.ItemCount,
			"orderTotal", acc.OrderTotal,
		)
		return domain.Rejected(err)
	}

	if acc.ItemCount > LargeOrderThreshold {
		s.largeOrders.Add(ctx)
		s.logger.InfoContext(ctx, "Large order detected", "itemCount", acc.ItemCount)
	}

	if s.faults.LatencyTriggered() {
		s.logger.InfoContext(ctx, "Simulating slow external dependency",
			"delay_ms", s.faults.Policy().LatencyDelay.Milliseconds(),
			"mode", string(s.faults.Policy().LatencyMode),
		)
		s.faults.Hold()
	}

	s.faults.Checkpoint()
	if err := s.faults.ItemLimit(acc.ItemCount); err != nil {
		scope.fail(err)
		s.logger.ErrorContext(ctx, "Order rejected: too many items", "itemCount", acc.ItemCount)
		return domain.Rejected(err)
	}

	result := &domain.OrderResult{
		OrderID: s.nextOrderID(),
		Total:   acc.OrderTotal,
		Status:  domain.StatusPlaced,
	}

	s.logger.InfoContext(ctx, "Order successfully placed",
		"orderId", result.OrderID,
		"itemCount", acc.ItemCount,
		"orderTotal", acc.OrderTotal,
		"restaurant", req.Restaurant,
	)

	return domain.Accepted(result)
}

// nextOrderID returns the current Unix time in milliseconds, bumped when
// needed so ids never repeat within the process.
func (s *OrderService) nextOrderID() int64 {
	now := s.now().UnixMilli()
	for {
		last := s.lastID.Load()
		id := max(now, last+1)
		if s.lastID.CompareAndSwap(last, id) {
			return id
		}
	}
}
