package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	MsgItemsRequired     = "items[] is required"
	MsgInvalidItem       = "Invalid item qty or price"
	MsgInsufficientStock = "Insufficient inventory"
	MsgInventoryTimeout  = "Inventory service timeout"
	MsgTooManyItems      = "Too many items"
	MsgGatewayTimeout    = "Payment gateway timeout"
	MsgRestaurantMissing = "Restaurant not found"
)

// ErrRestaurantNotFound is returned by catalogue lookups for unknown ids.
var ErrRestaurantNotFound = errors.New(MsgRestaurantMissing)

// Error kinds. They double as the span "error.type" attribute.
const (
	KindValidation = "validation"
	KindBusiness   = "business"
	KindDependency = "dependency"
	KindLimit      = "limit"
	KindGateway    = "gateway"
	KindUnexpected = "unexpected"
)

// kinder is satisfied by every error in this package.
type kinder interface {
	Kind() string
}

// ValidationError reports a malformed order. Line is the offending item
// index, or -1 when the items list itself is missing or empty.
type ValidationError struct {
	Line    int
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Kind() string  { return KindValidation }

// NewMissingItemsError reports an order whose items list is absent or empty.
func NewMissingItemsError() *ValidationError {
	return &ValidationError{Line: -1, Message: MsgItemsRequired}
}

// InventoryError rejects an order asking for more units than are in stock.
type InventoryError struct {
	Available int
	Requested float64
}

func (e *InventoryError) Error() string { return MsgInsufficientStock }
func (e *InventoryError) Kind() string  { return KindBusiness }

// DependencyTimeoutError is the simulated inventory service timeout.
type DependencyTimeoutError struct {
	Dependency string
	Timeout    time.Duration
}

func (e *DependencyTimeoutError) Error() string { return MsgInventoryTimeout }
func (e *DependencyTimeoutError) Kind() string  { return KindDependency }

// ItemLimitError rejects an order over the per-order unit limit.
type ItemLimitError struct {
	Limit     int
	Requested float64
}

func (e *ItemLimitError) Error() string { return MsgTooManyItems }
func (e *ItemLimitError) Kind() string  { return KindLimit }

// PaymentGatewayError is the simulated payment gateway timeout.
type PaymentGatewayError struct{}

func (e *PaymentGatewayError) Error() string { return MsgGatewayTimeout }
func (e *PaymentGatewayError) Kind() string  { return KindGateway }

// UnexpectedError wraps a fault caught by the pipeline safety net. Stack is
// for logs only and never reaches a response body.
type UnexpectedError struct {
	Cause error
	Stack string
}

func (e *UnexpectedError) Error() string { return e.Cause.Error() }
func (e *UnexpectedError) Kind() string  { return KindUnexpected }
func (e *UnexpectedError) Unwrap() error { return e.Cause }

// NewUnexpectedError converts a recovered panic value into an error.
func NewUnexpectedError(recovered any, stack []byte) *UnexpectedError {
	cause, ok := recovered.(error)
	if !ok {
		cause = fmt.Errorf("%v", recovered)
	}
	return &UnexpectedError{Cause: cause, Stack: string(stack)}
}

// ErrorKind classifies err. Errors from outside this package are unexpected.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var k kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnexpected
}

var kindToStatus = map[string]int{
	KindValidation: http.StatusBadRequest,
	KindBusiness:   http.StatusConflict,
	KindDependency: http.StatusBadGateway,
	KindLimit:      http.StatusBadRequest,
	KindGateway:    http.StatusBadGateway,
}

// HTTPStatus maps err to the response status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if s, ok := kindToStatus[ErrorKind(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}
