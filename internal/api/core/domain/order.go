package domain

import "encoding/json"

const StatusPlaced = "PLACED"

// LineItem is a single order line as received. Qty and Price keep the raw
// JSON so the accumulator can coerce them; nil means the key was absent.
type LineItem struct {
	Qty   json.RawMessage `json:"qty"`
	Price json.RawMessage `json:"price"`
}

// OrderRequest is the body of POST /api/order.
type OrderRequest struct {
	Restaurant json.RawMessage `json:"restaurant,omitempty"`
	Items      []LineItem      `json:"items"`
}

// OrderResult is returned for accepted orders.
type OrderResult struct {
	OrderID int64
	Total   float64
	Status  string
}

type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRejected PaymentStatus = "rejected"
)

// PaymentRequest carries the amount through untouched; it is only logged.
type PaymentRequest struct {
	Amount json.RawMessage `json:"amount,omitempty"`
}
