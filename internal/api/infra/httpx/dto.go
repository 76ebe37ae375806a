package httpx

import (
	"bytes"
	"encoding/json"

	"github.com/jcmexdev/foodme/internal/api/core/domain"
)

// orderBody is the wire shape of POST /api/order before the items are
// checked one by one.
type orderBody struct {
	Restaurant json.RawMessage `json:"restaurant"`
	Items      json.RawMessage `json:"items"`
}

type paymentBody struct {
	Amount json.RawMessage `json:"amount"`
}

type OrderResponse struct {
	OrderID int64   `json:"orderId"`
	Total   float64 `json:"total"`
	Status  string  `json:"status"`
}

type PaymentResponse struct {
	Status domain.PaymentStatus `json:"status"`
}

type ErrorResponse struct {
	Error          string `json:"error"`
	AvailableStock *int   `json:"availableStock,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// RestaurantDetail always carries menuItems, even when the menu is empty.
type RestaurantDetail struct {
	domain.Restaurant
	MenuItems []domain.MenuItem `json:"menuItems"`
}

// decodeOrder turns a raw body into an order request. Anything that is not a
// JSON object is read as an empty object, a non-array items value is read as
// absent, and an item that is not an object becomes a line with neither qty
// nor price.
//
// Behaviour change: a null (or any other non-object) item used to fail the
// whole request with a 500. It is now rejected by the accumulator as an
// invalid line with a 400.
func decodeOrder(body []byte) domain.OrderRequest {
	var wire orderBody
	if err := json.Unmarshal(body, &wire); err != nil {
		return domain.OrderRequest{}
	}

	req := domain.OrderRequest{Restaurant: wire.Restaurant}

	var raw []json.RawMessage
	if err := json.Unmarshal(wire.Items, &raw); err != nil || raw == nil {
		return req
	}

	req.Items = make([]domain.LineItem, len(raw))
	for i, elem := range raw {
		if !bytes.HasPrefix(bytes.TrimSpace(elem), []byte("{")) {
			continue
		}
		if err := json.Unmarshal(elem, &req.Items[i]); err != nil {
			req.Items[i] = domain.LineItem{}
		}
	}
	return req
}

func decodePayment(body []byte) domain.PaymentRequest {
	var wire paymentBody
	if err := json.Unmarshal(body, &wire); err != nil {
		return domain.PaymentRequest{}
	}
	return domain.PaymentRequest{Amount: wire.Amount}
}
