package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/foodme/internal/api/core/domain"
	"github.com/jcmexdev/foodme/internal/api/core/ports"
)

// maxBodyBytes caps request bodies; larger bodies are read as empty.
const maxBodyBytes = 1 << 20

// Handler exposes the order, payment and catalogue use cases over HTTP.
type Handler struct {
	orders   ports.OrderService
	payments ports.PaymentService
	catalog  ports.CatalogService
	logger   *slog.Logger
}

func NewHandler(orders ports.OrderService, payments ports.PaymentService, catalog ports.CatalogService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		orders:   orders,
		payments: payments,
		catalog:  catalog,
		logger:   logger,
	}
}

// PlaceOrder runs the order pipeline and maps its outcome to a response.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	req := decodeOrder(readBody(w, r))
	out := h.orders.PlaceOrder(r.Context(), req)

	switch out.Kind {
	case domain.OutcomeAccepted:
		h.writeJSON(w, r, http.StatusOK, OrderResponse{
			OrderID: out.Result.OrderID,
			Total:   out.Result.Total,
			Status:  out.Result.Status,
		})
	case domain.OutcomeRejectedInventory:
		resp := ErrorResponse{Error: out.Err.Error()}
		var invErr *domain.InventoryError
		if errors.As(out.Err, &invErr) {
			resp.AvailableStock = &invErr.Available
		}
		h.writeJSON(w, r, http.StatusConflict, resp)
	case domain.OutcomeRejectedValidation,
		domain.OutcomeRejectedItemLimit,
		domain.OutcomeRejectedDependency:
		h.writeError(w, r, domain.HTTPStatus(out.Err), out.Err.Error())
	case domain.OutcomeFailed:
		h.writeError(w, r, http.StatusInternalServerError, out.Err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "unhandled order outcome", "outcome", out.Kind.String())
		h.writeError(w, r, http.StatusInternalServerError, "unhandled order outcome")
	}
}

func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	out := h.payments.Pay(r.Context(), decodePayment(readBody(w, r)))
	if out.Err != nil {
		h.writeError(w, r, domain.HTTPStatus(out.Err), out.Err.Error())
		return
	}
	h.writeJSON(w, r, http.StatusOK, PaymentResponse{Status: out.Status})
}

func (h *Handler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.ListRestaurants(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list restaurants", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "failed to list restaurants")
		return
	}
	h.writeJSON(w, r, http.StatusOK, list)
}

func (h *Handler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	rest, err := h.catalog.GetRestaurant(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrRestaurantNotFound) {
		h.writeError(w, r, http.StatusNotFound, domain.MsgRestaurantMissing)
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to fetch restaurant", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "failed to fetch restaurant")
		return
	}

	menu := rest.MenuItems
	if menu == nil {
		menu = []domain.MenuItem{}
	}
	h.writeJSON(w, r, http.StatusOK, RestaurantDetail{Restaurant: rest, MenuItems: menu})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}

// readBody returns the request body, or nil when it cannot be read in full.
func readBody(w http.ResponseWriter, r *http.Request) []byte {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil
	}
	return body
}

// writeJSON encodes v before writing the status, so a value that cannot be
// encoded turns into a 500 instead of a success with an empty body.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode response", "status", status, "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, ErrorResponse{Error: msg})
}
