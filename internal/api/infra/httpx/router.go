package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/foodme/internal/api/infra/httpx/middlewares"
)

const (
	APIRestaurants = "/api/restaurant"
	APIOrder       = "/api/order"
	APIPayment     = "/api/payment"
)

// RouterConfig holds the optional pieces of the router. Empty directories
// and a nil metrics handler leave the matching routes unmounted.
type RouterConfig struct {
	ServiceName    string
	StaticDir      string
	TestDir        string
	Metrics        http.Handler
	TracerProvider trace.TracerProvider
	Logger         *slog.Logger
}

// NewRouter builds the HTTP surface. The whole router is wrapped in an
// otelhttp server span so every log record and pipeline span of a request
// shares its trace.
func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewares.RequestID)
	r.Use(middlewares.Logging(cfg.Logger))
	r.Use(middleware.Recoverer)

	r.Get(APIRestaurants, handler.ListRestaurants)
	r.Get(APIRestaurants+"/{id}", handler.GetRestaurant)
	r.Post(APIOrder, handler.PlaceOrder)
	r.Post(APIPayment, handler.Pay)
	r.Get("/healthz", handler.Health)

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	if cfg.TestDir != "" {
		r.Handle("/test/*", http.StripPrefix("/test/", http.FileServer(http.Dir(cfg.TestDir))))
	}
	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	name := cfg.ServiceName
	if name == "" {
		name = "foodme-api"
	}
	opts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + req.URL.Path
		}),
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(cfg.TracerProvider))
	}
	return otelhttp.NewHandler(r, name, opts...)
}
