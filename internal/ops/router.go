package ops

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/invalid8th/bookingbot/internal/booking"
	"github.com/invalid8th/bookingbot/pkg/logging"
)

const opsTokenHeader = "X-Ops-Token"

// Config holds the operational HTTP surface's dependencies.
type Config struct {
	Logger   *logging.Logger
	Store    *booking.Store
	Registry *prometheus.Registry

	// OpsToken guards the bookings listing. Empty disables the guard.
	OpsToken string
}

// New creates the operational router: liveness, metrics and a read-only
// bookings listing. Hosting platforms probe /health with both GET and HEAD.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthCheck)
	r.Head("/health", healthCheck)

	if cfg.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	r.With(requireOpsToken(cfg.OpsToken)).Get("/bookings", listBookings(cfg))

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write([]byte("OK"))
	}
}

// requireOpsToken enforces a shared token on operator endpoints.
func requireOpsToken(expected string) func(http.Handler) http.Handler {
	expected = strings.TrimSpace(expected)
	return func(next http.Handler) http.Handler {
		if expected == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(opsTokenHeader))
			if token == "" || token != expected {
				http.Error(w, "invalid ops token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type bookingView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Handle    string `json:"handle"`
	Location  string `json:"location"`
	Category  string `json:"category"`
	Units     int    `json:"units"`
	Start     string `json:"start"`
	End       string `json:"end"`
	BasePrice int    `json:"base_price"`
	TravelFee *int   `json:"travel_fee"`
	Status    string `json:"status"`
}

func listBookings(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		finalized := cfg.Store.Finalized()
		views := make([]bookingView, 0, len(finalized))
		for _, b := range finalized {
			v := bookingView{
				ID:        b.ID.String(),
				Name:      b.Name,
				Handle:    b.Handle,
				Location:  b.Location,
				Category:  string(b.Category()),
				BasePrice: b.BasePrice,
				TravelFee: b.TravelFee,
				Status:    string(b.Status),
			}
			if b.Quantity != nil {
				v.Units = b.Quantity.Units()
			}
			if !b.Start.IsZero() {
				v.Start = b.Start.Format(time.RFC3339)
				v.End = b.End.Format(time.RFC3339)
			}
			views = append(views, v)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(views); err != nil && cfg.Logger != nil {
			cfg.Logger.Error("ops: encode bookings failed", "error", err)
		}
	}
}
