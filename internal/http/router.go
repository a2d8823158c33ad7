package httpserver

import (
	"net/http"

	"wattline/internal/http/handlers"
	"wattline/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	Measurements    *handlers.MeasurementsHandler
	Consumption     *handlers.ConsumptionHandlers
	UserConsumption *handlers.UserConsumptionHandlers
	Thresholds      *handlers.ThresholdHandlers
	Alerts          *handlers.AlertsHandlers
	SensorSocket    http.Handler
	Health          http.HandlerFunc
}

// NewRouter wires HTTP routes with middleware.
func NewRouter(deps RouterDeps, authMiddleware func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", method(http.MethodGet, deps.Health))

	mux.Handle("/api/measurements", method(http.MethodPost, deps.Measurements))
	if deps.SensorSocket != nil {
		mux.Handle("/ws/sensors", deps.SensorSocket)
	}

	mux.Handle("/api/consumption/current", method(http.MethodGet, http.HandlerFunc(deps.Consumption.Current)))
	mux.Handle("/api/consumption/range", method(http.MethodGet, http.HandlerFunc(deps.Consumption.Range)))
	mux.Handle("/api/consumption/series", method(http.MethodGet, http.HandlerFunc(deps.Consumption.Series)))
	mux.Handle("/api/metrics", method(http.MethodGet, http.HandlerFunc(deps.Consumption.Metric)))

	mux.Handle("/api/devices/threshold", thresholdMux(deps.Thresholds))
	mux.Handle("/api/devices/type", method(http.MethodPut, http.HandlerFunc(deps.Thresholds.Provision)))
	mux.Handle("/api/alerts/read", method(http.MethodPost, http.HandlerFunc(deps.Alerts.MarkRead)))

	authenticated := func(handler http.HandlerFunc) http.Handler {
		return middleware.Chain(handler, authMiddleware)
	}

	mux.Handle("/api/me/consumption", method(http.MethodGet, authenticated(deps.UserConsumption.Aggregate)))
	mux.Handle("/api/me/consumption/summary", method(http.MethodGet, authenticated(deps.UserConsumption.Summary)))
	mux.Handle("/api/me/consumption/detail", method(http.MethodGet, authenticated(deps.UserConsumption.Detail)))
	mux.Handle("/api/me/report", method(http.MethodGet, authenticated(deps.UserConsumption.Report)))
	mux.Handle("/api/me/alerts", method(http.MethodGet, authenticated(deps.Alerts.List)))
	mux.Handle("/api/me/alerts/read", method(http.MethodPost, authenticated(deps.Alerts.MarkAllRead)))

	return mux
}

func thresholdMux(h *handlers.ThresholdHandlers) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.Get(w, r)
		case http.MethodPut:
			h.Set(w, r)
		default:
			w.Header().Set("Allow", "GET, PUT")
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func method(expected string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
