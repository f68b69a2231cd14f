package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"shipment-dispatch-service/internal/api/handlers"
	"shipment-dispatch-service/internal/platform/obs"
	"shipment-dispatch-service/internal/ports"
)

// Deps are the collaborators the HTTP layer needs. Filler may be nil when
// geocoding is not configured.
type Deps struct {
	Trucks    ports.TruckRepository
	Shipments ports.ShipmentRepository
	Optimizer handlers.RouteOptimizer
	Filler    handlers.GeocodeFiller
	Sequencer handlers.RouteSequencer
	Logger    *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	logger := obs.OrNop(d.Logger)

	truckHandler := &handlers.TruckHandler{Repo: d.Trucks}
	shipmentHandler := &handlers.ShipmentHandler{Repo: d.Shipments, Filler: d.Filler}
	optimizeHandler := &handlers.OptimizeHandler{Optimizer: d.Optimizer}
	routeHandler := &handlers.RouteHandler{Sequencer: d.Sequencer}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.CleanPath)
	r.Use(requestID)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverJSON(logger))

	r.Get("/health", handlers.Health)

	r.Route("/trucks", func(r chi.Router) {
		r.Get("/", truckHandler.List)
		r.Post("/", truckHandler.Create)
		r.Post("/bulk", truckHandler.CreateBulk)
		r.Delete("/{id}", truckHandler.Delete)
	})

	r.Route("/shipments", func(r chi.Router) {
		r.Get("/", shipmentHandler.List)
		r.Post("/", shipmentHandler.Create)
		r.Post("/bulk", shipmentHandler.CreateBulk)
		r.Get("/ungeocoded", shipmentHandler.ListUngeocoded)
		r.Post("/geocode", shipmentHandler.Geocode)
		r.Delete("/{id}", shipmentHandler.Delete)
	})

	r.Post("/optimize-routes", optimizeHandler.Optimize)
	r.Get("/routes/{truckNumber}", routeHandler.Get)

	return r
}
