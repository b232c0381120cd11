package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID)
	r.Use(Logging)

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Card routes
	api.HandleFunc("/cards", handler.GetAllCards).Methods("GET")
	api.HandleFunc("/cards", handler.AddCard).Methods("POST")
	api.HandleFunc("/cards/{id}", handler.GetCard).Methods("GET")
	api.HandleFunc("/cards/{id}", handler.RemoveCard).Methods("DELETE")
	api.HandleFunc("/cards/{id}/sales", handler.GetCardSales).Methods("GET")
	api.HandleFunc("/cards/{id}/chart", handler.GetCardChart).Methods("GET")

	// Portfolio routes
	api.HandleFunc("/portfolio", handler.GetPortfolio).Methods("GET")
	api.HandleFunc("/portfolio", handler.AddHolding).Methods("POST")
	api.HandleFunc("/portfolio/summary", handler.GetPortfolioSummary).Methods("GET")
	api.HandleFunc("/portfolio/snapshot", handler.SnapshotPortfolio).Methods("POST")
	api.HandleFunc("/portfolio/history", handler.GetPortfolioHistory).Methods("GET")
	api.HandleFunc("/portfolio/{id}", handler.RemoveHolding).Methods("DELETE")

	return r
}
