package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/richard-senior/podds/internal/logger"
	"github.com/richard-senior/podds/pkg/datasource"
)

// Server is the REST API surface over the prediction engine and store
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer wires the router, middleware and handlers
func NewServer(port string, ds *datasource.Datasource) *Server {
	handler := NewHandler(ds)

	router := mux.NewRouter()
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/periods/current", handler.GetCurrentPeriod).Methods("GET")
	api.HandleFunc("/periods/{period}/predictions", handler.GetPeriodPredictions).Methods("GET")
	api.HandleFunc("/predict", handler.PostPredict).Methods("POST")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Router exposes the handler chain for tests
func (s *Server) Router() http.Handler {
	return s.server.Handler
}

// Start blocks serving HTTP until shutdown
func (s *Server) Start() error {
	logger.Info("REST server listening", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// RecoveryMiddleware turns handler panics into 500 responses
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("handler panic", r.Method, r.URL.Path, rec)
				respondError(w, http.StatusInternalServerError, "internal server error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs each request with its duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("request", r.Method, r.URL.Path, time.Since(start).String())
	})
}
