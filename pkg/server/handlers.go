package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/richard-senior/podds/pkg/datasource"
	"github.com/richard-senior/podds/pkg/engine"
	"github.com/richard-senior/podds/pkg/store"
)

// Handler carries the dependencies the route handlers need
type Handler struct {
	ds *datasource.Datasource
}

func NewHandler(ds *datasource.Datasource) *Handler {
	return &Handler{ds: ds}
}

// HealthCheck reports service liveness
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetCurrentPeriod resolves the pool period currently on sale
func (h *Handler) GetCurrentPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.ds.CurrentPeriod(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to resolve current period", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"period": period})
}

// GetPeriodPredictions returns every stored fixture for a period along
// with its prediction columns
func (h *Handler) GetPeriodPredictions(w http.ResponseWriter, r *http.Request) {
	period := mux.Vars(r)["period"]

	fixtures, err := store.FixturesForPeriod(period)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load fixtures", err)
		return
	}
	if len(fixtures) == 0 {
		respondError(w, http.StatusNotFound, "no fixtures for period "+period, nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"period":   period,
		"count":    len(fixtures),
		"fixtures": fixtures,
	})
}

// PostPredict runs the engine on a raw request body: two team ids plus
// the match history to derive everything from
func (h *Handler) PostPredict(w http.ResponseWriter, r *http.Request) {
	var req engine.PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	prediction, err := engine.Predict(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "prediction failed", err)
		return
	}
	respondJSON(w, http.StatusOK, prediction)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
