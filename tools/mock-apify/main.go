// Package main implements a mock Apify API server for local development.
// It serves a canned itinerary dataset from a JSON fixture so the resolver
// can run scrapes without a real Apify token or task.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

const datasetID = "mock-dataset"

type runResponse struct {
	Data runData `json:"data"`
}

type runData struct {
	ID               string `json:"id"`
	ActID            string `json:"actId"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

// runInput is the subset of the task input the mock filters on.
type runInput struct {
	ShipName string `json:"ship_name"`
}

func main() {
	port := flag.Int("port", 8090, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-apify/testdata/dataset.json", "path to dataset fixture")
	token := flag.String("token", "", "require this bearer token (empty accepts any)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dataset, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "records", len(dataset))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      requestLogger(logger, newMux(logger, dataset, *token)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Info("starting mock Apify server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadFixture(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return records, nil
}

func newMux(logger *slog.Logger, dataset []map[string]any, token string) http.Handler {
	// Records for the most recent run, narrowed to the requested ship.
	var current atomic.Pointer[[]map[string]any]
	current.Store(&dataset)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/actor-tasks/{taskID}", taskHandler(logger))
	mux.HandleFunc("POST /v2/actor-tasks/{taskID}/runs", runHandler(logger, dataset, &current))
	mux.HandleFunc("GET /v2/datasets/{datasetID}/items", datasetHandler(logger, &current))
	return requireToken(token, mux)
}

func requireToken(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if got == "" || (token != "" && got != token) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error": map[string]string{
					"type":    "token-not-valid",
					"message": "Authentication token is not valid.",
				},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func taskHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID := r.PathValue("taskID")
		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]string{"id": taskID, "name": "cruise-itinerary-mock"},
		})
		logger.Info("task probed", "task", taskID)
	}
}

func runHandler(logger *slog.Logger, dataset []map[string]any, current *atomic.Pointer[[]map[string]any]) http.HandlerFunc {
	var runs atomic.Int64

	return func(w http.ResponseWriter, r *http.Request) {
		var in runInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": map[string]string{"type": "invalid-input", "message": err.Error()},
			})
			return
		}

		matched := filterByShip(dataset, in.ShipName)
		current.Store(&matched)

		n := runs.Add(1)
		writeJSON(w, http.StatusCreated, runResponse{Data: runData{
			ID:               fmt.Sprintf("mock-run-%d", n),
			ActID:            "mock-actor",
			Status:           "SUCCEEDED",
			DefaultDatasetID: datasetID,
		}})
		logger.Info("run finished", "task", r.PathValue("taskID"), "ship", in.ShipName, "records", len(matched))
	}
}

func datasetHandler(logger *slog.Logger, current *atomic.Pointer[[]map[string]any]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("datasetID") != datasetID {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error": map[string]string{"type": "record-not-found", "message": "Dataset was not found"},
			})
			return
		}
		records := *current.Load()
		writeJSON(w, http.StatusOK, records)
		logger.Info("dataset served", "records", len(records))
	}
}

// filterByShip keeps records for the ship, case-insensitively. An empty
// ship or no match returns the whole dataset.
func filterByShip(dataset []map[string]any, ship string) []map[string]any {
	want := strings.ToLower(strings.TrimSpace(ship))
	if want == "" {
		return dataset
	}
	out := make([]map[string]any, 0, len(dataset))
	for _, rec := range dataset {
		if s, ok := rec["ship_name"].(string); ok && strings.ToLower(strings.TrimSpace(s)) == want {
			out = append(out, rec)
		}
	}
	if len(out) == 0 {
		return dataset
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}
