// Package server exposes polled sensor states over HTTP: a small JSON API, a
// rendered dashboard, tide chart SVGs, and the station setup flow.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tidewatch/internal/config"
	"tidewatch/internal/metrics"
	"tidewatch/internal/poll"
	"tidewatch/pkg/coops"
	"tidewatch/pkg/stations"
)

const (
	day = 24 * time.Hour

	// Rendered tide charts change slowly; cache for less than the poll
	// interval so charts never lag a full cycle behind the sensors.
	svgCacheTTL = 55 * time.Minute
)

// Server wires the poll manager and station directory into HTTP handlers.
type Server struct {
	Manager   *poll.Manager
	Directory *stations.Directory
	Validator *config.Validator
	COOPS     *coops.Client
	Logger    *slog.Logger

	// Register persists a validated entry and starts polling it. Called by
	// the setup flow.
	Register func(e config.Entry) error
}

// Routes installs all handlers on the router.
func (s *Server) Routes(r *mux.Router) {
	r.Use(metrics.LatencyHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/api/v1/sensors", s.handleSensors).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/sensors/{id}", s.handleSensor).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/entries", s.handleEntries).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/states", s.handleStates).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/stations", s.handleStations).Methods(http.MethodGet)

	r.Handle("/tides/{station}.svg", s.makeTideSVG()).Methods(http.MethodGet)

	s.registerSetup(r)
	r.Handle("/", s.makeIndex()).Methods(http.MethodGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":  "ok",
		"entries": len(s.Manager.Entries()),
	})
}

func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Manager.Sensors())
}

func (s *Server) handleSensor(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	state, ok := s.Manager.Sensor(id)
	if !ok {
		http.Error(w, fmt.Sprintf("no sensor %q", id), http.StatusNotFound)
		return
	}
	writeJSON(w, state)
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	type entryStatus struct {
		config.Entry
		ID          string    `json:"id"`
		LastSuccess time.Time `json:"last_success"`
		LastError   string    `json:"last_error,omitempty"`
	}

	var out []entryStatus
	for _, e := range s.Manager.Entries() {
		st := entryStatus{Entry: e, ID: e.ID()}
		if c, ok := s.Manager.Coordinator(e.ID()); ok {
			st.LastSuccess = c.LastSuccess()
			if err := c.LastError(); err != nil {
				st.LastError = err.Error()
			}
		}
		out = append(out, st)
	}
	writeJSON(w, out)
}

// handleStates lists the US states with tide prediction stations, for the
// setup flow's station picker.
func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	states, err := s.Directory.States(r.Context())
	if err != nil {
		s.Logger.Error("list states", "error", err)
		http.Error(w, "station directory unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, states)
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	state := r.FormValue("state")

	var (
		list []stations.Station
		err  error
	)
	if state != "" {
		list, err = s.Directory.ByState(r.Context(), state)
	} else {
		list, err = s.Directory.Stations(r.Context(), stations.TidePredictions)
	}
	if err != nil {
		s.Logger.Error("list stations", "error", err)
		http.Error(w, "station directory unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, list)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}
