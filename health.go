package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
)

// botStatus is the gateway lifecycle reported by the health endpoints
type botStatus struct {
	v atomic.Value
}

func (s *botStatus) Set(status string) { s.v.Store(status) }

func (s *botStatus) Get() string {
	status, _ := s.v.Load().(string)
	if status == "" {
		return "starting"
	}
	return status
}

type pinger interface {
	Ping(ctx context.Context) error
}

type sessionCounter interface {
	Len() int
}

type healthResponse struct {
	Status         string `json:"status"`
	Service        string `json:"service"`
	BotStatus      string `json:"bot_status"`
	Database       string `json:"database"`
	ActiveSessions int    `json:"active_sessions"`
}

// newHealthRouter serves the platform health checks
func newHealthRouter(status *botStatus, db pinger, sessions sessionCounter) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Discord Bot Status: %s", status.Get())
	}).Methods(http.MethodGet)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status:         "healthy",
			Service:        "discord-bot",
			BotStatus:      status.Get(),
			Database:       "ok",
			ActiveSessions: sessions.Len(),
		}
		code := http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = err.Error()
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(resp)
	}).Methods(http.MethodGet)

	return router
}
