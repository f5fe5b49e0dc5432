package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type fixedCount int

func (c fixedCount) Len() int { return int(c) }

func TestHealthEndpoint(t *testing.T) {
	status := &botStatus{}
	status.Set("online")
	router := newHealthRouter(status, fakePinger{}, fixedCount(2))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, healthResponse{
		Status: "healthy", Service: "discord-bot", BotStatus: "online", Database: "ok", ActiveSessions: 2,
	}, resp)
}

func TestHealthEndpointDegradedWithoutDatabase(t *testing.T) {
	router := newHealthRouter(&botStatus{}, fakePinger{err: errors.New("connection refused")}, fixedCount(0))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "starting", resp.BotStatus)
	assert.Equal(t, "connection refused", resp.Database)
}

func TestRootStatus(t *testing.T) {
	status := &botStatus{}
	status.Set("running")
	router := newHealthRouter(status, fakePinger{}, fixedCount(0))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "Discord Bot Status: running", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
