package simhttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_SimulateGPS(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/functions/v1/schedule-gps-updates", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"updated_vehicles":3,"message":"ok"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key", func() string { return "session-token" })
	res, err := c.SimulateGPS(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, res.UpdatedVehicles)
	require.Equal(t, "Bearer session-token", gotAuth)
}

func TestClient_SimulateGPS_anonFallback(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"updated_vehicles":0}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key", nil)
	_, err := c.SimulateGPS(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer anon-key", gotAuth)
}

func TestClient_SimulateGPS_httpError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key", nil)
	_, err := c.SimulateGPS(context.Background())
	require.Error(t, err)
}
