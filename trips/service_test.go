package trips_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voyago/voyago-go/httpclient"
	"github.com/voyago/voyago-go/trips"
)

func newService(t *testing.T, handler http.HandlerFunc) *trips.Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return trips.NewService(httpclient.New(server.URL))
}

func TestList(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v1/trips", r.URL.Path)
		w.Write([]byte(`{"success":true,"data":{"trips":[
			{"id":"trip-1","title":"Lisbon long weekend","origin":"LON","destination":"LIS"},
			{"id":"trip-2","title":"Tokyo spring","origin":"LON","destination":"TYO"}
		]}}`))
	})

	got, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "trip-1", got[0].ID)
	require.Equal(t, "Tokyo spring", got[1].Title)
}

func TestListEmpty(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"trips":[]}}`))
	})

	got, err := service.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestGet(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/trips/trip-1", r.URL.Path)
		w.Write([]byte(`{"success":true,"data":{"trip":{"id":"trip-1","title":"Lisbon long weekend","preferences":["food","museums"]}}}`))
	})

	got, err := service.Get(context.Background(), "trip-1")
	require.NoError(t, err)
	require.Equal(t, "trip-1", got.ID)
	require.Equal(t, []string{"food", "museums"}, got.Preferences)
}

func TestGetRequiresID(t *testing.T) {
	var called bool
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := service.Get(context.Background(), "")
	require.Error(t, err)
	require.False(t, called, "missing ID must never reach the backend")
}

func TestCreate(t *testing.T) {
	create := trips.CreateTrip{
		Title:       "Lisbon long weekend",
		Origin:      "LON",
		Destination: "LIS",
		StartDate:   "2026-09-10",
		EndDate:     "2026-09-14",
		Budget:      "1200",
		Preferences: []string{"food"},
	}

	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/trips", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var sent trips.CreateTrip
		require.NoError(t, json.Unmarshal(body, &sent))
		require.Equal(t, create, sent)

		w.Write([]byte(`{"success":true,"data":{"trip":{"id":"trip-9","title":"Lisbon long weekend"}}}`))
	})

	got, err := service.Create(context.Background(), create)
	require.NoError(t, err)
	require.Equal(t, "trip-9", got.ID)
}

func TestCreateWithoutTripInResponse(t *testing.T) {
	service := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{}}`))
	})

	_, err := service.Create(context.Background(), trips.CreateTrip{Title: "x"})
	require.Error(t, err)
}
