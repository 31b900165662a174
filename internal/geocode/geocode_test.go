package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCoordinatesSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "12 rue de la Paix,Lyon" {
			t.Fatalf("unexpected query: %q", got)
		}
		if got := r.URL.Query().Get("type"); got != "housenumber" {
			t.Fatalf("unexpected type: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[4.85,45.75]}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	lat, lon, err := client.Coordinates(context.Background(), "12 rue de la Paix", "Lyon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lat != 45.75 || lon != 4.85 {
		t.Fatalf("coordinates swapped or wrong: %f, %f", lat, lon)
	}
}

func TestCoordinatesCityOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("type"); got != "locality" {
			t.Fatalf("unexpected type: %q", got)
		}
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[2.35,48.85]}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	lat, _, err := client.Coordinates(context.Background(), "", "Paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lat != 48.85 {
		t.Fatalf("unexpected latitude: %f", lat)
	}
}

func TestCoordinatesNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, _, err := client.Coordinates(context.Background(), "", "Nowhere")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestCoordinatesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, _, err := client.Coordinates(context.Background(), "", "Paris")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestCoordinatesServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL)
	_, _, err := client.Coordinates(context.Background(), "", "Paris")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
