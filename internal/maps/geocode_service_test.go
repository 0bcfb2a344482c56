package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"googlemaps.github.io/maps"
)

func newTestGeocoder(t *testing.T, body string) *GeocodeService {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("address") == "" {
			t.Errorf("missing address in %s", r.URL)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	g, err := NewGeocodeService("test-key", maps.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("new geocoder: %v", err)
	}
	return g
}

func TestGeocode(t *testing.T) {
	g := newTestGeocoder(t, `{"status":"OK","results":[{"geometry":{"location":{"lat":48.1374,"lng":11.5755}}}]}`)
	p, err := g.Geocode(context.Background(), "Marienplatz 1, 80331 München")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if p.Lat != 48.1374 || p.Lng != 11.5755 {
		t.Fatalf("point = %+v", p)
	}
}

func TestGeocodeNoResult(t *testing.T) {
	for _, body := range []string{
		`{"status":"OK","results":[]}`,
		`{"status":"ZERO_RESULTS","results":[]}`,
	} {
		g := newTestGeocoder(t, body)
		if _, err := g.Geocode(context.Background(), "Nowhere 0"); !errors.Is(err, ErrNoResult) {
			t.Fatalf("%s: expected ErrNoResult, got %v", body, err)
		}
	}
}

func TestNewGeocodeServiceRequiresKey(t *testing.T) {
	if _, err := NewGeocodeService(""); err == nil {
		t.Fatal("expected error without API key")
	}
}
