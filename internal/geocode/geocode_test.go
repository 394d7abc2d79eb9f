package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestResolve_OK(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "1 Main St" {
			t.Errorf("q = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"40.7128","lon":"-74.0060"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	coords, err := c.Resolve(context.Background(), "1 Main St")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if coords.Lat != 40.7128 || coords.Lng != -74.0060 {
		t.Fatalf("coords = %+v", coords)
	}
}

func TestResolve_NoResults(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if _, err := c.Resolve(context.Background(), "nowhere"); err == nil {
		t.Fatalf("want error for empty result set")
	}
}

func TestResolve_UpstreamError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if _, err := c.Resolve(context.Background(), "1 Main St"); err == nil {
		t.Fatalf("want error for upstream failure")
	}
}
