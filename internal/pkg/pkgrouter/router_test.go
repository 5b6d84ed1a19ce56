package pkgrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgerror"
)

type createdResponse struct {
	ID string `json:"id"`
}

func (createdResponse) StatusCode() int {
	return http.StatusCreated
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Detail
}

func TestRouterEncodesPayloadWithoutEnvelope(t *testing.T) {
	r := NewRouter(&staticGenerator{value: "cid"})
	r.POST("/things", func(ctx context.Context, _ *http.Request) (any, error) {
		return createdResponse{ID: "abc"}, nil
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/things", nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"id":"abc"}` {
		t.Fatalf("unexpected body: %s", got)
	}
	if got := rec.Header().Get(HeaderCorrelationID); got != "cid" {
		t.Fatalf("expected correlation id header, got %q", got)
	}
}

func TestRouterMapsErrorsToDetail(t *testing.T) {
	r := NewRouter(nil)
	r.GET("/missing", func(ctx context.Context, _ *http.Request) (any, error) {
		return nil, pkgerror.NewBusiness("upload not found", pkgerror.CodeNotFound)
	})
	r.GET("/boom", func(ctx context.Context, _ *http.Request) (any, error) {
		return nil, errors.New("raw failure")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := decodeDetail(t, rec); got != "upload not found" {
		t.Fatalf("unexpected detail: %q", got)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := decodeDetail(t, rec); got != "Internal server error" {
		t.Fatalf("unexpected detail: %q", got)
	}
}

func TestRouterNotFoundAndMethodNotAllowed(t *testing.T) {
	r := NewRouter(nil)
	r.GET("/only-get", func(ctx context.Context, _ *http.Request) (any, error) {
		return map[string]string{"ok": "yes"}, nil
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := decodeDetail(t, rec); got != "Not Found" {
		t.Fatalf("unexpected detail: %q", got)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/only-get", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestRouterRecoversPanics(t *testing.T) {
	r := NewRouter(nil)
	r.GET("/panic", func(ctx context.Context, _ *http.Request) (any, error) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHTTPMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewHTTPMetrics(reg, "test")
	if err != nil {
		t.Fatalf("NewHTTPMetrics: %v", err)
	}

	r := NewRouter(nil, metrics.Middleware())
	r.GET("/items/:id", func(ctx context.Context, _ *http.Request) (any, error) {
		return map[string]string{"id": GetParam(ctx, "id")}, nil
	})

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}

	got := testutil.ToFloat64(metrics.requests.WithLabelValues(http.MethodGet, "/items/:id", "200"))
	if got != 3 {
		t.Fatalf("expected 3 requests on route pattern, got %v", got)
	}

	if _, err := NewHTTPMetrics(reg, "test"); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
