package pkgrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
)

func TestChainOrder(t *testing.T) {
	order := make([]string, 0, 3)

	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("mw1"), mw("mw2"))

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if !reflect.DeepEqual(order, []string{"mw1", "mw2", "handler"}) {
		t.Fatalf("unexpected order: %#v", order)
	}
}

func TestGetParam(t *testing.T) {
	params := httprouter.Params{{Key: "file_id", Value: " 123 "}}
	ctx := context.WithValue(context.Background(), httprouter.ParamsKey, params)

	if got := GetParam(ctx, "file_id"); got != "123" {
		t.Fatalf("expected file_id=123, got %q", got)
	}
	if got := GetParam(ctx, "missing"); got != "" {
		t.Fatalf("expected empty value for unknown key, got %q", got)
	}
}

func TestGetParamThroughRouter(t *testing.T) {
	r := NewRouter(nil)
	r.GET("/uploads/:file_id/processing-stats", func(ctx context.Context, _ *http.Request) (any, error) {
		return map[string]string{"file_id": GetParam(ctx, "file_id")}, nil
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/abc/processing-stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"file_id":"abc"}` {
		t.Fatalf("unexpected body %s", got)
	}
}
