package pkgrouter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"

	"github.com/julienschmidt/httprouter"

	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgerror"
)

// Handler returns a payload that is JSON encoded as-is, or an error that is
// rendered as {"detail": ...}. A payload implementing StatusCode() int picks
// its own success status.
type Handler func(ctx context.Context, r *http.Request) (any, error)

type statusCoder interface {
	StatusCode() int
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Router serves httprouter routes behind a shared middleware stack.
type Router struct {
	hr  *httprouter.Router
	mws []Middleware
}

// NewRouter returns a router with recovery, correlation IDs and request
// logging installed, followed by mws. It also serves "/" and "/health".
func NewRouter(cid Generator, mws ...Middleware) *Router {
	r := &Router{
		hr: &httprouter.Router{
			RedirectTrailingSlash:  true,
			RedirectFixedPath:      true,
			HandleMethodNotAllowed: true,
			HandleOPTIONS:          true,
			SaveMatchedRoutePath:   true,
			NotFound:               detailHandler(http.StatusNotFound, "Not Found"),
			MethodNotAllowed:       detailHandler(http.StatusMethodNotAllowed, "Method Not Allowed"),
		},
		mws: slices.Concat(
			[]Middleware{middlewareRecoverer, middlewareCorrelationID(cid), middlewareLogging},
			mws,
		),
	}

	r.Handle(http.MethodGet, "/", messageHandler("Welcome to the Order Metrics API"))
	r.Handle(http.MethodGet, "/health", messageHandler("server is running well"))

	return r
}

func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.Handle(http.MethodGet, path, r.adapt(h), mws...)
}

func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.Handle(http.MethodPost, path, r.adapt(h), mws...)
}

// Handle registers a plain http.Handler behind the router middleware plus mws.
func (r *Router) Handle(method, path string, h http.Handler, mws ...Middleware) {
	r.hr.Handler(method, path, Chain(h, slices.Concat(r.mws, mws)...))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}

func (r *Router) adapt(h Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		resp, err := h(ctx, req)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		writeResult(w, resp)
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	gerr, ok := pkgerror.As(err)
	if !ok {
		slog.ErrorContext(ctx, "unhandled error reached the router", "error", err)
		writeJSON(w, errorResponse{Detail: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	if gerr.Type() == pkgerror.TypeServer {
		slog.ErrorContext(ctx, "request failed", "error", gerr.String())
	}
	writeJSON(w, errorResponse{Detail: gerr.Msg()}, gerr.StatusCode())
}

func writeResult(w http.ResponseWriter, resp any) {
	code := http.StatusOK
	if sc, ok := resp.(statusCoder); ok {
		code = sc.StatusCode()
	}
	if resp == nil || code == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, resp, code)
}

func detailHandler(code int, detail string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, errorResponse{Detail: detail}, code)
	})
}

func messageHandler(msg string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"message": msg}, http.StatusOK)
	})
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("router: encode response", "error", err)
	}
}
