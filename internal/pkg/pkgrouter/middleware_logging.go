package pkgrouter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
)

const (
	maxLoggedBodyBytes = 16 * 1024
	masked             = "***"
	redacted           = "REDACTED"
)

// sensitiveKeys are matched case-insensitively against header names, JSON
// keys and URL query parameters. The X-Amz-* entries cover presigned S3 links
// submitted as upload URLs.
//
//nolint:gochecknoglobals // global for fast reuse
var sensitiveKeys = map[string]struct{}{
	"authorization":        {},
	"proxy-authorization":  {},
	"cookie":               {},
	"set-cookie":           {},
	"x-api-key":            {},
	"password":             {},
	"access_token":         {},
	"refresh_token":        {},
	"token":                {},
	"sig":                  {},
	"signature":            {},
	"x-amz-signature":      {},
	"x-amz-credential":     {},
	"x-amz-security-token": {},
	"x-goog-signature":     {},
	"x-goog-credential":    {},
}

func isSensitive(key string) bool {
	_, found := sensitiveKeys[strings.ToLower(key)]
	return found
}

func maskHeaders(headers http.Header) http.Header {
	result := headers.Clone()
	for key := range result {
		if isSensitive(key) {
			result.Set(key, masked)
		}
	}
	return result
}

// maskURL hides the password part of the user info and the values of
// sensitive query parameters. Strings that are not absolute URLs are
// returned unchanged.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}

	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), redacted)
		}
	}

	u.RawQuery = maskQuery(u.RawQuery)

	return u.String()
}

func maskQuery(raw string) string {
	if raw == "" {
		return ""
	}

	query, err := url.ParseQuery(raw)
	if err != nil {
		return "<malformed query>"
	}

	changed := false
	for key := range query {
		if isSensitive(key) {
			query.Set(key, redacted)
			changed = true
		}
	}
	if !changed {
		return raw
	}
	return query.Encode()
}

func maskData(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v2 := range val {
			if isSensitive(k) {
				out[k] = masked
				continue
			}
			out[k] = maskData(v2)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, v2 := range val {
			out[i] = maskData(v2)
		}
		return out
	case string:
		if strings.HasPrefix(val, "http://") || strings.HasPrefix(val, "https://") {
			return maskURL(val)
		}
		return val
	default:
		return v
	}
}

func parseAndMaskBody(contentType string, body []byte, truncated bool) any {
	if len(body) == 0 {
		return nil
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)

	var parsed any
	switch {
	case mediaType == "application/json" && !truncated && json.Unmarshal(body, &parsed) == nil:
		parsed = maskData(parsed)
	case mediaType == "application/x-www-form-urlencoded" && !truncated:
		values, err := url.ParseQuery(string(body))
		if err != nil {
			parsed = "<malformed form body>"
			break
		}
		form := make(map[string]any, len(values))
		for k, v := range values {
			switch {
			case isSensitive(k):
				form[k] = masked
			case len(v) == 1:
				form[k] = maskData(v[0])
			default:
				form[k] = v
			}
		}
		parsed = form
	case !utf8.Valid(body) && !truncated:
		parsed = "<binary body omitted>"
	default:
		parsed = string(body)
	}

	if truncated {
		return map[string]any{"body": parsed, "truncated": true}
	}
	return parsed
}

// readBodyPrefix returns up to maxLoggedBodyBytes of r.Body and replaces the
// body so the handler still sees every byte.
func readBodyPrefix(r *http.Request) ([]byte, bool) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, false
	}

	//nolint:errcheck // best effort for logging only
	prefix, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes+1))

	truncated := len(prefix) > maxLoggedBodyBytes
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(prefix), r.Body), r.Body}

	if truncated {
		prefix = prefix[:maxLoggedBodyBytes]
	}
	return prefix, truncated
}

type statusRecorder struct {
	http.ResponseWriter
	status  int
	bytes   int
	capture bool // keep a copy of the body for logging
	body    bytes.Buffer
	capped  bool
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	if w.capture {
		if remaining := maxLoggedBodyBytes - w.body.Len(); remaining < len(p) {
			w.body.Write(p[:max(remaining, 0)])
			w.capped = true
		} else {
			w.body.Write(p)
		}
	}

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

//nolint:err113 // it use dynamic error
func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}

func (w *statusRecorder) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// responseBody is only logged for JSON responses. Anything else, such as the
// Prometheus exposition on /metrics, is reported by size alone.
func (w *statusRecorder) responseBody() any {
	mediaType, _, _ := mime.ParseMediaType(w.Header().Get("Content-Type"))
	if mediaType != "application/json" {
		return nil
	}
	return parseAndMaskBody(mediaType, w.body.Bytes(), w.capped)
}

func matchedRoutePath(r *http.Request) string {
	pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath()
	if pattern != "" {
		return pattern
	}
	return r.URL.Path
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func middlewareLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := matchedRoutePath(r)
		start := time.Now()

		reqBody, reqTruncated := readBodyPrefix(r)

		slog.InfoContext(
			r.Context(),
			"request received",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"query", maskQuery(r.URL.RawQuery),
			"headers", maskHeaders(r.Header),
			"body", parseAndMaskBody(r.Header.Get("Content-Type"), reqBody, reqTruncated),
		)

		rec := &statusRecorder{ResponseWriter: w, capture: true}
		next.ServeHTTP(rec, r)

		status := rec.statusCode()
		slog.Log(
			r.Context(),
			levelForStatus(status),
			"response sent",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"status", status,
			"bytes", rec.bytes,
			"latency_ms", time.Since(start).Milliseconds(),
			"body", rec.responseBody(),
		)
	})
}
