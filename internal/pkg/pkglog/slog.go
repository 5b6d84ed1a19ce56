package pkglog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// InitLogging installs a JSON logger on stdout as the slog default. Records
// carry "ts", "severity", a repo-relative "file" and the service name, plus
// the correlation and file ids found in the context.
func InitLogging(service string, level slog.Level) {
	slog.SetDefault(slog.New(newHandler(os.Stdout, service, level)))
}

func newHandler(w io.Writer, service string, level slog.Level) slog.Handler {
	return &contextHandler{
		Handler: slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			AddSource:   true,
			ReplaceAttr: renameAttr,
		}),
		service: service,
	}
}

func renameAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.SourceKey:
		if src, ok := a.Value.Any().(*slog.Source); ok {
			return sourceAttr(src)
		}
	}
	return a
}

// sourceAttr keeps only call sites inside this repository's internal tree.
func sourceAttr(src *slog.Source) slog.Attr {
	_, rel, ok := strings.Cut(src.File, "/internal/")
	if !ok {
		return slog.Attr{}
	}
	return slog.String("file", "internal/"+rel+":"+strconv.Itoa(src.Line))
}

// ParseLevel maps "debug", "info", "warn" or "error" (any case) to a slog
// level. Anything else means info.
func ParseLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo
	}
	return level
}

type contextHandler struct {
	slog.Handler
	service string
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if cID := CorrelationID(ctx); cID != "" {
		r.AddAttrs(slog.String("_cID", cID))
	}
	if fileID := FileID(ctx); fileID != "" {
		r.AddAttrs(slog.String("file_id", fileID))
	}
	if h.service != "" {
		r.AddAttrs(slog.String("service", h.service))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), service: h.service}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), service: h.service}
}
