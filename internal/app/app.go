package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgconfig"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkglog"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgrouter"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgroutine"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkguid"
)

// App owns every long-lived resource of the process. Construction failures
// are fatal; a half-built App is never returned.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	config pkgconfig.Config

	fileID    pkguid.StringID
	cid       pkguid.StringID
	goroutine *pkgroutine.Manager
	registry  *prometheus.Registry

	router     *pkgrouter.Router
	httpServer *http.Server

	// closers run on Stop, keyed by a name used in logs
	closers map[string]func(context.Context) error
}

func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		ctx:     ctx,
		cancel:  cancel,
		closers: map[string]func(context.Context) error{},
	}

	a.initConfig()
	pkglog.InitLogging(a.config.GetString("app.name"), pkglog.ParseLevel(a.config.GetString("log.level")))

	a.initLibraries()
	a.initHTTPServer()
	a.initModules()
	a.initClosers()

	slog.Info("application initialised", "closers", len(a.closers))
	return a
}

func (a *App) addCloser(name string, fn func(context.Context) error) {
	a.closers[name] = fn
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
