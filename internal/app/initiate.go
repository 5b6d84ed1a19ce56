package app

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgconfig"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgrouter"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgroutine"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkguid"
)

const metricsNamespace = "ordermetrics"

var defaults = map[string]any{
	"app.name":                       "order-metrics-api",
	"tz":                             "UTC",
	"log.level":                      "info",
	"server.address.http":            ":8000",
	"server.cors.origins":            "*",
	"metrics.enabled":                true,
	"modules.orderitem.enabled":      true,
	"orderitem.http.prefix":          "/api/v1/order-items",
	"orderitem.storage.driver":       "local",
	"orderitem.storage.dir":          "data",
	"orderitem.storage.s3.timeout":   "30s",
	"orderitem.fetch.timeout":        "60s",
	"orderitem.fetch.max_bytes":      0,
	"orderitem.store.driver":         "memory",
	"orderitem.store.redis.address":  "localhost:6379",
	"orderitem.store.redis.password": "",
	"orderitem.store.redis.db":       0,
	"orderitem.store.redis.prefix":   "ordermetrics:upload:",
	"orderitem.store.redis.ttl":      "0s",
}

func (a *App) initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fatal("failed to load .env file", err)
	}

	path := "/config/config.yaml"
	if os.Getenv("LOCAL") == "true" {
		path = "./config/config.yaml"
	}

	cfg, err := pkgconfig.NewViper(path, pkgconfig.WithDefaults(defaults))
	if err != nil {
		fatal("failed to init config", err)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("tz"))

	a.config = cfg
}

func (a *App) initLibraries() {
	a.goroutine = pkgroutine.NewManager(10)
	a.fileID = pkguid.NewUUID()

	cid, err := pkguid.NewSnowflake()
	if err != nil {
		fatal("failed to init snowflake", err)
	}
	a.cid = cid

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func (a *App) initHTTPServer() {
	var mws []pkgrouter.Middleware
	if a.config.GetBool("metrics.enabled") {
		httpMetrics, err := pkgrouter.NewHTTPMetrics(a.registry, metricsNamespace)
		if err != nil {
			fatal("failed to init http metrics", err)
		}
		mws = append(mws, httpMetrics.Middleware())
	}

	a.router = pkgrouter.NewRouter(a.cid, mws...)

	if a.config.GetBool("metrics.enabled") {
		a.router.Handle(http.MethodGet, "/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("server.cors.origins"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("server.address.http"),
		Handler:           corsHandler.Handler(a.router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (a *App) initClosers() {
	a.addCloser(closerHTTPServer, a.httpServer.Shutdown)
	a.addCloser("Config", func(context.Context) error {
		return a.config.Close()
	})
}
