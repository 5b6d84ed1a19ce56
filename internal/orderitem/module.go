package orderitem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/filestore"
	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/inbound"
	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/outbound"
	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/store"
	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/telemetry"
	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/usecase"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgconfig"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgrouter"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkguid"
)

const metricsNamespace = "ordermetrics"

type Dependency struct {
	Config   pkgconfig.Config
	Router   *pkgrouter.Router
	Registry prometheus.Registerer
	ID       pkguid.StringID
}

// New wires the order item module and registers its routes. The returned
// closer releases the store connection, if any.
func New(dep Dependency) (func(context.Context) error, error) {
	if dep.Config == nil || dep.Router == nil {
		return nil, errors.New("orderitem: config and router are required")
	}

	files, err := newFileStore(dep.Config)
	if err != nil {
		return nil, err
	}

	storage, closer, err := newStore(dep.Config)
	if err != nil {
		return nil, err
	}

	var observer usecase.Observer
	if dep.Registry != nil {
		prom, err := telemetry.NewPrometheus(dep.Registry, metricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("orderitem: register metrics: %w", err)
		}
		observer = prom
	}

	if dep.ID == nil {
		dep.ID = pkguid.NewUUID()
	}

	uc := usecase.New(usecase.Dependency{
		Store: storage,
		Files: files,
		Fetcher: outbound.NewHTTPFetcher(outbound.HTTPFetcherConfig{
			Timeout:   dep.Config.GetDuration("orderitem.fetch.timeout"),
			MaxBytes:  dep.Config.GetInt("orderitem.fetch.max_bytes"),
			UserAgent: dep.Config.GetString("app.name"),
		}),
		Observer: observer,
		ID:       dep.ID,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Config.GetString("orderitem.http.prefix"))

	slog.Info("module orderitem initialized",
		"storage", dep.Config.GetString("orderitem.storage.driver"),
		"store", dep.Config.GetString("orderitem.store.driver"),
	)

	return closer, nil
}

func newFileStore(cfg pkgconfig.Config) (usecase.FileStore, error) {
	switch driver := cfg.GetString("orderitem.storage.driver"); driver {
	case "", "local":
		return filestore.NewLocal(cfg.GetString("orderitem.storage.dir"))
	case "s3":
		s3cfg := filestore.S3Config{
			Bucket:          cfg.GetString("orderitem.storage.s3.bucket"),
			Prefix:          cfg.GetString("orderitem.storage.s3.prefix"),
			Region:          cfg.GetString("orderitem.storage.s3.region"),
			Endpoint:        cfg.GetString("orderitem.storage.s3.endpoint"),
			AccessKeyID:     cfg.GetString("orderitem.storage.s3.access_key_id"),
			SecretAccessKey: cfg.GetString("orderitem.storage.s3.secret_access_key"),
			Timeout:         cfg.GetDuration("orderitem.storage.s3.timeout"),
		}

		client, err := filestore.NewS3Client(context.Background(), s3cfg)
		if err != nil {
			return nil, err
		}
		return filestore.NewS3(client, s3cfg.Bucket, s3cfg.Prefix)
	default:
		return nil, fmt.Errorf("orderitem: unknown storage driver %q", driver)
	}
}

func newStore(cfg pkgconfig.Config) (usecase.Store, func(context.Context) error, error) {
	switch driver := cfg.GetString("orderitem.store.driver"); driver {
	case "", "memory":
		return store.NewInMemoryStore(), nil, nil
	case "redis":
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.GetString("orderitem.store.redis.address"),
			Password: cfg.GetString("orderitem.store.redis.password"),
			DB:       int(cfg.GetInt("orderitem.store.redis.db")),
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("orderitem: ping redis: %w", err)
		}

		closer := func(context.Context) error {
			return rdb.Close()
		}

		return store.NewRedisStore(rdb, store.RedisConfig{
			Prefix: cfg.GetString("orderitem.store.redis.prefix"),
			TTL:    cfg.GetDuration("orderitem.store.redis.ttl"),
		}), closer, nil
	default:
		return nil, nil, fmt.Errorf("orderitem: unknown store driver %q", driver)
	}
}
