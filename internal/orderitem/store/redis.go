package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/entity"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgerror"
)

const (
	fieldUpload  = "upload"
	fieldMetrics = "metrics"
)

// RedisStore keeps one hash per identifier. The upload field is written with
// HSETNX so download details are never overwritten; metrics are replaced on
// every save.
type RedisStore struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

type RedisConfig struct {
	Prefix string
	// TTL expires idle entries; zero keeps them forever.
	TTL time.Duration
}

func NewRedisStore(rdb goredis.UniversalClient, cfg RedisConfig) *RedisStore {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "ordermetrics:upload:"
	}

	return &RedisStore{
		rdb:    rdb,
		prefix: prefix,
		ttl:    cfg.TTL,
	}
}

func (s *RedisStore) CreateUpload(ctx context.Context, upload entity.Upload) error {
	raw, err := json.Marshal(toUploadDoc(upload))
	if err != nil {
		return fmt.Errorf("encode upload: %w", err)
	}

	key := s.key(upload.ID)
	created, err := s.rdb.HSetNX(ctx, key, fieldUpload, raw).Result()
	if err != nil {
		return fmt.Errorf("redis hsetnx %s: %w", key, err)
	}
	if !created {
		return pkgerror.NewBusiness("upload already exists", pkgerror.CodeConflict)
	}

	return s.touch(ctx, key)
}

func (s *RedisStore) FindUpload(ctx context.Context, fileID string) (entity.Upload, error) {
	key := s.key(fileID)
	raw, err := s.rdb.HGet(ctx, key, fieldUpload).Bytes()
	if errors.Is(err, goredis.Nil) {
		return entity.Upload{}, pkgerror.ErrNotFound
	}
	if err != nil {
		return entity.Upload{}, fmt.Errorf("redis hget %s: %w", key, err)
	}

	var doc uploadDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return entity.Upload{}, fmt.Errorf("decode upload %s: %w", fileID, err)
	}

	return doc.toEntity(fileID), nil
}

func (s *RedisStore) SaveMetrics(ctx context.Context, fileID string, metrics entity.Metrics) error {
	raw, err := json.Marshal(toMetricsDoc(metrics))
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}

	key := s.key(fileID)
	if err := s.rdb.HSet(ctx, key, fieldMetrics, raw).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", key, err)
	}

	return s.touch(ctx, key)
}

func (s *RedisStore) Get(ctx context.Context, fileID string) (entity.Entry, error) {
	key := s.key(fileID)
	fields, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return entity.Entry{}, fmt.Errorf("redis hgetall %s: %w", key, err)
	}
	if len(fields) == 0 {
		return entity.Entry{}, pkgerror.ErrNotFound
	}

	entry := entity.Entry{ID: fileID}

	if raw, ok := fields[fieldUpload]; ok {
		var doc uploadDoc
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return entity.Entry{}, fmt.Errorf("decode upload %s: %w", fileID, err)
		}
		upload := doc.toEntity(fileID)
		entry.Upload = &upload
	}

	if raw, ok := fields[fieldMetrics]; ok {
		var doc metricsDoc
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return entity.Entry{}, fmt.Errorf("decode metrics %s: %w", fileID, err)
		}
		metrics := doc.toEntity()
		entry.Metrics = &metrics
	}

	return entry, nil
}

func (s *RedisStore) key(fileID string) string {
	return s.prefix + fileID
}

func (s *RedisStore) touch(ctx context.Context, key string) error {
	if s.ttl <= 0 {
		return nil
	}
	if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis expire %s: %w", key, err)
	}
	return nil
}

type uploadDoc struct {
	FilePath          string    `json:"file_path"`
	DownloadSeconds   int64     `json:"download_seconds"`
	FormattedDownload string    `json:"formatted_download"`
	CreatedAt         time.Time `json:"created_at"`
}

func toUploadDoc(u entity.Upload) uploadDoc {
	return uploadDoc{
		FilePath:          u.FilePath,
		DownloadSeconds:   u.DownloadSeconds,
		FormattedDownload: u.FormattedDownload,
		CreatedAt:         u.CreatedAt,
	}
}

func (d uploadDoc) toEntity(fileID string) entity.Upload {
	return entity.Upload{
		ID:                fileID,
		FilePath:          d.FilePath,
		DownloadSeconds:   d.DownloadSeconds,
		FormattedDownload: d.FormattedDownload,
		CreatedAt:         d.CreatedAt,
	}
}

type metricsDoc struct {
	UploadedAt time.Time        `json:"uploaded_at"`
	Durations  entity.Durations `json:"durations"`
	Rows       entity.RowCounts `json:"rows"`
	Outcome    entity.Outcome   `json:"outcome"`
}

func toMetricsDoc(m entity.Metrics) metricsDoc {
	return metricsDoc{
		UploadedAt: m.UploadedAt,
		Durations:  m.Durations,
		Rows:       m.Rows,
		Outcome:    m.Outcome,
	}
}

func (d metricsDoc) toEntity() entity.Metrics {
	return entity.Metrics{
		UploadedAt: d.UploadedAt,
		Durations:  d.Durations,
		Rows:       d.Rows,
		Outcome:    d.Outcome,
	}
}
