package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/entity"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgerror"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkglog"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkguid"
)

type Store interface {
	CreateUpload(ctx context.Context, upload entity.Upload) error
	FindUpload(ctx context.Context, fileID string) (entity.Upload, error)
	SaveMetrics(ctx context.Context, fileID string, metrics entity.Metrics) error
}

// FileStore persists raw downloads. Open returns pkgerror.ErrNotFound for unknown ids.
type FileStore interface {
	Save(ctx context.Context, fileID string, data []byte) (string, error)
	Open(ctx context.Context, fileID string) (io.ReadCloser, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

type Observer interface {
	ObserveFetch(elapsed time.Duration, size int, err error)
	ObserveProcess(elapsed time.Duration, metrics entity.Metrics, err error)
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Store    Store
	Files    FileStore
	Fetcher  Fetcher
	Observer Observer
	Clock    Clock
	ID       pkguid.StringID
}

type Usecase struct {
	store    Store
	files    FileStore
	fetcher  Fetcher
	observer Observer
	clock    Clock
	id       pkguid.StringID
}

func New(dep Dependency) *Usecase {
	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	observer := dep.Observer
	if observer == nil {
		observer = noopObserver{}
	}

	id := dep.ID
	if id == nil {
		id = pkguid.NewUUID()
	}

	return &Usecase{
		store:    dep.Store,
		files:    dep.Files,
		fetcher:  dep.Fetcher,
		observer: observer,
		clock:    clock,
		id:       id,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type noopObserver struct{}

func (noopObserver) ObserveFetch(time.Duration, int, error) {}

func (noopObserver) ObserveProcess(time.Duration, entity.Metrics, error) {}

// Fetch downloads rawURL, stores it under a fresh identifier and records how
// long the download took.
func (u *Usecase) Fetch(ctx context.Context, rawURL string) (FetchResult, error) {
	if u.store == nil || u.files == nil || u.fetcher == nil {
		return FetchResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	if err := validateURL(rawURL); err != nil {
		return FetchResult{}, pkgerror.NewInvalidInput(err)
	}

	fileID := u.id.Generate()
	ctx = pkglog.WithFileID(ctx, fileID)
	start := u.clock.Now()

	data, err := u.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		u.observer.ObserveFetch(u.clock.Now().Sub(start), 0, err)
		slog.WarnContext(ctx, "failed to download file", "url", rawURL, "error", err)
		return FetchResult{}, toPkgError(&FetchError{URL: rawURL, Err: err})
	}

	path, err := u.files.Save(ctx, fileID, data)
	if err != nil {
		u.observer.ObserveFetch(u.clock.Now().Sub(start), len(data), err)
		slog.ErrorContext(ctx, "failed to persist file", "error", err)
		return FetchResult{}, toPkgError(&FetchError{URL: rawURL, Err: err})
	}

	elapsed := u.clock.Now().Sub(start)

	upload := entity.Upload{
		ID:                fileID,
		FilePath:          path,
		DownloadSeconds:   wholeSeconds(elapsed),
		FormattedDownload: FormatClock(elapsed),
		CreatedAt:         start.UTC(),
	}
	if err := u.store.CreateUpload(ctx, upload); err != nil {
		u.observer.ObserveFetch(elapsed, len(data), err)
		return FetchResult{}, toPkgError(err)
	}

	u.observer.ObserveFetch(elapsed, len(data), nil)
	slog.InfoContext(ctx, "file downloaded", "path", path, "bytes", len(data), "download_seconds", upload.DownloadSeconds)

	return FetchResult{FileID: fileID, FilePath: path}, nil
}

// Process reads the stored file for fileID, cleans it and rebuilds its metrics.
// Nothing is cached: every call recomputes and replaces the stored metrics.
func (u *Usecase) Process(ctx context.Context, fileID string) (entity.Metrics, error) {
	if u.store == nil || u.files == nil {
		return entity.Metrics{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	if strings.TrimSpace(fileID) == "" {
		return entity.Metrics{}, pkgerror.NewInvalidInput(errors.New("file_id is required"))
	}

	ctx = pkglog.WithFileID(ctx, fileID)
	start := u.clock.Now()

	metrics, err := u.process(ctx, fileID, start)
	if err != nil {
		u.observer.ObserveProcess(u.clock.Now().Sub(start), entity.Metrics{}, err)
		slog.WarnContext(ctx, "failed to process file", "error", err)
		return entity.Metrics{}, toPkgError(err)
	}

	u.observer.ObserveProcess(u.clock.Now().Sub(start), metrics, nil)
	slog.InfoContext(ctx, "file processed",
		"rows_total", metrics.Rows.Total,
		"rows_blank", metrics.Rows.Blank,
		"rows_duplicated", metrics.Rows.Duplicated,
		"rows_malformed", metrics.Rows.Malformed,
	)

	return metrics, nil
}

func (u *Usecase) process(ctx context.Context, fileID string, start time.Time) (entity.Metrics, error) {
	rc, err := u.files.Open(ctx, fileID)
	if errors.Is(err, pkgerror.ErrNotFound) {
		return entity.Metrics{}, &NotFoundError{FileID: fileID}
	}
	if err != nil {
		return entity.Metrics{}, fmt.Errorf("open file %s: %w", fileID, err)
	}
	defer func() {
		_ = rc.Close()
	}()

	ds, err := readDataset(rc)
	if err != nil {
		return entity.Metrics{}, &ParseError{FileID: fileID, Err: err}
	}

	cleaned, stats := Clean(ds)

	var upload *entity.Upload
	found, err := u.store.FindUpload(ctx, fileID)
	switch {
	case err == nil:
		upload = &found
	case !errors.Is(err, pkgerror.ErrNotFound):
		return entity.Metrics{}, fmt.Errorf("find upload %s: %w", fileID, err)
	}

	processing := u.clock.Now().Sub(start)
	metrics := BuildMetrics(u.clock.Now(), cleaned, stats, processing, upload)

	if err := u.store.SaveMetrics(ctx, fileID, metrics); err != nil {
		return entity.Metrics{}, fmt.Errorf("save metrics %s: %w", fileID, err)
	}

	return metrics, nil
}

func validateURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return errors.New("url is required")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("url must use the http or https scheme")
	}
	if parsed.Host == "" {
		return errors.New("url must be absolute")
	}

	return nil
}
