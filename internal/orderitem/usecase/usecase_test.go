package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/entity"
	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/filestore"
	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/store"
	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/usecase"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgerror"
)

const (
	testFileID = "9b2d6a52-6f0c-4c61-a1f5-6d1c2b0f9e11"
	ordersCSV  = `ord€r_id,curr€ncy,sku,item_price
1,USD,ABC123,10.0
2,USD,,20.0
3,USD,XYZ!@#,30.0
3,USD,XYZ!@#,30.0
,,,
`
)

type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

type fixedID string

func (id fixedID) Generate() string {
	return string(id)
}

type fakeFetcher struct {
	body []byte
	err  error
	urls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	f.urls = append(f.urls, rawURL)
	return f.body, f.err
}

type recordingObserver struct {
	fetchErrs   []error
	processErrs []error
}

func (o *recordingObserver) ObserveFetch(_ time.Duration, _ int, err error) {
	o.fetchErrs = append(o.fetchErrs, err)
}

func (o *recordingObserver) ObserveProcess(_ time.Duration, _ entity.Metrics, err error) {
	o.processErrs = append(o.processErrs, err)
}

type fixture struct {
	uc       *usecase.Usecase
	store    *store.InMemoryStore
	files    *filestore.Local
	fetcher  *fakeFetcher
	observer *recordingObserver
}

func newFixture(t *testing.T, body string) *fixture {
	t.Helper()

	files, err := filestore.NewLocal(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		store:    store.NewInMemoryStore(),
		files:    files,
		fetcher:  &fakeFetcher{body: []byte(body)},
		observer: &recordingObserver{},
	}
	f.uc = usecase.New(usecase.Dependency{
		Store:    f.store,
		Files:    f.files,
		Fetcher:  f.fetcher,
		Observer: f.observer,
		Clock:    &stepClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), step: 2 * time.Second},
		ID:       fixedID(testFileID),
	})
	return f
}

func requireCode(t *testing.T, err error, status int) *pkgerror.Error {
	t.Helper()
	var perr *pkgerror.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, status, perr.StatusCode())
	return perr
}

func TestFetchStoresFileAndUpload(t *testing.T) {
	f := newFixture(t, ordersCSV)

	res, err := f.uc.Fetch(context.Background(), "https://example.com/orders.csv")
	require.NoError(t, err)

	assert.Equal(t, testFileID, res.FileID)
	assert.FileExists(t, res.FilePath)
	assert.Equal(t, []string{"https://example.com/orders.csv"}, f.fetcher.urls)

	upload, err := f.store.FindUpload(context.Background(), testFileID)
	require.NoError(t, err)
	assert.Equal(t, res.FilePath, upload.FilePath)
	assert.Equal(t, int64(2), upload.DownloadSeconds)
	assert.Equal(t, "00:00:02", upload.FormattedDownload)
	assert.Equal(t, []error{nil}, f.observer.fetchErrs)
}

func TestFetchRejectsInvalidURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "ftp://example.com/a.csv", "not a url", "/relative/path.csv"} {
		f := newFixture(t, ordersCSV)

		_, err := f.uc.Fetch(context.Background(), raw)

		requireCode(t, err, http.StatusUnprocessableEntity)
		assert.Empty(t, f.fetcher.urls, "fetcher called for %q", raw)
	}
}

func TestFetchDownloadFailure(t *testing.T) {
	f := newFixture(t, "")
	f.fetcher.err = errors.New("404 Not Found for url: https://example.com/missing.csv")

	_, err := f.uc.Fetch(context.Background(), "https://example.com/missing.csv")

	perr := requireCode(t, err, http.StatusBadRequest)
	assert.Equal(t, "404 Not Found for url: https://example.com/missing.csv", perr.Msg())
	assert.Zero(t, f.store.Len())
	require.Len(t, f.observer.fetchErrs, 1)
	assert.Error(t, f.observer.fetchErrs[0])
}

func TestProcessBuildsMetrics(t *testing.T) {
	f := newFixture(t, ordersCSV)
	ctx := context.Background()

	_, err := f.uc.Fetch(ctx, "https://example.com/orders.csv")
	require.NoError(t, err)

	metrics, err := f.uc.Process(ctx, testFileID)
	require.NoError(t, err)

	assert.Equal(t, entity.RowCounts{
		Total:      3,
		Blank:      1,
		Duplicated: 1,
		Sanitised:  2,
		Valid:      3,
		Usable:     3,
	}, metrics.Rows)
	assert.Equal(t, entity.Outcome{Accepted: 3}, metrics.Outcome)
	assert.Equal(t, int64(2), metrics.Durations.DownloadSeconds)
	assert.Equal(t, int64(2), metrics.Durations.ProcessingSeconds)
	assert.Equal(t, int64(4), metrics.Durations.TotalSeconds)
	assert.Equal(t, "00:00:02", metrics.Durations.FormattedProcessing)

	entry, err := f.store.Get(ctx, testFileID)
	require.NoError(t, err)
	require.NotNil(t, entry.Upload)
	require.NotNil(t, entry.Metrics)
	assert.Equal(t, metrics, *entry.Metrics)
	assert.Equal(t, int64(2), entry.Upload.DownloadSeconds, "processing must keep download details")
}

func TestProcessRecomputesEveryCall(t *testing.T) {
	f := newFixture(t, ordersCSV)
	ctx := context.Background()

	_, err := f.uc.Fetch(ctx, "https://example.com/orders.csv")
	require.NoError(t, err)

	first, err := f.uc.Process(ctx, testFileID)
	require.NoError(t, err)
	second, err := f.uc.Process(ctx, testFileID)
	require.NoError(t, err)

	assert.Equal(t, first.Rows, second.Rows)
	assert.True(t, second.UploadedAt.After(first.UploadedAt))
	assert.Len(t, f.observer.processErrs, 2)
}

func TestProcessFileWithoutUploadRecord(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	_, err := f.files.Save(ctx, testFileID, []byte("order_id,sku,item_price\n1,A,1.0\n"))
	require.NoError(t, err)

	metrics, err := f.uc.Process(ctx, testFileID)
	require.NoError(t, err)

	assert.Zero(t, metrics.Durations.DownloadSeconds)
	assert.Equal(t, "00:00:00", metrics.Durations.FormattedDownload)
	assert.Equal(t, metrics.Durations.ProcessingSeconds, metrics.Durations.TotalSeconds)
}

func TestProcessUnknownFile(t *testing.T) {
	f := newFixture(t, "")

	_, err := f.uc.Process(context.Background(), testFileID)

	perr := requireCode(t, err, http.StatusNotFound)
	assert.Contains(t, perr.Msg(), "File not found or cannot be processed: ")

	var notFound *usecase.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Zero(t, f.store.Len())
}

func TestProcessUnreadableFile(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	_, err := f.files.Save(ctx, testFileID, []byte("a,b\n1,2\n3,4,5\n"))
	require.NoError(t, err)

	_, err = f.uc.Process(ctx, testFileID)

	perr := requireCode(t, err, http.StatusNotFound)
	assert.Contains(t, perr.Msg(), "File not found or cannot be processed: failed to read CSV")

	var parseErr *usecase.ParseError
	assert.ErrorAs(t, err, &parseErr)
	require.Len(t, f.observer.processErrs, 1)
	assert.Error(t, f.observer.processErrs[0])
}

func TestProcessEmptyFile(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	_, err := f.uc.Fetch(ctx, "https://example.com/empty.csv")
	require.NoError(t, err)

	_, err = f.uc.Process(ctx, testFileID)

	requireCode(t, err, http.StatusNotFound)
}

func TestProcessRequiresID(t *testing.T) {
	f := newFixture(t, "")

	_, err := f.uc.Process(context.Background(), " ")

	requireCode(t, err, http.StatusUnprocessableEntity)
}

func TestMissingDependencies(t *testing.T) {
	uc := usecase.New(usecase.Dependency{})

	_, err := uc.Fetch(context.Background(), "https://example.com/a.csv")
	requireCode(t, err, http.StatusInternalServerError)

	_, err = uc.Process(context.Background(), testFileID)
	requireCode(t, err, http.StatusInternalServerError)
}
