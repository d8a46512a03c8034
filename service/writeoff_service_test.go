package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"egais-writeoff/metrics"
	"egais-writeoff/models"
	"egais-writeoff/reconcile"
	"egais-writeoff/repository"
)

var moscow = time.FixedZone("MSK", 3*60*60)

type fakeEngine struct {
	result     reconcile.Result
	start, end time.Time
	goodType   models.ProductType
}

func (f *fakeEngine) Run(ctx context.Context, goodType models.ProductType, start, end time.Time) reconcile.Result {
	f.goodType, f.start, f.end = goodType, start, end
	return f.result
}

type fakeExporter struct {
	dir  string
	path string
	err  error
}

func (f *fakeExporter) Export(goods []reconcile.ReconciledGood, day time.Time) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.path = filepath.Join(f.dir, "Списание_ЕГАИС_"+day.Format("2006-01-02")+".xlsx")
	return f.path, os.WriteFile(f.path, []byte("xlsx"), 0o644)
}

func (f *fakeExporter) Remove(path string) error {
	return os.Remove(path)
}

type sentDocument struct {
	chatID  int64
	path    string
	caption string
}

type fakeNotifier struct {
	messages  []string
	documents []sentDocument
	docErr    error
}

func (f *fakeNotifier) SendMessage(ctx context.Context, chatID int64, text string) error {
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeNotifier) SendDocument(ctx context.Context, chatID int64, path, caption string) error {
	if f.docErr != nil {
		return f.docErr
	}
	_, err := os.Stat(path)
	f.documents = append(f.documents, sentDocument{chatID: chatID, path: path, caption: caption})
	return err
}

type fakeArchive struct {
	folderID string
	err      error
}

func (f *fakeArchive) ArchiveFile(ctx context.Context, folderID, path string) (string, error) {
	f.folderID = folderID
	if f.err != nil {
		return "", f.err
	}
	return "drive-file-1", nil
}

func (f *fakeArchive) ListArchive(ctx context.Context, folderID string) ([]models.ArchivedFile, error) {
	return nil, nil
}

type fakePublisher struct {
	runs []models.WriteoffRun
}

func (f *fakePublisher) PublishRun(ctx context.Context, run models.WriteoffRun) error {
	f.runs = append(f.runs, run)
	return nil
}

func reconciledGoods() []reconcile.ReconciledGood {
	return []reconcile.ReconciledGood{
		{Good: reconcile.NewGood("X Beer (0,5)", decimal.NewFromInt(5), decimal.RequireFromString("250")), Canonical: reconcile.Matched("Пиво X светлое")},
		{Good: reconcile.NewGood("Y Wine", decimal.NewFromInt(2), decimal.RequireFromString("990.50")), Canonical: reconcile.Unmatched()},
	}
}

type writeoffFixture struct {
	engine    *fakeEngine
	exporter  *fakeExporter
	notifier  *fakeNotifier
	archive   *fakeArchive
	runs      *repository.MemoryWriteoffRunRepository
	publisher *fakePublisher
	metrics   *metrics.Registry
	svc       *WriteoffService
}

func newWriteoffFixture(t *testing.T, result reconcile.Result) *writeoffFixture {
	t.Helper()
	f := &writeoffFixture{
		engine:    &fakeEngine{result: result},
		exporter:  &fakeExporter{dir: t.TempDir()},
		notifier:  &fakeNotifier{},
		archive:   &fakeArchive{},
		runs:      repository.NewMemoryWriteoffRunRepository(10),
		publisher: &fakePublisher{},
		metrics:   metrics.NewRegistry(),
	}
	f.svc = NewWriteoffService(f.engine, f.exporter, f.notifier, moscow).
		WithArchive(f.archive, "folder-1").
		WithRunRepository(f.runs).
		WithRunPublisher(f.publisher).
		WithMetrics(f.metrics)
	f.svc.now = func() time.Time { return time.Date(2026, 1, 5, 10, 0, 0, 0, moscow) }
	return f
}

func TestWriteoffService_SendWriteoff(t *testing.T) {
	f := newWriteoffFixture(t, reconcile.Ok(reconciledGoods()))

	day := time.Date(2026, 1, 4, 18, 0, 0, 0, moscow)
	run, err := f.svc.SendWriteoff(context.Background(), 42, models.ProductTypeAlcohol, day)
	require.NoError(t, err)

	assert.Equal(t, models.ProductTypeAlcohol, f.engine.goodType)
	assert.Equal(t, time.Date(2026, 1, 4, 0, 0, 0, 0, moscow), f.engine.start)
	assert.Equal(t, time.Date(2026, 1, 4, 23, 59, 59, 0, moscow), f.engine.end)

	assert.Equal(t, []string{msgPreparing}, f.notifier.messages)
	require.Len(t, f.notifier.documents, 1)
	doc := f.notifier.documents[0]
	assert.Equal(t, int64(42), doc.chatID)
	assert.Equal(t, "Касатики, вот файл с продажами за вчера.\nПозиций: 2, без наименования ЕГАИС: 1\nСумма: 3 231,00 ₽", doc.caption)

	// the local file is removed once sent
	_, statErr := os.Stat(f.exporter.path)
	assert.True(t, os.IsNotExist(statErr))

	assert.Equal(t, "ok", run.Status)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 2, run.GoodsTotal)
	assert.Equal(t, 1, run.UnmatchedTotal)
	assert.Equal(t, "Списание_ЕГАИС_2026-01-04.xlsx", run.FileName)
	assert.Equal(t, "drive-file-1", run.DriveFileID)
	assert.Equal(t, "folder-1", f.archive.folderID)
	assert.Equal(t, "2026-01-04T00:00:00+03:00", run.PeriodStart)

	stored, err := f.runs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, run.ID, stored[0].ID)
	require.Len(t, f.publisher.runs, 1)
	assert.Equal(t, "ok", f.publisher.runs[0].Status)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Runs.WithLabelValues("alcohol", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FilesExported))
}

func TestWriteoffService_SendWriteoff_EmptyResult(t *testing.T) {
	f := newWriteoffFixture(t, reconcile.Empty(reconcile.ErrEmptySales))

	run, err := f.svc.SendWriteoff(context.Background(), 42, models.ProductTypeAlcohol, time.Date(2026, 1, 5, 0, 0, 0, 0, moscow))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteoffNotReady)
	assert.ErrorIs(t, err, reconcile.ErrEmptySales)

	assert.Equal(t, []string{msgPreparing, msgFailed}, f.notifier.messages)
	assert.Empty(t, f.notifier.documents)
	assert.Empty(t, f.exporter.path)

	assert.Equal(t, "empty", run.Status)
	assert.Equal(t, reconcile.ErrEmptySales.Error(), run.Reason)
	require.Len(t, f.publisher.runs, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Runs.WithLabelValues("alcohol", "empty")))
}

func TestWriteoffService_SendWriteoff_ExportFails(t *testing.T) {
	f := newWriteoffFixture(t, reconcile.Ok(reconciledGoods()))
	f.exporter.err = errors.New("disk full")

	run, err := f.svc.SendWriteoff(context.Background(), 42, models.ProductTypeSnack, time.Date(2026, 1, 5, 0, 0, 0, 0, moscow))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteoffNotReady)
	assert.Equal(t, "failed", run.Status)
	assert.Contains(t, run.Reason, "disk full")
	assert.Equal(t, []string{msgPreparing, msgFailed}, f.notifier.messages)
}

func TestWriteoffService_SendWriteoff_ArchiveFailureStillSends(t *testing.T) {
	f := newWriteoffFixture(t, reconcile.Ok(reconciledGoods()))
	f.archive.err = errors.New("quota exceeded")

	run, err := f.svc.SendWriteoff(context.Background(), 42, models.ProductTypeAlcohol, time.Date(2026, 1, 5, 0, 0, 0, 0, moscow))
	require.NoError(t, err)
	assert.Empty(t, run.DriveFileID)
	require.Len(t, f.notifier.documents, 1)
	assert.Contains(t, f.notifier.documents[0].caption, "за сегодня")
}

func TestWriteoffService_SendWriteoff_SendFails(t *testing.T) {
	f := newWriteoffFixture(t, reconcile.Ok(reconciledGoods()))
	f.notifier.docErr = errors.New("file too big")

	run, err := f.svc.SendWriteoff(context.Background(), 42, models.ProductTypeAlcohol, time.Date(2026, 1, 5, 0, 0, 0, 0, moscow))
	require.Error(t, err)
	assert.Equal(t, "failed", run.Status)

	_, statErr := os.Stat(f.exporter.path)
	assert.True(t, os.IsNotExist(statErr))
}

type staticEngine struct {
	result reconcile.Result
}

func (e staticEngine) Run(ctx context.Context, goodType models.ProductType, start, end time.Time) reconcile.Result {
	return e.result
}

// rendezvousNotifier holds every SendDocument call until all expected senders arrive
type rendezvousNotifier struct {
	arrived sync.WaitGroup
	mu      sync.Mutex
	paths   []string
	missing []string
}

func (n *rendezvousNotifier) SendMessage(ctx context.Context, chatID int64, text string) error {
	return nil
}

func (n *rendezvousNotifier) SendDocument(ctx context.Context, chatID int64, path, caption string) error {
	n.arrived.Done()
	n.arrived.Wait()

	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
	if _, err := os.Stat(path); err != nil {
		n.missing = append(n.missing, path)
	}
	return nil
}

func TestWriteoffService_SendWriteoff_OverlappingRunsForSameDay(t *testing.T) {
	dir := t.TempDir()
	notifier := &rendezvousNotifier{}
	notifier.arrived.Add(2)
	svc := NewWriteoffService(staticEngine{result: reconcile.Ok(reconciledGoods())}, NewExportService(dir), notifier, moscow)

	day := time.Date(2026, 1, 4, 0, 0, 0, 0, moscow)
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(chatID int64) {
			defer wg.Done()
			_, err := svc.SendWriteoff(context.Background(), chatID, models.ProductTypeAlcohol, day)
			errs <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Len(t, notifier.paths, 2)
	assert.NotEqual(t, notifier.paths[0], notifier.paths[1])
	assert.Empty(t, notifier.missing)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteoffService_Preview(t *testing.T) {
	f := newWriteoffFixture(t, reconcile.Ok(reconciledGoods()))

	result := f.svc.Preview(context.Background(), models.ProductTypeNonAlcohol, time.Date(2026, 1, 3, 12, 0, 0, 0, moscow))
	assert.True(t, result.OK())
	assert.Len(t, result.Goods(), 2)
	assert.Equal(t, models.ProductTypeNonAlcohol, f.engine.goodType)
	assert.Equal(t, time.Date(2026, 1, 3, 0, 0, 0, 0, moscow), f.engine.start)

	assert.Empty(t, f.notifier.messages)
	assert.Empty(t, f.publisher.runs)
}

func TestWriteoffService_DayLabel(t *testing.T) {
	f := newWriteoffFixture(t, reconcile.Result{})
	assert.Equal(t, "сегодня", f.svc.dayLabel(time.Date(2026, 1, 5, 0, 0, 0, 0, moscow)))
	assert.Equal(t, "вчера", f.svc.dayLabel(time.Date(2026, 1, 4, 0, 0, 0, 0, moscow)))
	assert.Equal(t, "01.01.2026", f.svc.dayLabel(time.Date(2026, 1, 1, 0, 0, 0, 0, moscow)))
}
