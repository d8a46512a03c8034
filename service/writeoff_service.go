package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"egais-writeoff/metrics"
	"egais-writeoff/models"
	"egais-writeoff/reconcile"
	"egais-writeoff/repository"
	"egais-writeoff/utils"
)

const (
	msgPreparing = "Готовлю данные..."
	msgFailed    = "Не удалось подготовить файл"
)

// ErrWriteoffNotReady is returned when no file could be sent for the day
var ErrWriteoffNotReady = errors.New("write-off file was not prepared")

// WriteoffService delivers daily EGAIS write-off files
// Implements WriteoffServiceInterface
type WriteoffService struct {
	engine   WriteoffEngine
	exporter ExportServiceInterface
	notifier NotifierInterface
	location *time.Location

	// optional
	archive         DriveServiceInterface
	archiveFolderID string
	runs            repository.WriteoffRunRepositoryInterface
	publisher       RunPublisherInterface
	metrics         *metrics.Registry

	now func() time.Time
}

// NewWriteoffService creates a new WriteoffService
func NewWriteoffService(engine WriteoffEngine, exporter ExportServiceInterface, notifier NotifierInterface, location *time.Location) *WriteoffService {
	if location == nil {
		location = time.Local
	}
	return &WriteoffService{
		engine:   engine,
		exporter: exporter,
		notifier: notifier,
		location: location,
		now:      time.Now,
	}
}

// Ensure WriteoffService implements WriteoffServiceInterface
var _ WriteoffServiceInterface = (*WriteoffService)(nil)

// WithArchive uploads every exported file to the Drive folder
func (s *WriteoffService) WithArchive(archive DriveServiceInterface, folderID string) *WriteoffService {
	s.archive = archive
	s.archiveFolderID = folderID
	return s
}

// WithRunRepository records every run
func (s *WriteoffService) WithRunRepository(runs repository.WriteoffRunRepositoryInterface) *WriteoffService {
	s.runs = runs
	return s
}

// WithRunPublisher publishes an event for every run
func (s *WriteoffService) WithRunPublisher(publisher RunPublisherInterface) *WriteoffService {
	s.publisher = publisher
	return s
}

// WithMetrics records run metrics
func (s *WriteoffService) WithMetrics(m *metrics.Registry) *WriteoffService {
	s.metrics = m
	return s
}

// Preview reconciles the whole local day
func (s *WriteoffService) Preview(ctx context.Context, goodType models.ProductType, day time.Time) reconcile.Result {
	start, end := utils.DayBounds(day, s.location)
	log.Printf("🔎 Preview: type=%s day=%s", goodType, start.Format(utils.DayLayout))
	return s.engine.Run(ctx, goodType, start, end)
}

// SendWriteoff reconciles the whole local day and sends the exported file to the chat.
// The run is recorded whatever the outcome.
func (s *WriteoffService) SendWriteoff(ctx context.Context, chatID int64, goodType models.ProductType, day time.Time) (*models.WriteoffRun, error) {
	started := s.now()
	start, end := utils.DayBounds(day, s.location)
	log.Printf("📥 SendWriteoff: chat=%d type=%s day=%s", chatID, goodType, start.Format(utils.DayLayout))

	s.notify(ctx, chatID, msgPreparing)

	run := &models.WriteoffRun{
		ID:          uuid.NewString(),
		ProductType: goodType.String(),
		PeriodStart: start.Format(time.RFC3339),
		PeriodEnd:   end.Format(time.RFC3339),
		ChatID:      chatID,
	}

	result := s.engine.Run(ctx, goodType, start, end)
	run.Status = string(result.Status())
	if !result.OK() {
		log.Printf("❌ SendWriteoff: reconciliation %s: %v", result.Status(), result.Reason())
		return s.fail(ctx, run, started, result.Reason())
	}

	goods := result.Goods()
	run.GoodsTotal = len(goods)
	run.UnmatchedTotal = result.Unmatched()

	path, err := s.exporter.Export(goods, start)
	if err == nil && path == "" {
		err = errors.New("no file produced")
	}
	if err != nil {
		log.Printf("❌ SendWriteoff: export failed: %v", err)
		run.Status = string(reconcile.StatusFailed)
		return s.fail(ctx, run, started, fmt.Errorf("export: %w", err))
	}
	run.FileName = filepath.Base(path)
	defer func() {
		if err := s.exporter.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("⚠️ SendWriteoff: failed to remove %s: %v", path, err)
		}
	}()
	if s.metrics != nil {
		s.metrics.FilesExported.Inc()
	}

	if s.archive != nil {
		fileID, err := s.archive.ArchiveFile(ctx, s.archiveFolderID, path)
		if err != nil {
			log.Printf("⚠️ SendWriteoff: archive failed, sending anyway: %v", err)
		} else {
			run.DriveFileID = fileID
		}
	}

	caption := s.caption(start, goods, run.UnmatchedTotal)
	if err := s.notifier.SendDocument(ctx, chatID, path, caption); err != nil {
		log.Printf("❌ SendWriteoff: failed to send document: %v", err)
		run.Status = string(reconcile.StatusFailed)
		run.Reason = err.Error()
		s.record(ctx, run, started)
		return run, fmt.Errorf("send document: %w", err)
	}

	s.record(ctx, run, started)
	log.Printf("✅ SendWriteoff: sent %s (%d goods, %d unmatched)", run.FileName, run.GoodsTotal, run.UnmatchedTotal)
	return run, nil
}

// fail tells the chat the file is not coming and records the run
func (s *WriteoffService) fail(ctx context.Context, run *models.WriteoffRun, started time.Time, reason error) (*models.WriteoffRun, error) {
	if reason != nil {
		run.Reason = reason.Error()
	}
	s.notify(ctx, run.ChatID, msgFailed)
	s.record(ctx, run, started)
	if reason == nil {
		return run, ErrWriteoffNotReady
	}
	return run, fmt.Errorf("%w: %w", ErrWriteoffNotReady, reason)
}

func (s *WriteoffService) notify(ctx context.Context, chatID int64, text string) {
	if err := s.notifier.SendMessage(ctx, chatID, text); err != nil {
		log.Printf("⚠️ failed to notify chat %d: %v", chatID, err)
	}
}

// record stores, publishes and measures the run; failures are only logged
func (s *WriteoffService) record(ctx context.Context, run *models.WriteoffRun, started time.Time) {
	if s.runs != nil {
		if err := s.runs.Insert(ctx, run); err != nil {
			log.Printf("⚠️ failed to store run %s: %v", run.ID, err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishRun(ctx, *run); err != nil {
			log.Printf("⚠️ failed to publish run %s: %v", run.ID, err)
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveRun(run.ProductType, run.Status, run.GoodsTotal, run.UnmatchedTotal, s.now().Sub(started).Seconds())
	}
}

// caption summarizes the file for the chat
func (s *WriteoffService) caption(day time.Time, goods []reconcile.ReconciledGood, unmatched int) string {
	total := decimal.Zero
	for _, g := range goods {
		total = total.Add(g.Price.Mul(g.Sold()))
	}
	return fmt.Sprintf("Касатики, вот файл с продажами за %s.\nПозиций: %d, без наименования ЕГАИС: %d\nСумма: %s",
		s.dayLabel(day), len(goods), unmatched, utils.FormatRUB(total))
}

func (s *WriteoffService) dayLabel(day time.Time) string {
	today, _ := utils.DayBounds(s.now(), s.location)
	switch {
	case day.Equal(today):
		return "сегодня"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "вчера"
	}
	return day.Format("02.01.2006")
}
