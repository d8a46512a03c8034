package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"egais-writeoff/app/bot"
	"egais-writeoff/app/controller"
	"egais-writeoff/app/router"
	"egais-writeoff/config"
	"egais-writeoff/db"
	"egais-writeoff/metrics"
	"egais-writeoff/reconcile"
	"egais-writeoff/repository"
	"egais-writeoff/service"
)

// Application holds the wired HTTP handler and Telegram bot
type Application struct {
	Mux     *http.ServeMux
	Bot     *bot.Bot
	closers []func() error
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	application := &Application{Mux: http.NewServeMux()}
	registry := metrics.NewRegistry()

	// Run history: Postgres when configured, memory otherwise
	var runs repository.WriteoffRunRepositoryInterface
	if err := db.InitDB(ctx); err != nil {
		if !errors.Is(err, db.ErrNotConfigured) {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		log.Printf("⚠️ No database configured, run history is kept in memory")
		runs = repository.NewMemoryWriteoffRunRepository(200)
	} else {
		runs = repository.NewWriteoffRunRepository()
		application.closers = append(application.closers, db.CloseDB)
	}

	// MoySklad token is obtained once at startup
	token := cfg.MoySkladToken
	if token == "" {
		var err error
		token, err = service.ObtainMoySkladToken(ctx, &http.Client{Timeout: 30 * time.Second}, cfg.MoySkladBaseURL, cfg.MoySkladLogin, cfg.MoySkladPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain MoySklad token: %w", err)
		}
	}
	moySkladService := service.NewMoySkladService(cfg.MoySkladBaseURL, token, cfg.MoySkladRateLimit, registry)

	// Initialize Sheets service
	sheetsService, err := service.NewSheetsService(ctx, cfg.GoogleCredentialsPath)
	if err != nil {
		return nil, err
	}

	var exclusions reconcile.ExclusionSource
	if cfg.ExcludeWordsPath != "" {
		exclusions = service.NewExclusionFileSource(cfg.ExcludeWordsPath, cfg.ExcludeWordsEncoding)
	}

	engine := reconcile.NewEngine(moySkladService, sheetsService, exclusions, cfg.MoySkladOrganizationID, reconcile.TableRef{
		SpreadsheetID: cfg.EgaisSpreadsheetID,
		SheetName:     cfg.EgaisSheetName,
		Range:         cfg.EgaisRange,
	})

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN environment variable is not set")
	}
	telegramService, err := service.NewTelegramService(cfg.TelegramToken, registry)
	if err != nil {
		return nil, err
	}

	writeoffService := service.NewWriteoffService(engine, service.NewExportService(cfg.ExportDir), telegramService, cfg.Location).
		WithRunRepository(runs).
		WithMetrics(registry)

	var archive service.DriveServiceInterface
	if cfg.DriveArchiveFolderID != "" {
		driveService, err := service.NewDriveService(ctx, cfg.GoogleCredentialsPath)
		if err != nil {
			return nil, err
		}
		archive = driveService
		writeoffService.WithArchive(driveService, cfg.DriveArchiveFolderID)
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher := service.NewKafkaRunPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		writeoffService.WithRunPublisher(publisher)
		application.closers = append(application.closers, publisher.Close)
		log.Printf("📡 Publishing write-off runs to Kafka topic %s", cfg.KafkaTopic)
	}

	// Kontur.Market assortment sync is optional
	var assortmentSync service.AssortmentSyncServiceInterface
	if cfg.KonturLogin != "" && cfg.KonturAssortmentURL != "" && cfg.AssortmentSpreadsheetID != "" {
		assortmentURL := cfg.KonturAssortmentURL
		if !strings.HasPrefix(assortmentURL, "http") {
			assortmentURL = cfg.KonturBaseURL + "/" + strings.TrimLeft(assortmentURL, "/")
		}
		konturService, err := service.NewKonturService(cfg.KonturAuthURL, assortmentURL, cfg.KonturLogin, cfg.KonturPassword,
			service.NewKonturBrowser(cfg.ChromePath, assortmentURL))
		if err != nil {
			return nil, err
		}
		assortmentSync = service.NewAssortmentSyncService(konturService, sheetsService,
			cfg.AssortmentSpreadsheetID, cfg.AssortmentSheetName, cfg.AssortmentRange, registry)
	} else {
		log.Printf("⚠️ Kontur.Market is not configured, assortment sync is disabled")
	}

	// Create controllers
	controllers := &router.Controllers{
		Writeoff:   controller.NewWriteoffController(writeoffService, runs, archive, cfg.DriveArchiveFolderID, cfg.TelegramChatID, cfg.Location),
		Assortment: controller.NewAssortmentController(assortmentSync),
	}

	// Setup routes using standard http router
	router.SetupRoutes(application.Mux, controllers, registry.Handler())

	application.Bot = bot.New(telegramService.Bot(), writeoffService, assortmentSync, telegramService, cfg.ChatAllowed, cfg.Location)

	return application, nil
}

// Close releases the database connection and the Kafka writer
func (a *Application) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			log.Printf("⚠️ close failed: %v", err)
		}
	}
}
