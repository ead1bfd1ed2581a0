package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reisekosten/reisekosten/internal/async"
	"github.com/reisekosten/reisekosten/internal/common"
	"github.com/reisekosten/reisekosten/internal/export"
	"github.com/reisekosten/reisekosten/internal/extract"
	"github.com/reisekosten/reisekosten/internal/ingest"
	"github.com/reisekosten/reisekosten/internal/ocr"
	"github.com/reisekosten/reisekosten/internal/parser"
	"github.com/reisekosten/reisekosten/internal/pipeline"
	repo "github.com/reisekosten/reisekosten/internal/repository"
	"github.com/reisekosten/reisekosten/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(pool, logger)

	if err := repo.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := repo.Migrate(ctx, pool, logger); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	users := repo.NewUserRepository(pool, logger)
	travels := repo.NewTravelRepository(pool, logger)
	receipts := repo.NewReceiptRepository(pool, logger)

	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)
	parseSvc := parser.NewService(extract.NewOCRAdapter(extractor), logger)
	processor := pipeline.NewProcessor(receipts, parseSvc, cfg.Parsing.ReviewThreshold, logger)

	queue := async.NewQueue(processor, logger,
		async.WithWorkers(cfg.Parsing.Workers),
		async.WithQueueSize(cfg.Parsing.QueueSize),
		async.WithProcessTimeout(cfg.Parsing.Timeout),
	)

	if cfg.Uploads.InboxDir != "" {
		inbox := ingest.NewService(travels, receipts, queue, logger)
		go func() {
			if err := inbox.Run(ctx, cfg.Uploads.InboxDir); err != nil {
				logger.Error("inbox watcher stopped", "error", err)
			}
		}()
	}

	exportSvc := export.NewService(travels, receipts, logger)
	srv := server.New(cfg, pool, users, travels, receipts, queue, exportSvc, logger)

	logger.Info("reisekostend listening", "addr", cfg.Server.Addr)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("http serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	if err := srv.Shutdown(); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
}
