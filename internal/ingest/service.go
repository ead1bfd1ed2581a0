package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reisekosten/reisekosten/constants"
	"github.com/reisekosten/reisekosten/internal/async"
	"github.com/reisekosten/reisekosten/internal/entity"
	"github.com/reisekosten/reisekosten/internal/repository"
)

// Enqueuer is satisfied by the parsing queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, job async.Job) error
}

// Service turns files dropped into the inbox directory into receipt rows and
// queues them for parsing. The expected layout is <inbox>/<travel-id>/<file>;
// files outside a travel directory are ignored with a warning.
type Service struct {
	travels  repository.TravelRepository
	receipts repository.ReceiptRepository
	queue    Enqueuer
	logger   *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewService(travels repository.TravelRepository, receipts repository.ReceiptRepository, queue Enqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		travels:  travels,
		receipts: receipts,
		queue:    queue,
		logger:   logger,
		seen:     map[string]struct{}{},
	}
}

// Run watches root until ctx is cancelled. Watcher errors are logged, not
// fatal; the drain continues.
func (s *Service) Run(ctx context.Context, root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create inbox dir: %w", err)
	}

	evCh, errCh, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
	})
	if err != nil {
		return err
	}

	s.logger.Info("inbox watcher started", "root", root)
	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-evCh:
			if !ok {
				return nil
			}
			if err := s.HandleFile(ctx, path); err != nil {
				s.logger.Warn("inbox file skipped", "path", path, "error", err)
			}
		case err, ok := <-errCh:
			if ok && err != nil {
				s.logger.Error("inbox watcher error", "error", err)
			}
		}
	}
}

// HandleFile registers one inbox file as a receipt and queues it. Repeated
// events for the same path are deduplicated for the lifetime of the service.
func (s *Service) HandleFile(ctx context.Context, path string) error {
	s.mu.Lock()
	if _, dup := s.seen[path]; dup {
		s.mu.Unlock()
		return nil
	}
	s.seen[path] = struct{}{}
	s.mu.Unlock()

	travelID, err := uuid.Parse(filepath.Base(filepath.Dir(path)))
	if err != nil {
		return fmt.Errorf("parent directory is not a travel id: %w", err)
	}
	travel, err := s.travels.GetByID(ctx, travelID)
	if err != nil {
		return fmt.Errorf("travel %s: %w", travelID, err)
	}
	if !travel.Editable() {
		return fmt.Errorf("travel %s is %s, not accepting receipts", travelID, travel.Status)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat inbox file: %w", err)
	}

	filename := filepath.Base(path)
	size := info.Size()
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	status := constants.ParsingStatusPending

	rc := &entity.Receipt{
		TravelID:         travelID,
		FilePath:         &path,
		OriginalFilename: &filename,
		FileSize:         &size,
		MimeType:         &mimeType,
		ParsingStatus:    &status,
	}
	if err := s.receipts.Create(ctx, rc); err != nil {
		return err
	}
	s.logger.Info("inbox receipt registered", "receipt_id", rc.ID, "travel_id", travelID, "file", filename)
	return s.queue.Enqueue(ctx, async.Job{ReceiptID: rc.ID})
}
