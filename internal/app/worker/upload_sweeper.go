package worker

import (
	"context"
	"log"
	"time"

	"employee_manager/internal/domain/repository"
	"employee_manager/internal/platform/storage"
)

// UploadSweeper reconciles the upload directory against the employee
// records. File writes and record writes are not transactional, so a crash
// between the two can strand a picture on disk with no record pointing at
// it; the sweeper periodically deletes such orphans once they are older
// than the grace period. Fresh files are skipped because an upload may be
// staged just before its record lands.
type UploadSweeper struct {
	employeeRepo repository.EmployeeRepository
	uploads      *storage.DiskStore
	interval     time.Duration
	grace        time.Duration
}

func NewUploadSweeper(
	employeeRepo repository.EmployeeRepository,
	uploads *storage.DiskStore,
	interval, grace time.Duration,
) *UploadSweeper {
	return &UploadSweeper{
		employeeRepo: employeeRepo,
		uploads:      uploads,
		interval:     interval,
		grace:        grace,
	}
}

func (w *UploadSweeper) Start(ctx context.Context) {
	log.Printf("Upload sweeper started, interval %s, grace period %s", w.interval, w.grace)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Upload sweeper stopping...")
			return
		case <-ticker.C:
			if removed, err := w.Sweep(ctx); err != nil {
				log.Printf("ERROR: upload sweep failed: %v", err)
			} else if removed > 0 {
				log.Printf("Upload sweep removed %d orphaned file(s)", removed)
			}
		}
	}
}

// Sweep runs one reconciliation pass and returns the number of files removed.
func (w *UploadSweeper) Sweep(ctx context.Context) (int, error) {
	stale, err := w.uploads.StaleFiles(time.Now().Add(-w.grace))
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	referenced, err := w.employeeRepo.ListProfilePictures(ctx)
	if err != nil {
		return 0, err
	}
	refSet := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		refSet[name] = struct{}{}
	}

	removed := 0
	for _, name := range stale {
		if _, ok := refSet[name]; ok {
			continue
		}
		if err := w.uploads.Remove(name); err != nil {
			log.Printf("WARN: failed to remove orphaned file %s: %v", name, err)
			continue
		}
		removed++
	}
	return removed, nil
}
