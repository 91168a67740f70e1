package jsonstore

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"datalens/domain/dataset"
	"datalens/ports"

	"github.com/robfig/cron/v3"
)

// Maintenance runs the background jobs that keep the store healthy: the
// periodic dirty-state flush and stale upload cleanup.
type Maintenance struct {
	store      *Store
	datasets   ports.DatasetRepository
	uploads    *UploadStorage
	cron       *cron.Cron
	flushEvery time.Duration
	retention  time.Duration
}

// NewMaintenance creates the scheduler; Start wires and runs the jobs
func NewMaintenance(store *Store, datasets ports.DatasetRepository, uploads *UploadStorage, flushEvery, retention time.Duration) *Maintenance {
	return &Maintenance{
		store:      store,
		datasets:   datasets,
		uploads:    uploads,
		cron:       cron.New(),
		flushEvery: flushEvery,
		retention:  retention,
	}
}

// Start recovers interrupted ingests, schedules the jobs, and starts the cron
func (m *Maintenance) Start() error {
	m.recoverStuck()

	if _, err := m.cron.AddFunc(fmt.Sprintf("@every %s", m.flushEvery), m.flush); err != nil {
		return fmt.Errorf("failed to schedule flush job: %w", err)
	}
	if m.retention > 0 {
		if _, err := m.cron.AddFunc("@every 1h", m.cleanupUploads); err != nil {
			return fmt.Errorf("failed to schedule cleanup job: %w", err)
		}
	}

	m.cron.Start()
	log.Printf("[Maintenance] Scheduler started (flush every %s, upload retention %s)", m.flushEvery, m.retention)
	return nil
}

// Stop waits for running jobs and flushes once more
func (m *Maintenance) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.flush()
	log.Printf("[Maintenance] Scheduler stopped")
}

func (m *Maintenance) flush() {
	if err := m.store.Flush(); err != nil {
		log.Printf("[Maintenance] Flush failed: %v", err)
	}
}

// recoverStuck fails datasets left in processing by a previous crash. Ingest
// completes within the upload request, so processing at startup means the
// process died mid-ingest.
func (m *Maintenance) recoverStuck() {
	ctx := context.Background()
	stuck, err := m.datasets.ListByStatus(ctx, dataset.StatusProcessing)
	if err != nil {
		log.Printf("[Maintenance] Could not list processing datasets: %v", err)
		return
	}
	for _, ds := range stuck {
		if err := m.datasets.UpdateStatus(ctx, ds.ID, dataset.StatusFailed, "ingestion interrupted by restart"); err != nil {
			log.Printf("[Maintenance] Could not fail stuck dataset %s: %v", ds.ID, err)
		}
	}
	if len(stuck) > 0 {
		log.Printf("[Maintenance] Marked %d interrupted ingests as failed", len(stuck))
	}
}

// cleanupUploads removes upload files past retention that no dataset
// references anymore.
func (m *Maintenance) cleanupUploads() {
	all, err := m.datasets.List(context.Background())
	if err != nil {
		log.Printf("[Maintenance] Could not list datasets for cleanup: %v", err)
		return
	}
	inUse := make(map[string]bool, len(all))
	for _, ds := range all {
		inUse[ds.Path] = true
	}

	entries, err := os.ReadDir(m.uploads.Dir())
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[Maintenance] Could not read uploads directory: %v", err)
		}
		return
	}

	cutoff := time.Now().Add(-m.retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(m.uploads.Dir(), entry.Name())
		if inUse[path] {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			log.Printf("[Maintenance] Could not remove stale upload %s: %v", path, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("[Maintenance] Removed %d stale uploads", removed)
	}
}
