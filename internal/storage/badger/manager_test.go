package badger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/common"
	"github.com/ternarybob/relist/internal/interfaces"
	"github.com/ternarybob/relist/internal/models"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()

	manager, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "relist-test"),
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestJobStorageRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	storage := manager.JobStorage()
	ctx := context.Background()

	job := models.NewPipelineJob("prod-1")
	job.ProductTitle = "Nikon F3"
	if err := storage.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	got, err := storage.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.ProductID != "prod-1" || got.ProductTitle != "Nikon F3" {
		t.Errorf("job = %+v", got)
	}
	if len(got.Steps) != len(models.PipelineSteps) {
		t.Errorf("steps = %d", len(got.Steps))
	}

	if _, err := storage.GetJob(ctx, "missing"); !errors.Is(err, models.ErrJobNotFound) {
		t.Errorf("err = %v, want ErrJobNotFound", err)
	}
}

func TestJobStorageListFilters(t *testing.T) {
	manager := newTestManager(t)
	storage := manager.JobStorage()
	ctx := context.Background()

	first := models.NewPipelineJob("prod-a")
	first.CreatedAt = time.Now().Add(-time.Hour)
	second := models.NewPipelineJob("prod-a")
	second.MarkCompleted()
	third := models.NewPipelineJob("prod-b")

	for _, job := range []*models.PipelineJob{first, second, third} {
		if err := storage.SaveJob(ctx, job); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}
	}

	jobs, err := storage.ListJobs(ctx, &interfaces.JobListOptions{ProductID: "prod-a"})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(jobs))
	}
	// Newest first.
	if jobs[0].ID != second.ID {
		t.Errorf("order = %s, %s; want newest first", jobs[0].ID, jobs[1].ID)
	}

	jobs, err = storage.ListJobs(ctx, &interfaces.JobListOptions{Status: models.JobStatusCompleted})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != second.ID {
		t.Errorf("status filter = %d jobs", len(jobs))
	}
}

func TestDraftStoragePendingLookup(t *testing.T) {
	manager := newTestManager(t)
	storage := manager.DraftStorage()
	ctx := context.Background()

	pending := models.NewDraft("prod-1")
	listed := models.NewDraft("prod-1")
	listed.Status = models.DraftStatusListed
	other := models.NewDraft("prod-2")

	for _, draft := range []*models.Draft{pending, listed, other} {
		if err := storage.SaveDraft(ctx, draft); err != nil {
			t.Fatalf("SaveDraft failed: %v", err)
		}
	}

	got, err := storage.GetPendingDraftByProduct(ctx, "prod-1")
	if err != nil {
		t.Fatalf("GetPendingDraftByProduct failed: %v", err)
	}
	if got.ID != pending.ID {
		t.Errorf("draft = %s, want the pending one", got.ID)
	}

	if _, err := storage.GetPendingDraftByProduct(ctx, "prod-9"); !errors.Is(err, models.ErrDraftNotFound) {
		t.Errorf("err = %v, want ErrDraftNotFound", err)
	}

	drafts, err := storage.ListDrafts(ctx, models.DraftStatusPending)
	if err != nil {
		t.Fatalf("ListDrafts failed: %v", err)
	}
	if len(drafts) != 2 {
		t.Errorf("pending drafts = %d, want 2", len(drafts))
	}

	all, err := storage.ListDrafts(ctx, "")
	if err != nil {
		t.Fatalf("ListDrafts failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all drafts = %d, want 3", len(all))
	}
}

func TestMappingStorageUpsertPreservesCreatedAt(t *testing.T) {
	manager := newTestManager(t)
	storage := manager.MappingStorage()
	ctx := context.Background()

	mapping := &models.ProductMapping{
		ProductID: "prod-1",
		SKU:       "NIK-F3-U1234",
		Status:    models.MappingStatusActive,
	}
	if err := storage.SaveMapping(ctx, mapping); err != nil {
		t.Fatalf("SaveMapping failed: %v", err)
	}

	saved, err := storage.GetMappingByProduct(ctx, "prod-1")
	if err != nil {
		t.Fatalf("GetMappingByProduct failed: %v", err)
	}
	created := saved.CreatedAt
	if created.IsZero() {
		t.Fatal("CreatedAt not stamped on insert")
	}

	update := &models.ProductMapping{
		ProductID: "prod-1",
		SKU:       "NIK-F3-U1234",
		ListingID: "listing-1",
		Status:    models.MappingStatusActive,
	}
	if err := storage.SaveMapping(ctx, update); err != nil {
		t.Fatalf("SaveMapping update failed: %v", err)
	}

	saved, _ = storage.GetMappingByProduct(ctx, "prod-1")
	if saved.ListingID != "listing-1" {
		t.Errorf("mapping = %+v, want updated listing id", saved)
	}
	if !saved.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed on update: %v -> %v", created, saved.CreatedAt)
	}

	mappings, err := storage.ListMappings(ctx)
	if err != nil {
		t.Fatalf("ListMappings failed: %v", err)
	}
	if len(mappings) != 1 {
		t.Errorf("mappings = %d, want the upsert collapsed to one row", len(mappings))
	}

	if _, err := storage.GetMappingByProduct(ctx, "missing"); !errors.Is(err, models.ErrMappingNotFound) {
		t.Errorf("err = %v, want ErrMappingNotFound", err)
	}
}

func TestSyncLogStorageAppendOnly(t *testing.T) {
	manager := newTestManager(t)
	storage := manager.SyncLogStorage()
	ctx := context.Background()

	first := models.NewSyncLogEntry("prod-1", "SKU-1")
	first.CreatedAt = time.Now().Add(-time.Minute)
	first.Success = true
	second := models.NewSyncLogEntry("prod-2", "SKU-2")
	second.Error = "offer rejected"

	if err := storage.AppendEntry(ctx, first); err != nil {
		t.Fatalf("AppendEntry failed: %v", err)
	}
	if err := storage.AppendEntry(ctx, second); err != nil {
		t.Fatalf("AppendEntry failed: %v", err)
	}

	// Entries are write-once; appending the same id again must fail.
	if err := storage.AppendEntry(ctx, first); err == nil {
		t.Error("duplicate append succeeded")
	}

	entries, err := storage.ListEntries(ctx, 0)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].ID != second.ID {
		t.Error("entries not newest first")
	}

	limited, err := storage.ListEntries(ctx, 1)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited entries = %d, want 1", len(limited))
	}
}
