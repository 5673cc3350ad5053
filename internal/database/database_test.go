package database

import (
	"context"
	"path/filepath"
	"testing"
)

func testDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "convert.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndRecentJobs(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()

	records := []JobRecord{
		{Operation: "raster-convert", SourceFormat: "png", TargetFormat: "jpg", InputBytes: 1000, OutputBytes: 400, DurationMs: 12, Status: "success"},
		{Operation: "transcode", SourceFormat: "avi", TargetFormat: "mp4", InputBytes: 5000, OutputBytes: 3000, DurationMs: 900, Status: "success"},
		{Operation: "recompress", SourceFormat: "png", TargetFormat: "png", InputBytes: 2000, Status: "error", Message: "DecodeFailed: bad header"},
	}
	for _, rec := range records {
		if err := db.RecordJob(ctx, rec); err != nil {
			t.Fatalf("RecordJob: %v", err)
		}
	}

	got, err := db.RecentJobs(ctx, 10)
	if err != nil {
		t.Fatalf("RecentJobs: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(RecentJobs) = %d, want 3", len(got))
	}

	// Newest first
	if got[0].Operation != "recompress" {
		t.Errorf("first record operation = %q, want the most recent insert", got[0].Operation)
	}
	if got[0].Status != "error" || got[0].Message == "" {
		t.Errorf("error record lost its message: %+v", got[0])
	}
	if got[2].Operation != "raster-convert" {
		t.Errorf("last record operation = %q, want the oldest insert", got[2].Operation)
	}
}

func TestRecentJobsLimit(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := db.RecordJob(ctx, JobRecord{Operation: "raster-convert", Status: "success"}); err != nil {
			t.Fatalf("RecordJob: %v", err)
		}
	}

	got, err := db.RecentJobs(ctx, 2)
	if err != nil {
		t.Fatalf("RecentJobs: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len(RecentJobs) = %d, want 2", len(got))
	}

	// Out-of-range limits fall back to the default rather than erroring
	if _, err := db.RecentJobs(ctx, -1); err != nil {
		t.Errorf("RecentJobs with negative limit: %v", err)
	}
}

func TestPrune(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := db.RecordJob(ctx, JobRecord{Operation: "raster-convert", Status: "success"}); err != nil {
			t.Fatalf("RecordJob: %v", err)
		}
	}

	if err := db.Prune(ctx, 4); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	got, err := db.RecentJobs(ctx, 100)
	if err != nil {
		t.Fatalf("RecentJobs: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("records after prune = %d, want 4", len(got))
	}
}
