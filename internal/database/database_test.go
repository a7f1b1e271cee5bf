package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"firstwatch/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleIncident(id string) model.Incident {
	return model.Incident{
		ID:        id,
		Title:     "Shooting at Westfield Valley Fair",
		Severity:  model.SeverityCritical,
		Location:  "Westfield Valley Fair",
		Timestamp: time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC),
		Coordinates: &model.Coordinates{
			Lat: 37.3258, Lng: -121.9458,
		},
		Discussion: model.Discussion{
			Status:  "active",
			Summary: "Shooting reported at Westfield Valley Fair. [@alice](https://example.com/p/1) reported injuries.",
			Citations: []model.Citation{
				{Seq: 1, URL: "https://example.com/p/1", Handle: "@alice"},
			},
			Sources: []model.Post{
				{
					ID:         "1",
					Text:       "Shooting at Valley Fair",
					Author:     model.Author{Username: "alice", DisplayName: "Alice", Verified: true},
					URL:        "https://example.com/p/1",
					Timestamp:  time.Date(2026, 3, 14, 19, 55, 0, 0, time.UTC),
					Engagement: model.Engagement{Likes: 100, Reshares: 50},
					Source:     model.SourceSearch,
				},
			},
			Engagement: model.Engagement{Likes: 100, Reshares: 50},
		},
	}
}

func TestInsertAndReadBackRun(t *testing.T) {
	db := openTestDB(t)

	want := []model.Incident{sampleIncident("inc-1"), func() model.Incident {
		inc := sampleIncident("inc-2")
		inc.Severity = model.SeverityLow
		inc.Coordinates = nil
		return inc
	}()}

	runID, err := db.InsertRun(want)
	if err != nil {
		t.Fatalf("InsertRun failed: %v", err)
	}

	latest, err := db.LatestRunID()
	if err != nil {
		t.Fatalf("LatestRunID failed: %v", err)
	}
	if latest != runID {
		t.Errorf("LatestRunID = %d, want %d", latest, runID)
	}

	got, err := db.IncidentsForRun(runID)
	if err != nil {
		t.Fatalf("IncidentsForRun failed: %v", err)
	}
	// Media is not persisted; everything else round-trips.
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestIncidentLookup(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.InsertRun([]model.Incident{sampleIncident("inc-1")}); err != nil {
		t.Fatalf("InsertRun failed: %v", err)
	}

	inc, err := db.Incident("inc-1")
	if err != nil {
		t.Fatalf("Incident failed: %v", err)
	}
	if inc == nil || inc.ID != "inc-1" {
		t.Fatalf("Incident = %+v", inc)
	}
	if len(inc.Discussion.Sources) != 1 {
		t.Errorf("expected 1 source post, got %d", len(inc.Discussion.Sources))
	}

	missing, err := db.Incident("nope")
	if err != nil {
		t.Fatalf("Incident lookup failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown id, got %+v", missing)
	}
}

func TestLatestRunEmptyStore(t *testing.T) {
	db := openTestDB(t)
	id, err := db.LatestRunID()
	if err != nil {
		t.Fatalf("LatestRunID failed: %v", err)
	}
	if id != 0 {
		t.Errorf("LatestRunID = %d, want 0", id)
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	db.InsertRun([]model.Incident{sampleIncident("inc-1")})
	db.InsertRun([]model.Incident{sampleIncident("inc-2")})

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Runs != 2 || stats.Incidents != 2 || stats.Posts != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LastRunAt == nil {
		t.Error("expected LastRunAt to be set")
	}
}

func TestMigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	db.Close()
}
