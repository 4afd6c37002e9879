package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"goblin_bot/internal/models"
)

func useTempJournal(t *testing.T) {
	t.Helper()
	orig := JournalFile
	JournalFile = filepath.Join(t.TempDir(), "plan_journal.json")
	t.Cleanup(func() { JournalFile = orig })
}

func TestJournal_RoundTrip(t *testing.T) {
	useTempJournal(t)

	plan := models.StoredPlan{
		ID:        "p-abc",
		ChatID:    7,
		Goal:      "earn yield without blowing up",
		CreatedAt: time.Now().UTC(),
	}
	if err := Append(plan); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	j, err := LoadJournal()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(j.Plans) != 1 || j.Plans[0].ID != "p-abc" {
		t.Errorf("journal round trip failed: %+v", j.Plans)
	}
	if j.Version != "1.1" {
		t.Errorf("expected version 1.1, got %s", j.Version)
	}
}

func TestJournal_MissingFileCreatesTemplate(t *testing.T) {
	useTempJournal(t)

	j, err := LoadJournal()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if j.Plans == nil || len(j.Plans) != 0 {
		t.Errorf("expected empty plans slice, got %+v", j.Plans)
	}
	if _, err := os.Stat(JournalFile); err != nil {
		t.Errorf("template file should exist on disk: %v", err)
	}
}

func TestJournal_TrimsToNewest(t *testing.T) {
	useTempJournal(t)

	for i := 0; i < maxEntries+5; i++ {
		if err := Append(models.StoredPlan{ID: fmt.Sprintf("p-%03d", i)}); err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
	}

	j, _ := LoadJournal()
	if len(j.Plans) != maxEntries {
		t.Fatalf("expected %d entries after trim, got %d", maxEntries, len(j.Plans))
	}
	if j.Plans[len(j.Plans)-1].ID != fmt.Sprintf("p-%03d", maxEntries+4) {
		t.Errorf("newest entry lost in trim: %s", j.Plans[len(j.Plans)-1].ID)
	}
}

func TestJournal_MigratesOldVersion(t *testing.T) {
	useTempJournal(t)

	os.WriteFile(JournalFile, []byte(`{"version":"1.0","plans":[]}`), 0644)

	j, err := LoadJournal()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if j.Version != "1.1" {
		t.Errorf("expected migration to 1.1, got %s", j.Version)
	}
}
