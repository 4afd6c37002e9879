package storage

import (
	"encoding/json"
	"io"
	"log"
	"os"

	"goblin_bot/internal/models"
)

// JournalFile defines where the plan journal lives on disk. Tests override it.
var JournalFile = "plan_journal.json"

// maxEntries caps the journal; older plans are dropped newest-first.
const maxEntries = 50

// Journal is the on-disk record of every plan the bot assembled, kept for
// post-mortems and the /config view. It is not the execution cache.
type Journal struct {
	Version string              `json:"version"`
	Plans   []models.StoredPlan `json:"plans"`
}

// LoadJournal reads the journal from disk, creating a fresh one if missing.
func LoadJournal() (Journal, error) {
	var j Journal

	if _, err := os.Stat(JournalFile); os.IsNotExist(err) {
		log.Println("Journal file missing, generating template...")
		j = Journal{Version: "1.1", Plans: []models.StoredPlan{}}
		SaveJournal(j)
		return j, nil
	}

	f, err := os.Open(JournalFile)
	if err != nil {
		return j, err
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return j, err
	}

	if err := json.Unmarshal(b, &j); err != nil {
		return j, err
	}

	if migrateJournal(&j) {
		log.Printf("INFO: Journal migrated to version %s. Saving...", j.Version)
		SaveJournal(j)
	}

	return j, nil
}

// Append records a plan and trims the journal to the newest maxEntries.
func Append(plan models.StoredPlan) error {
	j, err := LoadJournal()
	if err != nil {
		return err
	}
	j.Plans = append(j.Plans, plan)
	if len(j.Plans) > maxEntries {
		j.Plans = j.Plans[len(j.Plans)-maxEntries:]
	}
	SaveJournal(j)
	return nil
}

// migrateJournal handles schema evolution.
// Returns true if changes were made and the journal needs to be saved.
func migrateJournal(j *Journal) bool {
	updated := false

	// Migration: 1.0 -> 1.1 (plans gained a chat_id field; old entries get 0)
	if j.Version < "1.1" {
		log.Println("INFO: Migrating Journal Schema from 1.0 to 1.1")
		j.Version = "1.1"
		updated = true
	}

	return updated
}

// SaveJournal writes the journal to disk using an atomic write pattern:
// write to a temp file, sync, then rename over the destination.
func SaveJournal(j Journal) {
	b, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		log.Printf("ERROR: Failed to marshal journal: %v", err)
		return
	}

	tmpFile := JournalFile + ".tmp"
	f, err := os.Create(tmpFile)
	if err != nil {
		log.Printf("ERROR: Failed to create temp journal file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(b); err != nil {
		log.Printf("ERROR: Failed to write to temp journal file: %v", err)
		return
	}

	if err := f.Sync(); err != nil {
		log.Printf("ERROR: Failed to sync temp journal file: %v", err)
		return
	}

	f.Close()

	if err := os.Rename(tmpFile, JournalFile); err != nil {
		log.Printf("ERROR: Failed to replace journal file (atomic rename): %v", err)
	}
}
