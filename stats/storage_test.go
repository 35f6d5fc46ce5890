package stats

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestStorage(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "stats-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)

	storage, err := NewStorage(tempDir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	t.Run("IncrementStats", func(t *testing.T) {
		storage.IncrementStats(Delta{Audits: 1, CompetitorAudits: 2, Unreachable: 3, Superseded: 4})
		stats := storage.GetCurrentStats()

		if stats.Audits != 1 {
			t.Errorf("Expected 1 audit, got %d", stats.Audits)
		}
		if stats.CompetitorAudits != 2 {
			t.Errorf("Expected 2 competitor audits, got %d", stats.CompetitorAudits)
		}
		if stats.Unreachable != 3 {
			t.Errorf("Expected 3 unreachable, got %d", stats.Unreachable)
		}
		if stats.Superseded != 4 {
			t.Errorf("Expected 4 superseded, got %d", stats.Superseded)
		}
	})

	t.Run("Persistence", func(t *testing.T) {
		if err := storage.save(); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}

		storage2, err := NewStorage(tempDir)
		if err != nil {
			t.Fatalf("Failed to create second storage: %v", err)
		}
		defer storage2.Close()

		stats := storage2.GetCurrentStats()
		if stats.Audits != 1 {
			t.Errorf("Expected 1 audit after reload, got %d", stats.Audits)
		}
		if _, err := os.Stat(filepath.Join(tempDir, "stats.json")); err != nil {
			t.Errorf("Stats file should exist: %v", err)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		now := time.Now()
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		oldMonth := first.AddDate(0, -2, 0).Format("2006-01")
		prevMonth := first.AddDate(0, -1, 0).Format("2006-01")
		storage.mutex.Lock()
		storage.stats[oldMonth] = &MonthlyStats{Audits: 100}
		storage.stats[prevMonth] = &MonthlyStats{Audits: 50}
		storage.mutex.Unlock()

		storage.Cleanup(2)

		if _, exists := storage.GetMonthlyStats(oldMonth); exists {
			t.Error("Old stats should have been cleaned up")
		}
		if _, exists := storage.GetMonthlyStats(prevMonth); !exists {
			t.Error("Previous month should be retained")
		}
		want := []string{getCurrentMonth(), prevMonth}
		if got := storage.GetAllMonths(); !reflect.DeepEqual(got, want) {
			t.Errorf("GetAllMonths = %v, want %v", got, want)
		}
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		before := storage.GetCurrentStats().Audits

		done := make(chan bool)
		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					storage.IncrementStats(Delta{Audits: 1})
					storage.GetCurrentStats()
				}
				done <- true
			}()
		}
		for i := 0; i < 10; i++ {
			<-done
		}

		if got := storage.GetCurrentStats().Audits - before; got != 1000 {
			t.Errorf("Expected 1000 new audits, got %d", got)
		}
	})
}

func TestCloseStopsWriter(t *testing.T) {
	for i := 0; i < 50; i++ {
		dir := t.TempDir()
		storage, err := NewStorage(dir)
		if err != nil {
			t.Fatalf("Failed to create storage: %v", err)
		}
		storage.IncrementStats(Delta{Audits: 1})
		storage.Cleanup(1)
		if err := storage.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		path := filepath.Join(dir, "stats.json")
		if err := os.Remove(path); err != nil {
			t.Fatalf("Close should have written %s: %v", path, err)
		}
		time.Sleep(2 * time.Millisecond)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("Run %d: stats written after Close returned", i)
		}
		if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
			t.Fatalf("Run %d: temporary file left after Close returned", i)
		}
		if err := storage.Close(); err != nil {
			t.Errorf("A second Close should be a no-op, got %v", err)
		}
	}
}
