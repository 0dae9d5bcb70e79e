package history

import (
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/vidctl/internal/player"
	"github.com/desertthunder/vidctl/internal/shared"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewRepository(db, nil)
}

func TestRepository(t *testing.T) {
	t.Run("RecordCommand", func(t *testing.T) {
		t.Run("Persists Outcomes Newest First", func(t *testing.T) {
			repo := newTestRepository(t)

			repo.RecordCommand(player.CmdPlay, "a.mp4", nil)
			time.Sleep(5 * time.Millisecond)
			repo.RecordCommand(player.CmdStop, "", errors.New("device offline"))

			records, err := repo.Commands(10)
			if err != nil {
				t.Fatalf("failed to query commands: %v", err)
			}
			if len(records) != 2 {
				t.Fatalf("expected 2 records, got %d", len(records))
			}

			if records[0].Command != player.CmdStop {
				t.Errorf("expected newest record first, got %s", records[0].Command)
			}
			if records[0].Succeeded {
				t.Error("expected failed command to record succeeded=false")
			}
			if records[0].Error != "device offline" {
				t.Errorf("expected error text preserved, got %q", records[0].Error)
			}

			if records[1].Command != player.CmdPlay || !records[1].Succeeded {
				t.Errorf("expected successful play record, got %+v", records[1])
			}
			if records[1].Filename != "a.mp4" {
				t.Errorf("expected filename a.mp4, got %s", records[1].Filename)
			}
		})

		t.Run("Limit Is Honored", func(t *testing.T) {
			repo := newTestRepository(t)
			for i := 0; i < 5; i++ {
				repo.RecordCommand(player.CmdNext, "", nil)
			}

			records, err := repo.Commands(3)
			if err != nil {
				t.Fatalf("failed to query commands: %v", err)
			}
			if len(records) != 3 {
				t.Errorf("expected 3 records, got %d", len(records))
			}
		})
	})

	t.Run("RecordStatus", func(t *testing.T) {
		t.Run("Persists Transitions", func(t *testing.T) {
			repo := newTestRepository(t)

			idx := 2
			repo.RecordStatus(player.Status{
				IsPlaying:    true,
				CurrentVideo: &player.Video{Name: "c", Filename: "c.mp4"},
				CurrentIndex: &idx,
			})
			repo.RecordStatus(player.Status{})

			records, err := repo.Statuses(10)
			if err != nil {
				t.Fatalf("failed to query statuses: %v", err)
			}
			if len(records) != 2 {
				t.Fatalf("expected 2 records, got %d", len(records))
			}

			var playing *StatusRecord
			for i := range records {
				if records[i].IsPlaying {
					playing = &records[i]
				}
			}
			if playing == nil {
				t.Fatal("expected a playing record")
			}
			if playing.VideoFilename != "c.mp4" {
				t.Errorf("expected video filename c.mp4, got %s", playing.VideoFilename)
			}
			if playing.CurrentIndex == nil || *playing.CurrentIndex != 2 {
				t.Errorf("expected current index 2, got %v", playing.CurrentIndex)
			}
		})

		t.Run("Stopped Status Has No Index", func(t *testing.T) {
			repo := newTestRepository(t)
			repo.RecordStatus(player.Status{})

			records, err := repo.Statuses(1)
			if err != nil {
				t.Fatalf("failed to query statuses: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(records))
			}
			if records[0].CurrentIndex != nil {
				t.Errorf("expected nil index, got %d", *records[0].CurrentIndex)
			}
			if records[0].VideoFilename != "" {
				t.Errorf("expected empty filename, got %s", records[0].VideoFilename)
			}
		})
	})

	t.Run("Write Failures Are Swallowed", func(t *testing.T) {
		db, err := shared.NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		db.Close()

		// The tables don't exist and the connection is closed; neither call
		// may panic or surface an error.
		repo := NewRepository(db, nil)
		repo.RecordCommand(player.CmdPlay, "a.mp4", nil)
		repo.RecordStatus(player.Status{})
	})
}
