package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/vidctl/internal/player"
	"github.com/desertthunder/vidctl/internal/reconcile"
	tu "github.com/desertthunder/vidctl/internal/testing"
)

func writeTempVideos(t *testing.T, names ...string) []string {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("video bytes"), 0644); err != nil {
			t.Fatalf("failed to write temp file: %v", err)
		}
		paths = append(paths, path)
	}
	return paths
}

func TestBulkUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("Uploads All Files And Refreshes Once", func(t *testing.T) {
		device := tu.NewFakeDevice(player.Video{Name: "seed", Filename: "seed.mp4"})
		rec := reconcile.New(device, nil, nil)
		engine := NewUploadEngine(device, rec)

		paths := writeTempVideos(t, "a.mp4", "b.mp4", "c.mp4")
		result, err := engine.BulkUpload(ctx, nil, paths, UploadOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.SuccessCount != 3 || result.FailedCount != 0 {
			t.Errorf("expected 3 successes, got %d successes %d failures", result.SuccessCount, result.FailedCount)
		}
		if len(result.Snapshot.Items) != 4 {
			t.Errorf("expected 4 videos after refresh, got %d", len(result.Snapshot.Items))
		}
		if device.ListCalls != 1 {
			t.Errorf("expected a single refresh for the whole batch, got %d list calls", device.ListCalls)
		}
	})

	t.Run("Partial Failures Are Collected", func(t *testing.T) {
		device := tu.NewFakeDevice()
		rec := reconcile.New(device, nil, nil)
		engine := NewUploadEngine(device, rec)

		paths := writeTempVideos(t, "a.mp4")
		paths = append(paths, filepath.Join(t.TempDir(), "missing.mp4"))

		result, err := engine.BulkUpload(ctx, nil, paths, UploadOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.SuccessCount != 1 || result.FailedCount != 1 {
			t.Errorf("expected 1 success and 1 failure, got %d/%d", result.SuccessCount, result.FailedCount)
		}

		var failed *FileUploadResult
		for i := range result.Results {
			if !result.Results[i].Success {
				failed = &result.Results[i]
			}
		}
		if failed == nil || failed.Error == nil {
			t.Fatal("expected the missing file to carry its error")
		}
	})

	t.Run("Empty Batch Is Rejected", func(t *testing.T) {
		device := tu.NewFakeDevice()
		engine := NewUploadEngine(device, reconcile.New(device, nil, nil))

		if _, err := engine.BulkUpload(ctx, nil, nil, UploadOpts{}); err == nil {
			t.Error("expected an error for an empty batch")
		}
	})

	t.Run("Progress Updates Are Non-Blocking", func(t *testing.T) {
		device := tu.NewFakeDevice()
		rec := reconcile.New(device, nil, nil)
		engine := NewUploadEngine(device, rec)

		// Unbuffered channel with no reader; sends must be dropped, not block.
		prog := make(chan ProgressUpdate)
		paths := writeTempVideos(t, "a.mp4", "b.mp4")

		result, err := engine.BulkUpload(ctx, prog, paths, UploadOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.SuccessCount != 2 {
			t.Errorf("expected 2 successes, got %d", result.SuccessCount)
		}
	})

	t.Run("Progress Phases Arrive In Order", func(t *testing.T) {
		device := tu.NewFakeDevice()
		rec := reconcile.New(device, nil, nil)
		engine := NewUploadEngine(device, rec)

		prog := make(chan ProgressUpdate, 32)
		paths := writeTempVideos(t, "a.mp4")

		if _, err := engine.BulkUpload(ctx, prog, paths, UploadOpts{RateLimit: 1000}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(prog)

		sawUpload, sawRefresh := false, false
		for update := range prog {
			switch update.Phase {
			case UploadFiles:
				if sawRefresh {
					t.Error("upload update arrived after the refresh phase")
				}
				sawUpload = true
			case RefreshPlaylist:
				sawRefresh = true
			}
		}
		if !sawUpload || !sawRefresh {
			t.Errorf("expected both phases, got upload=%v refresh=%v", sawUpload, sawRefresh)
		}
	})

	t.Run("Cancelled Context Stops The Batch", func(t *testing.T) {
		device := tu.NewFakeDevice()
		rec := reconcile.New(device, nil, nil)
		engine := NewUploadEngine(device, rec)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		paths := writeTempVideos(t, "a.mp4", "b.mp4")
		result, err := engine.BulkUpload(cancelled, nil, paths, UploadOpts{})
		if err == nil && result.SuccessCount == len(paths) {
			t.Error("expected the cancelled batch to stop short")
		}
	})
}

func TestPhaseString(t *testing.T) {
	if UploadFiles.String() != "upload_files" {
		t.Errorf("unexpected phase name %q", UploadFiles.String())
	}
	if RefreshPlaylist.String() != "refresh_playlist" {
		t.Errorf("unexpected phase name %q", RefreshPlaylist.String())
	}
	if Phase(99).String() != "" {
		t.Error("unknown phase should stringify empty")
	}
}
