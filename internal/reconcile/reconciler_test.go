package reconcile

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/vidctl/internal/player"
	"github.com/desertthunder/vidctl/internal/playlist"
	tu "github.com/desertthunder/vidctl/internal/testing"
)

func vid(name string) player.Video {
	return player.Video{Name: name, Filename: name + ".mp4"}
}

func filenames(snap playlist.Snapshot) []string {
	out := make([]string, len(snap.Items))
	for i, v := range snap.Items {
		out[i] = v.Filename
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// captureRecorder records every command and status it receives.
type captureRecorder struct {
	mu       sync.Mutex
	commands []player.Command
	cmdErrs  []error
	statuses []player.Status
}

func (c *captureRecorder) RecordCommand(cmd player.Command, filename string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands = append(c.commands, cmd)
	c.cmdErrs = append(c.cmdErrs, err)
}

func (c *captureRecorder) RecordStatus(status player.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = append(c.statuses, status)
}

func TestReconciler(t *testing.T) {
	ctx := context.Background()

	t.Run("Refresh", func(t *testing.T) {
		t.Run("Replaces Local Playlist With Device Order", func(t *testing.T) {
			device := tu.NewFakeDevice(vid("a"), vid("b"), vid("c"))
			rec := New(device, nil, nil)

			snap, err := rec.Refresh(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := filenames(snap); !equalStrings(got, []string{"a.mp4", "b.mp4", "c.mp4"}) {
				t.Errorf("expected device order, got %v", got)
			}
			if snap.PlayingIndex != playlist.NoIndex {
				t.Errorf("expected no playing index on a stopped device, got %d", snap.PlayingIndex)
			}
		})

		t.Run("List Failure Leaves State Untouched", func(t *testing.T) {
			device := tu.NewFakeDevice(vid("a"))
			rec := New(device, nil, nil)
			if _, err := rec.Refresh(ctx); err != nil {
				t.Fatalf("seed refresh failed: %v", err)
			}

			device.ListErr = errors.New("device offline")
			snap, err := rec.Refresh(ctx)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := filenames(snap); !equalStrings(got, []string{"a.mp4"}) {
				t.Errorf("expected previous playlist to survive, got %v", got)
			}
		})

		t.Run("Status Failure Is Soft", func(t *testing.T) {
			device := tu.NewFakeDevice(vid("a"))
			device.StatusErr = errors.New("status route down")
			rec := New(device, nil, nil)

			snap, err := rec.Refresh(ctx)
			if err != nil {
				t.Fatalf("refresh should not fail on a status error: %v", err)
			}
			if len(snap.Items) != 1 {
				t.Errorf("expected the fresh list to stand, got %v", filenames(snap))
			}
		})
	})

	t.Run("Reorder", func(t *testing.T) {
		t.Run("Confirmed Order Applies Locally", func(t *testing.T) {
			device := tu.NewFakeDevice(vid("a"), vid("b"), vid("c"))
			rec := New(device, nil, nil)
			if _, err := rec.Refresh(ctx); err != nil {
				t.Fatalf("seed refresh failed: %v", err)
			}

			want := []string{"c.mp4", "a.mp4", "b.mp4"}
			snap, err := rec.Reorder(ctx, want)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := filenames(snap); !equalStrings(got, want) {
				t.Errorf("expected %v, got %v", want, got)
			}
			if !equalStrings(device.LastReorder, want) {
				t.Errorf("device saw order %v, want %v", device.LastReorder, want)
			}
		})

		t.Run("Playing Index Tracks The Device Report", func(t *testing.T) {
			device := tu.NewFakeDevice(vid("a"), vid("b"), vid("c"))
			rec := New(device, nil, nil)
			if _, err := rec.Refresh(ctx); err != nil {
				t.Fatalf("seed refresh failed: %v", err)
			}
			if _, err := rec.Command(ctx, player.CmdPlay, "b.mp4"); err != nil {
				t.Fatalf("play failed: %v", err)
			}

			// The device index free-runs through a reorder, so the re-poll at
			// the end of the flow decides who is current, not the moved video.
			snap, err := rec.Reorder(ctx, []string{"b.mp4", "c.mp4", "a.mp4"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if snap.PlayingIndex != 1 {
				t.Errorf("expected playing index 1 from the device report, got %d", snap.PlayingIndex)
			}
			if v := snap.Playing(); v == nil || v.Filename != "c.mp4" {
				t.Errorf("expected c.mp4 to be current after the re-poll, got %+v", v)
			}
		})

		t.Run("Device Rejection Falls Back To Refetch", func(t *testing.T) {
			device := tu.NewFakeDevice(vid("a"), vid("b"))
			rec := New(device, nil, nil)
			if _, err := rec.Refresh(ctx); err != nil {
				t.Fatalf("seed refresh failed: %v", err)
			}

			rejection := errors.New("reorder rejected")
			device.ReorderErr = rejection
			snap, err := rec.Reorder(ctx, []string{"b.mp4", "a.mp4"})
			if !errors.Is(err, rejection) {
				t.Fatalf("expected the device error back, got %v", err)
			}
			if got := filenames(snap); !equalStrings(got, []string{"a.mp4", "b.mp4"}) {
				t.Errorf("expected state to match device list, got %v", got)
			}
		})

		t.Run("Stale Candidate Triggers Wholesale Refetch", func(t *testing.T) {
			device := tu.NewFakeDevice(vid("a"), vid("b"), vid("c"))
			rec := New(device, nil, nil)
			if _, err := rec.Refresh(ctx); err != nil {
				t.Fatalf("seed refresh failed: %v", err)
			}

			// b disappears on the device after the local snapshot was taken.
			if err := device.Delete(ctx, "b.mp4"); err != nil {
				t.Fatalf("device delete failed: %v", err)
			}

			snap, err := rec.Reorder(ctx, []string{"c.mp4", "a.mp4"})
			var mismatch *playlist.MismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("expected a mismatch error, got %v", err)
			}
			if got := filenames(snap); !equalStrings(got, []string{"c.mp4", "a.mp4"}) {
				t.Errorf("expected final state to equal device list, got %v", got)
			}
		})

		t.Run("Never Partially Applies", func(t *testing.T) {
			device := tu.NewFakeDevice(vid("a"), vid("b"), vid("c"))
			rec := New(device, nil, nil)
			if _, err := rec.Refresh(ctx); err != nil {
				t.Fatalf("seed refresh failed: %v", err)
			}

			// Freeze the fallback so a partial application would be visible.
			device.ReorderErr = errors.New("rejected")
			device.ListErr = errors.New("offline")
			snap, err := rec.Reorder(ctx, []string{"c.mp4", "a.mp4", "b.mp4"})
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := filenames(snap); !equalStrings(got, []string{"a.mp4", "b.mp4", "c.mp4"}) {
				t.Errorf("expected original order, got %v", got)
			}
		})
	})

	t.Run("Upload", func(t *testing.T) {
		t.Run("Success Refetches Device Order", func(t *testing.T) {
			device := tu.NewFakeDevice(vid("a"))
			rec := New(device, nil, nil)
			if _, err := rec.Refresh(ctx); err != nil {
				t.Fatalf("seed refresh failed: %v", err)
			}

			snap, err := rec.Upload(ctx, "b.mp4", strings.NewReader("video bytes"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := filenames(snap); !equalStrings(got, []string{"a.mp4", "b.mp4"}) {
				t.Errorf("expected uploaded video appended, got %v", got)
			}
		})

		t.Run("Failure Leaves Items Unchanged", func(t *testing.T) {
			device := tu.NewFakeDevice(vid("a"))
			rec := New(device, nil, nil)
			if _, err := rec.Refresh(ctx); err != nil {
				t.Fatalf("seed refresh failed: %v", err)
			}

			device.UploadErr = &player.UploadError{Reason: "Unsupported file format"}
			snap, err := rec.Upload(ctx, "b.avi", strings.NewReader("nope"))
			var uploadErr *player.UploadError
			if !errors.As(err, &uploadErr) {
				t.Fatalf("expected an upload error, got %v", err)
			}
			if got := filenames(snap); !equalStrings(got, []string{"a.mp4"}) {
				t.Errorf("expected playlist unchanged, got %v", got)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("Removes And Refetches", func(t *testing.T) {
			device := tu.NewFakeDevice(vid("a"), vid("b"))
			rec := New(device, nil, nil)
			if _, err := rec.Refresh(ctx); err != nil {
				t.Fatalf("seed refresh failed: %v", err)
			}

			snap, err := rec.Delete(ctx, "a.mp4")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := filenames(snap); !equalStrings(got, []string{"b.mp4"}) {
				t.Errorf("expected a.mp4 removed, got %v", got)
			}
		})

		t.Run("Deleting The Playing Video Clears The Index", func(t *testing.T) {
			device := tu.NewFakeDevice(vid("a"), vid("b"), vid("c"))
			rec := New(device, nil, nil)
			if _, err := rec.Refresh(ctx); err != nil {
				t.Fatalf("seed refresh failed: %v", err)
			}
			if _, err := rec.Command(ctx, player.CmdPlay, "b.mp4"); err != nil {
				t.Fatalf("play failed: %v", err)
			}

			snap, err := rec.Delete(ctx, "b.mp4")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if snap.PlayingIndex != playlist.NoIndex {
				t.Errorf("expected no playing index after deleting the current video, got %d", snap.PlayingIndex)
			}
			status := rec.LastStatus()
			if status == nil || !status.IsBlackScreen() {
				t.Errorf("expected the device to report the black screen, got %+v", status)
			}
		})
	})

	t.Run("Command", func(t *testing.T) {
		t.Run("Success Re-Polls Immediately", func(t *testing.T) {
			device := tu.NewFakeDevice(vid("a"), vid("b"))
			rec := New(device, nil, nil)
			if _, err := rec.Refresh(ctx); err != nil {
				t.Fatalf("seed refresh failed: %v", err)
			}

			before := device.StatusCalls
			snap, err := rec.Command(ctx, player.CmdPlay, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if device.StatusCalls != before+1 {
				t.Errorf("expected an immediate status poll, calls went %d -> %d", before, device.StatusCalls)
			}
			if snap.PlayingIndex != 0 {
				t.Errorf("expected index 0 after play, got %d", snap.PlayingIndex)
			}
		})

		t.Run("Wraps Around On Next", func(t *testing.T) {
			device := tu.NewFakeDevice(vid("a"), vid("b"))
			rec := New(device, nil, nil)
			if _, err := rec.Refresh(ctx); err != nil {
				t.Fatalf("seed refresh failed: %v", err)
			}
			if _, err := rec.Command(ctx, player.CmdPlay, "b.mp4"); err != nil {
				t.Fatalf("play failed: %v", err)
			}

			snap, err := rec.Command(ctx, player.CmdNext, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if snap.PlayingIndex != 0 {
				t.Errorf("expected next from the last video to wrap to 0, got %d", snap.PlayingIndex)
			}
		})

		t.Run("Failure Keeps The Last Index", func(t *testing.T) {
			device := tu.NewFakeDevice(vid("a"))
			rec := New(device, nil, nil)
			if _, err := rec.Refresh(ctx); err != nil {
				t.Fatalf("seed refresh failed: %v", err)
			}
			if _, err := rec.Command(ctx, player.CmdPlay, ""); err != nil {
				t.Fatalf("play failed: %v", err)
			}

			device.CommandErr = &player.CommandError{Command: player.CmdPause, Reason: "Player not running"}
			snap, err := rec.Command(ctx, player.CmdPause, "")
			if err == nil {
				t.Fatal("expected an error")
			}
			if snap.PlayingIndex != 0 {
				t.Errorf("expected index to keep its last value, got %d", snap.PlayingIndex)
			}
		})

		t.Run("Records Outcomes", func(t *testing.T) {
			device := tu.NewFakeDevice(vid("a"))
			recorder := &captureRecorder{}
			rec := New(device, recorder, nil)
			if _, err := rec.Refresh(ctx); err != nil {
				t.Fatalf("seed refresh failed: %v", err)
			}

			if _, err := rec.Command(ctx, player.CmdPlay, ""); err != nil {
				t.Fatalf("play failed: %v", err)
			}
			device.CommandErr = errors.New("boom")
			if _, err := rec.Command(ctx, player.CmdStop, ""); err == nil {
				t.Fatal("expected an error")
			}

			if len(recorder.commands) != 2 {
				t.Fatalf("expected 2 recorded commands, got %d", len(recorder.commands))
			}
			if recorder.cmdErrs[0] != nil {
				t.Errorf("expected first command to record success, got %v", recorder.cmdErrs[0])
			}
			if recorder.cmdErrs[1] == nil {
				t.Error("expected second command to record its failure")
			}
		})
	})

	t.Run("ApplyStatus", func(t *testing.T) {
		seed := func(t *testing.T) *Reconciler {
			t.Helper()
			device := tu.NewFakeDevice(vid("a"), vid("b"), vid("c"))
			rec := New(device, nil, nil)
			if _, err := rec.Refresh(ctx); err != nil {
				t.Fatalf("seed refresh failed: %v", err)
			}
			return rec
		}

		t.Run("Valid Index With Matching Filename", func(t *testing.T) {
			rec := seed(t)
			idx := 1
			rec.ApplyStatus(player.Status{
				IsPlaying:    true,
				CurrentVideo: &player.Video{Name: "b", Filename: "b.mp4"},
				CurrentIndex: &idx,
			})
			if got := rec.State().Snapshot().PlayingIndex; got != 1 {
				t.Errorf("expected index 1, got %d", got)
			}
		})

		t.Run("Out Of Range Index Clears", func(t *testing.T) {
			rec := seed(t)
			idx := 7
			rec.ApplyStatus(player.Status{
				IsPlaying:    true,
				CurrentVideo: &player.Video{Name: "b", Filename: "b.mp4"},
				CurrentIndex: &idx,
			})
			if got := rec.State().Snapshot().PlayingIndex; got != playlist.NoIndex {
				t.Errorf("expected cleared index, got %d", got)
			}
		})

		t.Run("Mismatched Filename Clears", func(t *testing.T) {
			rec := seed(t)
			idx := 0
			rec.ApplyStatus(player.Status{
				IsPlaying:    true,
				CurrentVideo: &player.Video{Name: "b", Filename: "b.mp4"},
				CurrentIndex: &idx,
			})
			if got := rec.State().Snapshot().PlayingIndex; got != playlist.NoIndex {
				t.Errorf("expected cleared index on filename mismatch, got %d", got)
			}
		})

		t.Run("Black Screen Clears", func(t *testing.T) {
			rec := seed(t)
			idx := 1
			rec.ApplyStatus(player.Status{
				IsPlaying:    true,
				CurrentVideo: &player.Video{Name: player.BlackScreenName, Filename: "black.mp4"},
				CurrentIndex: &idx,
			})
			if got := rec.State().Snapshot().PlayingIndex; got != playlist.NoIndex {
				t.Errorf("expected cleared index for the black screen, got %d", got)
			}
		})

		t.Run("Stopped Device Clears", func(t *testing.T) {
			rec := seed(t)
			idx := 1
			rec.ApplyStatus(player.Status{CurrentIndex: &idx})
			if got := rec.State().Snapshot().PlayingIndex; got != playlist.NoIndex {
				t.Errorf("expected cleared index when stopped, got %d", got)
			}
		})

		t.Run("Idempotent", func(t *testing.T) {
			rec := seed(t)
			idx := 2
			status := player.Status{
				IsPlaying:    true,
				CurrentVideo: &player.Video{Name: "c", Filename: "c.mp4"},
				CurrentIndex: &idx,
			}
			rec.ApplyStatus(status)
			first := rec.State().Snapshot()
			rec.ApplyStatus(status)
			second := rec.State().Snapshot()
			if first.PlayingIndex != second.PlayingIndex || !equalStrings(filenames(first), filenames(second)) {
				t.Error("expected repeated application to change nothing")
			}
		})

		t.Run("Records Only Transitions", func(t *testing.T) {
			device := tu.NewFakeDevice(vid("a"))
			recorder := &captureRecorder{}
			rec := New(device, recorder, nil)

			idx := 0
			playing := player.Status{
				IsPlaying:    true,
				CurrentVideo: &player.Video{Name: "a", Filename: "a.mp4"},
				CurrentIndex: &idx,
			}
			rec.ApplyStatus(playing)
			rec.ApplyStatus(playing)
			rec.ApplyStatus(player.Status{CurrentIndex: &idx})

			if len(recorder.statuses) != 2 {
				t.Errorf("expected 2 recorded statuses, got %d", len(recorder.statuses))
			}
		})
	})
}
