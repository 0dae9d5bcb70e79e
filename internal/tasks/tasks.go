// package tasks implements long-running operations against the video player device.
//
// The core abstraction is [UploadEngine], which pushes batches of media
// files to the device with a worker pool and rate limiting. Operations emit
// progress updates via channels for non-blocking status reporting to the
// CLI/UI layers.
package tasks

import (
	"fmt"
	"path/filepath"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	UploadFiles Phase = iota
	RefreshPlaylist
)

func (p Phase) String() string {
	switch p {
	case UploadFiles:
		return "upload_files"
	case RefreshPlaylist:
		return "refresh_playlist"
	default:
		return ""
	}
}

func uploadingUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Uploading: %s...", step, total, filepath.Base(path)),
	}
}

func uploadedUpdate(step, total int, filename string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, filename),
	}
}

func uploadFailedUpdate(step, total int, path string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, filepath.Base(path), err),
	}
}

func refreshUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   RefreshPlaylist,
		Step:    1,
		Total:   1,
		Message: "Refreshing playlist from device...",
	}
}
