package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/desertthunder/vidctl/internal/playlist"
	"github.com/desertthunder/vidctl/internal/reconcile"
	"golang.org/x/time/rate"
)

// UploadOpts contains configuration for batch uploads.
type UploadOpts struct {
	NumWorkers int     // Concurrent workers (default: 3)
	RateLimit  float64 // Uploads started per second (default: 2)
}

// UploadJob is one file queued for upload.
type UploadJob struct {
	Index int
	Path  string
}

// FileUploadResult records the outcome for a single file.
type FileUploadResult struct {
	Path     string
	Filename string // Device-reported filename on success
	Success  bool
	Error    error
}

// BulkUploadResult contains all data from a batch upload.
type BulkUploadResult struct {
	TotalFiles   int
	SuccessCount int
	FailedCount  int
	Results      []FileUploadResult
	Snapshot     playlist.Snapshot // Playlist state after the final refresh
}

// UploadEngine pushes media files to the device.
type UploadEngine struct {
	device reconcile.Device
	rec    *reconcile.Reconciler
}

// NewUploadEngine creates an UploadEngine over the given device and reconciler.
func NewUploadEngine(device reconcile.Device, rec *reconcile.Reconciler) *UploadEngine {
	return &UploadEngine{device: device, rec: rec}
}

// BulkUpload uploads multiple files concurrently with rate limiting and progress tracking.
//
// Files upload straight through the device client; the playlist refreshes
// once at the end via the reconciler instead of once per file. Partial
// failures are collected per file, not fatal to the batch.
func (e *UploadEngine) BulkUpload(ctx context.Context, prog chan<- ProgressUpdate, paths []string, opts UploadOpts) (*BulkUploadResult, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to upload")
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	result := &BulkUploadResult{
		TotalFiles: len(paths),
		Results:    make([]FileUploadResult, 0, len(paths)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan UploadJob, len(paths))
	results := make(chan FileUploadResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.uploadWorker(ctx, &wg, jobs, results)
	}

	go func() {
		defer close(jobs)
		for i, path := range paths {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				return
			}

			e.sendProgress(prog, uploadingUpdate(i+1, len(paths), path))
			jobs <- UploadJob{Index: i, Path: path}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessCount++
			e.sendProgress(prog, uploadedUpdate(completed, len(paths), res.Filename))
		} else {
			result.FailedCount++
			e.sendProgress(prog, uploadFailedUpdate(completed, len(paths), res.Path, res.Error))
		}
	}

	e.sendProgress(prog, refreshUpdate())
	snap, err := e.rec.Refresh(ctx)
	if err != nil {
		return result, fmt.Errorf("uploads finished but refresh failed: %w", err)
	}
	result.Snapshot = snap

	return result, nil
}

// uploadWorker drains the job channel, uploading one file at a time.
func (e *UploadEngine) uploadWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan UploadJob, results chan<- FileUploadResult) {
	defer wg.Done()

	for job := range jobs {
		results <- e.uploadOne(ctx, job.Path)
	}
}

func (e *UploadEngine) uploadOne(ctx context.Context, path string) FileUploadResult {
	f, err := os.Open(path)
	if err != nil {
		return FileUploadResult{Path: path, Error: fmt.Errorf("failed to open file: %w", err)}
	}
	defer f.Close()

	uploaded, err := e.device.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		return FileUploadResult{Path: path, Error: err}
	}

	return FileUploadResult{Path: path, Filename: uploaded.Filename, Success: true}
}

// sendProgress sends an update without blocking when no one is listening.
func (e *UploadEngine) sendProgress(prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
	default:
	}
}
