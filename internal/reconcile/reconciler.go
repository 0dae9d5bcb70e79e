package reconcile

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidctl/internal/player"
	"github.com/desertthunder/vidctl/internal/playlist"
	"github.com/desertthunder/vidctl/internal/shared"
)

// Device defines the device operations the Reconciler depends on.
// This abstraction allows for easier testing and decoupling from the concrete [player.Client].
type Device interface {
	List(ctx context.Context) ([]player.Video, error)
	Upload(ctx context.Context, filename string, r io.Reader) (*player.UploadResult, error)
	Delete(ctx context.Context, filename string) error
	Reorder(ctx context.Context, filenames []string) error
	Command(ctx context.Context, cmd player.Command, filename string) error
	Status(ctx context.Context) (*player.Status, error)
}

// Recorder receives command outcomes and status observations for the local
// history log. Implementations must tolerate being called from multiple
// goroutines. A nil Recorder disables recording.
type Recorder interface {
	RecordCommand(cmd player.Command, filename string, err error)
	RecordStatus(status player.Status)
}

// Reconciler merges local mutations and polled remote status into a
// [playlist.State].
//
// User-initiated flows (Refresh, Reorder, Upload, Delete, Command) are
// serialized against each other: each completes fully, including its
// fallback re-fetch, before the next begins. Status application is
// last-write-wins and may interleave with flows; repeated application of an
// unchanged status is a no-op.
type Reconciler struct {
	flowMu sync.Mutex

	device   Device
	state    *playlist.State
	recorder Recorder
	logger   *log.Logger

	fetchSeq   atomic.Uint64
	appliedMu  sync.Mutex
	appliedSeq uint64

	statusMu   sync.Mutex
	lastStatus *player.Status
}

// New creates a Reconciler over an empty playlist state.
// recorder may be nil. logger defaults to a stderr logger.
func New(device Device, recorder Recorder, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Reconciler{
		device:   device,
		state:    playlist.NewState(),
		recorder: recorder,
		logger:   logger,
	}
}

// State exposes the underlying playlist state for read-only snapshotting.
func (r *Reconciler) State() *playlist.State { return r.state }

// LastStatus returns the most recently applied device status, or nil before
// the first successful poll.
func (r *Reconciler) LastStatus() *player.Status {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	return r.lastStatus
}

// Refresh replaces the local playlist with the device's current list and
// re-polls status so the playing index is computed against the fresh order.
func (r *Reconciler) Refresh(ctx context.Context) (playlist.Snapshot, error) {
	r.flowMu.Lock()
	defer r.flowMu.Unlock()

	if err := r.refetch(ctx); err != nil {
		return r.state.Snapshot(), err
	}

	if _, err := r.Poll(ctx); err != nil {
		// Fail-soft: the fresh list stands, the index keeps its last value.
		r.logger.Warn("status poll after refresh failed", "error", err)
	}

	return r.state.Snapshot(), nil
}

// refetch performs the sequence-tagged list fetch and wholesale replace.
//
// Each fetch takes a monotonically increasing sequence before the request
// goes out; a response that comes back after a newer fetch has already been
// applied is discarded rather than overwriting newer state.
func (r *Reconciler) refetch(ctx context.Context) error {
	seq := r.fetchSeq.Add(1)

	items, err := r.device.List(ctx)
	if err != nil {
		return err
	}

	r.appliedMu.Lock()
	defer r.appliedMu.Unlock()
	if seq <= r.appliedSeq {
		r.logger.Debug("discarding stale playlist fetch", "seq", seq, "applied", r.appliedSeq)
		return nil
	}
	r.appliedSeq = seq
	r.state.Replace(items)
	return nil
}

// Reorder confirms a candidate playback order with the device, then applies
// it locally.
//
// The device is asked first; local state is only touched on confirmation.
// When the confirmed order no longer matches the local identity set (a
// concurrent upload or delete won the race) or the device rejects the
// order, the candidate is discarded and the playlist re-fetched wholesale.
// Either path ends with a status re-poll so the playing index lands on the
// new order.
func (r *Reconciler) Reorder(ctx context.Context, order []string) (playlist.Snapshot, error) {
	r.flowMu.Lock()
	defer r.flowMu.Unlock()

	reorderErr := r.device.Reorder(ctx, order)
	if reorderErr == nil {
		if err := r.state.ApplyOrder(order); err != nil {
			r.logger.Warn("confirmed order no longer matches local playlist, re-fetching", "error", err)
			reorderErr = err
		}
	}

	if reorderErr != nil {
		if err := r.refetch(ctx); err != nil {
			r.logger.Error("re-fetch after failed reorder also failed", "error", err)
		}
	}

	if _, err := r.Poll(ctx); err != nil {
		r.logger.Warn("status poll after reorder failed", "error", err)
	}

	return r.state.Snapshot(), reorderErr
}

// Upload sends one media file to the device and, on success, re-fetches the
// playlist so the new entry appears in device order. On failure the local
// state is untouched.
func (r *Reconciler) Upload(ctx context.Context, filename string, src io.Reader) (playlist.Snapshot, error) {
	r.flowMu.Lock()
	defer r.flowMu.Unlock()

	result, err := r.device.Upload(ctx, filename, src)
	if err != nil {
		return r.state.Snapshot(), err
	}
	r.logger.Info("uploaded video", "filename", result.Filename)

	if err := r.refetch(ctx); err != nil {
		return r.state.Snapshot(), err
	}
	return r.state.Snapshot(), nil
}

// Delete removes a video from the device and re-fetches. The deleted item
// may have been the one playing, so the flow ends with a status re-poll.
// Confirmation is the caller's concern; by the time this runs the decision
// is made.
func (r *Reconciler) Delete(ctx context.Context, filename string) (playlist.Snapshot, error) {
	r.flowMu.Lock()
	defer r.flowMu.Unlock()

	if err := r.device.Delete(ctx, filename); err != nil {
		return r.state.Snapshot(), err
	}

	if err := r.refetch(ctx); err != nil {
		return r.state.Snapshot(), err
	}

	if _, err := r.Poll(ctx); err != nil {
		r.logger.Warn("status poll after delete failed", "error", err)
	}

	return r.state.Snapshot(), nil
}

// Command issues a playback transport command and, on success, immediately
// re-polls status rather than waiting for the next poller tick. On failure
// the playing index keeps its last value.
func (r *Reconciler) Command(ctx context.Context, cmd player.Command, filename string) (playlist.Snapshot, error) {
	r.flowMu.Lock()
	defer r.flowMu.Unlock()

	err := r.device.Command(ctx, cmd, filename)
	if r.recorder != nil {
		r.recorder.RecordCommand(cmd, filename, err)
	}
	if err != nil {
		return r.state.Snapshot(), err
	}

	if _, err := r.Poll(ctx); err != nil {
		r.logger.Warn("status poll after command failed", "command", cmd, "error", err)
	}

	return r.state.Snapshot(), nil
}

// Poll fetches device status once and applies it. A fetch failure leaves
// the last-known playing index untouched.
func (r *Reconciler) Poll(ctx context.Context) (*player.Status, error) {
	status, err := r.device.Status(ctx)
	if err != nil {
		return nil, err
	}

	r.ApplyStatus(*status)
	return status, nil
}

// ApplyStatus overwrites the playing-index facet from a polled status.
//
// The device index is only trusted when it resolves to a valid position in
// the local list and, when the device also names the current video, the
// filename at that position matches. Anything else - stale index, unknown
// video, the Black Screen sentinel, a stopped device - clears the index;
// the Reconciler never guesses a position. Idempotent by construction:
// the result depends only on the status and the current item order.
func (r *Reconciler) ApplyStatus(status player.Status) {
	snap := r.state.Snapshot()

	index := playlist.NoIndex
	switch {
	case status.IsBlackScreen():
		// Idle-but-displaying: nothing in the playlist is current.
	case status.CurrentVideo == nil:
		// Stopped: the original device leaves its free-running index in
		// place here, but a cleared highlight reads truer than a stale one.
	case status.CurrentIndex != nil &&
		*status.CurrentIndex >= 0 && *status.CurrentIndex < len(snap.Items) &&
		snap.Items[*status.CurrentIndex].Filename == status.CurrentVideo.Filename:
		index = *status.CurrentIndex
	}

	r.state.SetPlayingIndex(index)

	r.statusMu.Lock()
	changed := r.lastStatus == nil || !statusEqual(*r.lastStatus, status)
	r.lastStatus = &status
	r.statusMu.Unlock()

	if changed && r.recorder != nil {
		r.recorder.RecordStatus(status)
	}
}

func statusEqual(a, b player.Status) bool {
	if a.IsPlaying != b.IsPlaying {
		return false
	}
	if (a.CurrentVideo == nil) != (b.CurrentVideo == nil) {
		return false
	}
	if a.CurrentVideo != nil && *a.CurrentVideo != *b.CurrentVideo {
		return false
	}
	if (a.CurrentIndex == nil) != (b.CurrentIndex == nil) {
		return false
	}
	if a.CurrentIndex != nil && *a.CurrentIndex != *b.CurrentIndex {
		return false
	}
	return true
}
