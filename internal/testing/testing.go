// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/desertthunder/vidctl/internal/player"
)

// FakeDevice is an in-memory test double for reconcile.Device mirroring the
// real device's semantics: reorder drops unknown filenames, deleting the
// playing video flips to the black screen, play/next/previous wrap around,
// and the status index free-runs independently of the playlist.
//
// Error fields inject failures per operation; counters record calls.
type FakeDevice struct {
	mu sync.Mutex

	Videos      []player.Video
	PlayingIdx  int // -1 when nothing has played yet
	IsPlaying   bool
	BlackScreen bool

	ListErr    error
	UploadErr  error
	DeleteErr  error
	ReorderErr error
	CommandErr error
	StatusErr  error

	ListCalls    int
	StatusCalls  int
	ReorderCalls int

	// LastReorder captures the most recent confirmed order.
	LastReorder []string

	// OnList runs before each List, letting tests mutate device state
	// mid-flow to simulate races.
	OnList func(d *FakeDevice)
}

// NewFakeDevice creates a device preloaded with the given videos, stopped.
func NewFakeDevice(videos ...player.Video) *FakeDevice {
	return &FakeDevice{Videos: videos, PlayingIdx: -1}
}

func (d *FakeDevice) List(ctx context.Context) ([]player.Video, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ListCalls++
	if d.OnList != nil {
		d.OnList(d)
	}
	if d.ListErr != nil {
		return nil, d.ListErr
	}

	out := make([]player.Video, len(d.Videos))
	copy(out, d.Videos)
	return out, nil
}

func (d *FakeDevice) Upload(ctx context.Context, filename string, r io.Reader) (*player.UploadResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.UploadErr != nil {
		return nil, d.UploadErr
	}
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}

	for _, v := range d.Videos {
		if v.Filename == filename {
			return &player.UploadResult{Message: "Video uploaded successfully", Filename: filename}, nil
		}
	}
	d.Videos = append(d.Videos, player.Video{Name: trimExt(filename), Filename: filename})
	return &player.UploadResult{Message: "Video uploaded successfully", Filename: filename}, nil
}

func (d *FakeDevice) Delete(ctx context.Context, filename string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.DeleteErr != nil {
		return d.DeleteErr
	}

	playing := d.IsPlaying && d.PlayingIdx >= 0 && d.PlayingIdx < len(d.Videos) &&
		d.Videos[d.PlayingIdx].Filename == filename

	kept := d.Videos[:0]
	found := false
	for _, v := range d.Videos {
		if v.Filename == filename {
			found = true
			continue
		}
		kept = append(kept, v)
	}
	d.Videos = kept

	if !found {
		return &player.DeleteError{Reason: "Video not found"}
	}
	if playing {
		d.BlackScreen = true
		d.PlayingIdx = -1
	}
	return nil
}

func (d *FakeDevice) Reorder(ctx context.Context, filenames []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ReorderCalls++
	if d.ReorderErr != nil {
		return d.ReorderErr
	}

	byName := make(map[string]player.Video, len(d.Videos))
	for _, v := range d.Videos {
		byName[v.Filename] = v
	}

	// Unknown filenames are skipped, same as the device.
	reordered := make([]player.Video, 0, len(d.Videos))
	for _, name := range filenames {
		if v, ok := byName[name]; ok {
			reordered = append(reordered, v)
		}
	}
	d.Videos = reordered
	d.LastReorder = append([]string(nil), filenames...)
	return nil
}

func (d *FakeDevice) Command(ctx context.Context, cmd player.Command, filename string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.CommandErr != nil {
		return d.CommandErr
	}

	switch cmd {
	case player.CmdPlay:
		if len(d.Videos) == 0 {
			return &player.CommandError{Command: cmd, Reason: "Playlist is empty"}
		}
		if filename != "" {
			idx := -1
			for i, v := range d.Videos {
				if v.Filename == filename {
					idx = i
					break
				}
			}
			if idx == -1 {
				return &player.CommandError{Command: cmd, Reason: "Video not in playlist"}
			}
			d.PlayingIdx = idx
		} else if d.PlayingIdx == -1 || d.PlayingIdx >= len(d.Videos)-1 {
			d.PlayingIdx = 0
		}
		d.IsPlaying = true
		d.BlackScreen = false
	case player.CmdPause:
		if !d.IsPlaying {
			return &player.CommandError{Command: cmd, Reason: "Player not running or already stopped"}
		}
	case player.CmdStop:
		d.IsPlaying = false
		d.BlackScreen = true
		d.PlayingIdx = -1
	case player.CmdNext:
		if len(d.Videos) == 0 {
			return &player.CommandError{Command: cmd, Reason: "Playlist is empty"}
		}
		d.PlayingIdx++
		if d.PlayingIdx >= len(d.Videos) {
			d.PlayingIdx = 0
		}
		d.IsPlaying = true
		d.BlackScreen = false
	case player.CmdPrevious:
		if len(d.Videos) == 0 {
			return &player.CommandError{Command: cmd, Reason: "Playlist is empty"}
		}
		d.PlayingIdx--
		if d.PlayingIdx < 0 {
			d.PlayingIdx = len(d.Videos) - 1
		}
		d.IsPlaying = true
		d.BlackScreen = false
	default:
		return &player.CommandError{Command: cmd, Reason: "Unknown command"}
	}
	return nil
}

func (d *FakeDevice) Status(ctx context.Context) (*player.Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.StatusCalls++
	if d.StatusErr != nil {
		return nil, d.StatusErr
	}

	idx := d.PlayingIdx
	status := &player.Status{CurrentIndex: &idx}

	if d.BlackScreen {
		status.IsPlaying = true
		status.CurrentVideo = &player.Video{Name: player.BlackScreenName, Filename: "black.mp4"}
		return status, nil
	}

	if d.IsPlaying && d.PlayingIdx >= 0 && d.PlayingIdx < len(d.Videos) {
		status.IsPlaying = true
		v := d.Videos[d.PlayingIdx]
		status.CurrentVideo = &v
	}
	return status, nil
}

func trimExt(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[:i]
		}
	}
	return filename
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}
