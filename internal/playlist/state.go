// Package playlist holds the locally owned copy of the device playlist.
//
// [State] is the single source of truth for rendering: an ordered sequence
// of videos plus the index of the currently playing item. It enforces the
// structural invariants (unique filenames, index validity, whole-order
// application) but knows nothing about the network; the reconcile package
// decides when and how it changes.
package playlist

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/desertthunder/vidctl/internal/player"
)

// NoIndex marks "nothing playing".
const NoIndex = -1

// MismatchError reports that an order could not be applied because its
// filename set disagrees with the current playlist identity set.
type MismatchError struct {
	Missing []string // filenames in the playlist but absent from the order
	Extra   []string // filenames in the order but absent from the playlist
}

func (e *MismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("unknown %s", strings.Join(e.Extra, ", ")))
	}
	return "playlist order mismatch: " + strings.Join(parts, "; ")
}

// Snapshot is an immutable copy of the playlist state for rendering.
type Snapshot struct {
	Items        []player.Video
	PlayingIndex int
}

// Playing returns the currently playing video, or nil when none.
func (s Snapshot) Playing() *player.Video {
	if s.PlayingIndex == NoIndex {
		return nil
	}
	v := s.Items[s.PlayingIndex]
	return &v
}

// Filenames returns the snapshot order as a filename sequence.
func (s Snapshot) Filenames() []string {
	names := make([]string, len(s.Items))
	for i, v := range s.Items {
		names[i] = v.Filename
	}
	return names
}

// State is the locally held playlist: playback-ordered videos and the
// currently playing index. Safe for concurrent use; the poller and
// user-triggered flows may touch it from different goroutines.
type State struct {
	mu           sync.RWMutex
	items        []player.Video
	playingIndex int
}

// NewState creates an empty playlist state with nothing playing.
func NewState() *State {
	return &State{playingIndex: NoIndex}
}

// Replace installs a wholesale new item sequence, dropping any duplicate
// filenames after their first occurrence. The playing index is re-resolved
// by filename: if the previously playing video survives, it stays marked;
// otherwise the index clears.
func (s *State) Replace(items []player.Video) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playing := ""
	if s.playingIndex != NoIndex {
		playing = s.items[s.playingIndex].Filename
	}

	seen := make(map[string]bool, len(items))
	deduped := make([]player.Video, 0, len(items))
	for _, v := range items {
		if seen[v.Filename] {
			continue
		}
		seen[v.Filename] = true
		deduped = append(deduped, v)
	}

	s.items = deduped
	s.playingIndex = indexOf(s.items, playing)
}

// ApplyOrder installs a new playback order, given as a filename sequence.
//
// The order applies only when its filename set matches the current identity
// set exactly: same cardinality, same members. Anything else returns a
// [*MismatchError] and leaves the playlist untouched; a partial apply never
// happens. The playing index follows its video to the new position.
func (s *State) ApplyOrder(filenames []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName := make(map[string]player.Video, len(s.items))
	for _, v := range s.items {
		byName[v.Filename] = v
	}

	var mismatch MismatchError
	seen := make(map[string]bool, len(filenames))
	reordered := make([]player.Video, 0, len(s.items))
	for _, name := range filenames {
		if seen[name] {
			mismatch.Extra = append(mismatch.Extra, name)
			continue
		}
		seen[name] = true

		v, ok := byName[name]
		if !ok {
			mismatch.Extra = append(mismatch.Extra, name)
			continue
		}
		reordered = append(reordered, v)
	}
	for _, v := range s.items {
		if !seen[v.Filename] {
			mismatch.Missing = append(mismatch.Missing, v.Filename)
		}
	}

	if len(mismatch.Missing) > 0 || len(mismatch.Extra) > 0 {
		sort.Strings(mismatch.Missing)
		sort.Strings(mismatch.Extra)
		return &mismatch
	}

	playing := ""
	if s.playingIndex != NoIndex {
		playing = s.items[s.playingIndex].Filename
	}

	s.items = reordered
	s.playingIndex = indexOf(s.items, playing)
	return nil
}

// SetPlayingIndex overwrites the playing index. Out-of-range values clamp
// to [NoIndex] so the index validity invariant holds no matter what the
// device reported.
func (s *State) SetPlayingIndex(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.items) {
		s.playingIndex = NoIndex
		return
	}
	s.playingIndex = i
}

// Snapshot returns an immutable copy for rendering.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]player.Video, len(s.items))
	copy(items, s.items)
	return Snapshot{Items: items, PlayingIndex: s.playingIndex}
}

// Len returns the number of items.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func indexOf(items []player.Video, filename string) int {
	if filename == "" {
		return NoIndex
	}
	for i, v := range items {
		if v.Filename == filename {
			return i
		}
	}
	return NoIndex
}
