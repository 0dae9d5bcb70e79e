package player

// BlackScreenName is the display name the device reports while it is idle
// but still driving the screen with its black filler video.
const BlackScreenName = "Black Screen"

// Video represents a single playlist entry on the device.
// Filename is the stable identifier; two entries are the same item iff their filenames match.
type Video struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
}

// Status represents the device-reported playback state.
//
// CurrentIndex is the device's free-running playlist position and may be
// stale relative to a locally held list; callers must validate it before use.
type Status struct {
	IsPlaying    bool   `json:"isPlaying"`
	CurrentVideo *Video `json:"currentVideo"`
	CurrentIndex *int   `json:"currentIndex"`
}

// IsBlackScreen reports whether the device is in its idle-but-displaying
// state, distinct from both "playing a video" and "no current video".
func (s Status) IsBlackScreen() bool {
	return s.CurrentVideo != nil && s.CurrentVideo.Name == BlackScreenName
}

// Command enumerates the transport commands accepted by the device.
type Command string

const (
	CmdPlay     Command = "play"
	CmdPause    Command = "pause"
	CmdStop     Command = "stop"
	CmdNext     Command = "next"
	CmdPrevious Command = "previous"
)

// ParseCommand validates a user-supplied command name.
func ParseCommand(s string) (Command, bool) {
	switch Command(s) {
	case CmdPlay, CmdPause, CmdStop, CmdNext, CmdPrevious:
		return Command(s), true
	default:
		return "", false
	}
}

// UploadResult is the device response to a successful upload.
type UploadResult struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}
