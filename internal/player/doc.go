// Package player wraps the HTTP API of the video player device.
//
// The device exposes a fixed request/response contract:
//
//	GET    /api/videos              → playlist as [{name, filename}]
//	POST   /api/videos/upload       → multipart field "video"
//	DELETE /api/videos/{filename}
//	POST   /api/playlist/reorder    → {"playlist": [filenames]}
//	POST   /api/playback/{command}  → command ∈ play, pause, stop, next, previous
//	GET    /api/playback/status     → {isPlaying, currentVideo, currentIndex}
//
// Non-2xx responses carry {"error": string}; that string is surfaced as the
// Reason on the operation's error type ([UploadError], [DeleteError],
// [ReorderError], [CommandError]). Network failures and non-2xx responses
// without a structured reason surface as [TransportError].
//
// Every call is a single round trip with no retry. Bounded waits come from
// the injected [http.Client] timeout.
package player
