// Package reconcile keeps the local playlist state consistent with the
// device under concurrent edits and an unreliable network.
//
// The [Reconciler] runs every user-initiated flow (reorder, upload, delete,
// playback command) against the device and patches the local
// [playlist.State] only after the device confirms. Any disagreement between
// the confirmed result and the local identity set falls back to a full
// re-fetch, so local state never diverges permanently from remote truth.
//
// The [Poller] is a cancellable repeating task that fetches playback status
// on a fixed period, feeds it into the Reconciler's playing-index
// resolution, and delivers snapshots to the UI through a channel. Poll
// failures are fail-soft: the last known state stays put.
package reconcile
