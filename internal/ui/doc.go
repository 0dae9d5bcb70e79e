// Package ui implements the interactive terminal interface.
//
// The [Model] renders the playlist from reconciler snapshots and maps key
// presses to reconciler flows: enter plays the selected video, space/s/n/p
// drive transport, J/K move an item (producing a candidate filename order
// for the reorder flow), d deletes after a confirmation view, r re-fetches.
// A background [reconcile.Poller] feeds status updates in through the
// bubbletea message loop.
package ui
