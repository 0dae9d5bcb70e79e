// Package history implements SQLite persistence for the local activity log.
//
// Two append-only tables back it:
//   - command_history: every transport command issued to the device, with outcome
//   - status_history: status transitions observed by the poller (deduplicated upstream)
//
// The log is a local convenience for the `history` command; the device owns
// all playlist truth and nothing here feeds back into reconciliation.
package history
