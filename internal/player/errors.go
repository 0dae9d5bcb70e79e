package player

import "fmt"

// TransportError signals a network failure or a non-2xx response with no
// structured reason. Status is 0 when the request never completed.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport failure: %v", e.Err)
	}
	return fmt.Sprintf("transport failure: status %d", e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UploadError carries the server-reported reason for a rejected upload.
type UploadError struct {
	Reason string
}

func (e *UploadError) Error() string { return fmt.Sprintf("upload failed: %s", e.Reason) }

// DeleteError carries the server-reported reason for a rejected delete.
type DeleteError struct {
	Reason string
}

func (e *DeleteError) Error() string { return fmt.Sprintf("delete failed: %s", e.Reason) }

// ReorderError carries the server-reported reason for a rejected reorder.
type ReorderError struct {
	Reason string
}

func (e *ReorderError) Error() string { return fmt.Sprintf("reorder failed: %s", e.Reason) }

// CommandError carries the server-reported reason for a rejected playback command.
type CommandError struct {
	Command Command
	Reason  string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s command failed: %s", e.Command, e.Reason)
}
