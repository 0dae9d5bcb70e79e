package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Device and transport errors
	ErrDeviceUnavailable = fmt.Errorf("device unavailable")
	ErrTimeout           = fmt.Errorf("operation timed out")
	ErrEmptyPlaylist     = fmt.Errorf("playlist is empty")
	ErrVideoNotFound     = fmt.Errorf("video not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
