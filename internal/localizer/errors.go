package localizer

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDeviceFound is returned by Connect when no port was given and
	// discovery found no tag.
	ErrNoDeviceFound = errors.New("no UWB tag connected")

	// ErrPositioningFailure and ErrPositioningTimeout classify an
	// unsuccessful poll. See Classify.
	ErrPositioningFailure = errors.New("positioning failed")
	ErrPositioningTimeout = errors.New("positioning timed out")
)

// ConnectionError reports that the tag could not be reached, either because
// port discovery failed or because the port could not be opened. Port is
// empty when discovery failed.
type ConnectionError struct {
	Port string
	Err  error
}

func (e *ConnectionError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("connect to tag: %v", e.Err)
	}
	return fmt.Sprintf("connect to tag on %s: %v", e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
