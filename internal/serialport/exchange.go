package serialport

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	// ErrWriteFailed is returned when a command was only partially written.
	ErrWriteFailed = errors.New("failed to write to serial port")
	// ErrReplyTimeout is returned when no complete reply line arrived in time.
	ErrReplyTimeout = errors.New("timed out waiting for serial reply")
)

// DefaultReplyTimeout bounds a single command/reply round trip.
const DefaultReplyTimeout = time.Second

// pollSlice is the read timeout set on ports that support one, so that the
// reply deadline is checked between reads.
const pollSlice = 50 * time.Millisecond

// idleWait is slept after a read that returned nothing, so ports whose Read
// does not block are not spun on.
const idleWait = 2 * time.Millisecond

// debugPrefix marks unsolicited firmware debug lines, which are never replies.
const debugPrefix = "DBG"

// Exchanger sends one command line at a time and waits for the reply line.
// Commands are serialised; concurrent callers queue on the mutex.
type Exchanger struct {
	port    SerialPorter
	timeout time.Duration

	mu      sync.Mutex
	pending []byte
	chunk   []byte
}

// NewExchanger wraps port. A non-positive timeout selects DefaultReplyTimeout.
func NewExchanger(port SerialPorter, timeout time.Duration) *Exchanger {
	if timeout <= 0 {
		timeout = DefaultReplyTimeout
	}
	if tp, ok := port.(TimeoutSerialPorter); ok {
		_ = tp.SetReadTimeout(min(timeout, pollSlice))
	}
	return &Exchanger{
		port:    port,
		timeout: timeout,
		chunk:   make([]byte, 128),
	}
}

// Exchange writes command terminated by a carriage return and returns the
// next reply line with its line terminator removed. Unread input, such as a
// reply that arrived after an earlier timeout, is discarded before the
// command is written, and debug lines are skipped.
func (e *Exchanger) Exchange(command string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.discardInput(); err != nil {
		return "", err
	}

	if !strings.HasSuffix(command, "\r") {
		command += "\r"
	}
	n, err := e.port.Write([]byte(command))
	if err != nil {
		return "", fmt.Errorf("write %q: %w", strings.TrimSpace(command), err)
	}
	if n != len(command) {
		return "", ErrWriteFailed
	}

	deadline := time.Now().Add(e.timeout)
	for {
		if i := bytes.IndexByte(e.pending, '\n'); i >= 0 {
			line := strings.TrimRight(string(e.pending[:i]), "\r")
			e.pending = e.pending[i+1:]
			if strings.HasPrefix(line, debugPrefix) {
				continue
			}
			return line, nil
		}
		if time.Now().After(deadline) {
			return "", ErrReplyTimeout
		}
		n, err := e.port.Read(e.chunk)
		if n > 0 {
			e.pending = append(e.pending, e.chunk[:n]...)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("read reply: %w", err)
		}
		time.Sleep(idleWait)
	}
}

// discardInput drops buffered and unread input. Ports that cannot reset
// their input buffer are read until a read returns nothing.
func (e *Exchanger) discardInput() error {
	e.pending = e.pending[:0]

	if f, ok := e.port.(InputFlusher); ok {
		if err := f.ResetInputBuffer(); err != nil {
			return fmt.Errorf("reset input: %w", err)
		}
		return nil
	}

	deadline := time.Now().Add(e.timeout)
	for time.Now().Before(deadline) {
		n, err := e.port.Read(e.chunk)
		if err != nil {
			return fmt.Errorf("discard input: %w", err)
		}
		if n == 0 {
			return nil
		}
	}
	return nil
}

// Close closes the underlying port.
func (e *Exchanger) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.port.Close()
}
