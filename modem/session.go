package modem

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Command is one entry of the poll cycle: a wire string plus a label
// used in events and logs, with an optional per-command timeout
// overriding the modem default.
type Command struct {
	Name    string
	AT      string
	Timeout time.Duration
}

// Session layers the retry and recovery policy on top of a Modem.
//
// A timed-out command is retried up to MaxRetries times; a command the
// device rejected is not retried at all. After FailThreshold
// consecutive failures across any commands the session flushes and
// reopens the port, guarding against a wedged command/response
// alignment where a stray leftover line is misread as the next
// command's response.
//
// Session is not safe for concurrent use; the device cannot multiplex
// commands, so callers must issue them strictly sequentially.
type Session struct {
	m *Modem

	maxRetries    int
	failThreshold int
	consecutive   int
}

func NewSession(m *Modem) *Session {
	return &Session{
		m:             m,
		maxRetries:    m.config.MaxRetries,
		failThreshold: m.config.FailThreshold,
	}
}

// Execute runs one command through the modem and returns the raw
// response text. The error, when non-nil, wraps ErrTimeout,
// ErrDeviceError or ErrTransportIO; only the last is fatal to the
// polling loop.
func (s *Session) Execute(ctx context.Context, cmd Command) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		raw, err := s.execOnce(ctx, cmd)
		if err == nil {
			s.consecutive = 0
			return raw, nil
		}
		lastErr = err

		if errors.Is(err, ErrTimeout) {
			continue
		}
		if errors.Is(err, ErrDeviceError) {
			// The device explicitly rejected the command; retrying is
			// unlikely to change the answer.
			break
		}
		// Transport failure or caller cancellation: propagate as is,
		// without burning the recovery counter.
		return "", err
	}

	s.consecutive++
	if s.consecutive >= s.failThreshold {
		if err := s.recover(ctx); err != nil {
			return "", fmt.Errorf("%w: port recovery failed: %v", ErrTransportIO, err)
		}
		s.consecutive = 0
	}

	return "", lastErr
}

// ConsecutiveFailures reports the current run of failed commands.
func (s *Session) ConsecutiveFailures() int {
	return s.consecutive
}

func (s *Session) execOnce(ctx context.Context, cmd Command) (string, error) {
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}
	return s.m.Exec(ctx, cmd.AT)
}

func (s *Session) recover(ctx context.Context) error {
	if err := s.m.Flush(); err != nil {
		return err
	}
	return s.m.Reopen(ctx)
}
