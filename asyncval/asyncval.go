package asyncval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/signadot/ncnf/ir"
)

// ErrAgain asks the caller to retry once the validator is done.
var ErrAgain = errors.New("validation in progress, try again later")

// ConfigFileArg is replaced by the configuration file name in validator
// arguments.
const ConfigFileArg = "$config_file"

type State int

const (
	NoState State = iota
	InProgress
	Failed
	Succeeded
)

func (s State) String() string {
	switch s {
	case NoState:
		return "none"
	case InProgress:
		return "in-progress"
	case Failed:
		return "failed"
	case Succeeded:
		return "succeeded"
	default:
		return "<unknown state>"
	}
}

// Session tracks one validator run at a time. The zero value is ready to
// use.
type Session struct {
	Logger *slog.Logger

	mu    sync.Mutex
	state State
	err   error
	done  chan struct{}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error of the last finished run, if it failed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done returns a channel closed when the current run finishes. Without a
// run it is already closed.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		s.done = make(chan struct{})
		close(s.done)
	}
	return s.done
}

// Reset forgets the outcome of a finished run.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != InProgress {
		s.state = NoState
		s.err = nil
	}
}

// Start runs command, split on white space, against configFile. It
// returns once the validator process is started. Cancelling ctx kills
// it, which counts as a failure.
func (s *Session) Start(ctx context.Context, command, configFile string) error {
	args := strings.Fields(command)
	if len(args) == 0 {
		return fmt.Errorf("%w: empty validator command", ir.ErrInvalid)
	}
	for i, a := range args {
		if a == ConfigFileArg {
			args[i] = configFile
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != NoState {
		return fmt.Errorf("%w: validator %s", ErrAgain, s.state)
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting validator: %w", err)
	}
	s.state = InProgress
	s.err = nil
	done := make(chan struct{})
	s.done = done
	if s.Logger != nil {
		s.Logger.Info("validator started", "command", command, "config", configFile, "pid", cmd.Process.Pid)
	}
	go s.wait(cmd, done)
	return nil
}

func (s *Session) wait(cmd *exec.Cmd, done chan struct{}) {
	err := cmd.Wait()
	s.mu.Lock()
	if err != nil {
		s.state = Failed
		s.err = fmt.Errorf("validator %s: %w", cmd.Path, err)
	} else {
		s.state = Succeeded
	}
	s.mu.Unlock()
	if s.Logger != nil {
		s.Logger.Info("validator finished", "pid", cmd.Process.Pid, "error", err)
	}
	close(done)
}

// Gate decides whether a read of configFile may go ahead.
//
// Without a run it starts command and returns ErrAgain; if the validator
// cannot be started the read proceeds as if no validator were set. While
// it runs Gate returns ErrAgain. After a failure Gate returns an error
// matching ir.ErrInvalid, and after a success skipInternal is true. In
// both cases the outcome is consumed.
func (s *Session) Gate(ctx context.Context, command, configFile string) (skipInternal bool, err error) {
	s.mu.Lock()
	state, verr := s.state, s.err
	switch state {
	case Failed, Succeeded:
		s.state, s.err = NoState, nil
	}
	s.mu.Unlock()
	switch state {
	case NoState:
		if err := s.Start(ctx, command, configFile); err != nil {
			if errors.Is(err, ErrAgain) {
				return false, err
			}
			if s.Logger != nil {
				s.Logger.Warn("validator not started, validating internally", "error", err)
			}
			return false, nil
		}
		return false, ErrAgain
	case InProgress:
		return false, ErrAgain
	case Failed:
		return false, fmt.Errorf("%w: %w", ir.ErrInvalid, verr)
	default:
		return true, nil
	}
}
