package routine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/mjbridge/internal/resolve"
)

// Commands the dispatcher accepts.
const (
	CommandStep    = "step"
	CommandReset   = "reset"
	CommandForward = "forward"
	CommandInverse = "inverse"
)

// Argument keys recognized by RunCommand.
const (
	KeyCommand = "command"
	KeySteps   = "steps"
)

// ErrUnknownCommand indicates a command outside the dispatch table. The
// condition is permanent for that call; retrying cannot help.
var ErrUnknownCommand = errors.New("routine: unknown command")

// RunCommand extracts the command (default step) and step count (default 1,
// clamped to at least 1 on parse failure) and dispatches it.
func (s *Session) RunCommand(args map[string]string) error {
	command := strings.ToLower(strings.TrimSpace(args[KeyCommand]))
	if command == "" {
		command = CommandStep
	}
	steps := resolve.IntOrDefault(args[KeySteps], 1, 1)
	return s.execute(command, steps)
}

// execute runs one state-transition command against the engine, keeping
// the session counters consistent with the engine's own clock.
func (s *Session) execute(command string, steps int) error {
	switch command {
	case CommandStep:
		for i := 0; i < steps; i++ {
			if err := s.eng.Step(); err != nil {
				s.time = s.eng.Time()
				return fmt.Errorf("step %d of %d: %w", i+1, steps, err)
			}
			s.steps++
		}
		// Sync to the engine's reported time rather than accumulating
		// independently, so adaptive engines cannot drift the session.
		s.time = s.eng.Time()
		return nil

	case CommandReset:
		s.eng.Reset()
		s.time = 0
		s.steps = 0
		return nil

	case CommandForward:
		s.eng.Forward()
		return nil

	case CommandInverse:
		s.eng.Inverse()
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}
