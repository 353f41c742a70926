package simulation

import (
	"errors"
	"fmt"

	"github.com/zeusync/cubewalk/internal/core/axis"
	"github.com/zeusync/cubewalk/internal/core/observability/log"
)

var (
	ErrInvalidCommand = errors.New("invalid command")
	ErrQueueFull      = errors.New("command queue full")
)

type CommandType string

const (
	CommandTendency CommandType = "tendency"
	CommandMove     CommandType = "move"
	CommandPause    CommandType = "pause"
	CommandResume   CommandType = "resume"
	CommandAlign    CommandType = "align"
	CommandGravity  CommandType = "gravity"
)

// Command is an external request applied at the start of the next frame.
type Command struct {
	Type      CommandType    `json:"type"`
	Direction axis.Direction `json:"direction,omitempty"`
}

func (c Command) validate() error {
	switch c.Type {
	case CommandPause, CommandResume, CommandAlign:
		return nil
	case CommandTendency, CommandMove:
		if !c.Direction.Valid() {
			return fmt.Errorf("%w: direction %v", ErrInvalidCommand, c.Direction)
		}
		return nil
	case CommandGravity:
		if !c.Direction.Valid() || c.Direction.IsZero() {
			return fmt.Errorf("%w: gravity %v", ErrInvalidCommand, c.Direction)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown type %q", ErrInvalidCommand, c.Type)
}

// Submit queues a command without blocking. It is safe to call from any goroutine.
func (s *Simulation) Submit(c Command) error {
	if err := c.validate(); err != nil {
		return err
	}
	select {
	case s.commands <- c:
		return nil
	default:
		return ErrQueueFull
	}
}

func (s *Simulation) drainCommands(float64) error {
	for {
		select {
		case c := <-s.commands:
			s.apply(c)
		default:
			return nil
		}
	}
}

func (s *Simulation) apply(c Command) {
	t := s.traveler
	switch c.Type {
	case CommandTendency:
		t.RequestTendency(c.Direction)
	case CommandMove:
		t.RequestMove(c.Direction)
	case CommandPause:
		t.Pause()
	case CommandResume:
		t.Resume()
	case CommandAlign:
		t.AlignTendencyToFacing()
	case CommandGravity:
		if err := t.SetGravity(c.Direction); err != nil {
			s.log.Warn("gravity change rejected", log.Error(err))
		}
	}
	s.log.Debug("command applied", log.String("type", string(c.Type)), log.Stringer("direction", c.Direction))
}
