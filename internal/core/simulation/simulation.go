package simulation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/zeusync/cubewalk/internal/core/events/bus"
	"github.com/zeusync/cubewalk/internal/core/ground"
	"github.com/zeusync/cubewalk/internal/core/journal"
	"github.com/zeusync/cubewalk/internal/core/level"
	"github.com/zeusync/cubewalk/internal/core/locomotion"
	"github.com/zeusync/cubewalk/internal/core/observability/log"
	"github.com/zeusync/cubewalk/internal/core/system"
	"github.com/zeusync/cubewalk/internal/core/tile"
)

// LevelController performs the scene changes reach tiles ask for. It runs on the
// simulation goroutine after the frame in which the tile was entered.
type LevelController interface {
	// Reload restarts the current level, e.g. after a hazard.
	Reload() error
	// Advance moves on to the next level, e.g. after a goal.
	Advance() error
}

// Simulation owns the level, the traveler and the frame loop. Everything except Submit
// and Snapshot must be called from the goroutine that runs the loop.
type Simulation struct {
	source     level.Source
	controller LevelController
	motion     locomotion.Config
	bus        bus.EventBus
	log        log.Log
	journal    *journal.Writer

	clock    *system.Clock
	systems  *system.Manager
	commands chan Command
	snapshot atomic.Pointer[Snapshot]

	levelName string
	level     *level.Level
	traveler  *locomotion.Locomotion

	reach     tile.ReachEvent
	reachTile *tile.Tile
}

type Option func(*Simulation)

func WithLogger(l log.Log) Option { return func(s *Simulation) { s.log = l } }

func WithBus(b bus.EventBus) Option { return func(s *Simulation) { s.bus = b } }

func WithMotion(cfg locomotion.Config) Option { return func(s *Simulation) { s.motion = cfg } }

func WithTickRate(rate int) Option { return func(s *Simulation) { s.clock = system.NewClock(rate) } }

func WithCommandBuffer(n int) Option {
	return func(s *Simulation) {
		if n > 0 {
			s.commands = make(chan Command, n)
		}
	}
}

// WithController replaces the default controller, which reloads and advances through
// the level source.
func WithController(c LevelController) Option { return func(s *Simulation) { s.controller = c } }

// WithJournal records every bus event into w. The caller closes w.
func WithJournal(w *journal.Writer) Option { return func(s *Simulation) { s.journal = w } }

// New loads the named level from source and places a traveler at its spawn.
func New(source level.Source, name string, opts ...Option) (*Simulation, error) {
	s := &Simulation{
		source:   source,
		motion:   locomotion.DefaultConfig(),
		log:      log.Provide(),
		clock:    system.NewClock(60),
		systems:  system.NewManager(),
		commands: make(chan Command, 64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = bus.New()
	}
	if s.controller == nil {
		s.controller = s
	}
	if s.journal != nil {
		if _, err := s.journal.Attach(s.bus); err != nil {
			return nil, fmt.Errorf("attach journal: %w", err)
		}
	}

	for _, sys := range []system.System{
		system.Func("commands", s.drainCommands),
		system.Func("locomotion", s.tickTraveler),
		system.Func("reach", s.handleReach),
		system.Func("snapshot", s.takeSnapshot),
	} {
		if err := s.systems.RegisterSystem(sys); err != nil {
			return nil, err
		}
	}
	s.systems.OnSystemError(func(name string, err error) {
		s.log.Error("system failed", log.String("system", name), log.Error(err))
	})

	if err := s.load(name); err != nil {
		return nil, err
	}
	if err := s.takeSnapshot(0); err != nil {
		return nil, err
	}
	return s, nil
}

// Traveler is the current traveler. It changes when a level is (re)loaded.
func (s *Simulation) Traveler() *locomotion.Locomotion { return s.traveler }
func (s *Simulation) Level() *level.Level              { return s.level }
func (s *Simulation) Bus() bus.EventBus                { return s.bus }
func (s *Simulation) Systems() *system.Manager         { return s.systems }
func (s *Simulation) Clock() *system.Clock             { return s.clock }

// Step runs exactly one fixed frame. An error is fatal for the simulation.
func (s *Simulation) Step() error {
	return s.systems.Update(s.clock.Advance())
}

// Run steps the simulation at its tick rate until ctx is cancelled or a frame fails.
func (s *Simulation) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.clock.Interval())
	defer ticker.Stop()

	s.log.Info("simulation started",
		log.String("level", s.levelName),
		log.Duration("interval", s.clock.Interval()),
	)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("simulation stopped", log.Int64("frames", s.clock.FrameCount()))
			return nil
		case <-ticker.C:
			if err := s.Step(); err != nil {
				return err
			}
		}
	}
}

// Reload restarts the current level from its source.
func (s *Simulation) Reload() error {
	return s.load(s.levelName)
}

// Advance loads the level named by the current level's Next. On the last level the
// traveler stays Ending.
func (s *Simulation) Advance() error {
	next := s.level.Next
	if next == "" {
		s.log.Info("last level completed", log.String("level", s.levelName))
		return nil
	}
	return s.load(next)
}

func (s *Simulation) load(name string) error {
	lvl, err := s.source.Level(name)
	if err != nil {
		return fmt.Errorf("load level %q: %w", name, err)
	}

	spawn := lvl.Spawn
	marker := ground.NewMarker(spawn.Position)
	traveler := locomotion.New(lvl.Grid, ground.NewProjector(lvl.Grid, marker),
		locomotion.WithConfig(s.motion),
		locomotion.WithObserver(s),
		locomotion.WithBus(s.bus),
		locomotion.WithLogger(s.log),
		locomotion.WithPose(spawn.Pose()),
		locomotion.WithGravity(spawn.Gravity),
		locomotion.WithTendency(spawn.Tendency),
	)
	if !spawn.Tendency.IsZero() {
		traveler.RequestTendency(spawn.Tendency)
	}

	s.levelName = name
	s.level = lvl
	s.traveler = traveler
	s.reach = tile.ReachNone
	s.reachTile = nil

	s.log.Info("level loaded",
		log.String("level", name),
		log.Int("tiles", lvl.Grid.Len()),
		log.Vec3("spawn", spawn.Position),
		log.String("traveler", traveler.ID()),
	)
	s.publish(EventLevelLoaded, LevelLoaded{Level: name, Tiles: lvl.Grid.Len()})
	return nil
}

func (s *Simulation) tickTraveler(dt float64) error {
	return s.traveler.Tick(dt)
}

// OnTileEntered remembers reach tiles; they are handled once the frame's move has
// completed and the traveler is CanMove.
func (s *Simulation) OnTileEntered(t *tile.Tile) {
	if t.ReachEvent() != tile.ReachNone {
		s.reach = t.ReachEvent()
		s.reachTile = t
	}
}

func (s *Simulation) OnStuck() {}

func (s *Simulation) handleReach(float64) error {
	reach, at := s.reach, s.reachTile
	if reach == tile.ReachNone {
		return nil
	}
	s.reach, s.reachTile = tile.ReachNone, nil

	traveler := s.traveler
	traveler.End()
	s.log.Info("reach tile entered",
		log.Stringer("reach", reach),
		log.Stringer("tile", at),
		log.String("level", s.levelName),
	)
	s.publish(EventLevelRequest, LevelRequest{
		Traveler: traveler.ID(),
		Level:    s.levelName,
		Reach:    reach,
		Tile:     at.String(),
	})

	switch reach {
	case tile.ReachHazard:
		return s.controller.Reload()
	case tile.ReachGoal:
		return s.controller.Advance()
	}
	return nil
}

func (s *Simulation) publish(eventType string, data any) {
	if err := s.bus.Publish(bus.NewEvent(eventType, "simulation", data)); err != nil {
		s.log.Warn("event handler failed", log.String("event", eventType), log.Error(err))
	}
}
