package locomotion

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/zeusync/cubewalk/internal/core/axis"
	"github.com/zeusync/cubewalk/internal/core/events/bus"
	"github.com/zeusync/cubewalk/internal/core/ground"
	"github.com/zeusync/cubewalk/internal/core/observability/log"
	"github.com/zeusync/cubewalk/internal/core/systems/physics"
	"github.com/zeusync/cubewalk/internal/core/tile"
)

// Locator is the surface query locomotion needs; *grid.Grid satisfies it.
type Locator interface {
	Locate(position, forward mgl64.Vec3) (*tile.Tile, error)
	FindAdjacent(position mgl64.Vec3, d axis.Direction) (*tile.Tile, bool)
	PositionOf(t *tile.Tile) mgl64.Vec3
	TileLength() float64
}

// Locomotion drives one traveler across the cube surface. It is a tick-driven state
// machine: every call to Tick advances the current move cycle by dt seconds. After a
// completed move it settles and then re-issues itself with the stored tendency, which
// produces continuous rolling for as long as the tiles permit it.
//
// Locomotion is not safe for concurrent use; the simulation owns it and calls it from
// a single goroutine.
type Locomotion struct {
	id        string
	cfg       Config
	locator   Locator
	projector *ground.Projector
	rotator   *ground.Rotator
	observer  Observer
	bus       bus.EventBus
	log       log.Log

	state    State
	phase    phase
	stopped  bool
	pose     physics.Pose
	tendency axis.Direction
	gravity  axis.Direction
	support  *tile.Tile

	pending      axis.Direction
	hasPending   bool
	deflection   axis.Direction
	hasDeflected bool
	pausePending bool

	moveDir       axis.Direction
	destination   mgl64.Vec3
	destRotation  mgl64.Quat
	timer         float64
	fallingBefore bool
}

type Option func(*Locomotion)

func WithConfig(cfg Config) Option { return func(l *Locomotion) { l.cfg = cfg } }

func WithObserver(o Observer) Option { return func(l *Locomotion) { l.observer = o } }

func WithBus(b bus.EventBus) Option { return func(l *Locomotion) { l.bus = b } }

func WithLogger(lg log.Log) Option { return func(l *Locomotion) { l.log = lg } }

// WithPose places the traveler; the default is the origin with identity rotation.
func WithPose(p physics.Pose) Option { return func(l *Locomotion) { l.pose = p } }

func WithTendency(d axis.Direction) Option { return func(l *Locomotion) { l.tendency = d } }

func WithGravity(d axis.Direction) Option { return func(l *Locomotion) { l.gravity = d } }

// WithID overrides the generated traveler id used in logs and events.
func WithID(id string) Option { return func(l *Locomotion) { l.id = id } }

// New creates a traveler in state Stuck. It does nothing until a move is requested.
func New(locator Locator, projector *ground.Projector, opts ...Option) *Locomotion {
	l := &Locomotion{
		id:        uuid.NewString(),
		cfg:       DefaultConfig(),
		locator:   locator,
		projector: projector,
		observer:  ObserverFuncs{},
		log:       log.NewNop(),
		state:     Stuck,
		pose:      physics.NewPose(mgl64.Vec3{}),
		tendency:  axis.Zero,
		gravity:   axis.Down,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.With(log.String("traveler", l.id))
	l.rotator = ground.NewRotator(projector.Marker(), l.cfg.RotateThresholdDeg)
	l.projector.Project(l.pose.Position, l.gravity)
	return l
}

func (l *Locomotion) ID() string                    { return l.id }
func (l *Locomotion) State() State                  { return l.state }
func (l *Locomotion) Pose() physics.Pose            { return l.pose }
func (l *Locomotion) Tendency() axis.Direction      { return l.tendency }
func (l *Locomotion) Gravity() axis.Direction       { return l.gravity }
func (l *Locomotion) Marker() *ground.Marker        { return l.projector.Marker() }
func (l *Locomotion) IsMoving() bool                { return l.state == Moving }
func (l *Locomotion) Support() *tile.Tile           { return l.support }
func (l *Locomotion) Config() Config                { return l.cfg }
func (l *Locomotion) Position() mgl64.Vec3          { return l.pose.Position }
func (l *Locomotion) Destination() mgl64.Vec3       { return l.destination }
func (l *Locomotion) MoveDirection() axis.Direction { return l.moveDir }

// IsStuck reports whether the last move attempt stopped the traveler. It stays set until
// a move completes, even across pause and resume.
func (l *Locomotion) IsStuck() bool { return l.stopped }

// RequestTendency sets the direction the traveler keeps trying to move in and asks for a
// move along it at the next decision point.
func (l *Locomotion) RequestTendency(d axis.Direction) {
	if l.state == Ending {
		return
	}
	l.tendency = d
	l.RequestMove(d)
}

// RequestMove asks for a single move along d. It is ignored while Moving or Ending;
// otherwise it is taken at the next decision point.
func (l *Locomotion) RequestMove(d axis.Direction) {
	if l.state == Moving || l.state == Ending {
		return
	}
	l.pending = d
	l.hasPending = true
}

// Pause suspends the traveler. A pause requested mid-translation takes effect on arrival.
func (l *Locomotion) Pause() {
	switch l.state {
	case CanMove, Stuck:
		l.setState(Suspending)
	case Moving:
		l.pausePending = true
	}
}

// Resume lets a suspended traveler move again. It never interrupts a translation and
// is ignored once the traveler is Ending.
func (l *Locomotion) Resume() {
	switch l.state {
	case Moving:
		l.pausePending = false
	case Ending:
	default:
		l.setState(CanMove)
	}
}

// End puts the traveler in its terminal state. Nothing moves it afterwards.
func (l *Locomotion) End() {
	if l.state == Ending {
		return
	}
	l.phase = phaseIdle
	l.hasPending = false
	l.hasDeflected = false
	l.pausePending = false
	l.setState(Ending)
}

// SetGravity changes what counts as down, e.g. after the cube was rotated.
func (l *Locomotion) SetGravity(d axis.Direction) error {
	if d.IsZero() || !d.Valid() {
		return fmt.Errorf("gravity %v: %w", d, axis.ErrInvalidDirectionVector)
	}
	l.gravity = d
	l.projector.Project(l.pose.Position, l.gravity)
	return nil
}

// AlignTendencyToFacing points the tendency where the traveler faces, unless it faces
// up or down.
func (l *Locomotion) AlignTendencyToFacing() {
	d := axis.FromVector(l.pose.Forward())
	if d.IsZero() || d.HasVertical() {
		return
	}
	l.tendency = d
}

// Tick advances the move cycle by dt seconds. Errors are fatal precondition failures:
// the traveler is not on any tile, or a direction could not be mapped onto a tile.
func (l *Locomotion) Tick(dt float64) error {
	l.rotator.Step(dt)

	switch l.phase {
	case phaseIdle:
		return l.decide(dt)
	case phaseTranslating:
		return l.translate(dt)
	case phaseSettling:
		l.timer -= dt
		if l.timer > 0 {
			return nil
		}
		l.phase = phaseAwaiting
		fallthrough
	case phaseAwaiting:
		if l.state != CanMove {
			return nil
		}
		if !l.fallingBefore && l.isFalling() {
			l.phase = phaseGravityPause
			l.timer = l.cfg.GravityPause
			return nil
		}
		return l.reissue(dt)
	case phaseGravityPause:
		l.timer -= dt
		if l.timer > 0 {
			return nil
		}
		return l.reissue(dt)
	}
	return nil
}

// reissue queues the tendency unless an explicit request is already waiting, then
// returns to the decision point.
func (l *Locomotion) reissue(dt float64) error {
	if !l.hasPending {
		l.pending = l.tendency
		l.hasPending = true
	}
	l.phase = phaseIdle
	return l.decide(dt)
}

// decide starts a move if one is queued and the state allows it.
func (l *Locomotion) decide(dt float64) error {
	if !l.hasPending || (l.state != CanMove && l.state != Stuck) {
		return nil
	}
	d := l.pending
	l.hasPending = false
	if l.hasDeflected {
		d = l.deflection
		l.hasDeflected = false
	}
	return l.begin(d, dt)
}

func (l *Locomotion) begin(d axis.Direction, dt float64) error {
	position := l.pose.Position
	current, err := l.locator.Locate(position, l.pose.Forward())
	if err != nil {
		l.log.Error("traveler is not on a tile", log.Vec3("position", position), log.Error(err))
		return fmt.Errorf("locate traveler: %w", err)
	}

	out, err := l.resolve(current, position, d)
	if err != nil {
		l.log.Error("direction resolution failed", log.Stringer("tile", current), log.Stringer("direction", d), log.Error(err))
		return fmt.Errorf("resolve %v on %v: %w", d, current, err)
	}
	l.setState(Moving)

	if out.IsZero() {
		stuck := d == l.tendency
		if !stuck {
			if stuck, err = l.cornered(current, position); err != nil {
				return err
			}
		}
		if stuck {
			l.stop(d)
			return nil
		}
	}

	l.moveDir = out
	l.destination = l.nextPosition(current, position, out)
	up := l.gravity.Negate().Vector()
	if !out.IsZero() && !out.HasVertical() && l.destination.Sub(position).Len() > 0 {
		l.pose.Rotation = physics.LookRotation(l.destination.Sub(position), up)
	}
	l.destRotation = physics.LookRotation(out.Vector(), up)
	l.rotator.Start(l.destRotation)

	l.log.Debug("move started",
		log.Stringer("requested", d),
		log.Stringer("resolved", out),
		log.Stringer("from", current),
		log.Vec3("destination", l.destination),
	)

	if out == axis.Up {
		return l.arrive()
	}
	l.phase = phaseTranslating
	return l.translate(dt)
}

// resolve asks the current tile whether d may continue and, for moves that leave the
// tile sideways or downward, whether the next tile accepts the traveler.
func (l *Locomotion) resolve(current *tile.Tile, position mgl64.Vec3, d axis.Direction) (axis.Direction, error) {
	if d.IsZero() {
		return axis.Zero, nil
	}
	out, err := current.ResolveContinue(d)
	if err != nil || out.IsZero() || out == axis.Up {
		return out, err
	}
	next, ok := l.locator.FindAdjacent(position, out)
	if !ok {
		return out, nil
	}
	entry, err := next.ResolveEntry(out)
	if err != nil {
		return axis.Zero, err
	}
	if entry.Blocked() {
		return axis.Zero, nil
	}
	return out, nil
}

// cornered reports whether neither the tendency nor its reverse leads anywhere from
// current, counting neighbours that refuse entry.
func (l *Locomotion) cornered(current *tile.Tile, position mgl64.Vec3) (bool, error) {
	for _, d := range []axis.Direction{l.tendency, l.tendency.Negate()} {
		out, err := l.resolve(current, position, d)
		if err != nil {
			l.log.Error("direction resolution failed", log.Stringer("tile", current), log.Stringer("direction", d), log.Error(err))
			return false, fmt.Errorf("resolve %v on %v: %w", d, current, err)
		}
		if !out.IsZero() {
			return false, nil
		}
	}
	return true, nil
}

// nextPosition is the centre of the neighbouring tile along out, or one tile length past
// the current tile when there is none. A zero move recentres on the current tile.
func (l *Locomotion) nextPosition(current *tile.Tile, position mgl64.Vec3, out axis.Direction) mgl64.Vec3 {
	here := l.locator.PositionOf(current)
	if out.IsZero() {
		return here
	}
	if next, ok := l.locator.FindAdjacent(position, out); ok {
		return l.locator.PositionOf(next)
	}
	return here.Add(out.Vector().Mul(l.locator.TileLength()))
}

func (l *Locomotion) translate(dt float64) error {
	if physics.Distance(l.pose.Position, l.destination) <= l.cfg.Tolerance {
		return l.arrive()
	}
	speed := l.cfg.Speed
	if l.moveDir == axis.Down {
		speed *= l.cfg.FallSpeedFactor
	}
	l.pose.Position = physics.MoveTowards(l.pose.Position, l.destination, speed*dt)
	l.projector.Project(l.pose.Position, l.gravity)
	return nil
}

func (l *Locomotion) arrive() error {
	l.pose.Position = l.destination
	l.projector.Project(l.pose.Position, l.gravity)
	l.stopped = false

	entered, err := l.locator.Locate(l.pose.Position, l.pose.Forward())
	if err != nil {
		l.log.Error("arrived outside the surface", log.Vec3("position", l.pose.Position), log.Error(err))
		return fmt.Errorf("locate arrival: %w", err)
	}
	l.support = entered

	if !l.moveDir.IsZero() {
		entered.OnEntered(l.observer)
		l.publish(EventTileEntered, TileEntered{
			Traveler: l.id,
			Tile:     entered.String(),
			Cell:     entered.Cell(),
			Function: entered.Function(),
			Reach:    entered.ReachEvent(),
			Position: l.pose.Position,
		})
		if err := l.applyEntry(entered); err != nil {
			return err
		}
	}

	l.fallingBefore = l.isFalling()
	l.timer = l.cfg.SettleTimeout
	if l.fallingBefore {
		l.timer = l.cfg.FallingSettleTimeout
	}
	l.rotator.Start(l.destRotation)
	l.phase = phaseSettling

	l.setState(CanMove)
	if l.pausePending {
		l.pausePending = false
		l.setState(Suspending)
	}
	return nil
}

// applyEntry takes the arrival answer of the entered tile: turns replace the tendency,
// any other redirect is used once at the next decision point.
func (l *Locomotion) applyEntry(entered *tile.Tile) error {
	entry, err := entered.ResolveEntry(l.moveDir)
	if err != nil {
		return fmt.Errorf("resolve entry %v on %v: %w", l.moveDir, entered, err)
	}
	switch {
	case entry.Blocked():
	case entry.Changed:
		l.log.Debug("tendency redirected", log.Stringer("tile", entered), log.Stringer("tendency", entry.Direction))
		l.tendency = entry.Direction
	case entry.Direction != l.moveDir:
		l.deflection = entry.Direction
		l.hasDeflected = true
	}
	return nil
}

func (l *Locomotion) stop(attempted axis.Direction) {
	l.projector.Project(l.pose.Position, l.gravity)
	l.stopped = true
	l.phase = phaseIdle
	l.moveDir = axis.Zero
	l.setState(Stuck)

	l.log.Info("traveler stuck",
		log.Vec3("position", l.pose.Position),
		log.Stringer("tendency", l.tendency),
		log.Stringer("attempted", attempted),
	)
	l.publish(EventStuck, StuckEvent{
		Traveler:  l.id,
		Position:  l.pose.Position,
		Tendency:  l.tendency,
		Attempted: attempted,
	})
	l.observer.OnStuck()
}

// isFalling reports whether the tile below, along gravity, lets a fall continue straight through.
func (l *Locomotion) isFalling() bool {
	below, ok := l.locator.FindAdjacent(l.pose.Position, l.gravity)
	if !ok {
		return false
	}
	out, err := below.ResolveContinue(l.gravity)
	return err == nil && out == l.gravity
}

func (l *Locomotion) setState(s State) {
	if l.state == s {
		return
	}
	from := l.state
	l.state = s
	l.log.Debug("state changed", log.Stringer("from", from), log.Stringer("to", s))
	l.publish(EventStateChanged, StateChanged{Traveler: l.id, From: from, To: s})
}

func (l *Locomotion) publish(eventType string, data any) {
	if l.bus == nil {
		return
	}
	if err := l.bus.Publish(bus.NewEvent(eventType, l.id, data)); err != nil {
		l.log.Warn("event handler failed", log.String("event", eventType), log.Error(err))
	}
}
