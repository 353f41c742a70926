package simulation

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/cubewalk/internal/core/axis"
	"github.com/zeusync/cubewalk/internal/core/locomotion"
)

// Snapshot is a read-only copy of the traveler published once per frame.
type Snapshot struct {
	Frame    int64            `json:"frame"`
	Time     float64          `json:"time"`
	Level    string           `json:"level"`
	Traveler string           `json:"traveler"`
	State    locomotion.State `json:"state"`
	Moving   bool             `json:"moving"`
	Stuck    bool             `json:"stuck"`
	Position mgl64.Vec3       `json:"position"`
	// Rotation is the quaternion as x, y, z, w.
	Rotation [4]float64     `json:"rotation"`
	Tendency axis.Direction `json:"tendency"`
	Gravity  axis.Direction `json:"gravity"`
	Tile     string         `json:"tile,omitempty"`
	Marker   mgl64.Vec3     `json:"marker"`
	Grounded bool           `json:"grounded"`
}

func (s *Simulation) takeSnapshot(float64) error {
	t := s.traveler
	pose := t.Pose()
	q := pose.Rotation
	snap := &Snapshot{
		Frame:    s.clock.FrameCount(),
		Time:     s.clock.TotalTime().Seconds(),
		Level:    s.levelName,
		Traveler: t.ID(),
		State:    t.State(),
		Moving:   t.IsMoving(),
		Stuck:    t.IsStuck(),
		Position: pose.Position,
		Rotation: [4]float64{q.V[0], q.V[1], q.V[2], q.W},
		Tendency: t.Tendency(),
		Gravity:  t.Gravity(),
		Marker:   t.Marker().Position(),
		Grounded: t.Marker().Grounded(),
	}
	if support := t.Support(); support != nil {
		snap.Tile = support.String()
	}
	s.snapshot.Store(snap)
	return nil
}

// Snapshot returns the state as of the last completed frame. It is safe to call from any
// goroutine and never returns nil.
func (s *Simulation) Snapshot() Snapshot {
	return *s.snapshot.Load()
}
