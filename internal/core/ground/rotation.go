package ground

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/cubewalk/internal/core/systems/physics"
)

// Rotator slerps the marker from its rotation at Start toward a target, one tick at a time.
type Rotator struct {
	marker    *Marker
	from, to  mgl64.Quat
	elapsed   float64
	threshold float64
	active    bool
}

// NewRotator returns a rotator finishing once the marker is within thresholdDeg of the target.
func NewRotator(marker *Marker, thresholdDeg float64) *Rotator {
	return &Rotator{marker: marker, threshold: thresholdDeg}
}

// Start begins a rotation toward target, restarting any rotation in flight.
func (r *Rotator) Start(target mgl64.Quat) {
	r.from = r.marker.Rotation()
	r.to = target
	r.elapsed = 0
	r.active = true
}

func (r *Rotator) Active() bool { return r.active }

// Step advances by dt and reports whether the rotation is still running.
// The slerp parameter is the elapsed time, so a full turn takes one time unit.
func (r *Rotator) Step(dt float64) bool {
	if !r.active {
		return false
	}
	if physics.Angle(r.marker.Rotation(), r.to) <= r.threshold {
		r.marker.SetRotation(r.to)
		r.active = false
		return false
	}
	r.marker.SetRotation(physics.Slerp(r.from, r.to, r.elapsed))
	r.elapsed += dt
	return true
}
