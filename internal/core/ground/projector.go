package ground

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/cubewalk/internal/core/axis"
	"github.com/zeusync/cubewalk/internal/core/grid"
	"github.com/zeusync/cubewalk/internal/core/systems/physics"
)

// probeLead is how far behind the traveler, against gravity, the probe starts.
const probeLead = 1.1

// Caster is the spatial query the projector needs; *grid.Grid satisfies it.
type Caster interface {
	Linecast(from, to mgl64.Vec3, filter grid.Filter) (grid.Hit, bool)
	TileLength() float64
}

// Marker is the visual ground shadow that keeps the traveler glued to the surface.
type Marker struct {
	pose     physics.Pose
	grounded bool
}

// NewMarker places a marker at p with identity rotation.
func NewMarker(p mgl64.Vec3) *Marker {
	return &Marker{pose: physics.NewPose(p)}
}

func (m *Marker) Pose() physics.Pose       { return m.pose }
func (m *Marker) Position() mgl64.Vec3     { return m.pose.Position }
func (m *Marker) Rotation() mgl64.Quat     { return m.pose.Rotation }
func (m *Marker) Grounded() bool           { return m.grounded }
func (m *Marker) SetRotation(q mgl64.Quat) { m.pose.Rotation = q }

// Projector drops the marker onto the first walkable surface below the traveler.
type Projector struct {
	caster Caster
	marker *Marker
}

func NewProjector(caster Caster, marker *Marker) *Projector {
	if marker == nil {
		marker = NewMarker(mgl64.Vec3{})
	}
	return &Projector{caster: caster, marker: marker}
}

func (p *Projector) Marker() *Marker { return p.marker }

// Project probes from slightly behind position (against gravity) to one tile length past it
// (along gravity). A hit places the marker on the surface; a miss parks it half a tile
// along gravity, as in free fall. It never fails.
func (p *Projector) Project(position mgl64.Vec3, gravity axis.Direction) mgl64.Vec3 {
	g := gravity.Vector()
	length := p.caster.TileLength()
	from := position.Sub(g.Mul(probeLead))
	to := position.Add(g.Mul(length))

	filter := grid.Outside(position, length, grid.Supporting(gravity))
	if hit, ok := p.caster.Linecast(from, to, filter); ok {
		p.marker.pose.Position = hit.Point
		p.marker.grounded = true
	} else {
		p.marker.pose.Position = position.Add(g.Mul(length / 2))
		p.marker.grounded = false
	}
	return p.marker.pose.Position
}
