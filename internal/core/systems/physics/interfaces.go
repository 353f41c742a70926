package physics

// Spatial primitives shared by the grid probes, the ground projector and locomotion.
// Vectors and rotations come from mathgl's float64 package so poses can be handed to
// a renderer without conversion.

import "github.com/go-gl/mathgl/mgl64"

// Pose is a position plus an orientation.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewPose returns a pose at p with identity rotation.
func NewPose(p mgl64.Vec3) Pose {
	return Pose{Position: p, Rotation: mgl64.QuatIdent()}
}

// Forward is the pose's local +Z in world space.
func (p Pose) Forward() mgl64.Vec3 {
	return p.Rotation.Rotate(mgl64.Vec3{0, 0, 1})
}

// Box is an axis-aligned box.
type Box struct {
	Min, Max mgl64.Vec3
}

// CubeAt returns the cube of edge length size centred on center.
func CubeAt(center mgl64.Vec3, size float64) Box {
	h := size / 2
	return Box{
		Min: center.Sub(mgl64.Vec3{h, h, h}),
		Max: center.Add(mgl64.Vec3{h, h, h}),
	}
}

// Contains reports whether p lies inside or on the boundary of b.
func (b Box) Contains(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Segment is the line piece From -> To.
type Segment struct {
	From, To mgl64.Vec3
}

func (s Segment) Direction() mgl64.Vec3 { return s.To.Sub(s.From) }

func (s Segment) Length() float64 { return s.Direction().Len() }

// At returns the point at parameter t in [0, 1].
func (s Segment) At(t float64) mgl64.Vec3 {
	return s.From.Add(s.Direction().Mul(t))
}
