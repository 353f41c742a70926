package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var worldUp = mgl64.Vec3{0, 1, 0}

// Distance computes the Euclidean distance between two points.
func Distance(a, b mgl64.Vec3) float64 { return b.Sub(a).Len() }

// MoveTowards moves current toward target by at most maxDelta without overshooting.
func MoveTowards(current, target mgl64.Vec3, maxDelta float64) mgl64.Vec3 {
	delta := target.Sub(current)
	dist := delta.Len()
	if dist <= maxDelta || dist == 0 {
		return target
	}
	return current.Add(delta.Mul(maxDelta / dist))
}

// LookRotation returns the rotation whose local +Z points along forward with local +Y
// as close to up as possible. A zero forward yields identity.
func LookRotation(forward, up mgl64.Vec3) mgl64.Quat {
	if forward.Len() == 0 {
		return mgl64.QuatIdent()
	}
	f := forward.Normalize()
	if up.Len() == 0 {
		up = worldUp
	}
	// forward parallel to up: borrow another reference axis
	if math.Abs(f.Dot(up.Normalize())) > 1-mgl64.Epsilon {
		up = mgl64.Vec3{0, 0, -1}
		if math.Abs(f.Dot(up)) > 1-mgl64.Epsilon {
			up = mgl64.Vec3{1, 0, 0}
		}
	}
	r := up.Cross(f).Normalize()
	u := f.Cross(r)
	return mgl64.Mat4ToQuat(mgl64.Mat3FromCols(r, u, f).Mat4()).Normalize()
}

// Angle returns the angle in degrees between two rotations.
func Angle(a, b mgl64.Quat) float64 {
	dot := math.Abs(a.Normalize().Dot(b.Normalize()))
	if dot > 1 {
		dot = 1
	}
	return mgl64.RadToDeg(2 * math.Acos(dot))
}

// Slerp interpolates from a to b; t is clamped to [0, 1].
func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	t = mgl64.Clamp(t, 0, 1)
	if t == 0 {
		return a
	}
	if t == 1 {
		return b
	}
	return mgl64.QuatSlerp(a, b, t)
}

// IntersectSegmentBox runs the slab test. It returns the parameters where the segment
// enters and leaves the box; enter is negative when the segment starts inside.
func IntersectSegmentBox(s Segment, b Box) (enter, exit float64, ok bool) {
	d := s.Direction()
	enter, exit = math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		if d[i] == 0 {
			if s.From[i] < b.Min[i] || s.From[i] > b.Max[i] {
				return 0, 0, false
			}
			continue
		}
		t1 := (b.Min[i] - s.From[i]) / d[i]
		t2 := (b.Max[i] - s.From[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		enter = math.Max(enter, t1)
		exit = math.Min(exit, t2)
		if enter > exit {
			return 0, 0, false
		}
	}
	if exit < 0 || enter > 1 {
		return 0, 0, false
	}
	return enter, exit, true
}
