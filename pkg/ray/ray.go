// Package ray is the CPU render path: every pixel walks the scene graph
// and intersects canonical unit primitives analytically in local space,
// shading hits with the Phong model. No tessellation is involved, so
// sphere silhouettes are exact.
package ray

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// Ray is a parametric line origin + t*dir. Dir is unit length in world
// space; transformed copies keep their scaled direction so local hits
// can be mapped back.
type Ray struct {
	Origin math3d.Vec3
	Dir    math3d.Vec3
}

// At returns the point at parameter t.
func (r Ray) At(t float64) math3d.Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// Transformed maps the ray through m. The direction is deliberately not
// re-normalized.
func (r Ray) Transformed(m math3d.Mat4) Ray {
	return Ray{
		Origin: m.MulVec3(r.Origin),
		Dir:    m.MulVec3Dir(r.Dir),
	}
}

// Hit is a world-space intersection record. T is the world ray
// parameter; the zero Hit (T = +Inf) compares farther than any real hit.
type Hit struct {
	T      float64
	Point  math3d.Vec3
	Normal math3d.Vec3

	// Color is the interpolated per-vertex color at the hit. When Shaded
	// is set it overrides the material ambient term.
	Color  math3d.Vec3
	Shaded bool
}

// NewHit returns a miss: a hit at infinite distance.
func NewHit() Hit {
	return Hit{T: math.Inf(1)}
}

// CloserThan reports whether h is in front of other along the ray.
func (h Hit) CloserThan(other Hit) bool {
	return h.T < other.T
}

// worldT recomputes the ray parameter of a world-space point along r
// using the largest-magnitude direction component, avoiding division by
// a near-zero axis.
func worldT(r Ray, point math3d.Vec3) float64 {
	d := r.Dir
	delta := point.Sub(r.Origin)
	ax, ay, az := math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z)
	switch {
	case ax >= ay && ax >= az:
		return delta.X / d.X
	case ay >= az:
		return delta.Y / d.Y
	default:
		return delta.Z / d.Z
	}
}
