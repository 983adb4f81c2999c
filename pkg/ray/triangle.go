package ray

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// TriVertex is one triangle corner with its shading attributes.
type TriVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	Color    math3d.Vec3
}

// Triangle is a single face tested analytically: plane intersection,
// then edge-sign containment, then barycentric interpolation of the
// vertex attributes.
type Triangle struct {
	V      [3]TriVertex
	normal math3d.Vec3 // Geometric plane normal (unit)
	hasCol bool
}

// NewTriangle builds a face from three corners. hasColor marks the
// vertex colors as meaningful for shading.
func NewTriangle(a, b, c TriVertex, hasColor bool) Triangle {
	n := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position)).Normalize()
	return Triangle{V: [3]TriVertex{a, b, c}, normal: n, hasCol: hasColor}
}

// localHit is an intersection in primitive-local space.
type localHit struct {
	t      float64
	point  math3d.Vec3
	normal math3d.Vec3
	color  math3d.Vec3
	hasCol bool
}

// intersect tests the ray against the triangle. Points exactly on an
// edge or vertex count as inside, so shared mesh edges never leak.
func (tr Triangle) intersect(r Ray) (localHit, bool) {
	denom := tr.normal.Dot(r.Dir)
	if denom == 0 {
		return localHit{}, false // Parallel to the plane
	}

	t := tr.normal.Dot(tr.V[0].Position.Sub(r.Origin)) / denom
	if t <= 1e-9 {
		return localHit{}, false
	}
	p := r.At(t)

	// Containment: the cross product of each edge with the vector to p
	// must not oppose the plane normal. Zero means p lies on the edge.
	for i := range 3 {
		a := tr.V[i].Position
		b := tr.V[(i+1)%3].Position
		edge := b.Sub(a)
		if edge.Cross(p.Sub(a)).Dot(tr.normal) < 0 {
			return localHit{}, false
		}
	}

	u, v, w := tr.barycentric(p)
	normal := tr.V[0].Normal.Scale(u).
		Add(tr.V[1].Normal.Scale(v)).
		Add(tr.V[2].Normal.Scale(w)).Normalize()
	if normal.Len() == 0 {
		normal = tr.normal
	}
	color := tr.V[0].Color.Scale(u).
		Add(tr.V[1].Color.Scale(v)).
		Add(tr.V[2].Color.Scale(w))

	return localHit{t: t, point: p, normal: normal, color: color, hasCol: tr.hasCol}, true
}

// barycentric returns the area-ratio coordinates of p, assumed to lie in
// the triangle plane.
func (tr Triangle) barycentric(p math3d.Vec3) (u, v, w float64) {
	a, b, c := tr.V[0].Position, tr.V[1].Position, tr.V[2].Position
	full := b.Sub(a).Cross(c.Sub(a)).Len()
	if full == 0 {
		return 1, 0, 0 // Degenerate face
	}
	u = b.Sub(p).Cross(c.Sub(p)).Len() / full
	v = c.Sub(p).Cross(a.Sub(p)).Len() / full
	w = math.Max(0, 1-u-v)
	return u, v, w
}
