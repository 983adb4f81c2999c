package ray

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
)

// intersecter tests a ray in primitive-local space.
type intersecter interface {
	intersect(r Ray) (localHit, bool)
}

// UnitSphere is the canonical sphere: radius 1 centered at the origin.
// It is stateless, so one value serves every sphere node.
type UnitSphere struct{}

// intersect solves the sphere quadratic in half-b form. The nearer
// positive root wins; a ray starting inside takes the far root.
func (UnitSphere) intersect(r Ray) (localHit, bool) {
	oc := r.Origin
	a := r.Dir.LenSq()
	if a == 0 {
		return localHit{}, false
	}
	halfB := oc.Dot(r.Dir)
	c := oc.LenSq() - 1

	disc := halfB*halfB - a*c
	if disc < 0 {
		return localHit{}, false
	}
	sqrtD := math.Sqrt(disc)

	t := (-halfB - sqrtD) / a
	if t <= 1e-9 {
		t = (-halfB + sqrtD) / a
	}
	if t <= 1e-9 {
		return localHit{}, false
	}

	p := r.At(t)
	// The normal of a unit sphere at p is p itself.
	return localHit{t: t, point: p, normal: p}, true
}

// TriangleSet is a canonical faceted primitive (box, pyramid, or mesh)
// with a bounding sphere for cheap rejection.
type TriangleSet struct {
	tris    []Triangle
	center  math3d.Vec3
	radius2 float64
}

// boundMargin pads bounding spheres so numeric error at silhouette rays
// can never reject a genuine corner hit.
const boundMargin = 1e-6

func newTriangleSet(tris []Triangle) *TriangleSet {
	s := &TriangleSet{tris: tris}
	var sum math3d.Vec3
	n := 0
	for _, tr := range tris {
		for _, v := range tr.V {
			sum = sum.Add(v.Position)
			n++
		}
	}
	if n > 0 {
		s.center = sum.Scale(1 / float64(n))
	}
	radius := 0.0
	for _, tr := range tris {
		for _, v := range tr.V {
			radius = math.Max(radius, v.Position.Sub(s.center).Len())
		}
	}
	radius += boundMargin
	s.radius2 = radius * radius
	return s
}

// pruned reports whether the ray provably misses the bounding sphere.
func (s *TriangleSet) pruned(r Ray) bool {
	oc := s.center.Sub(r.Origin)
	if oc.LenSq() <= s.radius2 {
		return false // Origin inside the bound
	}
	dd := r.Dir.LenSq()
	if dd == 0 {
		return true
	}
	tc := oc.Dot(r.Dir) / dd
	if tc < 0 {
		return true // Bound entirely behind the ray
	}
	return oc.Sub(r.Dir.Scale(tc)).LenSq() > s.radius2
}

func (s *TriangleSet) intersect(r Ray) (localHit, bool) {
	if s.pruned(r) {
		return localHit{}, false
	}
	best := localHit{t: math.Inf(1)}
	found := false
	for _, tr := range s.tris {
		if h, ok := tr.intersect(r); ok && h.t < best.t {
			best = h
			found = true
		}
	}
	return best, found
}

// NewUnitBox builds the canonical cube [-0.5, 0.5]³ as 12 flat-shaded
// triangles. Vertex colors, when given, cycle across the corners.
func NewUnitBox(colors []math3d.Vec3) *TriangleSet {
	const h = 0.5
	corners := [8]math3d.Vec3{
		math3d.V3(-h, -h, -h), math3d.V3(h, -h, -h), math3d.V3(h, h, -h), math3d.V3(-h, h, -h),
		math3d.V3(-h, -h, h), math3d.V3(h, -h, h), math3d.V3(h, h, h), math3d.V3(-h, h, h),
	}
	faces := [6][4]int{
		{0, 1, 2, 3}, // Back  (-Z)
		{5, 4, 7, 6}, // Front (+Z)
		{4, 0, 3, 7}, // Left  (-X)
		{1, 5, 6, 2}, // Right (+X)
		{3, 2, 6, 7}, // Top   (+Y)
		{4, 5, 1, 0}, // Bottom(-Y)
	}
	normals := [6]math3d.Vec3{
		math3d.V3(0, 0, -1),
		math3d.V3(0, 0, 1),
		math3d.V3(-1, 0, 0),
		math3d.V3(1, 0, 0),
		math3d.V3(0, 1, 0),
		math3d.V3(0, -1, 0),
	}

	var tris []Triangle
	vi := 0
	corner := func(face [4]int, k int, n math3d.Vec3) TriVertex {
		v := TriVertex{Position: corners[face[k]], Normal: n, Color: pickColor(colors, vi)}
		vi++
		return v
	}
	for fi, f := range faces {
		n := normals[fi]
		tris = append(tris,
			NewTriangle(corner(f, 0, n), corner(f, 1, n), corner(f, 2, n), len(colors) > 0),
			NewTriangle(corner(f, 0, n), corner(f, 2, n), corner(f, 3, n), len(colors) > 0),
		)
	}
	return newTriangleSet(tris)
}

// NewUnitPyramid builds the canonical square pyramid: apex (0, 0.5, 0),
// base corners (±0.5, -0.5, ±0.5), as 6 flat-shaded triangles.
func NewUnitPyramid(colors []math3d.Vec3) *TriangleSet {
	apex := math3d.V3(0, 0.5, 0)
	base := [4]math3d.Vec3{
		math3d.V3(-0.5, -0.5, -0.5),
		math3d.V3(0.5, -0.5, -0.5),
		math3d.V3(0.5, -0.5, 0.5),
		math3d.V3(-0.5, -0.5, 0.5),
	}

	var tris []Triangle
	vi := 0
	vert := func(p, n math3d.Vec3) TriVertex {
		v := TriVertex{Position: p, Normal: n, Color: pickColor(colors, vi)}
		vi++
		return v
	}
	flatNormal := func(a, b, c math3d.Vec3) math3d.Vec3 {
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		centroid := a.Add(b).Add(c).Scale(1.0 / 3)
		if n.Dot(centroid) < 0 {
			n = n.Negate()
		}
		return n
	}

	for i := range base {
		a, b, c := apex, base[i], base[(i+1)%4]
		n := flatNormal(a, b, c)
		tris = append(tris, NewTriangle(vert(a, n), vert(b, n), vert(c, n), len(colors) > 0))
	}
	down := math3d.V3(0, -1, 0)
	for _, idx := range [2][3]int{{0, 2, 1}, {0, 3, 2}} {
		tris = append(tris, NewTriangle(
			vert(base[idx[0]], down), vert(base[idx[1]], down), vert(base[idx[2]], down),
			len(colors) > 0,
		))
	}
	return newTriangleSet(tris)
}

// NewMeshSet wraps loaded mesh geometry for analytic intersection.
func NewMeshSet(geom *models.Mesh) *TriangleSet {
	tris := make([]Triangle, 0, geom.TriangleCount())
	for i := 0; i < geom.TriangleCount(); i++ {
		face := geom.GetFace(i)
		var tv [3]TriVertex
		for k, vi := range face {
			pos, normal, _ := geom.GetVertex(vi)
			tv[k] = TriVertex{Position: pos, Normal: normal}
		}
		tris = append(tris, NewTriangle(tv[0], tv[1], tv[2], false))
	}
	return newTriangleSet(tris)
}

func pickColor(colors []math3d.Vec3, i int) math3d.Vec3 {
	if len(colors) == 0 {
		return math3d.V3(1, 1, 1)
	}
	return colors[i%len(colors)]
}
