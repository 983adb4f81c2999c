package raster

import (
	"math"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
)

// fullScreenTriangle covers the whole NDC square at depth z, wound to
// survive the backface cull.
func fullScreenTriangle(z float64) []Vertex {
	n := math3d.V3(0, 0, 1)
	return []Vertex{
		{Position: math3d.V3(-1, -1, z), Normal: n, Color: math3d.V3(1, 1, 1)},
		{Position: math3d.V3(-1, 3, z), Normal: n, Color: math3d.V3(1, 1, 1)},
		{Position: math3d.V3(3, -1, z), Normal: n, Color: math3d.V3(1, 1, 1)},
	}
}

// ambientProgram lights everything with a pure ambient color, so the
// output pixel equals the material ambient directly.
func ambientProgram(ambient math3d.Vec3) *Program {
	p := NewProgram()
	p.SetVec3(UniformAmbientLight, math3d.V3(1, 1, 1))
	p.SetVec3(UniformMatAmbient, ambient)
	return p
}

func TestDrawTrianglesFillsCenter(t *testing.T) {
	fb := render.NewFramebuffer(10, 10)
	rz := NewRasterizer(fb)

	rz.DrawTriangles(ambientProgram(math3d.V3(1, 0, 0)), fullScreenTriangle(0), nil)

	got := fb.GetPixel(5, 5)
	if got != render.RGB(255, 0, 0) {
		t.Errorf("center pixel = %v, want opaque red", got)
	}
}

func TestDrawTrianglesDepthTest(t *testing.T) {
	fb := render.NewFramebuffer(10, 10)
	rz := NewRasterizer(fb)

	// Far green, then near red, then another far green: red must win.
	rz.DrawTriangles(ambientProgram(math3d.V3(0, 1, 0)), fullScreenTriangle(0.5), nil)
	rz.DrawTriangles(ambientProgram(math3d.V3(1, 0, 0)), fullScreenTriangle(-0.5), nil)
	rz.DrawTriangles(ambientProgram(math3d.V3(0, 1, 0)), fullScreenTriangle(0.5), nil)

	if got := fb.GetPixel(5, 5); got != render.RGB(255, 0, 0) {
		t.Errorf("center pixel = %v, want near red", got)
	}
}

func TestDrawTrianglesBackfaceCulled(t *testing.T) {
	fb := render.NewFramebuffer(10, 10)
	rz := NewRasterizer(fb)

	tri := fullScreenTriangle(0)
	tri[1], tri[2] = tri[2], tri[1] // reverse winding

	rz.DrawTriangles(ambientProgram(math3d.V3(1, 0, 0)), tri, nil)

	if got := fb.GetPixel(5, 5); got != (render.Color{}) {
		t.Errorf("center pixel = %v, want untouched", got)
	}
}

func TestPhongVertexDiffuse(t *testing.T) {
	p := NewProgram()
	p.SetVec3(UniformMatDiffuse, math3d.V3(1, 1, 1))
	p.SetInt(UniformLightCount, 1)
	p.SetVec3Array(UniformLightPositions, []math3d.Vec3{math3d.V3(0, 0, 5)})
	p.SetVec3Array(UniformLightColors, []math3d.Vec3{math3d.V3(1, 1, 1)})

	// Surface at origin facing the light: full diffuse.
	lit := phongVertex(p, math3d.Zero3(), math3d.V3(0, 0, 1))
	if math.Abs(lit.X-1) > 1e-12 {
		t.Errorf("facing light: lit = %v, want (1, 1, 1)", lit)
	}

	// Facing away: diffuse clamps at zero.
	lit = phongVertex(p, math3d.Zero3(), math3d.V3(0, 0, -1))
	if lit.Len() > 1e-12 {
		t.Errorf("facing away: lit = %v, want zero", lit)
	}
}

func TestBarycentricPartitionOfUnity(t *testing.T) {
	tests := []struct{ px, py float64 }{
		{1, 1}, {2.5, 0.5}, {0.1, 2.9}, {-3, 7},
	}
	for _, tc := range tests {
		bc := barycentric(0, 0, 4, 0, 0, 4, tc.px, tc.py)
		if sum := bc.X + bc.Y + bc.Z; math.Abs(sum-1) > 1e-9 {
			t.Errorf("barycentric(%v, %v) sums to %v, want 1", tc.px, tc.py, sum)
		}
	}
}

func TestBarycentricInsideOutside(t *testing.T) {
	// Inside point: all coordinates positive.
	bc := barycentric(0, 0, 4, 0, 0, 4, 1, 1)
	if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
		t.Errorf("inside point has negative coordinate: %v", bc)
	}
	// Outside point: at least one negative.
	bc = barycentric(0, 0, 4, 0, 0, 4, 5, 5)
	if bc.X >= 0 && bc.Y >= 0 && bc.Z >= 0 {
		t.Errorf("outside point classified inside: %v", bc)
	}
}
