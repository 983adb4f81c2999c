package anim

import (
	"math"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/scene"
)

func TestSpinnerKeepsInverseExact(t *testing.T) {
	tr := scene.NewIdentity()
	s := NewSpinner(tr, math3d.V3(0, 1, 0), math.Pi)

	for range 600 { // 10 simulated seconds at 60 fps
		if err := s.Update(1.0 / 60); err != nil {
			t.Fatal(err)
		}
	}

	prod := tr.Matrix().Mul(tr.Inverse())
	id := math3d.Identity()
	for i := range prod {
		if math.Abs(prod[i]-id[i]) > 1e-9 {
			t.Fatalf("forward * inverse drifted: %v", prod)
		}
	}
}

func TestSpinnerRejectsBadAxis(t *testing.T) {
	s := NewSpinner(scene.NewIdentity(), math3d.V3(1, 1, 0), 1)
	if err := s.Update(0.016); err == nil {
		t.Fatal("expected an error for a non-basis axis")
	}
}

func TestOrbitStaysOnCircle(t *testing.T) {
	tr := scene.NewIdentity()
	center := math3d.V3(1, 2, 3)
	o := NewOrbit(tr, center, 4, 1)

	for range 100 {
		if err := o.Update(0.05); err != nil {
			t.Fatal(err)
		}
		pos := tr.Matrix().Translation()
		if math.Abs(pos.Y-center.Y) > 1e-12 {
			t.Fatalf("orbit left the plane: %v", pos)
		}
		if r := pos.Sub(center).Len(); math.Abs(r-4) > 1e-9 {
			t.Fatalf("orbit radius = %v, want 4", r)
		}
	}
}

func TestBounceOscillates(t *testing.T) {
	tr := scene.NewIdentity()
	base := math3d.V3(0, 1, 0)
	b := NewBounce(tr, base, 2, 0.5)

	minY, maxY := math.Inf(1), math.Inf(-1)
	for range 300 { // Several full bounces at 60 fps
		if err := b.Update(1.0 / 60); err != nil {
			t.Fatal(err)
		}
		y := tr.Matrix().Translation().Y
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
		if y < base.Y-1e-6 || y > base.Y+2+1e-6 {
			t.Fatalf("bounce escaped its range: y = %v", y)
		}
	}
	if maxY < base.Y+1.5 {
		t.Errorf("bounce never neared its apex: max y = %v", maxY)
	}
	if minY > base.Y+0.5 {
		t.Errorf("bounce never returned toward base: min y = %v", minY)
	}
}
