package render

import (
	"image/color"
	"testing"
)

func TestFramebufferClear(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	c := RGB(10, 20, 30)
	fb.Clear(c)
	for i, p := range fb.Pixels {
		if p != c {
			t.Fatalf("pixel %d = %v after clear, want %v", i, p, c)
		}
	}
}

func TestFramebufferSetGetPixel(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	red := RGB(255, 0, 0)
	fb.SetPixel(2, 1, red)

	if got := fb.GetPixel(2, 1); got != red {
		t.Errorf("GetPixel(2, 1) = %v, want %v", got, red)
	}
	if got := fb.GetPixel(0, 0); got == red {
		t.Error("neighboring pixel was written")
	}
}

func TestFramebufferBoundsIgnored(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 2}, {100, 100}} {
		fb.SetPixel(p[0], p[1], RGB(255, 255, 255)) // Must not panic
		if got := fb.GetPixel(p[0], p[1]); got != (color.RGBA{}) {
			t.Errorf("GetPixel%v = %v, want zero", p, got)
		}
	}
}

func TestFramebufferBytesLayout(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.SetPixel(1, 0, color.RGBA{R: 1, G: 2, B: 3, A: 4})

	b := fb.Bytes()
	if len(b) != 2*2*4 {
		t.Fatalf("len(Bytes()) = %d, want 16", len(b))
	}
	// Pixel (1, 0) is the second pixel in row-major order.
	if b[4] != 1 || b[5] != 2 || b[6] != 3 || b[7] != 4 {
		t.Errorf("pixel (1, 0) bytes = %v, want [1 2 3 4]", b[4:8])
	}
}

func TestFramebufferToImage(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	c := RGB(9, 8, 7)
	fb.SetPixel(2, 1, c)

	img := fb.ToImage()
	if got := img.Bounds(); got.Dx() != 3 || got.Dy() != 2 {
		t.Fatalf("image bounds = %v, want 3x2", got)
	}
	if got := img.RGBAAt(2, 1); got != c {
		t.Errorf("image pixel (2, 1) = %v, want %v", got, c)
	}
}
