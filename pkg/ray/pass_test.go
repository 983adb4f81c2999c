package ray

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

// sphereScene builds a unit sphere at the origin viewed from (0, 0, 5),
// the canonical smoke-test scene for the tracer.
func sphereScene(t *testing.T) (*scene.Group, *scene.Sphere, *scene.Camera) {
	t.Helper()

	root := scene.NewGroup(nil)
	sphere := scene.NewSphere(scene.MaterialRed)
	root.Add(sphere)

	cam := scene.NewCamera()
	cam.SetAspect(1)
	camGroup := scene.NewGroup(scene.NewTranslation(math3d.V3(0, 0, 5)))
	camGroup.Add(scene.NewCameraNode(cam))
	root.Add(camGroup)

	scene.NewMatrixPass().Run(root)
	if got := scene.NewCameraPass().Run(root); got != cam {
		t.Fatal("camera pass did not resolve the camera")
	}
	return root, sphere, cam
}

func TestShadeAmbientOnly(t *testing.T) {
	hit := Hit{Point: math3d.Zero3(), Normal: math3d.V3(0, 0, 1)}
	got := Shade(scene.MaterialRed, hit, math3d.V3(0.5, 0.5, 0.5), nil, math3d.V3(0, 0, 1))
	want := scene.MaterialRed.Ambient.Mul(math3d.V3(0.5, 0.5, 0.5))
	if got.Sub(want).Len() > 1e-12 {
		t.Errorf("ambient-only shade = %v, want %v", got, want)
	}
}

func TestShadeVertexColorOverridesAmbient(t *testing.T) {
	hit := Hit{
		Point:  math3d.Zero3(),
		Normal: math3d.V3(0, 0, 1),
		Color:  math3d.V3(0, 1, 0),
		Shaded: true,
	}
	got := Shade(scene.MaterialRed, hit, math3d.V3(1, 1, 1), nil, math3d.V3(0, 0, 1))
	if got.Sub(math3d.V3(0, 1, 0)).Len() > 1e-12 {
		t.Errorf("shade = %v, want vertex color (0, 1, 0)", got)
	}
}

func TestShadeDiffuseFalloff(t *testing.T) {
	mat := scene.NewMaterial("flat", math3d.V3(1, 1, 1), 0)
	lights := []scene.PointLight{{Position: math3d.V3(0, 0, 10), Color: math3d.V3(1, 1, 1)}}

	facing := Shade(mat, Hit{Normal: math3d.V3(0, 0, 1)}, math3d.Zero3(), lights, math3d.V3(0, 0, 1))
	angled := Shade(mat, Hit{Normal: math3d.V3(1, 0, 1).Normalize()}, math3d.Zero3(), lights, math3d.V3(0, 0, 1))
	away := Shade(mat, Hit{Normal: math3d.V3(0, 0, -1)}, math3d.Zero3(), lights, math3d.V3(0, 0, 1))

	if !(facing.X > angled.X && angled.X > away.X) {
		t.Errorf("diffuse not monotonic: %v, %v, %v", facing.X, angled.X, away.X)
	}
	if away.Len() > 1e-12 {
		t.Errorf("back-facing surface lit: %v", away)
	}
}

func TestRayPassCenterAndCorner(t *testing.T) {
	root, _, cam := sphereScene(t)
	_, _ = scene.NewLightPass().Run(root)

	fb := render.NewFramebuffer(21, 21)
	pass := NewRayPass(fb)
	pass.Background = render.RGB(1, 2, 3)
	pass.Workers = 2

	if err := pass.Render(root, cam, nil); err != nil {
		t.Fatal(err)
	}

	center := fb.GetPixel(10, 10)
	if center == pass.Background {
		t.Fatal("center pixel is background, want sphere hit")
	}
	if !(center.R > center.G && center.R > center.B) {
		t.Errorf("center pixel %v is not predominantly red", center)
	}

	for _, corner := range [][2]int{{0, 0}, {20, 0}, {0, 20}, {20, 20}} {
		if got := fb.GetPixel(corner[0], corner[1]); got != pass.Background {
			t.Errorf("corner %v = %v, want background", corner, got)
		}
	}
}

func TestRayPassFullyLitScene(t *testing.T) {
	// A red unit sphere pushed to (0, 0, -2), camera at the origin looking
	// down -Z, one white light at the origin, white ambient: the center
	// pixel must be a saturated, fully lit red and the corners background.
	root := scene.NewGroup(nil)
	g := scene.NewGroup(scene.NewTranslation(math3d.V3(0, 0, -2)))
	g.Add(scene.NewSphere(scene.MaterialRed))
	root.Add(g)
	root.Add(scene.NewLight(math3d.V3(1, 1, 1)))

	cam := scene.NewCamera()
	cam.SetAspect(1)
	root.Add(scene.NewCameraNode(cam))

	scene.NewMatrixPass().Run(root)
	scene.NewCameraPass().Run(root)
	points, _ := scene.NewLightPass().Run(root)

	fb := render.NewFramebuffer(21, 21)
	pass := NewRayPass(fb)
	pass.Ambient = math3d.V3(1, 1, 1)
	pass.Background = render.RGB(1, 2, 3)
	if err := pass.Render(root, cam, points); err != nil {
		t.Fatal(err)
	}

	center := fb.GetPixel(10, 10)
	if center.R != 255 {
		t.Errorf("center = %v, want a saturated red channel", center)
	}
	if !(center.R > center.G && center.R > center.B) {
		t.Errorf("center %v is not predominantly red", center)
	}
	for _, corner := range [][2]int{{0, 0}, {20, 0}, {0, 20}, {20, 20}} {
		if got := fb.GetPixel(corner[0], corner[1]); got != pass.Background {
			t.Errorf("corner %v = %v, want background", corner, got)
		}
	}
}

func TestRayPassNoCamera(t *testing.T) {
	root, _, _ := sphereScene(t)
	pass := NewRayPass(render.NewFramebuffer(4, 4))
	if err := pass.Render(root, nil, nil); !errors.Is(err, ErrNoCamera) {
		t.Fatalf("err = %v, want ErrNoCamera", err)
	}
}

func TestRayPassSkipsTextureBoxes(t *testing.T) {
	root, _, cam := sphereScene(t)
	// A texture box directly in front of the camera must be invisible to
	// the tracer: the sphere behind it still shows.
	tb := scene.NewTextureBox(scene.MaterialWhite, nil)
	front := scene.NewGroup(scene.NewTranslation(math3d.V3(0, 0, 3)))
	front.Add(tb)
	root.Add(front)
	scene.NewMatrixPass().Run(root)

	fb := render.NewFramebuffer(11, 11)
	pass := NewRayPass(fb)
	if err := pass.Render(root, cam, nil); err != nil {
		t.Fatal(err)
	}
	center := fb.GetPixel(5, 5)
	if !(center.R > center.G) {
		t.Errorf("center pixel %v, want the sphere behind the texture box", center)
	}
}

func TestRayPassScaledSphere(t *testing.T) {
	// A sphere scaled non-uniformly must still report a correct hit via
	// the world-t recomputation.
	root := scene.NewGroup(nil)
	sc, err := scene.NewScale(math3d.V3(2, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	g := scene.NewGroup(sc)
	g.Add(scene.NewSphere(scene.MaterialGreen))
	root.Add(g)

	cam := scene.NewCamera()
	cam.SetAspect(1)
	camGroup := scene.NewGroup(scene.NewTranslation(math3d.V3(0, 0, 6)))
	camGroup.Add(scene.NewCameraNode(cam))
	root.Add(camGroup)

	scene.NewMatrixPass().Run(root)
	scene.NewCameraPass().Run(root)

	fb := render.NewFramebuffer(11, 11)
	pass := NewRayPass(fb)
	if err := pass.Render(root, cam, nil); err != nil {
		t.Fatal(err)
	}
	center := fb.GetPixel(5, 5)
	if !(center.G > center.R) {
		t.Errorf("center pixel %v, want the scaled sphere", center)
	}
}

func TestClosestHitWinsByRayParameter(t *testing.T) {
	// Two spheres on the view axis: the nearer one owns the pixel.
	root := scene.NewGroup(nil)

	near := scene.NewGroup(scene.NewTranslation(math3d.V3(0, 0, 2)))
	near.Add(scene.NewSphere(scene.MaterialGreen))
	far := scene.NewGroup(scene.NewTranslation(math3d.V3(0, 0, -2)))
	far.Add(scene.NewSphere(scene.MaterialRed))
	root.Add(far, near) // far first: traversal order must not matter

	cam := scene.NewCamera()
	cam.SetAspect(1)
	camGroup := scene.NewGroup(scene.NewTranslation(math3d.V3(0, 0, 6)))
	camGroup.Add(scene.NewCameraNode(cam))
	root.Add(camGroup)

	scene.NewMatrixPass().Run(root)
	scene.NewCameraPass().Run(root)

	fb := render.NewFramebuffer(11, 11)
	pass := NewRayPass(fb)
	if err := pass.Render(root, cam, nil); err != nil {
		t.Fatal(err)
	}
	center := fb.GetPixel(5, 5)
	if !(center.G > center.R) {
		t.Errorf("center pixel %v, want the near green sphere", center)
	}
}

func TestPickPass(t *testing.T) {
	root, sphere, cam := sphereScene(t)

	clicked := 0
	sphere.SetOnClick(func() { clicked++ })

	pick := NewPickPass(root)

	if got := pick.Pick(cam, 21, 21, 10, 10); got != scene.Node(sphere) {
		t.Fatalf("picked %v, want the sphere", got)
	}
	if clicked != 1 {
		t.Errorf("click fired %d times, want 1", clicked)
	}

	if got := pick.Pick(cam, 21, 21, 0, 0); got != nil {
		t.Errorf("corner pick = %v, want nil", got)
	}
	if clicked != 1 {
		t.Errorf("corner pick fired a click")
	}
}

func TestPixelRayThroughCenter(t *testing.T) {
	cam := scene.NewCamera()
	cam.SetAspect(1)
	cam.Origin = math3d.V3(0, 0, 5)

	r := pixelRay(cam, 21, 21, 10, 10)
	if r.Origin != cam.Origin {
		t.Errorf("origin = %v, want camera origin", r.Origin)
	}
	// Identity view: straight down -Z.
	if r.Dir.Sub(math3d.V3(0, 0, -1)).Len() > 1e-9 {
		t.Errorf("center ray dir = %v, want (0, 0, -1)", r.Dir)
	}
	if math.Abs(r.Dir.Len()-1) > 1e-12 {
		t.Errorf("dir not unit: %v", r.Dir.Len())
	}
}
