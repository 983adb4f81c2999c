package raster

import (
	"errors"
	"strings"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

// recordingShader captures uniform uploads for inspection.
type recordingShader struct {
	mats   map[string]math3d.Mat4
	floats map[string]float64
	ints   map[string]int
	vecs   map[string]math3d.Vec3
	arrays map[string][]math3d.Vec3
}

func newRecordingShader() *recordingShader {
	return &recordingShader{
		mats:   make(map[string]math3d.Mat4),
		floats: make(map[string]float64),
		ints:   make(map[string]int),
		vecs:   make(map[string]math3d.Vec3),
		arrays: make(map[string][]math3d.Vec3),
	}
}

func (s *recordingShader) SetMat4(name string, m math3d.Mat4)  { s.mats[name] = m }
func (s *recordingShader) SetFloat(name string, v float64)     { s.floats[name] = v }
func (s *recordingShader) SetInt(name string, v int)           { s.ints[name] = v }
func (s *recordingShader) SetVec3(name string, v math3d.Vec3)  { s.vecs[name] = v }
func (s *recordingShader) SetVec3Array(name string, vs []math3d.Vec3) {
	s.arrays[name] = append([]math3d.Vec3(nil), vs...)
}

// nopRenderable draws nothing and records that it ran.
type nopRenderable struct {
	calls int
	err   error
}

func (r *nopRenderable) Render(Shader) error {
	r.calls++
	return r.err
}

func preparedScene() (*scene.Group, *scene.Sphere, map[scene.Node]Renderable) {
	root := scene.NewGroup(nil)
	sphere := scene.NewSphere(scene.MaterialRed)
	root.Add(sphere)
	scene.NewMatrixPass().Run(root)
	return root, sphere, map[scene.Node]Renderable{sphere: &nopRenderable{}}
}

func TestRasterPassNoCamera(t *testing.T) {
	root, _, renderables := preparedScene()
	pass := NewRasterPass(newRecordingShader(), renderables)
	if err := pass.Run(root, nil, nil, nil); !errors.Is(err, ErrNoCamera) {
		t.Fatalf("err = %v, want ErrNoCamera", err)
	}
}

func TestRasterPassLightTruncation(t *testing.T) {
	root, _, renderables := preparedScene()
	sh := newRecordingShader()
	pass := NewRasterPass(sh, renderables)

	lights := make([]scene.PointLight, MaxPointLights+3)
	for i := range lights {
		lights[i] = scene.PointLight{
			Position: math3d.V3(float64(i), 0, 0),
			Color:    math3d.V3(1, 1, 1),
		}
	}

	if err := pass.Run(root, scene.NewCamera(), lights, nil); err != nil {
		t.Fatal(err)
	}

	if got := sh.ints[UniformLightCount]; got != MaxPointLights {
		t.Errorf("light count = %d, want %d", got, MaxPointLights)
	}
	positions := sh.arrays[UniformLightPositions]
	if len(positions) != MaxPointLights {
		t.Fatalf("got %d light positions, want %d", len(positions), MaxPointLights)
	}
	// Truncation keeps gathering order: the first MaxPointLights survive.
	for i, pos := range positions {
		if pos != math3d.V3(float64(i), 0, 0) {
			t.Errorf("light %d position = %v, want (%d, 0, 0)", i, pos, i)
		}
	}
}

func TestRasterPassSphereLightTruncation(t *testing.T) {
	root, _, renderables := preparedScene()
	sh := newRecordingShader()
	pass := NewRasterPass(sh, renderables)

	spheres := make([]scene.SphereLight, MaxSphereLights+2)
	for i := range spheres {
		spheres[i] = scene.SphereLight{
			Position: math3d.V3(0, float64(i), 0),
			Color:    math3d.V3(1, 1, 0.5),
		}
	}

	if err := pass.Run(root, scene.NewCamera(), nil, spheres); err != nil {
		t.Fatal(err)
	}

	if got := sh.ints[UniformSphereCount]; got != MaxSphereLights {
		t.Errorf("sphere light count = %d, want %d", got, MaxSphereLights)
	}
	positions := sh.arrays[UniformSpherePos]
	if len(positions) != MaxSphereLights {
		t.Fatalf("got %d sphere light positions, want %d", len(positions), MaxSphereLights)
	}
	for i, pos := range positions {
		if pos != math3d.V3(0, float64(i), 0) {
			t.Errorf("sphere light %d position = %v, want (0, %d, 0)", i, pos, i)
		}
	}
}

func TestRasterPassMissingRenderable(t *testing.T) {
	root, _, _ := preparedScene()
	pass := NewRasterPass(newRecordingShader(), map[scene.Node]Renderable{})

	err := pass.Run(root, scene.NewCamera(), nil, nil)
	if err == nil {
		t.Fatal("expected an error for a node without a renderable")
	}
	if !strings.Contains(err.Error(), "no renderable") {
		t.Errorf("err = %v, want mention of missing renderable", err)
	}
}

func TestRasterPassReplacementMaterial(t *testing.T) {
	root, _, renderables := preparedScene()
	sh := newRecordingShader()
	pass := NewRasterPass(sh, renderables)

	cam := scene.NewCamera()
	cam.ReplacementMaterial = scene.MaterialBlue

	if err := pass.Run(root, cam, nil, nil); err != nil {
		t.Fatal(err)
	}
	if got := sh.vecs[UniformMatDiffuse]; got != scene.MaterialBlue.Diffuse {
		t.Errorf("diffuse = %v, want replacement %v", got, scene.MaterialBlue.Diffuse)
	}

	// Without a replacement the node's own material is uploaded.
	cam.ReplacementMaterial = nil
	if err := pass.Run(root, cam, nil, nil); err != nil {
		t.Fatal(err)
	}
	if got := sh.vecs[UniformMatDiffuse]; got != scene.MaterialRed.Diffuse {
		t.Errorf("diffuse = %v, want node material %v", got, scene.MaterialRed.Diffuse)
	}
}

func TestRasterPassDrawsEveryGeometryNode(t *testing.T) {
	root := scene.NewGroup(nil)
	sphere := scene.NewSphere(scene.MaterialRed)
	box := scene.NewBox(scene.MaterialGreen)
	light := scene.NewLight(math3d.V3(1, 1, 1))
	root.Add(sphere, box, light)
	scene.NewMatrixPass().Run(root)

	sphereR := &nopRenderable{}
	boxR := &nopRenderable{}
	pass := NewRasterPass(newRecordingShader(), map[scene.Node]Renderable{
		sphere: sphereR,
		box:    boxR,
	})

	if err := pass.Run(root, scene.NewCamera(), nil, nil); err != nil {
		t.Fatal(err)
	}
	if sphereR.calls != 1 || boxR.calls != 1 {
		t.Errorf("render calls = %d/%d, want 1/1", sphereR.calls, boxR.calls)
	}
}

func TestRasterPassFullyLitScene(t *testing.T) {
	// Full pipeline over a red unit sphere at (0, 0, -2), camera at the
	// origin, one white light at the origin, white ambient. The center
	// pixel saturates red; the corners stay background.
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
	points, spheres := scene.NewLightPass().Run(root)

	fb := render.NewFramebuffer(21, 21)
	bg := render.RGB(1, 2, 3)
	rz := NewRasterizer(fb)
	renderables := NewSetupPass(rz).Run(root)
	pass := NewRasterPass(NewProgram(), renderables)
	pass.SetAmbient(math3d.V3(1, 1, 1))

	fb.Clear(bg)
	rz.ClearDepth()
	if err := pass.Run(root, cam, points, spheres); err != nil {
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
		if got := fb.GetPixel(corner[0], corner[1]); got != bg {
			t.Errorf("corner %v = %v, want background", corner, got)
		}
	}
}

func TestRasterPassCollectsRenderErrors(t *testing.T) {
	root, sphere, _ := preparedScene()
	boom := errors.New("boom")
	pass := NewRasterPass(newRecordingShader(), map[scene.Node]Renderable{
		sphere: &nopRenderable{err: boom},
	})

	if err := pass.Run(root, scene.NewCamera(), nil, nil); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped render error", err)
	}
}
