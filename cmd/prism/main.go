// prism - Terminal 3D Scene Viewer
// Renders a hierarchical scene with either a software raster pipeline or
// an analytic ray tracer, in your terminal.
//
// Controls:
//
//	Mouse drag  - Rotate scene (yaw/pitch)
//	Mouse click - Pick the object under the cursor
//	Scroll      - Zoom in/out
//	W/S         - Pitch up/down
//	A/D         - Yaw left/right
//	Arrow keys  - Look around
//	Space       - Apply random spin impulse
//	M           - Toggle render mode (raster / ray)
//	R           - Reset view
//	+/-         - Adjust zoom
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/prism/pkg/anim"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/raster"
	"github.com/taigrr/prism/pkg/ray"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

var (
	mode      = flag.String("mode", "raster", "Render mode: raster or ray")
	output    = flag.String("o", "", "Render one frame to a PNG file and exit")
	size      = flag.String("size", "640x360", "Frame size for -o (WxH)")
	targetFPS = flag.Int("fps", 30, "Target FPS")
	bgColor   = flag.String("bg", "20,20,30", "Background color (R,G,B)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "prism - Terminal 3D Scene Viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: prism [options] [model.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Rotate scene\n")
		fmt.Fprintf(os.Stderr, "  Mouse click - Pick object\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom in/out\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Pitch and yaw\n")
		fmt.Fprintf(os.Stderr, "  Arrow keys  - Look around\n")
		fmt.Fprintf(os.Stderr, "  Space       - Random spin\n")
		fmt.Fprintf(os.Stderr, "  M           - Toggle raster/ray mode\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// RotationAxis tracks position and velocity for one rotation axis with
// spring decay.
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

// NewRotationAxis creates an axis with a harmonica spring for smooth
// velocity decay.
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0.
func (a *RotationAxis) Update() float64 {
	delta := a.Velocity
	a.Position += delta
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
	return delta
}

// Turntable spins the whole scene under mouse and keyboard impulses.
// The per-frame deltas feed RotateDelta so the graph transforms stay
// exactly invertible.
type Turntable struct {
	Yaw, Pitch RotationAxis
	group      *scene.Group
	fps        int
}

func NewTurntable(group *scene.Group, fps int) *Turntable {
	return &Turntable{
		Yaw:   NewRotationAxis(fps),
		Pitch: NewRotationAxis(fps),
		group: group,
		fps:   fps,
	}
}

func (tt *Turntable) Update() error {
	dYaw := tt.Yaw.Update()
	dPitch := tt.Pitch.Update()
	tr := tt.group.Transform()
	if err := tr.RotateDelta(math3d.V3(0, 1, 0), dYaw); err != nil {
		return err
	}
	return tr.RotateDelta(math3d.V3(1, 0, 0), dPitch)
}

func (tt *Turntable) ApplyImpulse(yaw, pitch float64) {
	tt.Yaw.Velocity += yaw
	tt.Pitch.Velocity += pitch
}

func (tt *Turntable) Reset() {
	tt.Yaw = NewRotationAxis(tt.fps)
	tt.Pitch = NewRotationAxis(tt.fps)
	tt.group.SetTransform(scene.NewIdentity())
}

// plasmaSource is a procedural video feed for the demo's video cube.
type plasmaSource struct {
	frame int
}

func (p *plasmaSource) Frame() image.Image {
	const n = 32
	p.frame++
	t := float64(p.frame) * 0.15
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			v := math.Sin(float64(x)/4+t) + math.Sin(float64(y)/3-t/2)
			c := uint8((v + 2) / 4 * 255)
			img.SetRGBA(x, y, color.RGBA{R: c, G: 64, B: 255 - c, A: 255})
		}
	}
	return img
}

// demoScene assembles the showcase graph: spinning box, orbiting sphere,
// pyramid, video cube, a bouncing light sphere and a fixed point light.
// An optional model path adds a mesh node.
func demoScene(modelPath string) (*scene.Group, *Demo, error) {
	root := scene.NewGroup(nil)
	world := scene.NewGroup(nil) // Turntable target
	root.Add(world)

	spin := scene.NewIdentity()
	boxGroup := scene.NewGroup(spin)
	box := scene.NewBox(scene.MaterialRed)
	boxGroup.Add(box)
	world.Add(boxGroup)

	orbitTr := scene.NewTranslation(math3d.V3(2.5, 0, 0))
	orbitGroup := scene.NewGroup(orbitTr)
	sphere := scene.NewSphere(scene.MaterialGreen)
	shrink, err := scene.NewScale(math3d.V3(0.5, 0.5, 0.5))
	if err != nil {
		return nil, nil, err
	}
	sphereScale := scene.NewGroup(shrink)
	sphereScale.Add(sphere)
	orbitGroup.Add(sphereScale)
	world.Add(orbitGroup)

	pyramidGroup := scene.NewGroup(scene.NewTranslation(math3d.V3(-2.5, -0.5, 0)))
	pyramid := scene.NewPyramid(scene.MaterialBlue)
	pyramidGroup.Add(pyramid)
	world.Add(pyramidGroup)

	videoGroup := scene.NewGroup(scene.NewTranslation(math3d.V3(0, 2, -1)))
	videoGroup.Add(scene.NewVideoTextureBox(scene.MaterialWhite, &plasmaSource{}))
	world.Add(videoGroup)

	bounceTr := scene.NewTranslation(math3d.V3(0, -2, 2))
	bounceGroup := scene.NewGroup(bounceTr)
	bounceGroup.Add(scene.NewLightSphere(math3d.V3(1, 1, 0.6)))
	world.Add(bounceGroup)

	lightGroup := scene.NewGroup(scene.NewTranslation(math3d.V3(4, 5, 4)))
	lightGroup.Add(scene.NewLight(math3d.V3(0.9, 0.9, 0.9)))
	world.Add(lightGroup)

	if modelPath != "" {
		mesh, err := loadModel(modelPath)
		if err != nil {
			return nil, nil, err
		}
		meshGroup := scene.NewGroup(scene.NewTranslation(math3d.V3(0, 0, 2)))
		meshGroup.Add(scene.NewMesh(mesh, nil))
		world.Add(meshGroup)
	}

	cam := scene.NewCamera()
	camTr := scene.NewTranslation(math3d.V3(0, 1, 8))
	camGroup := scene.NewGroup(camTr)
	camGroup.Add(scene.NewCameraNode(cam))
	root.Add(camGroup)

	demo := &Demo{
		world: world,
		cam:   cam,
		camTr: camTr,
		camZ:  8,
		drivers: []anim.Driver{
			anim.NewSpinner(spin, math3d.V3(0, 1, 0), 0.8),
			anim.NewOrbit(orbitTr, math3d.Zero3(), 2.5, 0.6),
			anim.NewBounce(bounceTr, math3d.V3(0, -2, 2), 1.5, 0.7),
		},
	}

	// Clicking a primitive cycles its material.
	cycle := []*scene.Material{
		scene.MaterialRed, scene.MaterialGreen, scene.MaterialBlue,
		scene.MaterialWhite, scene.MaterialGray,
	}
	box.SetOnClick(func() { box.Material = nextMaterial(cycle, box.Material) })
	sphere.SetOnClick(func() { sphere.Material = nextMaterial(cycle, sphere.Material) })
	pyramid.SetOnClick(func() { pyramid.Material = nextMaterial(cycle, pyramid.Material) })

	return root, demo, nil
}

// Demo bundles the mutable pieces the event loop steers.
type Demo struct {
	world   *scene.Group
	cam     *scene.Camera
	camTr   *scene.Transformation
	camZ    float64
	drivers []anim.Driver
}

func (d *Demo) Zoom(delta float64) error {
	d.camZ = math.Max(2, math.Min(20, d.camZ+delta))
	return d.camTr.SetTranslation(math3d.V3(0, 1, d.camZ))
}

func nextMaterial(cycle []*scene.Material, cur *scene.Material) *scene.Material {
	for i, m := range cycle {
		if m == cur {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

func loadModel(path string) (*models.Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
	default:
		return nil, fmt.Errorf("unsupported format: %s (use .glb or .gltf)", filepath.Ext(path))
	}
	mesh, err := models.LoadGLB(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	// Center and scale into a unit-ish footprint.
	mesh.CalculateBounds()
	center := mesh.Center()
	size := mesh.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim > 0 {
		s := 2.0 / maxDim
		mesh.Transform(math3d.Scale(math3d.V3(s, s, s)).Mul(math3d.Translate(center.Scale(-1))))
	}
	return mesh, nil
}

// Engine drives both backends over one scene graph.
type Engine struct {
	fb      *render.Framebuffer
	bg      render.Color
	cam     *scene.Camera
	RayMode bool

	matrixPass *scene.MatrixPass
	lightPass  *scene.LightPass
	cameraPass *scene.CameraPass

	rasterizer *raster.Rasterizer
	program    *raster.Program
	rasterPass *raster.RasterPass
	rayPass    *ray.RayPass
}

// NewEngine prepares both backends for the graph. The setup pass runs
// here, so node additions after this point need a new engine.
func NewEngine(root scene.Node, fb *render.Framebuffer, bg render.Color) *Engine {
	rz := raster.NewRasterizer(fb)
	program := raster.NewProgram()
	renderables := raster.NewSetupPass(rz).Run(root)
	return &Engine{
		fb:         fb,
		bg:         bg,
		matrixPass: scene.NewMatrixPass(),
		lightPass:  scene.NewLightPass(),
		cameraPass: scene.NewCameraPass(),
		rasterizer: rz,
		program:    program,
		rasterPass: raster.NewRasterPass(program, renderables),
		rayPass:    ray.NewRayPass(fb),
	}
}

// Frame renders one frame of the graph into the framebuffer.
func (e *Engine) Frame(root scene.Node) error {
	e.matrixPass.Run(root)
	points, spheres := e.lightPass.Run(root)
	cam := e.cameraPass.Run(root)
	if cam == nil {
		return fmt.Errorf("scene has no camera")
	}
	cam.SetAspect(float64(e.fb.Width) / float64(e.fb.Height))
	e.cam = cam

	e.fb.Clear(e.bg)
	if e.RayMode {
		e.rayPass.Background = e.bg
		return e.rayPass.Render(root, cam, points)
	}
	e.rasterizer.ClearDepth()
	return e.rasterPass.Run(root, cam, points, spheres)
}

// Camera returns the camera resolved by the most recent frame, or nil
// before the first one.
func (e *Engine) Camera() *scene.Camera { return e.cam }

// Resize retargets both backends at a new framebuffer.
func (e *Engine) Resize(fb *render.Framebuffer) {
	e.fb = fb
	e.rasterizer.SetFramebuffer(fb)
	e.rayPass.SetFramebuffer(fb)
}

func run() error {
	var bgR, bgG, bgB uint8 = 20, 20, 30
	fmt.Sscanf(*bgColor, "%d,%d,%d", &bgR, &bgG, &bgB)
	bg := render.RGB(bgR, bgG, bgB)

	root, demo, err := demoScene(flag.Arg(0))
	if err != nil {
		return err
	}

	if *output != "" {
		return renderToFile(root, bg)
	}

	// Create terminal
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1003h")
	fmt.Fprint(os.Stdout, "\x1b[?1006h")

	termRenderer := render.NewTerminalRenderer(term, width, height)
	fbWidth, fbHeight := termRenderer.FramebufferSize()
	fb := render.NewFramebuffer(fbWidth, fbHeight)

	engine := NewEngine(root, fb, bg)
	engine.RayMode = *mode == "ray"
	pick := ray.NewPickPass(root)
	turntable := NewTurntable(demo.world, *targetFPS)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// The scene graph, engine and framebuffer are mutated only between
	// frames: event handlers queue their mutations here and the frame
	// loop applies them before the next render. A full queue drops the
	// input rather than blocking the terminal reader.
	actions := make(chan func(), 64)
	queue := func(fn func()) {
		select {
		case actions <- fn:
		default:
		}
	}

	var mouseDown bool
	var lastMouseX, lastMouseY int

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				w, h := ev.Width, ev.Height
				queue(func() {
					width, height = w, h
					term.Erase()
					term.Resize(width, height)
					termRenderer = render.NewTerminalRenderer(term, width, height)
					fbWidth, fbHeight = termRenderer.FramebufferSize()
					fb = render.NewFramebuffer(fbWidth, fbHeight)
					engine.Resize(fb)
				})

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"), ev.MatchString("ctrl+c"):
					cancel()
					return
				case ev.MatchString("m"):
					queue(func() { engine.RayMode = !engine.RayMode })
				case ev.MatchString("r"):
					queue(func() {
						turntable.Reset()
						demo.cam.Yaw, demo.cam.Pitch = 0, 0
						demo.Zoom(8 - demo.camZ)
					})
				case ev.MatchString("w"):
					queue(func() { turntable.ApplyImpulse(0, -0.05) })
				case ev.MatchString("s"):
					queue(func() { turntable.ApplyImpulse(0, 0.05) })
				case ev.MatchString("a"):
					queue(func() { turntable.ApplyImpulse(-0.05, 0) })
				case ev.MatchString("d"):
					queue(func() { turntable.ApplyImpulse(0.05, 0) })
				case ev.MatchString("up"):
					queue(func() { demo.cam.Rotate(0, 0.05) })
				case ev.MatchString("down"):
					queue(func() { demo.cam.Rotate(0, -0.05) })
				case ev.MatchString("left"):
					queue(func() { demo.cam.Rotate(0.05, 0) })
				case ev.MatchString("right"):
					queue(func() { demo.cam.Rotate(-0.05, 0) })
				case ev.MatchString("space"):
					dYaw := (rand.Float64() - 0.5) * 0.5
					dPitch := (rand.Float64() - 0.5) * 0.5
					queue(func() { turntable.ApplyImpulse(dYaw, dPitch) })
				case ev.MatchString("+", "="):
					queue(func() { demo.Zoom(-0.5) })
				case ev.MatchString("-", "_"):
					queue(func() { demo.Zoom(0.5) })
				}

			case uv.MouseClickEvent:
				mouseDown = true
				lastMouseX, lastMouseY = ev.X, ev.Y
				x, y := ev.X, ev.Y
				queue(func() {
					// Cell -> framebuffer pixel: rows are doubled.
					if cam := engine.Camera(); cam != nil {
						pick.Pick(cam, fb.Width, fb.Height, x, y*2+1)
					}
				})

			case uv.MouseReleaseEvent:
				mouseDown = false

			case uv.MouseMotionEvent:
				if mouseDown {
					dx := ev.X - lastMouseX
					dy := ev.Y - lastMouseY
					lastMouseX, lastMouseY = ev.X, ev.Y
					queue(func() { turntable.ApplyImpulse(float64(dx)*0.01, float64(dy)*0.01) })
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					queue(func() { demo.Zoom(-0.5) })
				case uv.MouseWheelDown:
					queue(func() { demo.Zoom(0.5) })
				}
			}
		}
	}()

	targetDuration := time.Second / time.Duration(*targetFPS)
	lastFrame := time.Now()

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		// Apply queued input before touching the graph.
	drain:
		for {
			select {
			case fn := <-actions:
				fn()
			default:
				break drain
			}
		}

		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now
		if dt > 0.1 {
			dt = 0.1
		}

		if err := turntable.Update(); err != nil {
			cleanup()
			return err
		}
		for _, d := range demo.drivers {
			if err := d.Update(dt); err != nil {
				cleanup()
				return err
			}
		}

		if err := engine.Frame(root); err != nil {
			cleanup()
			return err
		}

		termRenderer.Render(fb)
		if err := termRenderer.Flush(); err != nil {
			cleanup()
			return fmt.Errorf("flush: %w", err)
		}

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

// renderToFile renders a single frame headless and writes it as a PNG.
func renderToFile(root scene.Node, bg render.Color) error {
	var w, h int
	if _, err := fmt.Sscanf(*size, "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return fmt.Errorf("invalid -size %q (want WxH)", *size)
	}

	fb := render.NewFramebuffer(w, h)
	engine := NewEngine(root, fb, bg)
	engine.RayMode = *mode == "ray"

	if err := engine.Frame(root); err != nil {
		return err
	}
	if err := fb.SavePNG(*output); err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	fmt.Printf("Wrote %s (%dx%d, %s mode)\n", *output, w, h, *mode)
	return nil
}
