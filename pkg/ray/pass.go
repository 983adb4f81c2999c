package ray

import (
	"errors"
	"math"
	"runtime"
	"sync"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

// ErrNoCamera is returned when tracing runs on a graph whose camera has
// not been resolved.
var ErrNoCamera = errors.New("ray: no camera")

// tracer bundles the canonical primitives shared by every pixel of a
// frame. All state is read-only during tracing, so workers share one.
type tracer struct {
	sphere  UnitSphere
	box     *TriangleSet
	pyramid *TriangleSet
	meshes  map[*scene.Mesh]*TriangleSet

	// Nodes whose material carries vertex colors get their own set, since
	// the canonical ones are uncolored.
	colored map[scene.Node]*TriangleSet
}

// newTracer prepares intersection sets for the graph.
func newTracer(root scene.Node) *tracer {
	tr := &tracer{
		box:     NewUnitBox(nil),
		pyramid: NewUnitPyramid(nil),
		meshes:  make(map[*scene.Mesh]*TriangleSet),
		colored: make(map[scene.Node]*TriangleSet),
	}
	if root != nil {
		root.Accept(&tracerPrep{tr: tr})
	}
	return tr
}

// tracerPrep collects per-node intersection sets ahead of tracing.
type tracerPrep struct {
	tr *tracer
}

func (p *tracerPrep) VisitGroup(g *scene.Group) {
	for _, child := range g.Children() {
		child.Accept(p)
	}
}

func (p *tracerPrep) VisitMesh(m *scene.Mesh) {
	if _, ok := p.tr.meshes[m]; !ok && m.Geometry != nil {
		p.tr.meshes[m] = NewMeshSet(m.Geometry)
	}
}

func (p *tracerPrep) VisitBox(b *scene.Box) {
	if b.Material != nil && len(b.Material.VertexColors) > 0 {
		p.tr.colored[b] = NewUnitBox(b.Material.VertexColors)
	}
}

func (p *tracerPrep) VisitPyramid(py *scene.Pyramid) {
	if py.Material != nil && len(py.Material.VertexColors) > 0 {
		p.tr.colored[py] = NewUnitPyramid(py.Material.VertexColors)
	}
}

func (p *tracerPrep) VisitSphere(*scene.Sphere)                   {}
func (p *tracerPrep) VisitTextureBox(*scene.TextureBox)           {}
func (p *tracerPrep) VisitVideoTextureBox(*scene.VideoTextureBox) {}
func (p *tracerPrep) VisitLight(*scene.Light)                     {}
func (p *tracerPrep) VisitLightSphere(*scene.LightSphere)         {}
func (p *tracerPrep) VisitCamera(*scene.CameraNode)               {}

// hitVisitor walks the graph for a single ray and keeps the closest
// intersection. One visitor serves one worker; it is reset per ray.
type hitVisitor struct {
	tr   *tracer
	ray  Ray
	best Hit
	mat  *scene.Material
	node scene.Node
}

func (v *hitVisitor) trace(root scene.Node, r Ray) {
	v.ray = r
	v.best = NewHit()
	v.mat = nil
	v.node = nil
	if root != nil {
		root.Accept(v)
	}
}

// test intersects the ray with one node's canonical primitive using the
// cached world transforms, then maps the hit back to world space.
func (v *hitVisitor) test(n scene.Node, mat *scene.Material, prim intersecter) {
	local := v.ray.Transformed(n.Base().FromWorld())
	lh, ok := prim.intersect(local)
	if !ok {
		return
	}

	toWorld := n.Base().ToWorld()
	point := toWorld.MulVec3(lh.point)
	t := worldT(v.ray, point)
	if t <= 1e-9 {
		return
	}
	hit := Hit{T: t, Point: point, Color: lh.color, Shaded: lh.hasCol}
	if !hit.CloserThan(v.best) {
		return
	}

	// Normals transform by the inverse transpose.
	hit.Normal = n.Base().FromWorld().Transpose().MulVec3Dir(lh.normal).Normalize()
	v.best = hit
	v.mat = mat
	v.node = n
}

func (v *hitVisitor) VisitGroup(g *scene.Group) {
	for _, child := range g.Children() {
		child.Accept(v)
	}
}

func (v *hitVisitor) VisitSphere(s *scene.Sphere) {
	v.test(s, s.Material, v.tr.sphere)
}

func (v *hitVisitor) VisitBox(b *scene.Box) {
	prim := intersecter(v.tr.box)
	if set, ok := v.tr.colored[b]; ok {
		prim = set
	}
	v.test(b, b.Material, prim)
}

func (v *hitVisitor) VisitPyramid(py *scene.Pyramid) {
	prim := intersecter(v.tr.pyramid)
	if set, ok := v.tr.colored[py]; ok {
		prim = set
	}
	v.test(py, py.Material, prim)
}

func (v *hitVisitor) VisitMesh(m *scene.Mesh) {
	if set, ok := v.tr.meshes[m]; ok {
		v.test(m, m.Material, set)
	}
}

// VisitLightSphere intersects the light body like any sphere.
func (v *hitVisitor) VisitLightSphere(l *scene.LightSphere) {
	v.test(l, l.Material, v.tr.sphere)
}

// Textured boxes have no analytic shading model here; the raster path
// owns them.
func (v *hitVisitor) VisitTextureBox(*scene.TextureBox)           {}
func (v *hitVisitor) VisitVideoTextureBox(*scene.VideoTextureBox) {}

func (v *hitVisitor) VisitLight(*scene.Light)       {}
func (v *hitVisitor) VisitCamera(*scene.CameraNode) {}

// pixelRay builds the world-space primary ray through the center of
// pixel (x, y).
func pixelRay(cam *scene.Camera, width, height, x, y int) Ray {
	tanHalf := math.Tan(cam.FOV / 2)
	u := (2*(float64(x)+0.5)/float64(width) - 1) * tanHalf * cam.Aspect
	v := (1 - 2*(float64(y)+0.5)/float64(height)) * tanHalf

	dir := cam.InverseView.MulVec3Dir(math3d.V3(u, v, -1)).Normalize()
	return Ray{Origin: cam.Origin, Dir: dir}
}

// RayPass renders the graph by tracing one primary ray per pixel. Rows
// are sharded round-robin across workers; each pixel is written exactly
// once, so workers never contend.
type RayPass struct {
	fb         *render.Framebuffer
	Background render.Color
	Ambient    math3d.Vec3
	Workers    int // 0 picks GOMAXPROCS
}

// NewRayPass creates a ray-traced render pass targeting fb.
func NewRayPass(fb *render.Framebuffer) *RayPass {
	return &RayPass{
		fb:         fb,
		Background: render.ColorBlack,
		Ambient:    math3d.V3(0.2, 0.2, 0.2),
	}
}

// SetFramebuffer retargets the pass, e.g. after a terminal resize.
func (p *RayPass) SetFramebuffer(fb *render.Framebuffer) {
	p.fb = fb
}

// Render traces the full frame. The matrix pass must have run so cached
// node transforms are current; lights come from the light pass.
func (p *RayPass) Render(root scene.Node, cam *scene.Camera, lights []scene.PointLight) error {
	if cam == nil {
		return ErrNoCamera
	}

	tr := newTracer(root)
	width, height := p.fb.Width, p.fb.Height

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > height {
		workers = height
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(start int) {
			defer wg.Done()
			visitor := &hitVisitor{tr: tr}
			for y := start; y < height; y += workers {
				for x := 0; x < width; x++ {
					p.fb.SetPixel(x, y, p.tracePixel(visitor, root, cam, lights, x, y))
				}
			}
		}(w)
	}
	wg.Wait()
	return nil
}

func (p *RayPass) tracePixel(v *hitVisitor, root scene.Node, cam *scene.Camera, lights []scene.PointLight, x, y int) render.Color {
	v.trace(root, pixelRay(cam, p.fb.Width, p.fb.Height, x, y))
	if v.node == nil {
		return p.Background
	}

	mat := v.mat
	if cam.ReplacementMaterial != nil {
		mat = cam.ReplacementMaterial
	}
	if mat == nil {
		mat = scene.MaterialGray
	}

	view := cam.Origin.Sub(v.best.Point).Normalize()
	color := Shade(mat, v.best, p.Ambient, lights, view).Clamp01()
	alpha := math.Max(0, math.Min(1, mat.Alpha))
	return render.RGBA(
		uint8(color.X*255+0.5),
		uint8(color.Y*255+0.5),
		uint8(color.Z*255+0.5),
		uint8(alpha*255+0.5),
	)
}
