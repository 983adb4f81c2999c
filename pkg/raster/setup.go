package raster

import (
	"fmt"
	"math"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

// Sphere tessellation resolution.
const (
	sphereStacks  = 16
	sphereSectors = 24
)

// geometry is a tessellated triangle list bound to a rasterizer. It
// reads its uniforms back out of the software program when drawn.
type geometry struct {
	rz    *Rasterizer
	verts []Vertex
	tex   *render.Texture
}

func (g *geometry) Render(sh Shader) error {
	p, ok := sh.(*Program)
	if !ok {
		return fmt.Errorf("raster: shader %T is not a software program", sh)
	}
	g.rz.DrawTriangles(p, g.verts, g.tex)
	return nil
}

// videoGeometry re-samples its texture from the frame source on every
// draw, so the cube face tracks the video.
type videoGeometry struct {
	geometry
	src scene.FrameSource
}

func (g *videoGeometry) Render(sh Shader) error {
	if frame := g.src.Frame(); frame != nil {
		g.tex = render.TextureFromImage(frame)
	}
	return g.geometry.Render(sh)
}

// SetupPass tessellates every geometry node into a Renderable. It runs
// once per scene (or whenever nodes are added), not per frame; the
// resulting map is what the per-frame render pass draws from.
type SetupPass struct {
	rz          *Rasterizer
	renderables map[scene.Node]Renderable
}

// NewSetupPass creates a setup pass building renderables for rz.
func NewSetupPass(rz *Rasterizer) *SetupPass {
	return &SetupPass{rz: rz}
}

// Run traverses the graph and returns a renderable per geometry node.
// Nodes already present in a previous run are rebuilt.
func (p *SetupPass) Run(root scene.Node) map[scene.Node]Renderable {
	p.renderables = make(map[scene.Node]Renderable)
	if root != nil {
		root.Accept(p)
	}
	return p.renderables
}

// VisitGroup recurses into the children.
func (p *SetupPass) VisitGroup(g *scene.Group) {
	for _, child := range g.Children() {
		child.Accept(p)
	}
}

// VisitSphere tessellates a unit sphere.
func (p *SetupPass) VisitSphere(s *scene.Sphere) {
	p.renderables[s] = &geometry{rz: p.rz, verts: applyVertexColors(sphereVertices(), s.Material)}
}

// VisitBox tessellates a unit cube.
func (p *SetupPass) VisitBox(b *scene.Box) {
	p.renderables[b] = &geometry{rz: p.rz, verts: applyVertexColors(boxVertices(), b.Material)}
}

// VisitPyramid tessellates a unit square pyramid.
func (p *SetupPass) VisitPyramid(py *scene.Pyramid) {
	p.renderables[py] = &geometry{rz: p.rz, verts: applyVertexColors(pyramidVertices(), py.Material)}
}

// VisitTextureBox builds a textured cube. A missing image falls back to
// a checkerboard so the node stays visible.
func (p *SetupPass) VisitTextureBox(t *scene.TextureBox) {
	tex := render.NewCheckerTexture(64, 64, 8, render.RGB(200, 200, 200), render.RGB(100, 100, 100))
	if t.Image != nil {
		tex = render.TextureFromImage(t.Image)
	}
	p.renderables[t] = &geometry{rz: p.rz, verts: boxVertices(), tex: tex}
}

// VisitVideoTextureBox builds a cube whose texture refreshes per draw.
func (p *SetupPass) VisitVideoTextureBox(t *scene.VideoTextureBox) {
	p.renderables[t] = &videoGeometry{
		geometry: geometry{rz: p.rz, verts: boxVertices()},
		src:      t.Source,
	}
}

// VisitMesh copies the mesh triangles as-is, keeping the loader's
// winding and attributes. Faces tint their vertices with their mesh
// material's base color, and the first material's base texture (when
// loaded) becomes the draw texture; like TextureBox surfaces, these
// details exist only on the raster path.
func (p *SetupPass) VisitMesh(m *scene.Mesh) {
	geom := m.Geometry
	verts := make([]Vertex, 0, geom.TriangleCount()*3)
	for i := 0; i < geom.TriangleCount(); i++ {
		face := geom.GetFace(i)
		tint := white()
		if fm := geom.GetMaterial(geom.GetFaceMaterial(i)); fm != nil {
			tint = math3d.V3(fm.BaseColor[0], fm.BaseColor[1], fm.BaseColor[2])
		}
		for _, vi := range face {
			pos, normal, uv := geom.GetVertex(vi)
			verts = append(verts, Vertex{Position: pos, Normal: normal, UV: uv, Color: tint})
		}
	}

	var tex *render.Texture
	if fm := geom.GetMaterial(0); fm != nil && fm.HasTexture && fm.BaseMap != nil {
		tex = render.TextureFromImage(fm.BaseMap)
	}
	p.renderables[m] = &geometry{rz: p.rz, verts: applyVertexColors(verts, m.Material), tex: tex}
}

// VisitLightSphere gives the light a visible unit sphere body.
func (p *SetupPass) VisitLightSphere(l *scene.LightSphere) {
	p.renderables[l] = &geometry{rz: p.rz, verts: applyVertexColors(sphereVertices(), l.Material)}
}

func (p *SetupPass) VisitLight(*scene.Light)       {}
func (p *SetupPass) VisitCamera(*scene.CameraNode) {}

func white() math3d.Vec3 { return math3d.V3(1, 1, 1) }

// applyVertexColors assigns the material's per-vertex colors cyclically,
// leaving the white modulator in place when the material has none.
func applyVertexColors(verts []Vertex, mat *scene.Material) []Vertex {
	if mat == nil || len(mat.VertexColors) == 0 {
		return verts
	}
	for i := range verts {
		verts[i].Color = mat.VertexColors[i%len(mat.VertexColors)]
	}
	return verts
}

// appendTriangle emits one triangle wound to survive backface culling
// when seen from outside a convex solid centered at the origin: the
// right-hand normal of the winding must point inward.
func appendTriangle(verts []Vertex, a, b, c Vertex) []Vertex {
	rh := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
	centroid := a.Position.Add(b.Position).Add(c.Position).Scale(1.0 / 3)
	if rh.Dot(centroid) > 0 {
		b, c = c, b
	}
	return append(verts, a, b, c)
}

// sphereVertices tessellates the unit sphere with a lat/long grid. The
// normal at every vertex is its own position.
func sphereVertices() []Vertex {
	point := func(stack, sector int) Vertex {
		theta := math.Pi * float64(stack) / sphereStacks
		phi := 2 * math.Pi * float64(sector) / sphereSectors
		pos := math3d.V3(
			math.Sin(theta)*math.Cos(phi),
			math.Cos(theta),
			math.Sin(theta)*math.Sin(phi),
		)
		return Vertex{
			Position: pos,
			Normal:   pos,
			UV:       math3d.V2(float64(sector)/sphereSectors, 1-float64(stack)/sphereStacks),
			Color:    white(),
		}
	}

	var verts []Vertex
	for i := 0; i < sphereStacks; i++ {
		for j := 0; j < sphereSectors; j++ {
			v00 := point(i, j)
			v10 := point(i+1, j)
			v11 := point(i+1, j+1)
			v01 := point(i, j+1)

			// Cap rows degenerate to a single triangle per quad.
			if i < sphereStacks-1 {
				verts = appendTriangle(verts, v00, v10, v11)
			}
			if i > 0 {
				verts = appendTriangle(verts, v00, v11, v01)
			}
		}
	}
	return verts
}

// boxVertices tessellates the unit cube with per-face normals and UVs.
func boxVertices() []Vertex {
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
	uvs := [4]math3d.Vec2{
		math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(1, 1), math3d.V2(0, 1),
	}

	var verts []Vertex
	for fi, f := range faces {
		corner := func(k int) Vertex {
			return Vertex{Position: corners[f[k]], Normal: normals[fi], UV: uvs[k], Color: white()}
		}
		verts = appendTriangle(verts, corner(0), corner(1), corner(2))
		verts = appendTriangle(verts, corner(0), corner(2), corner(3))
	}
	return verts
}

// pyramidVertices tessellates the unit square pyramid: apex (0, 0.5, 0),
// base corners (±0.5, -0.5, ±0.5). Side faces are flat shaded.
func pyramidVertices() []Vertex {
	apex := math3d.V3(0, 0.5, 0)
	base := [4]math3d.Vec3{
		math3d.V3(-0.5, -0.5, -0.5),
		math3d.V3(0.5, -0.5, -0.5),
		math3d.V3(0.5, -0.5, 0.5),
		math3d.V3(-0.5, -0.5, 0.5),
	}

	flat := func(a, b, c math3d.Vec3) [3]Vertex {
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		// Flip toward the outside of the solid
		centroid := a.Add(b).Add(c).Scale(1.0 / 3)
		if n.Dot(centroid) < 0 {
			n = n.Negate()
		}
		return [3]Vertex{
			{Position: a, Normal: n, Color: white()},
			{Position: b, Normal: n, Color: white()},
			{Position: c, Normal: n, Color: white()},
		}
	}

	var verts []Vertex
	for i := range base {
		tri := flat(apex, base[i], base[(i+1)%4])
		verts = appendTriangle(verts, tri[0], tri[1], tri[2])
	}
	for _, idx := range [2][3]int{{0, 2, 1}, {0, 3, 2}} {
		tri := flat(base[idx[0]], base[idx[1]], base[idx[2]])
		verts = appendTriangle(verts, tri[0], tri[1], tri[2])
	}
	return verts
}
