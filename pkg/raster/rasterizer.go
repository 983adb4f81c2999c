package raster

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
)

// Vertex is one tessellated vertex in local (model) space.
type Vertex struct {
	Position math3d.Vec3 // Local position
	Normal   math3d.Vec3 // Local normal
	UV       math3d.Vec2 // Texture coordinates
	Color    math3d.Vec3 // Per-vertex color modulator (white when unused)
}

// Rasterizer fills triangles into a framebuffer with Z-buffering.
// Lighting runs per vertex (Gouraud) from the uniforms of the current
// program, mirroring a vertex-shader lighting model.
type Rasterizer struct {
	fb      *render.Framebuffer
	zbuffer []float64
}

// NewRasterizer creates a rasterizer writing into fb.
func NewRasterizer(fb *render.Framebuffer) *Rasterizer {
	r := &Rasterizer{}
	r.SetFramebuffer(fb)
	return r
}

// SetFramebuffer swaps the target framebuffer, resizing the Z-buffer.
func (r *Rasterizer) SetFramebuffer(fb *render.Framebuffer) {
	r.fb = fb
	if fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, fb.Width*fb.Height)
	r.ClearDepth()
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth clears the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	// Copy-doubling clear
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

func (r *Rasterizer) getDepth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

func (r *Rasterizer) setDepth(x, y int, z float64) {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return
	}
	r.zbuffer[y*r.Width()+x] = z
}

// screenVertex holds a vertex transformed to screen space with its lit
// color already computed.
type screenVertex struct {
	X, Y float64 // Screen coordinates
	Z    float64 // Depth (for Z-buffer)
	W    float64 // Clip-space W (for perspective-correct interpolation)
	Lit  math3d.Vec3
	UV   math3d.Vec2
}

// DrawTriangles rasterizes a triangle list using the uniforms in p.
// Vertices are consumed three at a time; a trailing partial triangle is
// ignored. A nil texture selects the untextured path.
func (r *Rasterizer) DrawTriangles(p *Program, verts []Vertex, tex *render.Texture) {
	model := p.Mat4(UniformModel)
	normalMat := p.Mat4(UniformNormalMatrix)
	mvp := p.Mat4(UniformProjection).Mul(p.Mat4(UniformView)).Mul(model)
	alpha := p.Float(UniformMatAlpha)
	if alpha <= 0 {
		alpha = 1
	}

	for i := 0; i+2 < len(verts); i += 3 {
		r.drawTriangle(p, model, normalMat, mvp, alpha, verts[i:i+3:i+3], tex)
	}
}

func (r *Rasterizer) drawTriangle(p *Program, model, normalMat, mvp math3d.Mat4, alpha float64, tri []Vertex, tex *render.Texture) {
	var sv [3]screenVertex
	allBehind := true

	for i := range 3 {
		worldPos := model.MulVec3(tri[i].Position)
		worldNormal := normalMat.MulVec3Dir(tri[i].Normal).Normalize()
		sv[i].Lit = phongVertex(p, worldPos, worldNormal).Mul(tri[i].Color)
		sv[i].UV = tri[i].UV

		clipPos := mvp.MulVec4(math3d.V4FromV3(tri[i].Position, 1))
		if clipPos.W > 0 {
			allBehind = false
		}
		if clipPos.W != 0 {
			sv[i].X = clipPos.X / clipPos.W
			sv[i].Y = clipPos.Y / clipPos.W
			sv[i].Z = clipPos.Z / clipPos.W
		}
		sv[i].W = clipPos.W

		// NDC to screen coordinates (Y flipped)
		sv[i].X = (sv[i].X + 1) * 0.5 * float64(r.Width())
		sv[i].Y = (1 - sv[i].Y) * 0.5 * float64(r.Height())
	}

	if allBehind {
		return
	}

	// Backface culling via screen-space winding
	edge1 := math3d.V2(sv[1].X-sv[0].X, sv[1].Y-sv[0].Y)
	edge2 := math3d.V2(sv[2].X-sv[0].X, sv[2].Y-sv[0].Y)
	if edge1.X*edge2.Y-edge1.Y*edge2.X < 0 {
		return
	}

	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))

	// Perspective-correct interpolation factors
	var invW [3]float64
	for i := range 3 {
		if sv[i].W != 0 {
			invW[i] = 1.0 / sv[i].W
		}
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5

			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				px, py,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			if z >= r.getDepth(x, y) {
				continue
			}

			lit := sv[0].Lit.Scale(bc.X).
				Add(sv[1].Lit.Scale(bc.Y)).
				Add(sv[2].Lit.Scale(bc.Z))

			if tex != nil {
				w0, w1, w2 := bc.X*invW[0], bc.Y*invW[1], bc.Z*invW[2]
				oneOverW := w0 + w1 + w2
				if oneOverW == 0 {
					continue
				}
				u := (w0*sv[0].UV.X + w1*sv[1].UV.X + w2*sv[2].UV.X) / oneOverW
				v := (w0*sv[0].UV.Y + w1*sv[1].UV.Y + w2*sv[2].UV.Y) / oneOverW
				lit = lit.Mul(colorToVec3(tex.Sample(u, v)))
			}

			r.setDepth(x, y, z)
			r.fb.SetPixel(x, y, vec3ToColor(lit, alpha))
		}
	}
}

// phongVertex evaluates the Phong lighting model at a world-space point
// using the uniforms in p. Results are unclamped linear RGB.
func phongVertex(p *Program, pos, normal math3d.Vec3) math3d.Vec3 {
	color := p.Vec3(UniformMatAmbient).Mul(p.Vec3(UniformAmbientLight))

	count := p.Int(UniformLightCount)
	positions := p.Vec3Array(UniformLightPositions)
	colors := p.Vec3Array(UniformLightColors)
	if n := len(positions); count > n {
		count = n
	}
	if n := len(colors); count > n {
		count = n
	}

	diffuse := p.Vec3(UniformMatDiffuse)
	specular := p.Vec3(UniformMatSpecular)
	shininess := p.Float(UniformMatShininess)
	view := p.Vec3(UniformViewPos).Sub(pos).Normalize()

	for i := 0; i < count; i++ {
		l := positions[i].Sub(pos).Normalize()
		nl := math.Max(normal.Dot(l), 0)
		color = color.Add(diffuse.Mul(colors[i]).Scale(nl))

		refl := normal.Scale(2 * normal.Dot(l)).Sub(l)
		rv := math.Max(refl.Dot(view), 0)
		if rv > 0 && shininess > 0 {
			color = color.Add(specular.Mul(colors[i]).Scale(math.Pow(rv, shininess)))
		}
	}
	return color
}

// barycentric calculates barycentric coordinates for point (px, py).
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

// vec3ToColor converts linear RGB to an 8-bit pixel, clamping at the
// final write like a GPU blend stage.
func vec3ToColor(v math3d.Vec3, alpha float64) render.Color {
	c := v.Clamp01()
	a := math.Max(0, math.Min(1, alpha))
	return render.RGBA(
		uint8(c.X*255+0.5),
		uint8(c.Y*255+0.5),
		uint8(c.Z*255+0.5),
		uint8(a*255+0.5),
	)
}

// colorToVec3 converts an 8-bit texel to linear RGB.
func colorToVec3(c render.Color) math3d.Vec3 {
	return math3d.V3(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}
