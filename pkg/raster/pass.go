package raster

import (
	"errors"
	"fmt"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/scene"
)

// ErrNoCamera is returned when the render pass runs on a graph whose
// camera has not been resolved.
var ErrNoCamera = errors.New("raster: no camera")

// RasterPass draws the scene graph through the shader abstraction: one
// uniform upload plus one Renderable draw per geometry node. Frame-wide
// uniforms (view, projection, lights) are uploaded once per run.
//
// A geometry node with no prepared renderable is reported, not skipped
// silently; the pass keeps drawing and returns the joined errors.
type RasterPass struct {
	shader      Shader
	renderables map[scene.Node]Renderable
	ambient     math3d.Vec3
	replacement *scene.Material
	errs        []error
}

// NewRasterPass creates a render pass drawing the given renderables
// through sh. The ambient light defaults to a dim white.
func NewRasterPass(sh Shader, renderables map[scene.Node]Renderable) *RasterPass {
	return &RasterPass{
		shader:      sh,
		renderables: renderables,
		ambient:     math3d.V3(0.2, 0.2, 0.2),
	}
}

// SetAmbient sets the scene-wide ambient light color.
func (p *RasterPass) SetAmbient(c math3d.Vec3) { p.ambient = c }

// Run draws the graph with the resolved camera and gathered lights.
// Lights beyond the shader's fixed slots (MaxPointLights point lights,
// MaxSphereLights sphere lights) are dropped in gathering order. The
// matrix pass must have run first so node world transforms are current.
func (p *RasterPass) Run(root scene.Node, cam *scene.Camera, points []scene.PointLight, spheres []scene.SphereLight) error {
	if cam == nil {
		return ErrNoCamera
	}
	p.errs = p.errs[:0]
	p.replacement = cam.ReplacementMaterial

	p.shader.SetMat4(UniformView, cam.View)
	p.shader.SetMat4(UniformProjection, cam.Projection())
	p.shader.SetVec3(UniformViewPos, cam.Origin)
	p.shader.SetVec3(UniformAmbientLight, p.ambient)

	if len(points) > MaxPointLights {
		points = points[:MaxPointLights]
	}
	positions := make([]math3d.Vec3, len(points))
	colors := make([]math3d.Vec3, len(points))
	for i, l := range points {
		positions[i] = l.Position
		colors[i] = l.Color
	}
	p.shader.SetVec3Array(UniformLightPositions, positions)
	p.shader.SetVec3Array(UniformLightColors, colors)
	p.shader.SetInt(UniformLightCount, len(points))

	if len(spheres) > MaxSphereLights {
		spheres = spheres[:MaxSphereLights]
	}
	spherePos := make([]math3d.Vec3, len(spheres))
	sphereCol := make([]math3d.Vec3, len(spheres))
	for i, l := range spheres {
		spherePos[i] = l.Position
		sphereCol[i] = l.Color
	}
	p.shader.SetVec3Array(UniformSpherePos, spherePos)
	p.shader.SetVec3Array(UniformSphereColors, sphereCol)
	p.shader.SetInt(UniformSphereCount, len(spheres))

	if root != nil {
		root.Accept(p)
	}
	return errors.Join(p.errs...)
}

// draw uploads the node's uniforms and renders its geometry.
func (p *RasterPass) draw(n scene.Node, mat *scene.Material) {
	r, ok := p.renderables[n]
	if !ok {
		p.errs = append(p.errs, fmt.Errorf("raster: node %T has no renderable (setup pass not run?)", n))
		return
	}

	if p.replacement != nil {
		mat = p.replacement
	}
	if mat == nil {
		mat = scene.MaterialGray
	}

	model := n.Base().ToWorld()
	p.shader.SetMat4(UniformModel, model)
	normalMat, err := model.NormalMatrix()
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("raster: node %T: %w", n, err))
		normalMat = math3d.Identity()
	}
	p.shader.SetMat4(UniformNormalMatrix, normalMat)

	p.shader.SetVec3(UniformMatAmbient, mat.Ambient)
	p.shader.SetVec3(UniformMatDiffuse, mat.Diffuse)
	p.shader.SetVec3(UniformMatSpecular, mat.Specular)
	p.shader.SetFloat(UniformMatShininess, mat.Shininess)
	p.shader.SetFloat(UniformMatAlpha, mat.Alpha)

	if err := r.Render(p.shader); err != nil {
		p.errs = append(p.errs, fmt.Errorf("raster: node %T: %w", n, err))
	}
}

// VisitGroup recurses into the children.
func (p *RasterPass) VisitGroup(g *scene.Group) {
	for _, child := range g.Children() {
		child.Accept(p)
	}
}

func (p *RasterPass) VisitSphere(s *scene.Sphere)                   { p.draw(s, s.Material) }
func (p *RasterPass) VisitBox(b *scene.Box)                         { p.draw(b, b.Material) }
func (p *RasterPass) VisitPyramid(py *scene.Pyramid)                { p.draw(py, py.Material) }
func (p *RasterPass) VisitTextureBox(t *scene.TextureBox)           { p.draw(t, t.Material) }
func (p *RasterPass) VisitVideoTextureBox(t *scene.VideoTextureBox) { p.draw(t, t.Material) }
func (p *RasterPass) VisitMesh(m *scene.Mesh)                       { p.draw(m, m.Material) }

// VisitLightSphere draws the light body with its emissive material.
func (p *RasterPass) VisitLightSphere(l *scene.LightSphere) { p.draw(l, l.Material) }

func (p *RasterPass) VisitLight(*scene.Light)       {}
func (p *RasterPass) VisitCamera(*scene.CameraNode) {}
