// Package raster is the GPU-style render path: scene geometry is
// tessellated once into triangle lists, then drawn each frame through a
// shader-program abstraction with uniform uploads, a Z-buffer, and
// per-vertex Phong lighting.
package raster

import "github.com/taigrr/prism/pkg/math3d"

// Light capacity of a shader program. Lights gathered beyond these
// limits are silently dropped in gathering order.
const (
	MaxPointLights  = 8
	MaxSphereLights = 2
)

// Uniform names shared between the render pass and the program.
const (
	UniformModel          = "model"
	UniformView           = "view"
	UniformProjection     = "projection"
	UniformNormalMatrix   = "normalMatrix"
	UniformViewPos        = "viewPos"
	UniformAmbientLight   = "ambientLight"
	UniformLightCount     = "lightCount"
	UniformLightPositions = "lightPositions"
	UniformLightColors    = "lightColors"
	UniformSphereCount    = "sphereLightCount"
	UniformSpherePos      = "sphereLightPositions"
	UniformSphereColors   = "sphereLightColors"
	UniformMatAmbient     = "materialAmbient"
	UniformMatDiffuse     = "materialDiffuse"
	UniformMatSpecular    = "materialSpecular"
	UniformMatShininess   = "materialShininess"
	UniformMatAlpha       = "materialAlpha"
)

// Shader is the uniform upload surface of a shader program. The render
// pass only talks to this interface; the software implementation is
// Program.
type Shader interface {
	SetMat4(name string, m math3d.Mat4)
	SetFloat(name string, v float64)
	SetInt(name string, v int)
	SetVec3(name string, v math3d.Vec3)
	SetVec3Array(name string, vs []math3d.Vec3)
}

// Renderable is a piece of geometry prepared by the setup pass and drawn
// by the render pass. Uniforms for the current node are already uploaded
// when Render is called.
type Renderable interface {
	Render(sh Shader) error
}
