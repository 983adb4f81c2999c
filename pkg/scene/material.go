package scene

import (
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
)

// Material describes Phong surface properties. Color channels are linear
// RGB in the 0-1 range, carried as Vec3 so shading math composes directly.
// The renderers only read materials; mutation happens between frames.
type Material struct {
	Name     string
	Ambient  math3d.Vec3
	Diffuse  math3d.Vec3
	Specular math3d.Vec3
	// Shininess is the specular exponent.
	Shininess float64
	// Alpha is the opacity in 0-1; 1 is fully opaque.
	Alpha float64
	// VertexColors, when present, are interpolated across primitive faces
	// and override the ambient term at the hit point.
	VertexColors []math3d.Vec3
	// Shader names the shader program the raster path binds for this
	// material. Empty selects the default program.
	Shader string
}

// NewMaterial creates an opaque material with a shared base color and a
// standard specular highlight.
func NewMaterial(name string, color math3d.Vec3, shininess float64) *Material {
	return &Material{
		Name:      name,
		Ambient:   color,
		Diffuse:   color,
		Specular:  math3d.V3(0.5, 0.5, 0.5),
		Shininess: shininess,
		Alpha:     1,
	}
}

// MaterialFromMesh derives a render material from loaded mesh data. The
// first mesh material's base color drives ambient and diffuse; roughness
// maps onto the specular exponent, so rough surfaces get a dull, wide
// highlight. Meshes without materials fall back to MaterialWhite.
func MaterialFromMesh(geom *models.Mesh) *Material {
	if geom == nil || geom.MaterialCount() == 0 {
		return MaterialWhite
	}
	src := geom.GetMaterial(0)
	color := math3d.V3(src.BaseColor[0], src.BaseColor[1], src.BaseColor[2])
	shininess := 4 + (1-src.Roughness)*60
	mat := NewMaterial(src.Name, color, shininess)
	mat.Alpha = src.BaseColor[3]
	return mat
}

// Stock materials used by demos and tests.
var (
	MaterialRed   = NewMaterial("red", math3d.V3(0.8, 0.1, 0.1), 32)
	MaterialGreen = NewMaterial("green", math3d.V3(0.1, 0.8, 0.1), 32)
	MaterialBlue  = NewMaterial("blue", math3d.V3(0.1, 0.1, 0.8), 32)
	MaterialWhite = NewMaterial("white", math3d.V3(0.9, 0.9, 0.9), 16)
	MaterialGray  = NewMaterial("gray", math3d.V3(0.5, 0.5, 0.5), 8)
)
