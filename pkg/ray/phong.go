package ray

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/scene"
)

// Shade evaluates the Phong model at a world-space hit. view is the unit
// vector from the hit point toward the camera. The result is unclamped
// linear RGB; clamping happens at the pixel write.
//
// An interpolated vertex color on the hit replaces the material ambient
// term.
func Shade(mat *scene.Material, hit Hit, ambientLight math3d.Vec3, lights []scene.PointLight, view math3d.Vec3) math3d.Vec3 {
	if mat == nil {
		mat = scene.MaterialGray
	}

	ambient := mat.Ambient
	if hit.Shaded {
		ambient = hit.Color
	}
	color := ambient.Mul(ambientLight)

	n := hit.Normal
	for _, light := range lights {
		l := light.Position.Sub(hit.Point).Normalize()
		nl := math.Max(n.Dot(l), 0)
		color = color.Add(mat.Diffuse.Mul(light.Color).Scale(nl))

		refl := n.Scale(2 * n.Dot(l)).Sub(l)
		rv := math.Max(refl.Dot(view), 0)
		if rv > 0 && mat.Shininess > 0 {
			color = color.Add(mat.Specular.Mul(light.Color).Scale(math.Pow(rv, mat.Shininess)))
		}
	}
	return color
}
