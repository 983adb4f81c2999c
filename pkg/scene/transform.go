// Package scene provides the hierarchical scene graph for the Prism engine:
// transformations, materials, cameras, node kinds, and the traversal passes
// that prepare a graph for rendering.
package scene

import (
	"errors"
	"fmt"

	"github.com/taigrr/prism/pkg/math3d"
)

// ErrBadAxis is returned when a rotation axis is not a unit basis vector.
var ErrBadAxis = errors.New("scene: rotation axis must be a unit basis vector")

// Transformation pairs a forward matrix with its inverse. The inverse is
// computed once at construction (analytically for the named kinds), so
// both renderers read consistent forward and inverse transforms without
// ever inverting at traversal time.
type Transformation struct {
	mat math3d.Mat4
	inv math3d.Mat4
}

// NewIdentity creates an identity transformation.
func NewIdentity() *Transformation {
	return &Transformation{mat: math3d.Identity(), inv: math3d.Identity()}
}

// NewTranslation creates a translation by v. The inverse translates by -v.
func NewTranslation(v math3d.Vec3) *Transformation {
	return &Transformation{
		mat: math3d.Translate(v),
		inv: math3d.Translate(v.Negate()),
	}
}

// NewScale creates a scale by v. Zero components are rejected since the
// inverse would be singular.
func NewScale(v math3d.Vec3) (*Transformation, error) {
	if v.X == 0 || v.Y == 0 || v.Z == 0 {
		return nil, fmt.Errorf("scene: scale %v: %w", v, math3d.ErrSingular)
	}
	return &Transformation{
		mat: math3d.Scale(v),
		inv: math3d.Scale(math3d.V3(1/v.X, 1/v.Y, 1/v.Z)),
	}, nil
}

// NewRotation creates a rotation of angle radians around one of the unit
// basis axes X, Y or Z. Arbitrary axes are not supported; the inverse is
// the rotation by the negated angle.
func NewRotation(axis math3d.Vec3, angle float64) (*Transformation, error) {
	fwd, err := axisRotation(axis, angle)
	if err != nil {
		return nil, err
	}
	inv, _ := axisRotation(axis, -angle)
	return &Transformation{mat: fwd, inv: inv}, nil
}

// NewMatrixTransform wraps an arbitrary matrix, inverting it once. Fails
// with ErrSingular for degenerate matrices.
func NewMatrixTransform(m math3d.Mat4) (*Transformation, error) {
	inv, err := m.Invert()
	if err != nil {
		return nil, err
	}
	return &Transformation{mat: m, inv: inv}, nil
}

func axisRotation(axis math3d.Vec3, angle float64) (math3d.Mat4, error) {
	switch axis {
	case math3d.V3(1, 0, 0):
		return math3d.RotateX(angle), nil
	case math3d.V3(0, 1, 0):
		return math3d.RotateY(angle), nil
	case math3d.V3(0, 0, 1):
		return math3d.RotateZ(angle), nil
	}
	return math3d.Identity(), fmt.Errorf("%w: got %v", ErrBadAxis, axis)
}

// Matrix returns the forward matrix.
func (t *Transformation) Matrix() math3d.Mat4 {
	return t.mat
}

// Inverse returns the inverse matrix.
func (t *Transformation) Inverse() math3d.Mat4 {
	return t.inv
}

// RotateDelta recomposes the transformation with an incremental rotation
// around a basis axis: the delta post-multiplies the running matrix while
// its inverse pre-multiplies the running inverse. The stored inverse stays
// the exact inverse of the stored forward matrix after every update, which
// keeps the ray path's fromWorld consistent with the raster path's toWorld.
func (t *Transformation) RotateDelta(axis math3d.Vec3, angle float64) error {
	delta, err := axisRotation(axis, angle)
	if err != nil {
		return err
	}
	deltaInv, _ := axisRotation(axis, -angle)

	t.mat = t.mat.Mul(delta)
	t.inv = deltaInv.Mul(t.inv)
	return nil
}

// Translate recomposes the transformation with an incremental translation
// in local space, keeping the inverse exact.
func (t *Transformation) Translate(v math3d.Vec3) {
	t.mat = t.mat.Mul(math3d.Translate(v))
	t.inv = math3d.Translate(v.Negate()).Mul(t.inv)
}

// SetTranslation replaces the translation component of the forward matrix
// and rebuilds the inverse accordingly. Only valid for transformations
// whose linear part is invertible; the error comes from the inversion.
func (t *Transformation) SetTranslation(v math3d.Vec3) error {
	m := t.mat
	m.SetTranslation(v)
	inv, err := m.Invert()
	if err != nil {
		return err
	}
	t.mat = m
	t.inv = inv
	return nil
}
