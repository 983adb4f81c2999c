package scene

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// Camera is the value object shared by both render paths. External code
// (input handlers, animation drivers) mutates origin and orientation
// between frames; the camera pass writes View and InverseView from the
// graph; the renderers only read.
type Camera struct {
	// Origin in world space.
	Origin math3d.Vec3

	// Orientation (Euler angles in radians).
	Yaw   float64 // Rotation around Y (look left/right)
	Pitch float64 // Rotation around X (look up/down)

	// Projection parameters.
	FOV    float64 // Vertical field of view in radians
	Aspect float64 // Width / Height
	Near   float64
	Far    float64

	// View and InverseView are resolved from the camera node's place in
	// the graph by CameraPass.
	View        math3d.Mat4
	InverseView math3d.Mat4

	// ReplacementMaterial, when set, substitutes every geometry node's
	// material for the duration of a raster pass (picking and special
	// render passes).
	ReplacementMaterial *Material

	// Cached projection matrix (computed on demand).
	projMatrix math3d.Mat4
	projDirty  bool
}

// NewCamera creates a camera with default settings looking down -Z.
func NewCamera() *Camera {
	return &Camera{
		FOV:         math.Pi / 3, // 60 degrees
		Aspect:      16.0 / 9.0,
		Near:        0.1,
		Far:         1000,
		View:        math3d.Identity(),
		InverseView: math3d.Identity(),
		projDirty:   true,
	}
}

// SetFOV sets the vertical field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetAspect sets the aspect ratio.
func (c *Camera) SetAspect(aspect float64) {
	c.Aspect = aspect
	c.projDirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
		c.projDirty = false
	}
	return c.projMatrix
}

// Rotate adjusts yaw and pitch, clamping pitch short of the poles. The
// new orientation takes effect when the camera pass next resolves the
// view matrices.
func (c *Camera) Rotate(deltaYaw, deltaPitch float64) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch

	const maxPitch = math.Pi/2 - 0.01
	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	}
	if c.Pitch < -maxPitch {
		c.Pitch = -maxPitch
	}
}
