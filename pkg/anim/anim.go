// Package anim provides per-frame animation drivers for scene graph
// transformations: constant-rate spinners, circular orbits, and eased
// bounces. Drivers are updated from the frame loop; there is no global
// animation manager.
package anim

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/scene"
)

// Driver advances one animation by dt seconds.
type Driver interface {
	Update(dt float64) error
}

// Spinner rotates a transformation at a constant angular velocity
// around one basis axis. The incremental update keeps the stored
// inverse exact, so spinners can run indefinitely.
type Spinner struct {
	target *scene.Transformation
	axis   math3d.Vec3
	speed  float64 // Radians per second
}

// NewSpinner creates a spinner around the given basis axis. The axis is
// validated on the first update.
func NewSpinner(target *scene.Transformation, axis math3d.Vec3, radPerSec float64) *Spinner {
	return &Spinner{target: target, axis: axis, speed: radPerSec}
}

// Update applies this frame's rotation increment.
func (s *Spinner) Update(dt float64) error {
	return s.target.RotateDelta(s.axis, s.speed*dt)
}

// Orbit moves a transformation around a circle in the XZ plane.
type Orbit struct {
	target *scene.Transformation
	center math3d.Vec3
	radius float64
	speed  float64 // Radians per second
	angle  float64
}

// NewOrbit creates an orbit of the given radius around center.
func NewOrbit(target *scene.Transformation, center math3d.Vec3, radius, radPerSec float64) *Orbit {
	return &Orbit{target: target, center: center, radius: radius, speed: radPerSec}
}

// Update advances the orbit angle and repositions the target.
func (o *Orbit) Update(dt float64) error {
	o.angle += o.speed * dt
	pos := o.center.Add(math3d.V3(
		o.radius*math.Cos(o.angle),
		0,
		o.radius*math.Sin(o.angle),
	))
	return o.target.SetTranslation(pos)
}

// Bounce eases a transformation up and down between its base position
// and base + height, ping-ponging forever.
type Bounce struct {
	target   *scene.Transformation
	base     math3d.Vec3
	height   float64
	duration float32
	fn       ease.TweenFunc
	tween    *gween.Tween
	rising   bool
}

// NewBounce creates a bounce of the given height. Half a bounce (one
// direction) takes duration seconds; easing defaults to OutQuad for a
// ballistic feel.
func NewBounce(target *scene.Transformation, base math3d.Vec3, height, duration float64) *Bounce {
	b := &Bounce{
		target:   target,
		base:     base,
		height:   height,
		duration: float32(duration),
		fn:       ease.OutQuad,
		rising:   true,
	}
	b.tween = gween.New(0, float32(height), b.duration, b.fn)
	return b
}

// SetEasing replaces the easing function for subsequent half-bounces.
func (b *Bounce) SetEasing(fn ease.TweenFunc) { b.fn = fn }

// Update advances the bounce, reversing direction at each end.
func (b *Bounce) Update(dt float64) error {
	val, finished := b.tween.Update(float32(dt))
	if err := b.target.SetTranslation(b.base.Add(math3d.V3(0, float64(val), 0))); err != nil {
		return err
	}
	if finished {
		b.rising = !b.rising
		from, to := float32(b.height), float32(0)
		if b.rising {
			from, to = 0, float32(b.height)
		}
		b.tween = gween.New(from, to, b.duration, b.fn)
	}
	return nil
}
