package raster

import "github.com/taigrr/prism/pkg/math3d"

// Program is the software stand-in for a GPU shader program: a typed
// uniform store written by the render pass and read by the rasterizer.
type Program struct {
	mats   map[string]math3d.Mat4
	floats map[string]float64
	ints   map[string]int
	vecs   map[string]math3d.Vec3
	arrays map[string][]math3d.Vec3
}

// NewProgram creates an empty uniform store.
func NewProgram() *Program {
	return &Program{
		mats:   make(map[string]math3d.Mat4),
		floats: make(map[string]float64),
		ints:   make(map[string]int),
		vecs:   make(map[string]math3d.Vec3),
		arrays: make(map[string][]math3d.Vec3),
	}
}

// SetMat4 uploads a matrix uniform.
func (p *Program) SetMat4(name string, m math3d.Mat4) { p.mats[name] = m }

// SetFloat uploads a scalar uniform.
func (p *Program) SetFloat(name string, v float64) { p.floats[name] = v }

// SetInt uploads an integer uniform.
func (p *Program) SetInt(name string, v int) { p.ints[name] = v }

// SetVec3 uploads a vector uniform.
func (p *Program) SetVec3(name string, v math3d.Vec3) { p.vecs[name] = v }

// SetVec3Array uploads a vector array uniform. The slice is copied so
// later caller mutations don't leak into the program state.
func (p *Program) SetVec3Array(name string, vs []math3d.Vec3) {
	p.arrays[name] = append(p.arrays[name][:0], vs...)
}

// Mat4 returns a matrix uniform, identity when unset.
func (p *Program) Mat4(name string) math3d.Mat4 {
	if m, ok := p.mats[name]; ok {
		return m
	}
	return math3d.Identity()
}

// Float returns a scalar uniform, zero when unset.
func (p *Program) Float(name string) float64 { return p.floats[name] }

// Int returns an integer uniform, zero when unset.
func (p *Program) Int(name string) int { return p.ints[name] }

// Vec3 returns a vector uniform, zero when unset.
func (p *Program) Vec3(name string) math3d.Vec3 { return p.vecs[name] }

// Vec3Array returns a vector array uniform, nil when unset.
func (p *Program) Vec3Array(name string) []math3d.Vec3 { return p.arrays[name] }
