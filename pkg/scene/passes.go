package scene

import "github.com/taigrr/prism/pkg/math3d"

// matrixStack accumulates forward and inverse transforms along the path
// from the root to the current node. The inverse composes in reversed
// order: (A·B)^-1 = B^-1·A^-1. Stack depth equals graph depth.
type matrixStack struct {
	fwd []math3d.Mat4
	inv []math3d.Mat4
}

func (s *matrixStack) reset() {
	s.fwd = append(s.fwd[:0], math3d.Identity())
	s.inv = append(s.inv[:0], math3d.Identity())
}

func (s *matrixStack) push(t *Transformation) {
	n := len(s.fwd) - 1
	s.fwd = append(s.fwd, s.fwd[n].Mul(t.Matrix()))
	s.inv = append(s.inv, t.Inverse().Mul(s.inv[n]))
}

func (s *matrixStack) pop() {
	s.fwd = s.fwd[:len(s.fwd)-1]
	s.inv = s.inv[:len(s.inv)-1]
}

func (s *matrixStack) top() (fwd, inv math3d.Mat4) {
	n := len(s.fwd) - 1
	return s.fwd[n], s.inv[n]
}

// MatrixPass walks the tree depth-first and caches the accumulated
// toWorld/fromWorld pair on every node. It must run whenever any
// transformation in the tree changes and before either renderer consumes
// the graph.
type MatrixPass struct {
	stack matrixStack
}

// NewMatrixPass creates a matrix precomputation pass.
func NewMatrixPass() *MatrixPass {
	return &MatrixPass{}
}

// Run traverses the graph from root. A nil root is a no-op.
func (p *MatrixPass) Run(root Node) {
	if root == nil {
		return
	}
	p.stack.reset()
	root.Accept(p)
}

func (p *MatrixPass) cache(b *NodeBase) {
	b.SetWorldTransform(p.stack.top())
}

// VisitGroup composes the group's transform onto the stacks, caches the
// result on the group itself, and recurses into the children in order.
func (p *MatrixPass) VisitGroup(g *Group) {
	p.stack.push(g.Transform())
	p.cache(g.Base())
	for _, child := range g.Children() {
		child.Accept(p)
	}
	p.stack.pop()
}

func (p *MatrixPass) VisitSphere(s *Sphere)                   { p.cache(s.Base()) }
func (p *MatrixPass) VisitBox(b *Box)                         { p.cache(b.Base()) }
func (p *MatrixPass) VisitPyramid(py *Pyramid)                { p.cache(py.Base()) }
func (p *MatrixPass) VisitTextureBox(t *TextureBox)           { p.cache(t.Base()) }
func (p *MatrixPass) VisitVideoTextureBox(t *VideoTextureBox) { p.cache(t.Base()) }
func (p *MatrixPass) VisitMesh(m *Mesh)                       { p.cache(m.Base()) }
func (p *MatrixPass) VisitLight(l *Light)                     { p.cache(l.Base()) }
func (p *MatrixPass) VisitLightSphere(l *LightSphere)         { p.cache(l.Base()) }
func (p *MatrixPass) VisitCamera(c *CameraNode)               { p.cache(c.Base()) }

// PointLight is a gathered light: world-space position plus color.
type PointLight struct {
	Position math3d.Vec3
	Color    math3d.Vec3
}

// SphereLight is a gathered renderable light.
type SphereLight struct {
	Position math3d.Vec3
	Color    math3d.Vec3
}

// LightPass gathers world-space light positions and colors in traversal
// order. It accumulates its own matrix stacks rather than reading cached
// transforms, so lighting stays correct even if it runs before
// MatrixPass. Gathering lights in a separate pass ahead of shading means
// a node traversed before a light in the tree is still lit by it.
type LightPass struct {
	stack  matrixStack
	points []PointLight
	sphere []SphereLight
}

// NewLightPass creates a light-gathering pass.
func NewLightPass() *LightPass {
	return &LightPass{}
}

// Run traverses the graph and returns point lights and sphere lights in
// traversal order. A nil root yields empty results.
func (p *LightPass) Run(root Node) ([]PointLight, []SphereLight) {
	p.stack.reset()
	p.points = p.points[:0]
	p.sphere = p.sphere[:0]
	if root != nil {
		root.Accept(p)
	}
	return p.points, p.sphere
}

func (p *LightPass) worldOrigin() math3d.Vec3 {
	fwd, _ := p.stack.top()
	// The light sits at its local origin: transform (0,0,0,1).
	return fwd.MulVec3(math3d.Zero3())
}

// VisitGroup recurses with the group's transform applied.
func (p *LightPass) VisitGroup(g *Group) {
	p.stack.push(g.Transform())
	for _, child := range g.Children() {
		child.Accept(p)
	}
	p.stack.pop()
}

// VisitLight records the light's world position and color.
func (p *LightPass) VisitLight(l *Light) {
	p.points = append(p.points, PointLight{Position: p.worldOrigin(), Color: l.Color})
}

// VisitLightSphere records the renderable light. It also contributes
// illumination, so it is gathered into the point list as well.
func (p *LightPass) VisitLightSphere(l *LightSphere) {
	pos := p.worldOrigin()
	p.points = append(p.points, PointLight{Position: pos, Color: l.Color})
	p.sphere = append(p.sphere, SphereLight{Position: pos, Color: l.Color})
}

func (p *LightPass) VisitSphere(*Sphere)                   {}
func (p *LightPass) VisitBox(*Box)                         {}
func (p *LightPass) VisitPyramid(*Pyramid)                 {}
func (p *LightPass) VisitTextureBox(*TextureBox)           {}
func (p *LightPass) VisitVideoTextureBox(*VideoTextureBox) {}
func (p *LightPass) VisitMesh(*Mesh)                       {}
func (p *LightPass) VisitCamera(*CameraNode)               {}

// CameraPass resolves the active camera: the accumulated forward matrix
// becomes the camera's inverse view (camera-to-world) and the accumulated
// inverse becomes its view matrix. It must run whenever any ancestor
// transform of the camera changes.
type CameraPass struct {
	stack matrixStack
	cam   *Camera
}

// NewCameraPass creates a camera resolution pass.
func NewCameraPass() *CameraPass {
	return &CameraPass{}
}

// Run traverses the graph and returns the resolved camera, or nil when
// the graph contains no camera node. With multiple cameras the last one
// in traversal order wins.
func (p *CameraPass) Run(root Node) *Camera {
	p.stack.reset()
	p.cam = nil
	if root != nil {
		root.Accept(p)
	}
	return p.cam
}

// VisitGroup recurses with the group's transform applied.
func (p *CameraPass) VisitGroup(g *Group) {
	p.stack.push(g.Transform())
	for _, child := range g.Children() {
		child.Accept(p)
	}
	p.stack.pop()
}

// VisitCamera writes the view matrices into the camera value object and
// records it. The camera's yaw and pitch compose onto the graph placement,
// so look input applied between frames takes effect on the next resolve.
// The camera's world origin falls out of the forward matrix.
func (p *CameraPass) VisitCamera(c *CameraNode) {
	fwd, inv := p.stack.top()
	cam := c.Camera
	look := math3d.RotateY(cam.Yaw).Mul(math3d.RotateX(cam.Pitch))
	lookInv := math3d.RotateX(-cam.Pitch).Mul(math3d.RotateY(-cam.Yaw))
	cam.InverseView = fwd.Mul(look)
	cam.View = lookInv.Mul(inv)
	cam.Origin = fwd.MulVec3(math3d.Zero3())
	p.cam = cam
}

func (p *CameraPass) VisitSphere(*Sphere)                   {}
func (p *CameraPass) VisitBox(*Box)                         {}
func (p *CameraPass) VisitPyramid(*Pyramid)                 {}
func (p *CameraPass) VisitTextureBox(*TextureBox)           {}
func (p *CameraPass) VisitVideoTextureBox(*VideoTextureBox) {}
func (p *CameraPass) VisitMesh(*Mesh)                       {}
func (p *CameraPass) VisitLight(*Light)                     {}
func (p *CameraPass) VisitLightSphere(*LightSphere)         {}
