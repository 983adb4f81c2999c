package scene

import (
	"image"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
)

// Visitor is implemented by every graph traversal. Each node kind
// dispatches to exactly one method, so adding a node kind surfaces as a
// compile error in every traversal.
type Visitor interface {
	VisitGroup(*Group)
	VisitSphere(*Sphere)
	VisitBox(*Box)
	VisitPyramid(*Pyramid)
	VisitTextureBox(*TextureBox)
	VisitVideoTextureBox(*VideoTextureBox)
	VisitMesh(*Mesh)
	VisitLight(*Light)
	VisitLightSphere(*LightSphere)
	VisitCamera(*CameraNode)
}

// Node is anything that can live in the scene graph. Base exposes the
// per-node state every traversal needs: the cached world transforms and
// the optional click callback.
type Node interface {
	Accept(Visitor)
	Base() *NodeBase
}

// NodeBase carries the state shared by all node kinds. The cached
// toWorld/fromWorld pair is written by MatrixPass and is only valid for
// the frame in which that pass last ran.
type NodeBase struct {
	toWorld   math3d.Mat4
	fromWorld math3d.Mat4
	onClick   func()
}

func newNodeBase() NodeBase {
	return NodeBase{
		toWorld:   math3d.Identity(),
		fromWorld: math3d.Identity(),
	}
}

// Base returns the node's shared state.
func (b *NodeBase) Base() *NodeBase { return b }

// SetWorldTransform caches the accumulated forward and inverse transform
// for the current frame.
func (b *NodeBase) SetWorldTransform(toWorld, fromWorld math3d.Mat4) {
	b.toWorld = toWorld
	b.fromWorld = fromWorld
}

// ToWorld returns the cached local-to-world matrix.
func (b *NodeBase) ToWorld() math3d.Mat4 { return b.toWorld }

// FromWorld returns the cached world-to-local matrix.
func (b *NodeBase) FromWorld() math3d.Mat4 { return b.fromWorld }

// SetOnClick registers a callback fired when the node is picked.
func (b *NodeBase) SetOnClick(fn func()) { b.onClick = fn }

// Click fires the click callback if one is registered.
func (b *NodeBase) Click() {
	if b.onClick != nil {
		b.onClick()
	}
}

// Group owns an ordered list of children and one transformation. Children
// are traversed in insertion order; each child appears under exactly one
// parent in the tree.
type Group struct {
	NodeBase
	transform *Transformation
	children  []Node
}

// NewGroup creates a group with the given transformation. A nil
// transformation means identity.
func NewGroup(t *Transformation) *Group {
	if t == nil {
		t = NewIdentity()
	}
	return &Group{NodeBase: newNodeBase(), transform: t}
}

// Accept dispatches to the visitor.
func (g *Group) Accept(v Visitor) { v.VisitGroup(g) }

// Transform returns the group's transformation.
func (g *Group) Transform() *Transformation { return g.transform }

// SetTransform replaces the group's transformation.
func (g *Group) SetTransform(t *Transformation) {
	if t == nil {
		t = NewIdentity()
	}
	g.transform = t
}

// Add appends children in traversal order.
func (g *Group) Add(nodes ...Node) {
	g.children = append(g.children, nodes...)
}

// Remove detaches the first occurrence of n from the child list,
// preserving the order of the rest. Returns whether n was found.
func (g *Group) Remove(n Node) bool {
	for i, c := range g.children {
		if c == n {
			g.children = append(g.children[:i], g.children[i+1:]...)
			return true
		}
	}
	return false
}

// Children returns the ordered child list. Callers must not mutate it
// during a traversal.
func (g *Group) Children() []Node { return g.children }

// Sphere is a unit sphere (radius 1, centered at the origin) in local
// space; size and placement come from ancestor transformations.
type Sphere struct {
	NodeBase
	Material *Material
}

// NewSphere creates a sphere leaf with the given material.
func NewSphere(mat *Material) *Sphere {
	return &Sphere{NodeBase: newNodeBase(), Material: mat}
}

// Accept dispatches to the visitor.
func (s *Sphere) Accept(v Visitor) { v.VisitSphere(s) }

// Box is a unit cube ([-0.5, 0.5] on every axis) in local space.
type Box struct {
	NodeBase
	Material *Material
}

// NewBox creates a box leaf with the given material.
func NewBox(mat *Material) *Box {
	return &Box{NodeBase: newNodeBase(), Material: mat}
}

// Accept dispatches to the visitor.
func (b *Box) Accept(v Visitor) { v.VisitBox(b) }

// Pyramid is a unit square pyramid (apex at (0, 0.5, 0), base corners at
// (±0.5, -0.5, ±0.5)) in local space.
type Pyramid struct {
	NodeBase
	Material *Material
}

// NewPyramid creates a pyramid leaf with the given material.
func NewPyramid(mat *Material) *Pyramid {
	return &Pyramid{NodeBase: newNodeBase(), Material: mat}
}

// Accept dispatches to the visitor.
func (p *Pyramid) Accept(v Visitor) { v.VisitPyramid(p) }

// TextureBox is a unit cube with an image mapped onto each face. It is
// only visible through the raster path; the ray path skips it.
type TextureBox struct {
	NodeBase
	Material *Material
	Image    image.Image
}

// NewTextureBox creates a textured box leaf.
func NewTextureBox(mat *Material, img image.Image) *TextureBox {
	return &TextureBox{NodeBase: newNodeBase(), Material: mat, Image: img}
}

// Accept dispatches to the visitor.
func (t *TextureBox) Accept(v Visitor) { v.VisitTextureBox(t) }

// FrameSource supplies the current frame of a video texture. The handle
// is opaque to the engine; frames are sampled once per raster pass.
type FrameSource interface {
	Frame() image.Image
}

// VideoTextureBox is a unit cube whose texture is re-sampled from a frame
// source every raster pass. Like TextureBox it is invisible to the ray
// path.
type VideoTextureBox struct {
	NodeBase
	Material *Material
	Source   FrameSource
}

// NewVideoTextureBox creates a video-textured box leaf.
func NewVideoTextureBox(mat *Material, src FrameSource) *VideoTextureBox {
	return &VideoTextureBox{NodeBase: newNodeBase(), Material: mat, Source: src}
}

// Accept dispatches to the visitor.
func (t *VideoTextureBox) Accept(v Visitor) { v.VisitVideoTextureBox(t) }

// Mesh is a triangle mesh leaf. Geometry is in local space; both render
// paths iterate its faces linearly.
type Mesh struct {
	NodeBase
	Geometry *models.Mesh
	Material *Material
}

// NewMesh creates a mesh leaf around loaded geometry. A nil material
// derives one from the mesh's own material data via MaterialFromMesh.
func NewMesh(geom *models.Mesh, mat *Material) *Mesh {
	if mat == nil {
		mat = MaterialFromMesh(geom)
	}
	return &Mesh{NodeBase: newNodeBase(), Geometry: geom, Material: mat}
}

// Accept dispatches to the visitor.
func (m *Mesh) Accept(v Visitor) { v.VisitMesh(m) }

// Light is a point light. Its world position is its local origin pushed
// through the accumulated transform; Color is linear RGB.
type Light struct {
	NodeBase
	Color math3d.Vec3
}

// NewLight creates a point light with the given color.
func NewLight(color math3d.Vec3) *Light {
	return &Light{NodeBase: newNodeBase(), Color: color}
}

// Accept dispatches to the visitor.
func (l *Light) Accept(v Visitor) { v.VisitLight(l) }

// LightSphere is a point light that is also a renderable unit sphere, so
// the light source itself shows up in the frame.
type LightSphere struct {
	NodeBase
	Color    math3d.Vec3
	Material *Material
}

// NewLightSphere creates a renderable light. The material defaults to a
// flat emissive-looking surface built from the light color.
func NewLightSphere(color math3d.Vec3) *LightSphere {
	mat := &Material{
		Name:      "light",
		Ambient:   color,
		Diffuse:   color,
		Specular:  math3d.Zero3(),
		Shininess: 1,
		Alpha:     1,
	}
	return &LightSphere{NodeBase: newNodeBase(), Color: color, Material: mat}
}

// Accept dispatches to the visitor.
func (l *LightSphere) Accept(v Visitor) { v.VisitLightSphere(l) }

// CameraNode places a camera value object in the graph so that ancestor
// transformations move the camera.
type CameraNode struct {
	NodeBase
	Camera *Camera
}

// NewCameraNode wraps a camera value object.
func NewCameraNode(cam *Camera) *CameraNode {
	return &CameraNode{NodeBase: newNodeBase(), Camera: cam}
}

// Accept dispatches to the visitor.
func (c *CameraNode) Accept(v Visitor) { v.VisitCamera(c) }
