package ray

import "github.com/taigrr/prism/pkg/scene"

// PickPass resolves which node sits under a pixel by tracing a single
// primary ray. Build one after the graph settles; rebuild when geometry
// nodes are added or removed.
type PickPass struct {
	root    scene.Node
	tr      *tracer
	visitor hitVisitor
}

// NewPickPass prepares picking over the graph.
func NewPickPass(root scene.Node) *PickPass {
	p := &PickPass{root: root, tr: newTracer(root)}
	p.visitor.tr = p.tr
	return p
}

// Pick traces through pixel (x, y) of a width×height viewport and
// returns the closest node, or nil when the ray escapes. A registered
// click callback on the picked node fires.
func (p *PickPass) Pick(cam *scene.Camera, width, height, x, y int) scene.Node {
	if cam == nil || width <= 0 || height <= 0 {
		return nil
	}
	p.visitor.trace(p.root, pixelRay(cam, width, height, x, y))
	if p.visitor.node == nil {
		return nil
	}
	p.visitor.node.Base().Click()
	return p.visitor.node
}
