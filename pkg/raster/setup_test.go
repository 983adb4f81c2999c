package raster

import (
	"math"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

func TestSphereVerticesOnUnitSphere(t *testing.T) {
	verts := sphereVertices()
	want := 3 * (2*sphereStacks*sphereSectors - 2*sphereSectors)
	if len(verts) != want {
		t.Fatalf("got %d vertices, want %d", len(verts), want)
	}
	for i, v := range verts {
		if math.Abs(v.Position.Len()-1) > 1e-12 {
			t.Fatalf("vertex %d at radius %v, want 1", i, v.Position.Len())
		}
		if math.Abs(v.Normal.Len()-1) > 1e-12 {
			t.Fatalf("vertex %d normal length %v, want 1", i, v.Normal.Len())
		}
	}
}

func TestBoxVertices(t *testing.T) {
	verts := boxVertices()
	if len(verts) != 36 {
		t.Fatalf("got %d vertices, want 36", len(verts))
	}
	for i, v := range verts {
		for _, coord := range []float64{v.Position.X, v.Position.Y, v.Position.Z} {
			if math.Abs(coord) != 0.5 {
				t.Fatalf("vertex %d coordinate %v, want ±0.5", i, coord)
			}
		}
		// Face normal must point away from the face plane the vertex is on.
		if v.Normal.Dot(v.Position) <= 0 {
			t.Fatalf("vertex %d normal %v points inward", i, v.Normal)
		}
	}
}

func TestPyramidVertices(t *testing.T) {
	verts := pyramidVertices()
	if len(verts) != 18 { // 4 sides + 2 base triangles
		t.Fatalf("got %d vertices, want 18", len(verts))
	}
	for i, v := range verts {
		if math.Abs(v.Normal.Len()-1) > 1e-12 {
			t.Fatalf("vertex %d normal length %v, want 1", i, v.Normal.Len())
		}
	}
}

func TestTriangleWindingSurvivesCull(t *testing.T) {
	// Every emitted triangle of a convex solid must have its right-hand
	// normal pointing inward, the convention the screen-space cull keeps.
	for _, tc := range []struct {
		name  string
		verts []Vertex
	}{
		{"sphere", sphereVertices()},
		{"box", boxVertices()},
		{"pyramid", pyramidVertices()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i+2 < len(tc.verts); i += 3 {
				a, b, c := tc.verts[i], tc.verts[i+1], tc.verts[i+2]
				rh := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
				centroid := a.Position.Add(b.Position).Add(c.Position).Scale(1.0 / 3)
				if rh.Dot(centroid) > 1e-12 {
					t.Fatalf("triangle %d wound outward", i/3)
				}
			}
		})
	}
}

func TestSetupPassBuildsRenderables(t *testing.T) {
	root := scene.NewGroup(nil)
	sphere := scene.NewSphere(scene.MaterialRed)
	box := scene.NewBox(scene.MaterialGreen)
	pyramid := scene.NewPyramid(scene.MaterialBlue)
	lightSphere := scene.NewLightSphere(math3d.V3(1, 1, 0))
	light := scene.NewLight(math3d.V3(1, 1, 1))
	cam := scene.NewCameraNode(scene.NewCamera())
	root.Add(sphere, box, pyramid, lightSphere, light, cam)

	rz := NewRasterizer(render.NewFramebuffer(8, 8))
	renderables := NewSetupPass(rz).Run(root)

	for _, n := range []scene.Node{sphere, box, pyramid, lightSphere} {
		if _, ok := renderables[n]; !ok {
			t.Errorf("no renderable for %T", n)
		}
	}
	for _, n := range []scene.Node{light, cam} {
		if _, ok := renderables[n]; ok {
			t.Errorf("unexpected renderable for %T", n)
		}
	}
}

func TestMeshFaceMaterialsTintVertices(t *testing.T) {
	geom := models.NewMesh("two-tone")
	for i := 0; i < 6; i++ {
		geom.Vertices = append(geom.Vertices, models.MeshVertex{
			Position: math3d.V3(float64(i), 0, 0),
			Normal:   math3d.V3(0, 0, 1),
		})
	}
	geom.Faces = []models.Face{
		{V: [3]int{0, 1, 2}, Material: 0},
		{V: [3]int{3, 4, 5}, Material: 1},
	}
	geom.Materials = []models.Material{
		{Name: "red", BaseColor: [4]float64{1, 0, 0, 1}},
		{Name: "blue", BaseColor: [4]float64{0, 0, 1, 1}},
	}

	root := scene.NewGroup(nil)
	node := scene.NewMesh(geom, scene.MaterialWhite)
	root.Add(node)

	rz := NewRasterizer(render.NewFramebuffer(8, 8))
	renderables := NewSetupPass(rz).Run(root)

	g, ok := renderables[node].(*geometry)
	if !ok {
		t.Fatalf("mesh renderable is %T, want geometry", renderables[node])
	}
	if len(g.verts) != 6 {
		t.Fatalf("got %d vertices, want 6", len(g.verts))
	}
	for i := 0; i < 3; i++ {
		if g.verts[i].Color != math3d.V3(1, 0, 0) {
			t.Errorf("vertex %d color = %v, want the first face material's red", i, g.verts[i].Color)
		}
	}
	for i := 3; i < 6; i++ {
		if g.verts[i].Color != math3d.V3(0, 0, 1) {
			t.Errorf("vertex %d color = %v, want the second face material's blue", i, g.verts[i].Color)
		}
	}
}

func TestApplyVertexColors(t *testing.T) {
	mat := scene.NewMaterial("striped", math3d.V3(1, 1, 1), 8)
	mat.VertexColors = []math3d.Vec3{
		math3d.V3(1, 0, 0),
		math3d.V3(0, 1, 0),
	}
	verts := applyVertexColors(boxVertices(), mat)
	for i, v := range verts {
		want := mat.VertexColors[i%2]
		if v.Color != want {
			t.Fatalf("vertex %d color = %v, want %v", i, v.Color, want)
		}
	}
}
