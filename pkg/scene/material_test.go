package scene

import (
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
)

func TestMaterialFromMesh(t *testing.T) {
	geom := models.NewMesh("hull")
	geom.Materials = []models.Material{{
		Name:      "hull-paint",
		BaseColor: [4]float64{0.2, 0.4, 0.6, 0.5},
		Roughness: 1,
	}}

	mat := MaterialFromMesh(geom)
	if mat.Name != "hull-paint" {
		t.Errorf("name = %q, want the mesh material's name", mat.Name)
	}
	want := math3d.V3(0.2, 0.4, 0.6)
	if mat.Ambient != want || mat.Diffuse != want {
		t.Errorf("ambient/diffuse = %v/%v, want base color %v", mat.Ambient, mat.Diffuse, want)
	}
	if mat.Alpha != 0.5 {
		t.Errorf("alpha = %v, want the base color's 0.5", mat.Alpha)
	}
	if mat.Shininess != 4 { // Fully rough: the dullest highlight
		t.Errorf("shininess = %v, want 4", mat.Shininess)
	}
}

func TestMaterialFromMeshFallsBackToWhite(t *testing.T) {
	if got := MaterialFromMesh(nil); got != MaterialWhite {
		t.Errorf("nil mesh derived %v, want MaterialWhite", got)
	}
	if got := MaterialFromMesh(models.NewMesh("bare")); got != MaterialWhite {
		t.Errorf("material-less mesh derived %v, want MaterialWhite", got)
	}
}

func TestNewMeshDerivesMaterial(t *testing.T) {
	geom := models.NewMesh("tinted")
	geom.Materials = []models.Material{{
		Name:      "tint",
		BaseColor: [4]float64{1, 0, 0, 1},
		Roughness: 0.5,
	}}

	derived := NewMesh(geom, nil)
	if derived.Material == nil || derived.Material.Name != "tint" {
		t.Errorf("material = %v, want one derived from the mesh", derived.Material)
	}

	explicit := NewMesh(geom, MaterialBlue)
	if explicit.Material != MaterialBlue {
		t.Errorf("explicit material was replaced by %v", explicit.Material)
	}
}
