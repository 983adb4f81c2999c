package models

import "testing"

func TestFaceMaterialLookup(t *testing.T) {
	mesh := NewMesh("tri-color")
	mesh.Materials = []Material{
		{Name: "red", BaseColor: [4]float64{1, 0, 0, 1}},
		{Name: "green", BaseColor: [4]float64{0, 1, 0, 1}},
	}
	mesh.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: 0},
		{V: [3]int{3, 4, 5}, Material: 1},
		{V: [3]int{6, 7, 8}, Material: -1}, // Unassigned
	}

	tests := []struct {
		face     int
		wantIdx  int
		wantName string
	}{
		{face: 0, wantIdx: 0, wantName: "red"},
		{face: 1, wantIdx: 1, wantName: "green"},
		{face: 2, wantIdx: -1},
	}
	for _, tc := range tests {
		idx := mesh.GetFaceMaterial(tc.face)
		if idx != tc.wantIdx {
			t.Errorf("face %d material index = %d, want %d", tc.face, idx, tc.wantIdx)
		}
		mat := mesh.GetMaterial(idx)
		if tc.wantIdx < 0 {
			if mat != nil {
				t.Errorf("face %d resolved a material for index -1", tc.face)
			}
			continue
		}
		if mat == nil || mat.Name != tc.wantName {
			t.Errorf("face %d material = %v, want %q", tc.face, mat, tc.wantName)
		}
	}

	if got := mesh.GetMaterial(99); got != nil {
		t.Errorf("out-of-range index resolved %v, want nil", got)
	}
	if got := mesh.MaterialCount(); got != 2 {
		t.Errorf("MaterialCount() = %d, want 2", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	mesh := NewMesh("source")
	mesh.Materials = []Material{
		{Name: "body", BaseColor: [4]float64{0.2, 0.4, 0.6, 1}},
	}
	mesh.Faces = []Face{{V: [3]int{0, 1, 2}, Material: 0}}

	clone := mesh.Clone()
	clone.Materials[0].Name = "repainted"
	clone.Faces[0].Material = -1

	if mesh.Materials[0].Name != "body" {
		t.Error("clone shares material storage with the source mesh")
	}
	if mesh.GetFaceMaterial(0) != 0 {
		t.Error("clone shares face storage with the source mesh")
	}
	if clone.MaterialCount() != mesh.MaterialCount() {
		t.Errorf("clone has %d materials, want %d", clone.MaterialCount(), mesh.MaterialCount())
	}
}
