package models

import "testing"

func TestLoadGLBMissingFile(t *testing.T) {
	if _, err := LoadGLB("/nonexistent/path.glb"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestGLTFLoaderDefaults(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Fatal("NewGLTFLoader returned nil")
	}
	if !loader.CalculateNormals || !loader.SmoothNormals {
		t.Errorf("loader defaults = normals %v / smooth %v, want both true",
			loader.CalculateNormals, loader.SmoothNormals)
	}
}
