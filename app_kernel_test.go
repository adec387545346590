package main

import "testing"

func TestNewAppWithKernelSelectsBackend(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"", false},
		{"sdfx", false},
		{"meshcsg", false},
		{"manifold", true}, // errors without the manifold build tag
		{"nonsense", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := NewAppWithKernel(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewAppWithKernel(%q) expected an error, got nil", tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewAppWithKernel(%q) unexpected error: %v", tt.name, err)
			}
			if app == nil || app.kernel == nil {
				t.Errorf("NewAppWithKernel(%q) returned an App with no kernel", tt.name)
			}
		})
	}
}

func TestNewAppWithKernelMeshcsgEvaluatesEmptySource(t *testing.T) {
	app, err := NewAppWithKernel("meshcsg")
	if err != nil {
		t.Fatalf("NewAppWithKernel(meshcsg) error: %v", err)
	}

	result := app.Evaluate("")
	if len(result.Meshes) != 0 || len(result.Errors) != 0 {
		t.Errorf("Evaluate(\"\") with meshcsg backend = %+v, want no meshes or errors", result)
	}
}
