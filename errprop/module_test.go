package errprop

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsModulePackage(t *testing.T) {
	tests := []struct {
		name       string
		modulePath string
		pkgPath    string
		want       bool
	}{
		{"exact match", "github.com/myorg/myproject", "github.com/myorg/myproject", true},
		{"subpackage", "github.com/myorg/myproject", "github.com/myorg/myproject/cmd/app", true},
		{"external package", "github.com/myorg/myproject", "github.com/neo4j/neo4j-go-driver/v5", false},
		{"stdlib", "github.com/myorg/myproject", "errors", false},
		{"partial match should not match", "github.com/myorg/myproject", "github.com/myorg/myprojectfoo", false},
		{"no module", "", "basic", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isModulePackage(tt.modulePath, tt.pkgPath); got != tt.want {
				t.Errorf("isModulePackage(%q, %q) = %v, want %v", tt.modulePath, tt.pkgPath, got, tt.want)
			}
		})
	}
}

func TestFindModule(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/app\n\ngo 1.25\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "internal", "store")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, dir, err := FindModule(nested)
	if err != nil {
		t.Fatalf("FindModule() error = %v", err)
	}
	if path != "example.com/app" {
		t.Errorf("path = %q, want example.com/app", path)
	}
	if dir != root {
		t.Errorf("root = %q, want %q", dir, root)
	}
}
