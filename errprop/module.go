package errprop

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// FindModule walks up from dir to the nearest go.mod and returns the module
// path it declares together with the module root directory.
func FindModule(dir string) (path, root string, err error) {
	dir, err = filepath.Abs(dir)
	if err != nil {
		return "", "", err
	}
	for {
		goModPath := filepath.Join(dir, "go.mod")
		if data, err := os.ReadFile(goModPath); err == nil {
			modFile, err := modfile.Parse(goModPath, data, nil)
			if err != nil {
				return "", "", fmt.Errorf("cannot parse %s: %w", goModPath, err)
			}
			if modFile.Module == nil {
				return "", "", fmt.Errorf("module directive not found in %s", goModPath)
			}
			return modFile.Module.Mod.Path, dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", fmt.Errorf("no go.mod found above %s", dir)
		}
		dir = parent
	}
}

// isModulePackage reports whether pkgPath belongs to the module at modulePath.
// An empty module path accepts every package.
func isModulePackage(modulePath, pkgPath string) bool {
	if modulePath == "" {
		return true
	}
	return pkgPath == modulePath || strings.HasPrefix(pkgPath, modulePath+"/")
}
