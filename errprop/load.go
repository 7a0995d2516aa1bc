package errprop

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// LoadConfig describes which packages make up the analysed program.
type LoadConfig struct {
	Dir        string
	Patterns   []string // defaults to ./...
	ModulePath string   // detected from go.mod when empty
	Tests      bool
	Options    Options
}

// LoadMode is the go/packages mode needed to build a Program.
const LoadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedImports | packages.NeedDeps | packages.NeedTypes |
	packages.NeedSyntax | packages.NeedTypesInfo | packages.NeedTypesSizes

// Load type-checks the packages matched by cfg, builds their SSA form and
// returns the Program rooted at the module's packages.
func Load(ctx context.Context, cfg LoadConfig) (*Program, error) {
	modulePath := cfg.ModulePath
	if modulePath == "" {
		path, _, err := FindModule(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("cannot detect Go module: %w", err)
		}
		modulePath = path
	}
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	pkgs, err := packages.Load(&packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     cfg.Dir,
		Tests:   cfg.Tests,
	}, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if n := packages.PrintErrors(pkgs); n > 0 {
		return nil, fmt.Errorf("failed to load packages: %d errors", n)
	}

	prog, _ := ssautil.AllPackages(pkgs, ssa.InstantiateGenerics)
	prog.Build()

	// With Tests set a package is loaded twice; keep the variant with the most files.
	byPath := make(map[string]*packages.Package)
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		if pkg.Types == nil || len(pkg.Syntax) == 0 || !isModulePackage(modulePath, pkg.PkgPath) {
			return
		}
		if prev, ok := byPath[pkg.PkgPath]; !ok || len(pkg.Syntax) > len(prev.Syntax) {
			byPath[pkg.PkgPath] = pkg
		}
	})
	local := make([]*Package, 0, len(byPath))
	for _, pkg := range byPath {
		local = append(local, &Package{Types: pkg.Types, Files: pkg.Syntax, Info: pkg.TypesInfo})
	}
	sort.Slice(local, func(i, j int) bool {
		return local[i].Types.Path() < local[j].Types.Path()
	})
	return NewProgram(modulePath, prog.Fset, prog, local, cfg.Options), nil
}
