package corpus

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestCorpusDoesNotImportResolver keeps the storage layer free of the root
// package so the resolver can depend on it.
func TestCorpusDoesNotImportResolver(t *testing.T) {
	const module = "github.com/goliatone/go-openadas"

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports | packages.NeedDeps}
	pkgs, err := packages.Load(cfg, module+"/internal/corpus")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var violations []string
	packages.Visit(pkgs, func(pkg *packages.Package) bool {
		for path := range pkg.Imports {
			if path == module || strings.HasPrefix(path, module+"/pkg/") {
				violations = append(violations, pkg.PkgPath+": "+path)
			}
		}
		return true
	}, nil)

	if len(violations) > 0 {
		sort.Strings(violations)
		for _, v := range violations {
			t.Errorf("forbidden import: %s", v)
		}
		t.Fatalf("found %d forbidden imports", len(violations))
	}
}
