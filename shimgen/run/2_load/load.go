// Package load parses the Go source of a package into dst syntax trees, without type checking.
package load

import (
	"errors"
	"fmt"
	"go/build"
	"go/token"
	"path/filepath"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
)

// Package is a parsed package.
type Package struct {
	Dir   string
	Name  string
	Files []*dst.File
	Fset  *token.FileSet
}

// Imports returns every import spec in the package's files.
func (p *Package) Imports() []*dst.ImportSpec {
	var specs []*dst.ImportSpec

	for _, file := range p.Files {
		specs = append(specs, file.Imports...)
	}

	return specs
}

// ImportPath resolves importPath, as seen from srcDir, to a package directory. "." is srcDir itself.
func ImportPath(importPath, srcDir string) (string, error) {
	if importPath == "." {
		return srcDir, nil
	}

	pkg, err := build.Import(importPath, srcDir, build.FindOnly)
	if err != nil {
		return "", fmt.Errorf("failed to find package %q: %w", importPath, err)
	}

	return pkg.Dir, nil
}

// PackageDST resolves importPath from srcDir and parses the package there. Test files are parsed only for the
// package in srcDir itself, since shims for it may live in test files.
func PackageDST(importPath, srcDir string) (*Package, error) {
	dir, err := ImportPath(importPath, srcDir)
	if err != nil {
		return nil, err
	}

	return ParseDir(dir, importPath == ".")
}

// ParseDir parses the package in dir, honoring build constraints for the current platform. With includeTests,
// the package's test files and its external test package are parsed too.
func ParseDir(dir string, includeTests bool) (*Package, error) {
	buildPkg, err := build.ImportDir(dir, 0)
	if err != nil && buildPkg == nil {
		return nil, fmt.Errorf("failed to read package in %s: %w", dir, err)
	}

	names := buildPkg.GoFiles
	if includeTests {
		names = append(append(append([]string{}, names...), buildPkg.TestGoFiles...), buildPkg.XTestGoFiles...)
	}

	fset := token.NewFileSet()
	dec := decorator.NewDecorator(fset)
	pkg := &Package{Dir: dir, Name: buildPkg.Name, Fset: fset}

	for _, name := range names {
		file, err := dec.ParseFile(filepath.Join(dir, name), nil, 0)
		if err != nil {
			continue
		}

		pkg.Files = append(pkg.Files, file)
	}

	if len(pkg.Files) == 0 {
		return nil, fmt.Errorf("%w: no parseable .go files in %s", errNoPackagesFound, dir)
	}

	return pkg, nil
}

// unexported variables.
var (
	errNoPackagesFound = errors.New("no packages found")
)
