// Package detect finds the function a shim is generated for and describes its parameters and results.
package detect

import (
	"errors"
	"fmt"
	"go/token"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/dave/dst"

	astutil "github.com/toejough/shimtest/shimgen/run/0_util"
	load "github.com/toejough/shimtest/shimgen/run/2_load"
)

// Function describes a package-level function declaration.
type Function struct {
	Name       string
	ImportPath string // "." for the package being generated into
	PkgName    string
	Params     []Param
	Results    []dst.Expr
	// TypeImports maps each package name the signature's types refer to onto its import path.
	TypeImports map[string]string
}

// IsVariadic reports whether the last parameter is a variadic tail.
func (f Function) IsVariadic() bool {
	return len(f.Params) > 0 && f.Params[len(f.Params)-1].Variadic
}

// Local reports whether the function is declared in the package being generated into.
func (f Function) Local() bool {
	return f.ImportPath == "."
}

// PackageLoader loads a package by import path, as seen from srcDir.
type PackageLoader interface {
	Load(importPath, srcDir string) (*load.Package, error)
}

// Param is one declared parameter.
type Param struct {
	Name     string
	Type     dst.Expr // for a variadic tail, the element type
	Variadic bool
	Pointer  bool
}

// Target is a function reference as written on the command line: "Func" or "pkg.Func".
type Target struct {
	Qualifier string
	Name      string
}

// String returns the reference as written.
func (t Target) String() string {
	if t.Qualifier == "" {
		return t.Name
	}

	return t.Qualifier + "." + t.Name
}

// FindFunction looks up the package-level function name in pkg, which was loaded from importPath. Methods and
// generic functions cannot be shimmed, and a function from another package must be exported.
//
//nolint:cyclop // Each rejection is a separate early return
func FindFunction(pkg *load.Package, name, importPath string, loader PackageLoader) (Function, error) {
	for _, file := range pkg.Files {
		for _, decl := range file.Decls {
			funcDecl, ok := decl.(*dst.FuncDecl)
			if !ok || funcDecl.Name.Name != name {
				continue
			}

			if funcDecl.Recv != nil {
				continue
			}

			if funcDecl.Type.TypeParams != nil && len(funcDecl.Type.TypeParams.List) > 0 {
				return Function{}, fmt.Errorf("%w: %s is generic", errUnsupported, name)
			}

			if importPath != "." && !token.IsExported(name) {
				return Function{}, fmt.Errorf("%w: %s.%s", errUnexported, pkg.Name, name)
			}

			return describe(funcDecl, file, pkg, importPath, loader)
		}
	}

	if hasMethod(pkg, name) {
		return Function{}, fmt.Errorf("%w: %s is a method", errUnsupported, name)
	}

	return Function{}, fmt.Errorf("%w: %s in package %s", errFunctionNotFound, name, importPath)
}

// ParseTarget splits a "Func" or "pkg.Func" reference.
func ParseTarget(ref string) (Target, error) {
	qualifier, name, found := strings.Cut(ref, ".")
	if !found {
		qualifier, name = "", ref
	}

	if !token.IsIdentifier(name) || (found && !token.IsIdentifier(qualifier)) {
		return Target{}, fmt.Errorf("%w: %q", errBadTarget, ref)
	}

	return Target{Qualifier: qualifier, Name: name}, nil
}

// ResolveImportPath finds the import path the local package refers to as qualifier: an import with that alias, an
// import whose package has that name, or, failing both, qualifier itself taken as an import path (so "os.Getenv"
// works before os is imported anywhere).
func ResolveImportPath(local *load.Package, qualifier string, loader PackageLoader) (string, error) {
	if qualifier == "" {
		return ".", nil
	}

	path, ok := lookupImport(local.Imports(), qualifier, local.Dir, loader)
	if ok {
		return path, nil
	}

	_, err := loader.Load(qualifier, local.Dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errPackageNotFound, qualifier)
	}

	return qualifier, nil
}

// unexported variables.
var (
	errBadTarget        = errors.New("target must be Func or pkg.Func")
	errFunctionNotFound = errors.New("function not found")
	errPackageNotFound  = errors.New("package not found")
	errUnexported       = errors.New("function is not exported")
	errUnsupported      = errors.New("cannot shim")
	majorVersionSuffix  = regexp.MustCompile(`^v[0-9]+$`)
)

// declaredTypes returns the names of the types declared at package level in pkg.
func declaredTypes(pkg *load.Package) map[string]bool {
	declared := make(map[string]bool)

	for _, file := range pkg.Files {
		for _, decl := range file.Decls {
			genDecl, ok := decl.(*dst.GenDecl)
			if !ok || genDecl.Tok != token.TYPE {
				continue
			}

			for _, spec := range genDecl.Specs {
				typeSpec, ok := spec.(*dst.TypeSpec)
				if ok {
					declared[typeSpec.Name.Name] = true
				}
			}
		}
	}

	return declared
}

// describe builds the Function for a declaration found in file.
func describe(
	funcDecl *dst.FuncDecl, file *dst.File, pkg *load.Package, importPath string, loader PackageLoader,
) (Function, error) {
	function := Function{
		Name:        funcDecl.Name.Name,
		ImportPath:  importPath,
		PkgName:     pkg.Name,
		Params:      params(funcDecl.Type.Params),
		Results:     results(funcDecl.Type.Results),
		TypeImports: make(map[string]string),
	}

	exprs := append([]dst.Expr{}, function.Results...)
	for _, param := range function.Params {
		exprs = append(exprs, param.Type)
	}

	if name, ok := dotImportedType(exprs, file, pkg); ok {
		return Function{}, fmt.Errorf(
			"%w: %s uses %s, which may come from a dot import", errUnsupported, function.Name, name,
		)
	}

	for _, expr := range exprs {
		for _, ref := range astutil.PackageRefs(expr) {
			if _, done := function.TypeImports[ref]; done {
				continue
			}

			path, ok := lookupImport(file.Imports, ref, pkg.Dir, loader)
			if !ok {
				return Function{}, fmt.Errorf("%w: %s, used in the signature of %s", errPackageNotFound, ref, function.Name)
			}

			function.TypeImports[ref] = path
		}
	}

	return function, nil
}

// dotImportedType returns a bare type name in exprs that neither the language nor pkg declares, when file has a dot
// import it could come from. Generated files cannot repeat the dot import, so such a type cannot be named there.
func dotImportedType(exprs []dst.Expr, file *dst.File, pkg *load.Package) (string, bool) {
	if !slices.ContainsFunc(file.Imports, func(spec *dst.ImportSpec) bool {
		return spec.Name != nil && spec.Name.Name == "."
	}) {
		return "", false
	}

	declared := declaredTypes(pkg)

	for _, expr := range exprs {
		for _, name := range astutil.TypeNames(expr) {
			if !astutil.IsPredeclared(name) && !declared[name] {
				return name, true
			}
		}
	}

	return "", false
}

// guessName returns the package name an import path conventionally has: its last element, skipping a major
// version suffix and dropping a "go-" prefix.
func guessName(importPath string) string {
	name := path.Base(importPath)
	if majorVersionSuffix.MatchString(name) && path.Dir(importPath) != "." {
		name = path.Base(path.Dir(importPath))
	}

	return strings.TrimPrefix(name, "go-")
}

func hasMethod(pkg *load.Package, name string) bool {
	for _, file := range pkg.Files {
		for _, decl := range file.Decls {
			funcDecl, ok := decl.(*dst.FuncDecl)
			if ok && funcDecl.Recv != nil && funcDecl.Name.Name == name {
				return true
			}
		}
	}

	return false
}

// lookupImport finds the path of the import that specs refer to as name.
func lookupImport(specs []*dst.ImportSpec, name, srcDir string, loader PackageLoader) (string, bool) {
	var unsure []string

	for _, spec := range specs {
		importPath := strings.Trim(spec.Path.Value, `"`)

		switch {
		case spec.Name != nil && spec.Name.Name == name:
			return importPath, true
		case spec.Name != nil:
			continue
		case guessName(importPath) == name:
			return importPath, true
		default:
			unsure = append(unsure, importPath)
		}
	}

	for _, importPath := range unsure {
		imported, err := loader.Load(importPath, srcDir)
		if err == nil && imported.Name == name {
			return importPath, true
		}
	}

	return "", false
}

// params lists the declared parameters, naming unnamed and blank ones arg1, arg2, ... by position.
func params(fields *dst.FieldList) []Param {
	if fields == nil {
		return nil
	}

	var out []Param

	for _, field := range fields.List {
		names := make([]string, 0, len(field.Names))
		for _, ident := range field.Names {
			names = append(names, ident.Name)
		}

		if len(names) == 0 {
			names = append(names, "")
		}

		fieldType := field.Type
		ellipsis, variadic := fieldType.(*dst.Ellipsis)

		if variadic {
			fieldType = ellipsis.Elt
		}

		_, pointer := fieldType.(*dst.StarExpr)

		for _, name := range names {
			if name == "" || name == "_" {
				name = fmt.Sprintf("arg%d", len(out)+1)
			}

			out = append(out, Param{Name: name, Type: fieldType, Variadic: variadic, Pointer: pointer})
		}
	}

	return out
}

// results lists the result types, once per declared name.
func results(fields *dst.FieldList) []dst.Expr {
	if fields == nil {
		return nil
	}

	var out []dst.Expr

	for _, field := range fields.List {
		for range max(len(field.Names), 1) {
			out = append(out, field.Type)
		}
	}

	return out
}
