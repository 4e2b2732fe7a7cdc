// Package generate renders the Go source of a static shim.
package generate

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"path"
	"sort"
	"strings"

	"golang.org/x/tools/imports"

	astutil "github.com/toejough/shimtest/shimgen/run/0_util"
	detect "github.com/toejough/shimtest/shimgen/run/3_detect"
)

// LibraryPath is the import path generated shims install themselves through.
const LibraryPath = "github.com/toejough/shimtest"

// Request describes one shim to generate.
type Request struct {
	Function detect.Function
	PkgName  string // the package the shim is generated into
	Scope    string
	ShimName string
}

// DefaultShimName returns the shim name used when none is given: the function's name behind a "shim" prefix, so
// it never collides with the function itself.
func DefaultShimName(function string) string {
	if function == "" {
		return "shim"
	}

	return "shim" + strings.ToUpper(function[:1]) + function[1:]
}

// Shim renders a formatted source file declaring the requested shim.
func Shim(req Request) (string, error) {
	if !token.IsIdentifier(req.ShimName) {
		return "", fmt.Errorf("%w: shim name %q", errInvalidName, req.ShimName)
	}

	if req.Function.Local() && req.ShimName == req.Function.Name {
		return "", fmt.Errorf("%w: shim name %q is the function's own name", errInvalidName, req.ShimName)
	}

	data, err := newShimData(req)
	if err != nil {
		return "", err
	}

	templates := NewTemplateRegistry()

	var buf bytes.Buffer

	templates.WriteHeader(&buf, data)
	templates.WriteShim(&buf, data)
	templates.WriteInstall(&buf, data)

	formatted, err := imports.Process(generatedFileName, buf.Bytes(), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  tabWidth,
	})
	if err != nil {
		return "", fmt.Errorf("formatting shim %s: %w\n%s", req.ShimName, err, buf.String())
	}

	return string(formatted), nil
}

// unexported constants.
const (
	generatedFileName = "generated_shim.go"
	libraryAlias      = "_shimtest"
	tabWidth          = 8
)

// unexported variables.
var (
	errInvalidName    = errors.New("invalid name")
	errUnexportedType = errors.New("signature uses an unexported type")
)

// importSpec is one import line. NewGroup starts the non-standard-library block.
type importSpec struct {
	Alias    string
	Path     string
	NewGroup bool
}

// shimData is the template input for one shim.
type shimData struct {
	PkgName     string
	Imports     []importSpec
	ShimName    string
	StateName   string
	Scope       string
	Display     string
	Original    string
	Params      string
	Results     string
	CallArgs    string
	ForwardArgs string
	Conversions string
}

func newShimData(req Request) (shimData, error) {
	function := req.Function
	namer := newNamer(function)

	var typeErr error

	rewrite := astutil.Rewriter{
		Package: namer.alias,
		Type: func(name string) string {
			qualified, err := namer.qualify(name)
			if err != nil && typeErr == nil {
				typeErr = err
			}

			return qualified
		},
	}

	data := shimData{
		PkgName:   req.PkgName,
		Imports:   namer.imports(),
		ShimName:  req.ShimName,
		StateName: "_" + req.ShimName + "Shim",
		Scope:     req.Scope,
		Display:   displayName(function),
		Original:  namer.original(),
	}

	params := make([]string, len(function.Params))
	names := make([]string, len(function.Params))

	for i, param := range function.Params {
		names[i] = param.Name
		prefix := ""

		if param.Variadic {
			prefix = "..."
		}

		params[i] = param.Name + " " + prefix + astutil.TypeString(param.Type, rewrite)
	}

	data.Params = strings.Join(params, ", ")
	data.CallArgs, data.ForwardArgs = callArgs(function, names)
	data.Results, data.Conversions = results(function, rewrite)

	if typeErr != nil {
		return shimData{}, fmt.Errorf("shimming %s: %w", data.Display, typeErr)
	}

	return data, nil
}

// callArgs returns the argument list recorded by the mock and the one forwarded to the original.
func callArgs(function detect.Function, names []string) (string, string) {
	if !function.IsVariadic() {
		return "[]any{" + strings.Join(names, ", ") + "}", strings.Join(names, ", ")
	}

	last := len(names) - 1
	fixed := strings.Join(names[:last], ", ")
	forward := names[last] + "..."

	if last > 0 {
		forward = fixed + ", " + forward
	}

	return fmt.Sprintf("append([]any{%s}, %s.Spread(%s)...)", fixed, libraryAlias, names[last]), forward
}

func displayName(function detect.Function) string {
	if function.Local() {
		return function.Name
	}

	return function.PkgName + "." + function.Name
}

// results returns the result list of the shim's signature and the expressions converting a mock's results to it.
func results(function detect.Function, rewrite astutil.Rewriter) (string, string) {
	if len(function.Results) == 0 {
		return "", ""
	}

	types := make([]string, len(function.Results))
	conversions := make([]string, len(function.Results))

	for i, result := range function.Results {
		types[i] = astutil.TypeString(result, rewrite)
		conversions[i] = fmt.Sprintf("%s.Result[%s](_results, %d)", libraryAlias, types[i], i)
	}

	if len(types) == 1 {
		return " " + types[0], conversions[0]
	}

	return " (" + strings.Join(types, ", ") + ")", strings.Join(conversions, ", ")
}

// namer picks the aliases the generated file imports packages under. Every alias starts with an underscore, so
// none can collide with a parameter name or a type in the shim's package.
type namer struct {
	function    detect.Function
	targetAlias string
}

func newNamer(function detect.Function) namer {
	n := namer{function: function}

	if !function.Local() {
		n.targetAlias = "_" + function.PkgName

		if other, ok := function.TypeImports[function.PkgName]; ok && other != function.ImportPath {
			n.targetAlias = "_" + function.PkgName + "Target"
		}
	}

	return n
}

func (n namer) alias(pkg string) string {
	return "_" + pkg
}

func (n namer) imports() []importSpec {
	specs := []importSpec{{Alias: libraryAlias, Path: LibraryPath}}

	if !n.function.Local() {
		specs = append(specs, importSpec{Alias: n.targetAlias, Path: n.function.ImportPath})
	}

	for pkg, importPath := range n.function.TypeImports {
		specs = append(specs, importSpec{Alias: n.alias(pkg), Path: importPath})
	}

	sort.Slice(specs, func(i, j int) bool {
		if isStandard(specs[i].Path) != isStandard(specs[j].Path) {
			return isStandard(specs[i].Path)
		}

		return specs[i].Path < specs[j].Path
	})

	for i := range specs {
		specs[i].NewGroup = i > 0 && !isStandard(specs[i].Path) && isStandard(specs[i-1].Path)
	}

	return specs
}

// original returns the expression naming the shimmed function.
func (n namer) original() string {
	if n.function.Local() {
		return n.function.Name
	}

	return n.targetAlias + "." + n.function.Name
}

// qualify rewrites a bare type name declared in the function's own package.
func (n namer) qualify(name string) (string, error) {
	if n.function.Local() || astutil.IsPredeclared(name) {
		return name, nil
	}

	if !token.IsExported(name) {
		return name, fmt.Errorf("%w: %s.%s", errUnexportedType, path.Base(n.function.ImportPath), name)
	}

	return n.targetAlias + "." + name, nil
}

// isStandard reports whether importPath looks like a standard library package: no dot in its first element.
func isStandard(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")

	return !strings.Contains(first, ".")
}
