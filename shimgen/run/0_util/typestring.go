// Package astutil renders dst type expressions back to Go source for generated shims.
package astutil

import (
	"go/types"
	"sort"
	"strings"

	"github.com/dave/dst"
)

// Rewriter rewrites the names a type expression refers to. A nil field leaves those names unchanged.
type Rewriter struct {
	// Type rewrites a bare type name, for example to qualify it with the package it was declared in.
	Type func(name string) string
	// Package rewrites the package name of a qualified type, the "io" in io.Reader.
	Package func(name string) string
}

// IsPredeclared reports whether name is one of Go's predeclared identifiers (int, error, any, ...).
func IsPredeclared(name string) bool {
	return types.Universe.Lookup(name) != nil
}

// PackageRefs returns the package names a type expression refers to through selectors (the "io" in io.Reader),
// sorted and without duplicates.
func PackageRefs(expr dst.Expr) []string {
	seen := make(map[string]bool)

	dst.Inspect(expr, func(node dst.Node) bool {
		sel, ok := node.(*dst.SelectorExpr)
		if !ok {
			return true
		}

		if ident, ok := sel.X.(*dst.Ident); ok {
			seen[ident.Name] = true
		}

		return false
	})

	refs := make([]string, 0, len(seen))
	for name := range seen {
		refs = append(refs, name)
	}

	sort.Strings(refs)

	return refs
}

// TypeNames returns the bare identifiers a type expression uses as type names, excluding selector parts, struct
// field names, and interface method names.
func TypeNames(expr dst.Expr) []string {
	var names []string

	TypeString(expr, Rewriter{Type: func(name string) string {
		names = append(names, name)

		return name
	}})

	return names
}

// TypeString renders a type expression as Go source, with its names passed through rewrite.
func TypeString(expr dst.Expr, rewrite Rewriter) string {
	p := printer{rewrite: rewrite}

	return p.expr(expr)
}

type printer struct {
	rewrite Rewriter
}

//nolint:cyclop // Type-switch dispatcher over the dst type expressions
func (p printer) expr(expr dst.Expr) string {
	switch typed := expr.(type) {
	case nil:
		return ""
	case *dst.Ident:
		return apply(p.rewrite.Type, typed.Name)
	case *dst.BasicLit:
		return typed.Value
	case *dst.SelectorExpr:
		if ident, ok := typed.X.(*dst.Ident); ok {
			return apply(p.rewrite.Package, ident.Name) + "." + typed.Sel.Name
		}

		return p.expr(typed.X) + "." + typed.Sel.Name
	case *dst.StarExpr:
		return "*" + p.expr(typed.X)
	case *dst.ArrayType:
		return "[" + p.expr(typed.Len) + "]" + p.expr(typed.Elt)
	case *dst.MapType:
		return "map[" + p.expr(typed.Key) + "]" + p.expr(typed.Value)
	case *dst.ChanType:
		return p.chanType(typed)
	case *dst.FuncType:
		return "func" + p.signature(typed)
	case *dst.InterfaceType:
		return p.interfaceType(typed)
	case *dst.StructType:
		return p.structType(typed)
	case *dst.Ellipsis:
		return "..." + p.expr(typed.Elt)
	case *dst.IndexExpr:
		return p.expr(typed.X) + "[" + p.expr(typed.Index) + "]"
	case *dst.IndexListExpr:
		return p.expr(typed.X) + "[" + p.list(typed.Indices) + "]"
	case *dst.ParenExpr:
		return "(" + p.expr(typed.X) + ")"
	default:
		return ""
	}
}

func (p printer) chanType(typed *dst.ChanType) string {
	switch typed.Dir {
	case dst.SEND:
		return "chan<- " + p.expr(typed.Value)
	case dst.RECV:
		return "<-chan " + p.expr(typed.Value)
	default:
		return "chan " + p.expr(typed.Value)
	}
}

// fieldTypes renders a field list's types, once per declared name.
func (p printer) fieldTypes(fields *dst.FieldList) []string {
	if fields == nil {
		return nil
	}

	parts := make([]string, 0, len(fields.List))

	for _, field := range fields.List {
		count := max(len(field.Names), 1)

		for range count {
			parts = append(parts, p.expr(field.Type))
		}
	}

	return parts
}

func (p printer) interfaceType(typed *dst.InterfaceType) string {
	if typed.Methods == nil || len(typed.Methods.List) == 0 {
		return "interface{}"
	}

	elems := make([]string, 0, len(typed.Methods.List))

	for _, method := range typed.Methods.List {
		funcType, ok := method.Type.(*dst.FuncType)
		if ok && len(method.Names) > 0 {
			elems = append(elems, method.Names[0].Name+p.signature(funcType))

			continue
		}

		elems = append(elems, p.expr(method.Type))
	}

	return "interface{ " + strings.Join(elems, "; ") + " }"
}

func (p printer) list(exprs []dst.Expr) string {
	parts := make([]string, len(exprs))
	for i, expr := range exprs {
		parts[i] = p.expr(expr)
	}

	return strings.Join(parts, ", ")
}

// signature renders "(params) results" without parameter names.
func (p printer) signature(funcType *dst.FuncType) string {
	out := "(" + strings.Join(p.fieldTypes(funcType.Params), ", ") + ")"

	results := p.fieldTypes(funcType.Results)

	switch len(results) {
	case 0:
		return out
	case 1:
		return out + " " + results[0]
	default:
		return out + " (" + strings.Join(results, ", ") + ")"
	}
}

func (p printer) structType(typed *dst.StructType) string {
	if typed.Fields == nil || len(typed.Fields.List) == 0 {
		return "struct{}"
	}

	fields := make([]string, 0, len(typed.Fields.List))

	for _, field := range typed.Fields.List {
		var builder strings.Builder

		for i, name := range field.Names {
			if i > 0 {
				builder.WriteString(", ")
			}

			builder.WriteString(name.Name)
		}

		if len(field.Names) > 0 {
			builder.WriteString(" ")
		}

		builder.WriteString(p.expr(field.Type))

		if field.Tag != nil {
			builder.WriteString(" " + field.Tag.Value)
		}

		fields = append(fields, builder.String())
	}

	return "struct{ " + strings.Join(fields, "; ") + " }"
}

func apply(rewrite func(string) string, name string) string {
	if rewrite == nil {
		return name
	}

	return rewrite(name)
}
