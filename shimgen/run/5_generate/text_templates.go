package generate

import (
	"bytes"
	"fmt"
	"text/template"
)

// TemplateRegistry holds the parsed templates a shim file is built from.
// Create a registry using NewTemplateRegistry() to initialize all templates.
type TemplateRegistry struct {
	headerTmpl  *template.Template
	shimTmpl    *template.Template
	installTmpl *template.Template
}

// NewTemplateRegistry creates and initializes a new template registry with all templates parsed.
// Templates are hardcoded constants, so parsing cannot fail at runtime.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		headerTmpl:  parseTemplate("header", tmplHeader),
		shimTmpl:    parseTemplate("shim", tmplShim),
		installTmpl: parseTemplate("install", tmplInstall),
	}
}

// WriteHeader writes the generated-code notice, package clause, and imports.
func (r *TemplateRegistry) WriteHeader(buf *bytes.Buffer, data any) {
	execute(r.headerTmpl, buf, data)
}

// WriteInstall writes the package-level variable that installs the shim.
func (r *TemplateRegistry) WriteInstall(buf *bytes.Buffer, data any) {
	execute(r.installTmpl, buf, data)
}

// WriteShim writes the shim function.
func (r *TemplateRegistry) WriteShim(buf *bytes.Buffer, data any) {
	execute(r.shimTmpl, buf, data)
}

// unexported constants.
const (
	tmplHeader = `// Code generated by shimgen. DO NOT EDIT.

package {{.PkgName}}

import (
{{- range .Imports}}
{{- if .NewGroup}}
{{end}}
	{{.Alias}} "{{.Path}}"
{{- end}}
)
`
	tmplInstall = `
var {{.StateName}} = _shimtest.Install({{printf "%q" .Scope}}, {{printf "%q" .ShimName}}, {{.Original}})
`
	tmplShim = `
// {{.ShimName}} calls {{.Display}}, or the mock enabled for {{.Scope}}.{{.ShimName}}.
func {{.ShimName}}({{.Params}}){{.Results}} {
	if _mock := {{.StateName}}.Active(); _mock != nil {
		{{if .Conversions}}_results := {{end}}_mock.Call({{.CallArgs}})

		return{{if .Conversions}} {{.Conversions}}{{end}}
	}

	{{if .Conversions}}return {{end}}{{.Original}}({{.ForwardArgs}})
}
`
)

// execute runs a template that cannot fail on well-formed data; a failure is a programming error.
func execute(tmpl *template.Template, buf *bytes.Buffer, data any) {
	err := tmpl.Execute(buf, data)
	if err != nil {
		panic(fmt.Sprintf("failed to execute %s template: %v", tmpl.Name(), err))
	}
}

// parseTemplate is a helper function that parses a template using template.Must().
func parseTemplate(name, content string) *template.Template {
	return template.Must(template.New(name).Parse(content))
}
