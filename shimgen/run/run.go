// Package run implements the main logic for the shimgen tool in a testable way.
package run

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/charmbracelet/log"

	scope "github.com/toejough/shimtest/shimgen/run/1_scope"
	load "github.com/toejough/shimtest/shimgen/run/2_load"
	detect "github.com/toejough/shimtest/shimgen/run/3_detect"
	generate "github.com/toejough/shimtest/shimgen/run/5_generate"
	output "github.com/toejough/shimtest/shimgen/run/6_output"
)

// FileSystem reads and writes files for the generator.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// Run executes the shimgen tool logic. It takes the command-line arguments, an environment variable getter, the
// directory go generate runs in, a FileSystem for file operations, a PackageLoader for parsing packages, and a
// writer for log output. On success it writes one generated_<shim>.go file per requested shim into workDir's
// package; with --check it writes nothing and fails if any file is out of date.
func Run(
	args []string,
	getEnv func(string) string,
	workDir string,
	fileSys FileSystem,
	pkgLoader detect.PackageLoader,
	out io.Writer,
) error {
	parsed, err := parseArgs(args)
	if err != nil {
		return err
	}

	logger := newLogger(out, parsed.Verbose)

	jobs, shimScope, err := plan(parsed, fileSys)
	if err != nil {
		return err
	}

	pkgName := getEnv("GOPACKAGE")
	if pkgName == "" {
		return errNoPackage
	}

	if shimScope == "" {
		shimScope, err = scope.Default(workDir, fileSys)
		if err != nil {
			return fmt.Errorf("determining scope: %w", err)
		}
	}

	logger.Debug("resolved scope", "scope", shimScope, "package", pkgName)

	local, err := pkgLoader.Load(".", workDir)
	if err != nil {
		return fmt.Errorf("loading package in %s: %w", workDir, err)
	}

	gen := generator{
		pkgName:   pkgName,
		goFile:    getEnv("GOFILE"),
		scope:     shimScope,
		local:     local,
		workDir:   workDir,
		check:     parsed.Check,
		fileSys:   fileSys,
		pkgLoader: pkgLoader,
		logger:    logger,
	}

	var stale []error

	for _, job := range jobs {
		err := gen.generate(job)

		switch {
		case errors.Is(err, output.ErrOutOfDate):
			stale = append(stale, err)
		case err != nil:
			return err
		}
	}

	return errors.Join(stale...)
}

// unexported variables.
var (
	errConflictingArgs = errors.New("conflicting arguments")
	errNoPackage       = errors.New("GOPACKAGE is not set: run shimgen from a go:generate directive")
	errNoTarget        = errors.New("no function to shim: pass pkg.Func or --config")
)

// cliArgs defines the command-line arguments for the generator.
type cliArgs struct {
	Target  string `arg:"positional"     help:"function to shim (e.g. os.Getenv, or Func in this package)"`
	Name    string `arg:"--name"         help:"name for the generated shim (defaults to shim<Func>)"`
	Scope   string `arg:"--scope"        help:"scope the shim registers under (defaults to this package's import path)"`
	Check   bool   `arg:"--check"        help:"fail with a diff instead of writing when a generated file is out of date"`
	Config  string `arg:"--config"       help:"YAML manifest listing the shims to generate"`
	Verbose bool   `arg:"-v,--verbose"   help:"log resolution steps"`
}

// generator produces the shims for one go:generate invocation.
type generator struct {
	pkgName   string
	goFile    string
	scope     string
	local     *load.Package
	workDir   string
	check     bool
	fileSys   FileSystem
	pkgLoader detect.PackageLoader
	logger    *log.Logger
}

func (g generator) generate(job shimSpec) error {
	target, err := detect.ParseTarget(job.Target)
	if err != nil {
		return err
	}

	importPath, err := detect.ResolveImportPath(g.local, target.Qualifier, g.pkgLoader)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", target, err)
	}

	g.logger.Debug("resolved target", "target", target, "import", importPath)

	pkg := g.local
	if importPath != "." {
		pkg, err = g.pkgLoader.Load(importPath, g.workDir)
		if err != nil {
			return fmt.Errorf("loading %s: %w", importPath, err)
		}
	}

	function, err := detect.FindFunction(pkg, target.Name, importPath, g.pkgLoader)
	if err != nil {
		return err
	}

	shimName := job.Name
	if shimName == "" {
		shimName = generate.DefaultShimName(function.Name)
	}

	code, err := generate.Shim(generate.Request{
		Function: function,
		PkgName:  g.pkgName,
		Scope:    g.scope,
		ShimName: shimName,
	})
	if err != nil {
		return err
	}

	filename := output.FileName(shimName, g.pkgName, g.goFile)

	return output.WriteGeneratedCode(code, filename, g.check, g.fileSys, g.logger)
}

func newLogger(out io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	return log.NewWithOptions(out, log.Options{
		Level:           level,
		Prefix:          "shimgen",
		ReportTimestamp: false,
	})
}

// parseArgs parses command-line arguments into cliArgs.
func parseArgs(args []string) (cliArgs, error) {
	var parsed cliArgs

	parser, err := arg.NewParser(arg.Config{Program: "shimgen"}, &parsed)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to create argument parser: %w", err)
	}

	var cmdArgs []string
	if len(args) > 1 {
		cmdArgs = args[1:]
	}

	err = parser.Parse(cmdArgs)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to parse arguments: %w", err)
	}

	return parsed, nil
}

// plan turns the arguments into the shims to generate and the scope given for them, if any.
func plan(parsed cliArgs, fileSys FileSystem) ([]shimSpec, string, error) {
	switch {
	case parsed.Config == "" && parsed.Target == "":
		return nil, "", errNoTarget
	case parsed.Config == "":
		return []shimSpec{{Target: parsed.Target, Name: parsed.Name}}, parsed.Scope, nil
	case parsed.Target != "" || parsed.Name != "":
		return nil, "", fmt.Errorf("%w: --config lists its own targets and names", errConflictingArgs)
	}

	manifest, err := readManifest(parsed.Config, fileSys)
	if err != nil {
		return nil, "", err
	}

	shimScope := manifest.Scope
	if parsed.Scope != "" {
		shimScope = parsed.Scope
	}

	return manifest.Shims, shimScope, nil
}
