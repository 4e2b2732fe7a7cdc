// shimgen generates static shims for package-level functions.
// To use it, install it with `go install github.com/toejough/shimtest/shimgen@latest`
// and add a `//go:generate shimgen <pkg.Func>` comment to the package whose calls should be interceptable. The
// generated function has the original's signature and forwards to it unless a test enables a shimtest mock for it.
// By default the shim is named shim<Func>; `--name` picks another name, `--scope` another scope, and `--config`
// reads several targets from a YAML manifest. `--check` reports out-of-date files instead of writing them.
package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/toejough/shimtest/shimgen/run"
	load "github.com/toejough/shimtest/shimgen/run/2_load"
)

// main is the entry point of the shimgen tool.
func main() {
	if os.Args == nil {
		return
	}

	workDir, err := os.Getwd()
	if err == nil {
		err = run.Run(os.Args, os.Getenv, workDir, &realFileSystem{}, newRealPackageLoader(), os.Stderr)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// realFileSystem implements FileSystem using os package.
type realFileSystem struct{}

// ReadFile reads the file named by name and returns the contents.
func (fs *realFileSystem) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", name, err)
	}

	return data, nil
}

// WriteFile writes data to the file named by name.
func (fs *realFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	err := os.WriteFile(name, data, perm)
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", name, err)
	}

	return nil
}

// realPackageLoader implements PackageLoader with direct DST parsing, parsing each package at most once per run.
type realPackageLoader struct {
	mu       sync.Mutex
	packages map[string]loadResult
}

type loadResult struct {
	pkg *load.Package
	err error
}

// Load loads a package by import path, as seen from srcDir.
func (pl *realPackageLoader) Load(importPath, srcDir string) (*load.Package, error) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	key := srcDir + "\x00" + importPath

	result, ok := pl.packages[key]
	if !ok {
		result.pkg, result.err = load.PackageDST(importPath, srcDir)
		pl.packages[key] = result
	}

	if result.err != nil {
		return nil, fmt.Errorf("failed to load package %q: %w", importPath, result.err)
	}

	return result.pkg, nil
}

func newRealPackageLoader() *realPackageLoader {
	return &realPackageLoader{packages: make(map[string]loadResult)}
}
