// Package scope works out the default scope for shims generated in a directory: the import path of the package
// that lives there.
package scope

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// FileReader reads a file by name.
type FileReader interface {
	ReadFile(name string) ([]byte, error)
}

// Default returns the import path of the package in dir: the module path from the nearest go.mod at or above dir,
// joined with dir's path relative to the module root.
func Default(dir string, fileReader FileReader) (string, error) {
	root, data, err := findModule(dir, fileReader)
	if err != nil {
		return "", err
	}

	modulePath := modfile.ModulePath(data)
	if modulePath == "" {
		return "", fmt.Errorf("%w: %s", errNoModulePath, filepath.Join(root, goModName))
	}

	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return "", fmt.Errorf("relating %s to module root %s: %w", dir, root, err)
	}

	if rel == "." {
		return modulePath, nil
	}

	return modulePath + "/" + filepath.ToSlash(rel), nil
}

// findModule walks up from dir to the first directory holding a go.mod and returns it with the file's contents.
func findModule(dir string, fileReader FileReader) (string, []byte, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	for {
		data, err := fileReader.ReadFile(filepath.Join(current, goModName))
		if err == nil {
			return current, data, nil
		}

		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %s: %w", filepath.Join(current, goModName), err)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", nil, fmt.Errorf("%w: no %s at or above %s", errNoModule, goModName, dir)
		}

		current = parent
	}
}

// unexported constants.
const (
	goModName = "go.mod"
)

// unexported variables.
var (
	errNoModule     = errors.New("not in a module")
	errNoModulePath = errors.New("go.mod has no module directive")
)
