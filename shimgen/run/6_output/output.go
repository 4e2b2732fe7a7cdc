// Package output writes generated shims to disk, or checks that the files on disk are current.
package output

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/akedrou/textdiff"
	"github.com/charmbracelet/log"
	"github.com/toejough/go-reorder"
)

// FileSystem reads and writes generated files.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// FileName returns the file a shim is written to: generated_<shimName>.go, or generated_<shimName>_test.go when
// the go:generate directive sits in a test file or a test package, so the shim only exists for tests.
func FileName(shimName, pkgName, goFile string) string {
	if strings.HasSuffix(pkgName, "_test") || strings.HasSuffix(goFile, "_test.go") {
		return "generated_" + shimName + "_test.go"
	}

	return "generated_" + shimName + ".go"
}

// WriteGeneratedCode reorders code's declarations and writes it to filename. With check, nothing is written:
// a file that differs from what would be written fails with ErrOutOfDate and a unified diff.
func WriteGeneratedCode(code, filename string, check bool, fileSys FileSystem, logger *log.Logger) error {
	const generatedFilePermissions = 0o600

	reordered, err := reorder.Source(code)
	if err != nil {
		logger.Warn("failed to reorder generated code", "file", filename, "err", err)

		reordered = code
	}

	if check {
		return checkCurrent(reordered, filename, fileSys, logger)
	}

	err = fileSys.WriteFile(filename, []byte(reordered), generatedFilePermissions)
	if err != nil {
		return fmt.Errorf("error writing %s: %w", filename, err)
	}

	logger.Info("written successfully", "file", filename)

	return nil
}

// Exported variables.
var (
	ErrOutOfDate = errors.New("generated file is out of date")
)

func checkCurrent(want, filename string, fileSys FileSystem, logger *log.Logger) error {
	current, err := fileSys.ReadFile(filename)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error reading %s: %w", filename, err)
	}

	if string(current) == want {
		logger.Info("up to date", "file", filename)

		return nil
	}

	diff := textdiff.Unified(filename+" (current)", filename+" (generated)", string(current), want)

	return fmt.Errorf("%w: %s\n%s", ErrOutOfDate, filename, diff)
}
