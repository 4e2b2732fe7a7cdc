package run

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// manifest lists several shims for one package, so a single go:generate directive can produce them all:
//
//	scope: example.com/app/clock
//	shims:
//	  - target: time.Now
//	    name: now
//	  - target: time.Since
type manifest struct {
	Scope string     `yaml:"scope"`
	Shims []shimSpec `yaml:"shims"`
}

// shimSpec is one shim to generate.
type shimSpec struct {
	Target string `yaml:"target"`
	Name   string `yaml:"name"`
}

// unexported variables.
var (
	errEmptyManifest = errors.New("manifest lists no shims")
	errMissingTarget = errors.New("manifest entry has no target")
)

func readManifest(path string, fileSys FileSystem) (manifest, error) {
	data, err := fileSys.ReadFile(path)
	if err != nil {
		return manifest{}, fmt.Errorf("reading manifest: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var parsed manifest

	err = decoder.Decode(&parsed)
	if err != nil {
		return manifest{}, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	if len(parsed.Shims) == 0 {
		return manifest{}, fmt.Errorf("%w: %s", errEmptyManifest, path)
	}

	for i, spec := range parsed.Shims {
		if spec.Target == "" {
			return manifest{}, fmt.Errorf("%w: %s entry %d", errMissingTarget, path, i+1)
		}
	}

	return parsed, nil
}
