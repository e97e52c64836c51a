// Package manifest reads the package.json describing the package to release.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileName is the manifest file name inside a package directory.
const FileName = "package.json"

// ErrNotFound is returned when the package directory has no manifest.
var ErrNotFound = errors.New("package.json not found")

// Manifest is the subset of package.json the release tooling reads.
type Manifest struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	// Repository is the repository URL or shorthand, taken from either
	// "repository": "<url>" or "repository": {"url": "<url>"}.
	Repository string `json:"repository" yaml:"repository"`
	// Path is the file the manifest was read from.
	Path string `json:"-" yaml:"-"`

	nlm map[string]any
}

// Load reads dir/package.json.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w in %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	m := &Manifest{
		Name:    k.String("name"),
		Version: k.String("version"),
		Path:    path,
	}
	if k.Exists("repository.url") {
		m.Repository = k.String("repository.url")
	} else {
		m.Repository = k.String("repository")
	}
	if k.Exists("nlm") {
		m.nlm = k.Cut("nlm").Raw()
	}

	return m, nil
}

// Settings returns the "nlm" section of the manifest, or nil when absent.
func (m *Manifest) Settings() map[string]any {
	return m.nlm
}

// ReleaseMarker is the tag of the currently published version, the point
// after which commits are unreleased.
func (m *Manifest) ReleaseMarker() string {
	if m.Version == "" {
		return "v0.0.0"
	}
	return "v" + m.Version
}
