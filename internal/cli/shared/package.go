package shared

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/groupon/nlm/internal/config"
	clierrors "github.com/groupon/nlm/internal/errors"
	"github.com/groupon/nlm/internal/manifest"
)

// Package is a package directory with its manifest and effective configuration.
type Package struct {
	Dir      string
	Manifest *manifest.Manifest
	Config   *config.Configuration
}

// LoadPackage reads the manifest of the --dir package and loads its
// configuration. Values from --set flags are applied after overrides, so an
// explicit --set wins over a command's own flags.
func LoadPackage(cmd *cobra.Command, overrides map[string]any) (*Package, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving package directory: %w", err)
	}

	m, err := manifest.Load(abs)
	if err != nil {
		return nil, err
	}

	sets, _ := cmd.Flags().GetStringArray("set")
	merged, err := ParseSetFlags(sets)
	if err != nil {
		return nil, err
	}
	for key, value := range overrides {
		if _, ok := merged[key]; !ok {
			merged[key] = value
		}
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		Dir:             abs,
		PackageSettings: m.Settings(),
		Overrides:       merged,
	})
	if err != nil {
		return nil, err
	}

	return &Package{Dir: abs, Manifest: m, Config: cfg}, nil
}

// ParseSetFlags converts "key=value" pairs into typed configuration overrides.
func ParseSetFlags(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, clierrors.NewArgumentErrorWithUsage(
				fmt.Sprintf("invalid --set value %q", pair),
				"--set <key>=<value>",
				"Run 'nlm config keys' to list the available keys",
			)
		}
		parsed, err := config.ValidateValue(key, value)
		if err != nil {
			return nil, clierrors.NewArgumentError(
				fmt.Sprintf("invalid --set %s: %v", key, err),
				"Run 'nlm config keys' to list the available keys",
			)
		}
		out[key] = parsed.Parsed
	}
	return out, nil
}
