// Package config provides hierarchical configuration management for nlm using koanf.
// Configuration is loaded with priority: flags > environment variables (NLM_*) >
// package.json "nlm" section > project config (.nlm.yml) > user config
// (~/.config/nlm/config.yml) > defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/groupon/nlm/internal/changelog"
)

// Configuration represents the nlm settings of one package.
type Configuration struct {
	// AcceptInvalidCommits turns unclassifiable commits into a major release
	// instead of an error.
	AcceptInvalidCommits bool `koanf:"accept_invalid_commits" yaml:"accept_invalid_commits"`

	// GitHubToken authenticates pull request lookups. Falls back to the
	// GH_TOKEN and GITHUB_TOKEN environment variables.
	GitHubToken string `koanf:"github_token" yaml:"-"`

	// HostingTimeout bounds each hosting request, e.g. "30s".
	HostingTimeout string `koanf:"hosting_timeout" yaml:"hosting_timeout"`

	Changelog ChangelogConfig `koanf:"changelog" yaml:"changelog"`
	Emoji     EmojiConfig     `koanf:"emoji" yaml:"emoji"`
}

// ChangelogConfig holds the changelog rendering settings.
type ChangelogConfig struct {
	Layout  string   `koanf:"layout" yaml:"layout"`
	Verbose bool     `koanf:"verbose" yaml:"verbose"`
	Omit    []string `koanf:"omit" yaml:"omit"`
}

// EmojiConfig holds the emoji decoration settings.
type EmojiConfig struct {
	Skip bool              `koanf:"skip" yaml:"skip"`
	Set  map[string]string `koanf:"set" yaml:"set"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// Dir is the package directory; the project config is read from it.
	Dir string
	// ProjectConfigPath overrides the project config path (default: <Dir>/.nlm.yml)
	ProjectConfigPath string
	// UserConfigPath overrides the user config path (default: XDG location)
	UserConfigPath string
	// PackageSettings is the "nlm" section of the package manifest. Keys may
	// be camelCase.
	PackageSettings map[string]any
	// Overrides are applied last, typically from command-line flags.
	Overrides map[string]any
}

// Load loads the configuration of the package in dir.
func Load(dir string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{Dir: dir})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	loadDefaults(k)

	if err := loadUserConfig(k, opts.UserConfigPath); err != nil {
		return nil, err
	}

	projectPath := opts.ProjectConfigPath
	if projectPath == "" {
		projectPath = ProjectConfigPath(opts.Dir)
	}
	if fileExists(projectPath) {
		if err := loadYAMLConfig(k, projectPath, "project"); err != nil {
			return nil, err
		}
	}

	loadPackageSettings(k, "", opts.PackageSettings)

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	for key, value := range opts.Overrides {
		k.Set(key, value)
	}

	return finalizeConfig(k)
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadUserConfig loads the user-level YAML config if it exists.
func loadUserConfig(k *koanf.Koanf, path string) error {
	if path == "" {
		path, _ = UserConfigPath()
	}
	if !fileExists(path) {
		return nil
	}
	return loadYAMLConfig(k, path, "user")
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadPackageSettings copies the manifest's nlm section into k, converting
// camelCase keys such as acceptInvalidCommits to their snake_case form.
func loadPackageSettings(k *koanf.Koanf, prefix string, settings map[string]any) {
	for key, value := range settings {
		path := prefix + toSnakeCase(key)
		if nested, ok := value.(map[string]any); ok {
			loadPackageSettings(k, path+".", nested)
			continue
		}
		k.Set(path, value)
	}
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider("NLM_", ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	// Lists arrive from the environment as comma-separated strings.
	if s, ok := k.Get("changelog.omit").(string); ok {
		k.Set("changelog.omit", splitList(s))
	}
	return nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.GitHubToken == "" {
		cfg.GitHubToken = firstEnv("GH_TOKEN", "GITHUB_TOKEN")
	}

	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// envTransform converts environment variable names to config keys
// Example: NLM_CHANGELOG_LAYOUT -> changelog.layout, NLM_EMOJI_SET_FEAT -> emoji.set.feat
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, "NLM_"))
	if rest, ok := strings.CutPrefix(key, "emoji_set_"); ok {
		return emojiSetPrefix + rest
	}
	for _, section := range []string{"changelog", "emoji"} {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}

// Timeout returns the parsed hosting timeout.
func (c *Configuration) Timeout() time.Duration {
	d, err := time.ParseDuration(c.HostingTimeout)
	if err != nil {
		return DefaultHostingTimeout
	}
	return d
}

// ChangelogOptions converts the changelog and emoji settings into renderer options.
func (c *Configuration) ChangelogOptions() changelog.Options {
	layout, err := changelog.ParseLayout(c.Changelog.Layout)
	if err != nil {
		layout = changelog.LayoutCategories
	}
	return changelog.Options{
		Emoji: changelog.EmojiOptions{
			Skip: c.Emoji.Skip,
			Set:  c.Emoji.Set,
		},
		Verbose: c.Changelog.Verbose,
		Omit:    c.Changelog.Omit,
		Layout:  layout,
	}
}
