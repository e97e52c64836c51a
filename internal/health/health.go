// Package health checks that a package directory is ready for nlm: a readable
// manifest with a valid version, a resolvable repository, a git checkout
// containing the release tag and valid configuration. The report backs the
// 'nlm doctor' command.
package health

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/groupon/nlm/internal/config"
	"github.com/groupon/nlm/internal/git"
	"github.com/groupon/nlm/internal/manifest"
	"github.com/groupon/nlm/internal/repository"
)

// Check names.
const (
	CheckManifest      = "package.json"
	CheckVersion       = "Version"
	CheckRepository    = "Repository"
	CheckGit           = "Git checkout"
	CheckReleaseTag    = "Release tag"
	CheckConfiguration = "Configuration"
	CheckToken         = "GitHub token"
)

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name    string `json:"name" yaml:"name"`
	Passed  bool   `json:"passed" yaml:"passed"`
	Message string `json:"message" yaml:"message"`
	// Optional checks are reported but never fail the report.
	Optional bool `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks []CheckResult `json:"checks" yaml:"checks"`
	Passed bool          `json:"passed" yaml:"passed"`
}

func (r *HealthReport) add(c CheckResult) {
	r.Checks = append(r.Checks, c)
	if !c.Passed && !c.Optional {
		r.Passed = false
	}
}

// Options configures RunHealthChecks.
type Options struct {
	// UserConfigPath overrides the user config location, mainly for tests.
	UserConfigPath string
}

// RunHealthChecks checks the package in dir. Checks that depend on a failed
// one are skipped.
func RunHealthChecks(dir string, opts Options) *HealthReport {
	report := &HealthReport{Checks: make([]CheckResult, 0, 7), Passed: true}

	m, check := CheckManifestIn(dir)
	report.add(check)
	if m == nil {
		return report
	}

	report.add(CheckVersionOf(m))
	report.add(CheckRepositoryOf(m))

	gitCheck := CheckGitIn(dir)
	report.add(gitCheck)
	if gitCheck.Passed {
		report.add(CheckReleaseTagIn(dir, m))
	}

	cfg, cfgCheck := CheckConfigurationOf(dir, m, opts)
	report.add(cfgCheck)
	if cfg != nil {
		report.add(CheckTokenOf(cfg))
	}

	return report
}

// CheckManifestIn loads the manifest of dir.
func CheckManifestIn(dir string) (*manifest.Manifest, CheckResult) {
	m, err := manifest.Load(dir)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, manifest.ErrNotFound) {
			msg = "not found in " + dir
		}
		return nil, CheckResult{Name: CheckManifest, Message: msg}
	}
	name := m.Name
	if name == "" {
		name = "(unnamed)"
	}
	return m, CheckResult{Name: CheckManifest, Passed: true, Message: name}
}

// CheckVersionOf validates the manifest version.
func CheckVersionOf(m *manifest.Manifest) CheckResult {
	if m.Version == "" {
		return CheckResult{Name: CheckVersion, Passed: true, Message: "never released"}
	}
	if _, err := semver.StrictNewVersion(m.Version); err != nil {
		return CheckResult{Name: CheckVersion, Message: fmt.Sprintf("%q is not a semantic version", m.Version)}
	}
	return CheckResult{Name: CheckVersion, Passed: true, Message: m.Version}
}

// CheckRepositoryOf resolves the manifest repository field.
func CheckRepositoryOf(m *manifest.Manifest) CheckResult {
	info, err := repository.Parse(m.Repository)
	if err != nil {
		return CheckResult{Name: CheckRepository, Message: err.Error()}
	}
	return CheckResult{
		Name:    CheckRepository,
		Passed:  true,
		Message: fmt.Sprintf("%s (API %s)", info.Slug(), info.APIBase),
	}
}

// CheckGitIn checks that dir is inside a git checkout.
func CheckGitIn(dir string) CheckResult {
	root, err := git.RepositoryRoot(dir)
	if err != nil {
		return CheckResult{Name: CheckGit, Message: err.Error()}
	}
	return CheckResult{Name: CheckGit, Passed: true, Message: root}
}

// CheckReleaseTagIn checks that the tag of the manifest version exists.
func CheckReleaseTagIn(dir string, m *manifest.Manifest) CheckResult {
	marker := m.ReleaseMarker()
	if marker == "v0.0.0" {
		return CheckResult{Name: CheckReleaseTag, Passed: true, Message: "never released, the whole history is unreleased"}
	}
	hash, err := git.ResolveRevision(dir, marker)
	if err != nil {
		return CheckResult{
			Name:    CheckReleaseTag,
			Message: fmt.Sprintf("%s not found (fetch tags with: git fetch --tags)", marker),
		}
	}
	return CheckResult{Name: CheckReleaseTag, Passed: true, Message: fmt.Sprintf("%s at %s", marker, shortHash(hash))}
}

// CheckConfigurationOf loads and validates the configuration layers.
func CheckConfigurationOf(dir string, m *manifest.Manifest, opts Options) (*config.Configuration, CheckResult) {
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		Dir:             dir,
		UserConfigPath:  opts.UserConfigPath,
		PackageSettings: m.Settings(),
	})
	if err != nil {
		return nil, CheckResult{Name: CheckConfiguration, Message: err.Error()}
	}
	return cfg, CheckResult{
		Name:    CheckConfiguration,
		Passed:  true,
		Message: fmt.Sprintf("layout %s, hosting timeout %s", cfg.Changelog.Layout, cfg.Timeout()),
	}
}

// CheckTokenOf reports whether pull request lookups are authenticated.
func CheckTokenOf(cfg *config.Configuration) CheckResult {
	if cfg.GitHubToken == "" {
		return CheckResult{
			Name:     CheckToken,
			Optional: true,
			Message:  "not set, pull request lookups are anonymous (set GH_TOKEN or github_token)",
		}
	}
	return CheckResult{Name: CheckToken, Passed: true, Optional: true, Message: "configured"}
}

// FormatReport formats the health report for console output
func FormatReport(report *HealthReport) string {
	var b strings.Builder
	for _, check := range report.Checks {
		mark := "✗"
		switch {
		case check.Passed:
			mark = "✓"
		case check.Optional:
			mark = "○"
		}
		fmt.Fprintf(&b, "%s %s: %s\n", mark, check.Name, check.Message)
	}
	return b.String()
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
