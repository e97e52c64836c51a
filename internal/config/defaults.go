package config

import "time"

// DefaultHostingTimeout bounds every request to the hosting service.
const DefaultHostingTimeout = 30 * time.Second

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# nlm configuration
# See 'nlm config keys' for all options

# Release settings
accept_invalid_commits: false         # Treat unclassifiable commits as a major release

# Hosting settings
github_token: ""                      # Token for pull request lookups (or GH_TOKEN / GITHUB_TOKEN)
hosting_timeout: 30s                  # Timeout of each hosting request

# Changelog settings
changelog:
  layout: categories                  # categories | flat
  verbose: false                      # List member commits under pull requests
  omit: []                            # Category keys or commit types to leave out

emoji:
  skip: false                         # Render without emoji
  set: {}                             # Overrides by category key or commit type, e.g. feat: "✨"
`
}

// GetDefaults returns the default configuration values as a map for koanf.
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"accept_invalid_commits": false,
		"github_token":           "",
		"hosting_timeout":        DefaultHostingTimeout.String(),
		"changelog.layout":       "categories",
		"changelog.verbose":      false,
		"changelog.omit":         []string{},
		"emoji.skip":             false,
	}
}
