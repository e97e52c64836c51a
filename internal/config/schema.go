package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/groupon/nlm/internal/changelog"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeBool ConfigValueType = iota
	TypeDuration
	TypeString
	TypeEnum
	TypeList
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeDuration:
		return "duration"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	case TypeList:
		return "list"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type and validation rules.
type ConfigKeySchema struct {
	Path          string          // Dotted key path (e.g., "changelog.layout")
	Type          ConfigValueType // Expected value type for validation
	AllowedValues []string        // Valid values for enum types (empty for non-enums)
	Description   string          // Human-readable description for help text
	Default       interface{}     // Default value
}

// emojiSetPrefix is the path prefix of per-key emoji overrides.
const emojiSetPrefix = "emoji.set."

// KnownKeys is the registry of all known configuration keys with their schemas.
// Emoji overrides ("emoji.set.<key>") are validated separately.
var KnownKeys = map[string]ConfigKeySchema{
	"accept_invalid_commits": {
		Path:        "accept_invalid_commits",
		Type:        TypeBool,
		Description: "Treat unclassifiable commits as a major release instead of failing",
		Default:     false,
	},
	"github_token": {
		Path:        "github_token",
		Type:        TypeString,
		Description: "Token for pull request lookups (falls back to GH_TOKEN, GITHUB_TOKEN)",
		Default:     "",
	},
	"hosting_timeout": {
		Path:        "hosting_timeout",
		Type:        TypeDuration,
		Description: "Timeout of each request to the hosting service",
		Default:     DefaultHostingTimeout.String(),
	},
	"changelog.layout": {
		Path:          "changelog.layout",
		Type:          TypeEnum,
		AllowedValues: layoutNames(),
		Description:   "Changelog document shape",
		Default:       string(changelog.LayoutCategories),
	},
	"changelog.verbose": {
		Path:        "changelog.verbose",
		Type:        TypeBool,
		Description: "List member commits under every pull request",
		Default:     false,
	},
	"changelog.omit": {
		Path:        "changelog.omit",
		Type:        TypeList,
		Description: "Comma-separated category keys or commit types to leave out",
		Default:     []string{},
	},
	"emoji.skip": {
		Path:        "emoji.skip",
		Type:        TypeBool,
		Description: "Render the changelog without emoji",
		Default:     false,
	},
}

func layoutNames() []string {
	var names []string
	for _, l := range changelog.Layouts() {
		names = append(names, string(l))
	}
	return names
}

// SortedKeys returns the known key paths in alphabetical order.
func SortedKeys() []string {
	keys := make([]string, 0, len(KnownKeys))
	for k := range KnownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	if key, ok := strings.CutPrefix(path, emojiSetPrefix); ok && changelog.IsEmojiKey(key) {
		return ConfigKeySchema{Path: path, Type: TypeString, Description: "Emoji override"}, nil
	}
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// ParsedValue represents a configuration value after type inference and validation.
type ParsedValue struct {
	Raw    string      // Original string input from user
	Parsed interface{} // Value converted to correct type
	Type   ConfigValueType
}

// ValidateValue validates a value against the schema for a given key.
// Returns the parsed value or an error with details about what's wrong.
func ValidateValue(key, value string) (ParsedValue, error) {
	schema, err := GetKeySchema(key)
	if err != nil {
		return ParsedValue{}, err
	}
	return validateAgainstSchema(schema, value)
}

// validateAgainstSchema validates a value against a specific schema.
func validateAgainstSchema(schema ConfigKeySchema, value string) (ParsedValue, error) {
	switch schema.Type {
	case TypeBool:
		return parseBoolValue(value)
	case TypeDuration:
		return parseDurationValue(value)
	case TypeEnum:
		return parseEnumValue(schema, value)
	case TypeList:
		return ParsedValue{Raw: value, Parsed: splitList(value), Type: TypeList}, nil
	case TypeString:
		return ParsedValue{Raw: value, Parsed: value, Type: TypeString}, nil
	default:
		return ParsedValue{}, fmt.Errorf("unsupported type: %v", schema.Type)
	}
}

// parseBoolValue parses and validates a boolean value.
func parseBoolValue(value string) (ParsedValue, error) {
	switch strings.ToLower(value) {
	case "true":
		return ParsedValue{Raw: value, Parsed: true, Type: TypeBool}, nil
	case "false":
		return ParsedValue{Raw: value, Parsed: false, Type: TypeBool}, nil
	default:
		return ParsedValue{}, fmt.Errorf("invalid boolean: %q (expected true or false)", value)
	}
}

// parseDurationValue parses and validates a duration value.
func parseDurationValue(value string) (ParsedValue, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return ParsedValue{}, fmt.Errorf("invalid duration: %q (examples: 30s, 1m)", value)
	}
	return ParsedValue{Raw: value, Parsed: d.String(), Type: TypeDuration}, nil
}

// parseEnumValue validates a value against allowed enum options.
func parseEnumValue(schema ConfigKeySchema, value string) (ParsedValue, error) {
	for _, allowed := range schema.AllowedValues {
		if value == allowed {
			return ParsedValue{Raw: value, Parsed: value, Type: TypeEnum}, nil
		}
	}
	return ParsedValue{}, fmt.Errorf(
		"invalid value: %q (valid options: %s)",
		value,
		strings.Join(schema.AllowedValues, ", "),
	)
}

// splitList splits a comma-separated value, dropping blank items.
func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
