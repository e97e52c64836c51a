// Package repository resolves the repository field of a package manifest into
// the API and web locations of its hosting service.
package repository

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// PublicAPIBase is the API root of github.com.
const PublicAPIBase = "https://api.github.com"

const defaultHost = "github.com"

// Info identifies a hosted repository.
type Info struct {
	// APIBase is the REST API root, e.g. https://api.github.com or
	// https://ghe.example.com/api/v3.
	APIBase string `json:"apiBase" yaml:"apiBase"`
	// HTMLBase is the web root, e.g. https://github.com.
	HTMLBase string `json:"htmlBase" yaml:"htmlBase"`
	Host     string `json:"host" yaml:"host"`
	Owner    string `json:"owner" yaml:"owner"`
	Name     string `json:"name" yaml:"name"`
}

// Slug returns "owner/name".
func (i Info) Slug() string {
	return i.Owner + "/" + i.Name
}

// WebURL returns the web address of the repository.
func (i Info) WebURL() string {
	return i.HTMLBase + "/" + i.Slug()
}

// ParseError reports a repository field that names no hosted repository.
type ParseError struct {
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return "invalid or missing repository field"
	}
	if e.Reason != "" {
		return fmt.Sprintf("could not parse git repository %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("could not parse git repository: %s", e.Field)
}

// IsParseError returns true if the error is a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

var (
	scpLike  = regexp.MustCompile(`^git@([^:]+):(.*)$`)
	repoPath = regexp.MustCompile(`^/?([\w-]+)/([\w.-]+?)(?:\.git)?$`)
)

// Parse understands ssh, scp-like, https and git URLs as well as the
// "owner/repo" shorthand, which resolves to github.com.
func Parse(field string) (*Info, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, &ParseError{}
	}

	raw := scpLike.ReplaceAllString(field, "git+ssh://git@$1/$2")
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &ParseError{Field: field, Reason: err.Error()}
	}

	host := u.Host
	if host == "" {
		host = defaultHost
	}

	m := repoPath.FindStringSubmatch(u.Path)
	if m == nil {
		return nil, &ParseError{Field: field}
	}

	proto := "https://"
	if u.Scheme == "http" {
		proto = "http://"
	}

	info := &Info{
		HTMLBase: proto + host,
		Host:     host,
		Owner:    m[1],
		Name:     m[2],
	}
	if host == defaultHost {
		info.APIBase = PublicAPIBase
	} else {
		info.APIBase = proto + host + "/api/v3"
	}
	return info, nil
}
