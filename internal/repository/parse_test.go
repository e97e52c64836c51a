package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	public := Info{
		APIBase:  "https://api.github.com",
		HTMLBase: "https://github.com",
		Host:     "github.com",
		Owner:    "myname",
		Name:     "myproject",
	}
	enterprise := Info{
		APIBase:  "https://ghe.mycorp.com/api/v3",
		HTMLBase: "https://ghe.mycorp.com",
		Host:     "ghe.mycorp.com",
		Owner:    "myname",
		Name:     "myproject",
	}
	dotted := public
	dotted.Name = "myproject.js"

	tests := map[string]struct {
		field string
		want  Info
	}{
		"ssh url":                   {field: "git+ssh://git@github.com/myname/myproject", want: public},
		"ssh url with suffix":       {field: "git+ssh://git@github.com/myname/myproject.git", want: public},
		"scp url":                   {field: "git@github.com:myname/myproject", want: public},
		"scp url with suffix":       {field: "git@github.com:myname/myproject.git", want: public},
		"https url":                 {field: "https://github.com/myname/myproject", want: public},
		"https url with suffix":     {field: "https://github.com/myname/myproject.git", want: public},
		"git url":                   {field: "git://github.com/myname/myproject", want: public},
		"git url with suffix":       {field: "git://github.com/myname/myproject.git", want: public},
		"shorthand":                 {field: "myname/myproject", want: public},
		"dotted shorthand":          {field: "myname/myproject.js", want: dotted},
		"dotted shorthand with git": {field: "myname/myproject.js.git", want: dotted},
		"enterprise scp":            {field: "git@ghe.mycorp.com:myname/myproject", want: enterprise},
		"enterprise scp suffix":     {field: "git@ghe.mycorp.com:myname/myproject.git", want: enterprise},
		"enterprise ssh":            {field: "git+ssh://git@ghe.mycorp.com/myname/myproject", want: enterprise},
		"enterprise ssh suffix":     {field: "git+ssh://git@ghe.mycorp.com/myname/myproject.git", want: enterprise},
		"enterprise https":          {field: "https://ghe.mycorp.com/myname/myproject", want: enterprise},
		"enterprise https suffix":   {field: "https://ghe.mycorp.com/myname/myproject.git", want: enterprise},
		"enterprise git":            {field: "git://ghe.mycorp.com/myname/myproject", want: enterprise},
		"enterprise git suffix":     {field: "git://ghe.mycorp.com/myname/myproject.git", want: enterprise},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Parse(tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParse_PlainHTTP(t *testing.T) {
	got, err := Parse("http://git.internal/team/tool")
	require.NoError(t, err)

	assert.Equal(t, "http://git.internal", got.HTMLBase)
	assert.Equal(t, "http://git.internal/api/v3", got.APIBase)
	assert.Equal(t, "http://git.internal/team/tool", got.WebURL())
	assert.Equal(t, "team/tool", got.Slug())
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]struct {
		field   string
		wantErr string
	}{
		"empty":          {field: "", wantErr: "missing repository field"},
		"blank":          {field: "   ", wantErr: "missing repository field"},
		"single segment": {field: "myproject", wantErr: "could not parse git repository"},
		"nested path":    {field: "https://gitlab.com/group/sub/project", wantErr: "could not parse git repository"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(tt.field)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, IsParseError(err))
		})
	}
}
