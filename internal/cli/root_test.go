package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/groupon/nlm/internal/cli/shared"
)

func TestRootCmd_Structure(t *testing.T) {
	assert.Equal(t, "nlm", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotEmpty(t, rootCmd.Example)
	assert.True(t, rootCmd.SilenceErrors)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	tests := map[string]struct {
		flagName string
		wantDef  string
	}{
		"dir flag":   {flagName: "dir", wantDef: "."},
		"debug flag": {flagName: "debug", wantDef: "false"},
		"set flag":   {flagName: "set", wantDef: "[]"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
					flag := rootCmd.PersistentFlags().Lookup(tt.flagName)
			if assert.NotNil(t, flag, "Flag %s should exist", tt.flagName) {
				assert.Equal(t, tt.wantDef, flag.DefValue)
			}
		})
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	tests := map[string]struct {
		group string
	}{
		"verify":    {group: shared.GroupRelease},
		"changelog": {group: shared.GroupRelease},
		"config":    {group: shared.GroupConfiguration},
		"doctor":    {group: shared.GroupInfo},
		"version":   {group: shared.GroupInfo},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
					cmd, _, err := rootCmd.Find([]string{name})
			if assert.NoError(t, err) {
				assert.Equal(t, name, cmd.Name())
				assert.Equal(t, tt.group, cmd.GroupID)
			}
		})
	}
}

func TestExecute_FlagErrors(t *testing.T) {
	isolateEnv(t)

	tests := map[string]struct {
		args []string
	}{
		"unknown flag":    {args: []string{"verify", "--bogus"}},
		"unexpected args": {args: []string{"verify", "extra"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, stderr, code := executeCommand(t, tt.args...)
			assert.Equal(t, shared.ExitInvalidArguments, code, stderr)
		})
	}
}

func TestExecute_Version(t *testing.T) {
	isolateEnv(t)

	stdout, _, code := executeCommand(t, "version", "--plain")
	assert.Equal(t, shared.ExitSuccess, code)
	assert.Contains(t, stdout, "nlm ")
}

func TestExecute_DebugLogging(t *testing.T) {
	isolateEnv(t)
	dir := newGitPackage(t)

	_, stderr, code := executeCommand(t, "verify", "--dir", dir, "--debug")
	assert.Equal(t, shared.ExitSuccess, code, stderr)
	assert.Contains(t, stderr, "[debug] ")
}
