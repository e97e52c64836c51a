package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/groupon/nlm/internal/cli/shared"
)

// newGitPackage creates a git checkout of a package released as 0.1.0 with
// one feature commit on top of the release tag.
func newGitPackage(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	commit := func(n int, file, content, message string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
		_, err := wt.Add(file)
		require.NoError(t, err)
		_, err = wt.Commit(message, &git.CommitOptions{Author: &object.Signature{
			Name:  "Tester",
			Email: "tester@example.com",
			When:  time.Date(2024, 1, 1, 0, n, 0, 0, time.UTC),
		}})
		require.NoError(t, err)
	}

	commit(0, "package.json", `{"name": "pkg", "version": "0.1.0", "repository": "usr/proj"}`, "chore: Initial release")
	head, err := repo.Head()
	require.NoError(t, err)
	_, err = repo.CreateTag("v0.1.0", head.Hash(), nil)
	require.NoError(t, err)

	commit(1, "index.js", "module.exports = 1;\n", "feat: Add the index")
	return dir
}

func TestVerify_Text(t *testing.T) {
	isolateEnv(t)
	dir := writePackage(t, testManifest)

	tests := map[string]struct {
		records []string
		args    []string
		want    []string
		notWant []string
	}{
		"minor release": {
			records: []string{"1111111 \nfeat: Do stuff", "2222222 1111111\nfix: Repair stuff"},
			want:    []string{`Changes are "minor" (1.2.3 -> 1.3.0)`},
			notWant: []string{"Pull request"},
		},
		"patch release": {
			records: []string{"1111111 \nfix: Repair stuff"},
			want:    []string{`Changes are "patch" (1.2.3 -> 1.2.4)`},
		},
		"nothing to release": {
			records: []string{"1111111 \ndocs: Explain stuff"},
			want:    []string{`Changes are "none" (1.2.3 -> 1.2.3)`},
		},
		"breaking change": {
			records: []string{"1111111 \nfeat: New api\n\nBREAKING CHANGE: The old one is gone"},
			want:    []string{`Changes are "major" (1.2.3 -> 2.0.0)`},
		},
		"invalid commits accepted": {
			records: []string{"1111111 \nfeat: Do stuff", "2222222 1111111\ndid stuff"},
			args:    []string{"--accept-invalid-commits"},
			want:    []string{`Changes are "major" (1.2.3 -> 2.0.0)`},
		},
		"invalid commits accepted through set": {
			records: []string{"1111111 \ndid stuff"},
			args:    []string{"--set", "accept_invalid_commits=true"},
			want:    []string{`Changes are "major"`},
		},
		"pull request build": {
			records: []string{"1111111 \nfeat: Do stuff"},
			args:    []string{"--pr", "12"},
			want:    []string{`Changes are "minor"`, "Pull request #12"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			args := append([]string{"verify", "--dir", dir, "--log-file", writeLog(t, tt.records...)}, tt.args...)
			stdout, stderr, code := executeCommand(t, args...)
			require.Equal(t, shared.ExitSuccess, code, stderr)
			for _, want := range tt.want {
				assert.Contains(t, stdout, want)
			}
			for _, notWant := range tt.notWant {
				assert.NotContains(t, stdout, notWant)
			}
		})
	}
}

func TestVerify_PullRequestFromEnvironment(t *testing.T) {
	isolateEnv(t)
	t.Setenv("TRAVIS_PULL_REQUEST", "77")
	dir := writePackage(t, testManifest)

	stdout, stderr, code := executeCommand(t, "verify", "--dir", dir,
		"--log-file", writeLog(t, "1111111 \nfix: Repair stuff"))
	require.Equal(t, shared.ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Pull request #77")
}

func TestVerify_Structured(t *testing.T) {
	isolateEnv(t)
	t.Setenv("BRANCH", "release-branch")
	dir := writePackage(t, testManifest)
	logFile := writeLog(t, "1111111 \nfeat: Do stuff", "2222222 1111111\nfix: Repair stuff")

	t.Run("json", func(t *testing.T) {
		stdout, stderr, code := executeCommand(t, "verify", "--dir", dir, "--log-file", logFile, "--output", "json")
		require.Equal(t, shared.ExitSuccess, code, stderr)

		var report map[string]any
		require.NoError(t, json.Unmarshal([]byte(stdout), &report))
		assert.Equal(t, "minor", report["releaseType"])
		assert.Equal(t, "1.2.3", report["currentVersion"])
		assert.Equal(t, "1.3.0", report["nextVersion"])
		assert.Equal(t, true, report["publishable"])
		assert.Equal(t, "release-branch", report["branch"])
		assert.Len(t, report["commits"], 2)
		assert.NotContains(t, report, "changelog")
	})

	t.Run("yaml", func(t *testing.T) {
		stdout, stderr, code := executeCommand(t, "verify", "--dir", dir, "--log-file", logFile, "-o", "yaml", "--pr", "3")
		require.Equal(t, shared.ExitSuccess, code, stderr)

		var report map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(stdout), &report))
		assert.Equal(t, "minor", report["releaseType"])
		assert.Equal(t, "3", report["pullRequest"])
		assert.Equal(t, false, report["publishable"])
	})
}

func TestVerify_Failures(t *testing.T) {
	isolateEnv(t)
	dir := writePackage(t, testManifest)

	tests := map[string]struct {
		dir        string
		records    []string
		args       []string
		wantCode   int
		wantStderr string
	}{
		"invalid commits": {
			dir:        dir,
			records:    []string{"1111111 \nfeat: Do stuff", "2222222 1111111\ndid stuff"},
			wantCode:   shared.ExitInvalidCommits,
			wantStderr: "git rebase -i 1111111",
		},
		"missing manifest": {
			dir:        t.TempDir(),
			records:    []string{"1111111 \nfeat: Do stuff"},
			wantCode:   shared.ExitMissingDependency,
			wantStderr: "package.json not found",
		},
		"bad output format": {
			dir:        dir,
			records:    []string{"1111111 \nfeat: Do stuff"},
			args:       []string{"--output", "xml"},
			wantCode:   shared.ExitInvalidArguments,
			wantStderr: `invalid value "xml" for --output`,
		},
		"bad set value": {
			dir:        dir,
			records:    []string{"1111111 \nfeat: Do stuff"},
			args:       []string{"--set", "changelog.layout=columns"},
			wantCode:   shared.ExitInvalidArguments,
			wantStderr: "changelog.layout",
		},
		"bad repository field": {
			dir:        writePackage(t, `{"name": "pkg", "version": "1.0.0", "repository": "not a repository"}`),
			records:    []string{"1111111 \nfeat: Do stuff"},
			wantCode:   shared.ExitFailure,
			wantStderr: "cannot determine the hosted repository",
		},
		"missing log file": {
			dir:        dir,
			args:       []string{"--log-file", filepath.Join(t.TempDir(), "missing.log")},
			wantCode:   shared.ExitFailure,
			wantStderr: "reading log file",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			args := []string{"verify", "--dir", tt.dir}
			if tt.records != nil {
				args = append(args, "--log-file", writeLog(t, tt.records...))
			}
			args = append(args, tt.args...)

			_, stderr, code := executeCommand(t, args...)
			assert.Equal(t, tt.wantCode, code, stderr)
			assert.Contains(t, stderr, tt.wantStderr)
		})
	}
}

func TestVerify_GitRepository(t *testing.T) {
	isolateEnv(t)
	dir := newGitPackage(t)

	t.Run("text", func(t *testing.T) {
		stdout, stderr, code := executeCommand(t, "verify", "--dir", dir)
		require.Equal(t, shared.ExitSuccess, code, stderr)
		assert.Contains(t, stdout, `Changes are "minor" (0.1.0 -> 1.0.0)`)
	})

	t.Run("branch from checkout", func(t *testing.T) {
		stdout, stderr, code := executeCommand(t, "verify", "--dir", dir, "-o", "json")
		require.Equal(t, shared.ExitSuccess, code, stderr)

		var report map[string]any
		require.NoError(t, json.Unmarshal([]byte(stdout), &report))
		assert.Equal(t, "master", report["branch"])
		assert.Len(t, report["commits"], 1)
	})

	t.Run("unknown from revision", func(t *testing.T) {
		_, stderr, code := executeCommand(t, "verify", "--dir", dir, "--from", "v9.9.9")
		assert.Equal(t, shared.ExitMissingDependency, code, stderr)
		assert.Contains(t, stderr, "release tag not found")
	})
}

func TestVerify_LogFileTrimmedAtReleaseTag(t *testing.T) {
	isolateEnv(t)
	dir := newGitPackage(t)

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	tagged, err := repo.ResolveRevision("v0.1.0")
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)

	logFile := writeLog(t,
		"1111111111 \ndid stuff",
		tagged.String()+" 1111111111\nchore: Initial release",
		head.Hash().String()+" "+tagged.String()+"\nfeat: Add the index",
	)

	tests := map[string]struct {
		args []string
	}{
		"manifest version": {args: nil},
		"explicit tag":     {args: []string{"--from", "v0.1.0"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			args := append([]string{"verify", "--dir", dir, "--log-file", logFile, "-o", "json"}, tt.args...)
			stdout, stderr, code := executeCommand(t, args...)
			require.Equal(t, shared.ExitSuccess, code, stderr)

			var report map[string]any
			require.NoError(t, json.Unmarshal([]byte(stdout), &report))
			assert.Equal(t, "minor", report["releaseType"])
			assert.Len(t, report["commits"], 1)
		})
	}
}

func TestVerify_SkipsOutsideGit(t *testing.T) {
	isolateEnv(t)
	dir := writePackage(t, testManifest)

	stdout, stderr, code := executeCommand(t, "verify", "--dir", dir)
	assert.Equal(t, shared.ExitSuccess, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "not a git repository")
}

func TestVerify_IgnoresHostingService(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GH_TOKEN", "secret")

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, `{"message": "API rate limit exceeded"}`, http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	dir := writePackage(t, fmt.Sprintf(`{"name": "pkg", "version": "1.2.3", "repository": %q}`, server.URL+"/usr/proj.git"))
	logFile := writeLog(t,
		"1111111111 \nfix: Repair stuff",
		"2222222222 1111111111\nMerge pull request #7 from someone/branch\n\nfeat: Add things",
	)

	stdout, stderr, code := executeCommand(t, "verify", "--dir", dir, "--log-file", logFile)
	require.Equal(t, shared.ExitSuccess, code, stderr)
	assert.Contains(t, stdout, `Changes are "patch" (1.2.3 -> 1.2.4)`)
	assert.Zero(t, requests.Load())

	_, stderr, code = executeCommand(t, "changelog", "--dir", dir, "--log-file", logFile)
	assert.Equal(t, shared.ExitFailure, code)
	assert.Contains(t, stderr, "fetching pull request data failed")
	assert.NotZero(t, requests.Load())
}
