package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupon/nlm/internal/commits"
)

// testRepo builds a repository in a temp dir with one commit per message.
// Commit times increase unless commitAt picks them.
type testRepo struct {
	dir    string
	repo   *git.Repository
	hashes []plumbing.Hash
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return &testRepo{dir: dir, repo: repo}
}

func (r *testRepo) commit(t *testing.T, message string) plumbing.Hash {
	t.Helper()
	return r.commitAt(t, message, time.Date(2024, 1, 1, 0, len(r.hashes), 0, 0, time.UTC))
}

// commitAt commits at the given time on top of parents, or HEAD when no
// parents are given.
func (r *testRepo) commitAt(t *testing.T, message string, when time.Time, parents ...plumbing.Hash) plumbing.Hash {
	t.Helper()
	wt, err := r.repo.Worktree()
	require.NoError(t, err)

	n := len(r.hashes)
	name := filepath.Join(r.dir, "file.txt")
	require.NoError(t, os.WriteFile(name, []byte(strings.Repeat("x", n+1)), 0o644))
	_, err = wt.Add("file.txt")
	require.NoError(t, err)

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Tester",
			Email: "tester@example.com",
			When:  when,
		},
		Parents: parents,
	})
	require.NoError(t, err)
	r.hashes = append(r.hashes, hash)
	return hash
}

func (r *testRepo) tag(t *testing.T, name string, hash plumbing.Hash) {
	t.Helper()
	_, err := r.repo.CreateTag(name, hash, nil)
	require.NoError(t, err)
}

func shas(t *testing.T, raw string) []string {
	t.Helper()
	got := make([]string, 0)
	for _, s := range commits.SplitLog(raw) {
		got = append(got, s.SHA)
	}
	return got
}

func TestLog_EmptyRepository(t *testing.T) {
	r := newTestRepo(t)

	raw, err := New(r.dir).Log(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestLog_Range(t *testing.T) {
	r := newTestRepo(t)
	first := r.commit(t, "chore: Initial\n")
	second := r.commit(t, "feat: Do stuff\n")
	third := r.commit(t, "fix: Repair stuff\n\nCloses #3\n")
	r.tag(t, "v1.0.0", first)
	r.tag(t, "v1.1.0", third)

	tests := map[string]struct {
		from string
		want []plumbing.Hash
	}{
		"full history":   {from: "", want: []plumbing.Hash{first, second, third}},
		"never released": {from: "v0.0.0", want: []plumbing.Hash{first, second, third}},
		"since tag":      {from: "v1.0.0", want: []plumbing.Hash{second, third}},
		"since hash":     {from: second.String(), want: []plumbing.Hash{third}},
		"since head":     {from: "v1.1.0", want: nil},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			raw, err := New(r.dir).Log(context.Background(), tt.from)
			require.NoError(t, err)

			want := make([]string, 0, len(tt.want))
			for _, h := range tt.want {
				want = append(want, h.String())
			}
			assert.Equal(t, want, shas(t, raw))
		})
	}
}

func TestLog_ParentsBeforeChildren(t *testing.T) {
	r := newTestRepo(t)
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	// Dates run backwards, as with a skewed committer clock.
	root := r.commitAt(t, "chore: Initial\n", day(20))
	mainline := r.commitAt(t, "fix: On main\n", day(15), root)
	branch := r.commitAt(t, "feat: On branch\n", day(10), root)
	merge := r.commitAt(t, "Merge branch 'feature'\n", day(5), mainline, branch)
	tip := r.commitAt(t, "docs: After merge\n", day(1), merge)
	r.tag(t, "v1.0.0", root)

	tests := map[string]struct {
		from string
		want []plumbing.Hash
	}{
		"full history": {from: "", want: []plumbing.Hash{root, mainline, branch, merge, tip}},
		"since tag":    {from: "v1.0.0", want: []plumbing.Hash{mainline, branch, merge, tip}},
		"since merge":  {from: merge.String(), want: []plumbing.Hash{tip}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			raw, err := New(r.dir).Log(context.Background(), tt.from)
			require.NoError(t, err)

			want := make([]string, 0, len(tt.want))
			for _, h := range tt.want {
				want = append(want, h.String())
			}
			assert.Equal(t, want, shas(t, raw))
		})
	}
}

func TestLog_Cancelled(t *testing.T) {
	r := newTestRepo(t)
	r.commit(t, "chore: Initial\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(r.dir).Log(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLog_RecordsParse(t *testing.T) {
	r := newTestRepo(t)
	first := r.commit(t, "chore: Initial\n")
	r.commit(t, "fix: Repair stuff\n\nBREAKING CHANGE: api is gone\n")

	raw, err := New(r.dir).Log(context.Background(), "")
	require.NoError(t, err)

	parsed, err := commits.ParseLog(raw, "")
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	assert.Equal(t, commits.TypeChore, parsed[0].Type)
	assert.Empty(t, parsed[0].ParentSHA)
	assert.Equal(t, commits.TypeFix, parsed[1].Type)
	assert.Equal(t, first.String(), parsed[1].ParentSHA)
	assert.True(t, parsed[1].IsBreaking())
}

func TestLog_Errors(t *testing.T) {
	r := newTestRepo(t)
	r.commit(t, "chore: Initial\n")

	t.Run("unknown revision", func(t *testing.T) {
		_, err := New(r.dir).Log(context.Background(), "v9.9.9")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownRevision)
	})

	t.Run("not a repository", func(t *testing.T) {
		_, err := New(t.TempDir()).Log(context.Background(), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotRepository)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New(r.dir).Log(ctx, "")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCurrentBranch(t *testing.T) {
	r := newTestRepo(t)

	branch, err := CurrentBranch(r.dir)
	require.NoError(t, err)
	assert.Equal(t, "master", branch, "unborn branch is reported")

	hash := r.commit(t, "chore: Initial\n")
	wt, err := r.repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: hash}))

	branch, err = CurrentBranch(r.dir)
	require.NoError(t, err)
	assert.Empty(t, branch, "detached HEAD")
}

func TestRepositoryRoot(t *testing.T) {
	r := newTestRepo(t)
	sub := filepath.Join(r.dir, "nested", "dir")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	root, err := RepositoryRoot(sub)
	require.NoError(t, err)
	assert.Equal(t, r.dir, root)

	assert.True(t, IsRepository(sub))
	assert.False(t, IsRepository(t.TempDir()))
}

func TestResolveRevision(t *testing.T) {
	r := newTestRepo(t)
	first := r.commit(t, "chore: Initial\n")
	r.tag(t, "v1.0.0", first)
	second := r.commit(t, "feat: More\n")

	tests := map[string]struct {
		rev     string
		want    string
		wantErr error
	}{
		"tag":       {rev: "v1.0.0", want: first.String()},
		"head":      {rev: "HEAD", want: second.String()},
		"full hash": {rev: second.String(), want: second.String()},
		"missing":   {rev: "v2.0.0", wantErr: ErrUnknownRevision},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ResolveRevision(r.dir, tt.rev)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ResolveRevision(t.TempDir(), "HEAD")
	assert.ErrorIs(t, err, ErrNotRepository)
}
