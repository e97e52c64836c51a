package commits

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawLog(records ...string) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(r)
		b.WriteString("\n")
		b.WriteString(Separator)
		b.WriteString("\n")
	}
	return b.String()
}

func TestSplitLog(t *testing.T) {
	raw := rawLog(
		"1111111 \nfeat: first",
		"2222222 1111111\nfix: second",
	)

	segments := SplitLog(raw)
	require.Len(t, segments, 2)
	assert.Equal(t, "1111111", segments[0].SHA)
	assert.Equal(t, "2222222", segments[1].SHA)
	assert.Contains(t, segments[1].Text, "fix: second")
}

func TestSplitLog_Empty(t *testing.T) {
	assert.Empty(t, SplitLog(""))
	assert.Empty(t, SplitLog("\n"+Separator+"\n"))
}

func TestFilterSince(t *testing.T) {
	segments := []Segment{
		{SHA: "aaaaaaaaaa"},
		{SHA: "bbbbbbbbbb"},
		{SHA: "cccccccccc"},
	}

	tests := map[string]struct {
		marker string
		want   []string
	}{
		"no marker keeps all": {
			marker: "",
			want:   []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc"},
		},
		"never released keeps all": {
			marker: "v0.0.0",
			want:   []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc"},
		},
		"full hash": {
			marker: "aaaaaaaaaa",
			want:   []string{"bbbbbbbbbb", "cccccccccc"},
		},
		"abbreviated hash": {
			marker: "bbbbbbb",
			want:   []string{"cccccccccc"},
		},
		"last commit": {
			marker: "cccccccccc",
			want:   []string{},
		},
		"too short to match": {
			marker: "bbb",
			want:   []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc"},
		},
		"unknown marker": {
			marker: "v1.2.3",
			want:   []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := make([]string, 0)
			for _, s := range FilterSince(segments, tt.marker) {
				got = append(got, s.SHA)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsNoise(t *testing.T) {
	tests := map[string]struct {
		commit Commit
		want   bool
	}{
		"branch merge": {
			commit: Commit{Header: "Merge branch 'main' into feature"},
			want:   true,
		},
		"remote tracking merge": {
			commit: Commit{Header: "Merge remote-tracking branch 'origin/main'"},
			want:   true,
		},
		"pull request merge": {
			commit: Commit{Type: TypePR, Header: "Merge pull request #1 from a/b"},
			want:   false,
		},
		"invalid commit": {
			commit: Commit{Header: "did stuff"},
			want:   false,
		},
		"typed commit": {
			commit: Commit{Type: TypeFix, Header: "fix: Merge handling"},
			want:   false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNoise(tt.commit))
		})
	}
}

func TestParseLog(t *testing.T) {
	raw := rawLog(
		"1111111111\nchore: Initial",
		"2222222222 1111111111\nfeat: Do stuff",
		"3333333333 2222222222 9999999999\nMerge branch 'main' into feature",
		"4444444444 3333333333\nMerge pull request #119 from theowner/some-branch\n\nfeat: Changed more stuff",
		"5555555555 4444444444\nThis ain't no valid commit message",
	)

	tests := map[string]struct {
		marker   string
		wantSHAs []string
	}{
		"full history": {
			marker:   "",
			wantSHAs: []string{"1111111111", "2222222222", "4444444444", "5555555555"},
		},
		"since first commit": {
			marker:   "1111111111",
			wantSHAs: []string{"2222222222", "4444444444", "5555555555"},
		},
		"since abbreviated hash": {
			marker:   "4444444",
			wantSHAs: []string{"5555555555"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			parsed, err := ParseLog(raw, tt.marker)
			require.NoError(t, err)

			got := make([]string, 0, len(parsed))
			for _, c := range parsed {
				got = append(got, c.SHA)
			}
			assert.Equal(t, tt.wantSHAs, got)
		})
	}
}

func TestParseLog_KeepsCommitOrderAndTypes(t *testing.T) {
	raw := rawLog(
		"1111111111\nfeat: Do stuff",
		"2222222222 1111111111\nbogus: Not an acceptable commit type",
	)

	parsed, err := ParseLog(raw, "")
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	assert.Equal(t, TypeFeat, parsed[0].Type)
	assert.Equal(t, Type("bogus"), parsed[1].Type)
	assert.False(t, parsed[1].Type.IsKnown())
	assert.Equal(t, "1111111111", parsed[1].ParentSHA)
}

func TestParseLog_Empty(t *testing.T) {
	parsed, err := ParseLog("", "")
	require.NoError(t, err)
	assert.Empty(t, parsed)
}
