package types

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFileCandidate_DerivedNames(t *testing.T) {
	tests := []struct {
		path     string
		wantName string
		wantPath string
	}{
		{"1", "1", "1"},
		{"/home/user/project/src/main.ts", "main.ts", "/home/user/project/src/main.ts"},
		{"dir/", "", "dir/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f := NewFileCandidate(tt.path)
			assert.Equal(t, tt.wantName, f.FileName())
			assert.Equal(t, tt.wantPath, f.FilePath())
		})
	}
}

func TestSettings_ExceedsMaxSize(t *testing.T) {
	tests := []struct {
		name  string
		limit *float64
		size  int64
		want  bool
	}{
		{"default cap, small file", nil, 1, false},
		{"default cap, exactly at cap", nil, 1000 * 1000, false},
		{"default cap, over cap", nil, 2 * 1000 * 1000, true},
		{"explicit cap", Float(1), 1001, true},
		{"zero means unlimited", Float(0), 1 << 40, false},
		{"negative means unlimited", Float(-5), 1 << 40, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settings{MaxFileSizeInKB: tt.limit}
			assert.Equal(t, tt.want, s.ExceedsMaxSize(tt.size))
		})
	}
}

func TestSettings_ProbeTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, Settings{}.ProbeTimeout())
	assert.Equal(t, time.Millisecond, Settings{MatchTestingTimeoutInSeconds: Float(0.001)}.ProbeTimeout())
	assert.Equal(t, 5*time.Second, Settings{MatchTestingTimeoutInSeconds: Float(0)}.ProbeTimeout())
	assert.Equal(t, 5*time.Second, Settings{MatchTestingTimeoutInSeconds: Float(-3)}.ProbeTimeout())
	assert.Equal(t, 5*time.Second, Settings{MatchTestingTimeoutInSeconds: Float(math.NaN())}.ProbeTimeout())
	assert.Equal(t, time.Duration(math.MaxInt64), Settings{MatchTestingTimeoutInSeconds: Float(math.Inf(1))}.ProbeTimeout())
}

func TestSettings_Globs(t *testing.T) {
	s := Settings{}
	assert.Equal(t, []string{"**/*"}, s.IncludeGlobs())
	assert.Equal(t, []string{"**/node_modules/**"}, s.ExcludeGlobs())

	s = Settings{
		IncludeFilePatterns: []string{"**/*.ts"},
		ExcludeFilePatterns: []string{"**/dist/**"},
		IncludeNodeModules:  true,
	}
	assert.Equal(t, []string{"**/*.ts"}, s.IncludeGlobs())
	assert.Equal(t, []string{"**/dist/**"}, s.ExcludeGlobs())

	// effective lists never alias the definition's slices
	include := s.IncludeGlobs()
	include[0] = "changed"
	assert.Equal(t, "**/*.ts", s.IncludeFilePatterns[0])
}

func TestOutcome_Reportable(t *testing.T) {
	file := NewFileCandidate("a.ts")

	assert.False(t, SkippedOutcome().Reportable())
	assert.True(t, SkippedOutcome().IsSkipped())
	assert.False(t, FailureOutcome(file, assert.AnError).Reportable())

	assert.True(t, Outcome{Kind: OutcomeSuccess, MatchesByFile: true}.Reportable())
	assert.False(t, Outcome{Kind: OutcomeSuccess, MatchesByLine: map[int]string{}}.Reportable())
	assert.True(t, Outcome{Kind: OutcomeSuccess, MatchesByLine: map[int]string{3: "x"}}.Reportable())
}

func TestOutcome_SortedLineMatches(t *testing.T) {
	o := Outcome{Kind: OutcomeSuccess, MatchesByLine: map[int]string{9: "c", 0: "a", 4: "b"}}
	assert.Equal(t, []LineMatch{{0, "a"}, {4, "b"}, {9, "c"}}, o.SortedLineMatches())
	assert.Nil(t, Outcome{}.SortedLineMatches())
}
