package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullInfo(t *testing.T) {
	info := FullInfo()
	assert.True(t, strings.HasPrefix(info, "jsps "+Version+" "))
	assert.Contains(t, info, BuildID())
}

func TestShortCommit(t *testing.T) {
	prev := GitCommit
	defer func() { GitCommit = prev }()

	GitCommit = "0123456789abcdef0123"
	assert.Equal(t, "0123456789ab", shortCommit())
	GitCommit = "abc"
	assert.Equal(t, "abc", shortCommit())
}

func TestBuildID_Stable(t *testing.T) {
	id := BuildID()
	assert.NotEmpty(t, id)
	assert.Equal(t, id, BuildID())
}
