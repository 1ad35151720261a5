package version

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Version, Short())
	assert.Regexp(t, regexp.MustCompile(`^\d+\.\d+\.\d+`), Short())
}

func TestFull(t *testing.T) {
	t.Parallel()

	full := Full()

	for _, part := range []string{Version, Commit, BuildTime} {
		assert.NotEmpty(t, part)
		assert.Contains(t, full, part)
	}

	assert.Equal(t, "version: "+Version+", commit: "+Commit+", built at: "+BuildTime, full)
}
