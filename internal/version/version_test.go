package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	v, sha, built := Version, GitSHA, BuildTime
	t.Cleanup(func() { Version, GitSHA, BuildTime = v, sha, built })

	Version, GitSHA, BuildTime = "1.2.0", "abc123", "2024-05-01T10:00:00Z"
	assert.Equal(t, "1.2.0 (commit abc123, built 2024-05-01T10:00:00Z)", String())
}
