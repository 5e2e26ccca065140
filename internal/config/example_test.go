package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/uwbpose/internal/anchors"
)

// The shipped examples must stay loadable.
func TestExampleFiles(t *testing.T) {
	const dir = "../../config/"
	if _, err := os.Stat(dir); err != nil {
		t.Skip("example files not present")
	}

	f, err := LoadFile(dir + "uwb-localizer.example.toml")
	require.NoError(t, err)
	s := Default()
	require.NoError(t, ApplyFile(&s, f, nil))
	assert.NoError(t, s.Validate())
	assert.Equal(t, "127.0.0.1:9100", s.Listen)

	list, err := anchors.Load(dir + "PozyxConfig.example.yaml")
	require.NoError(t, err)
	assert.Len(t, list, 4)
	assert.Equal(t, 0x6110, list[0].ID)
}
