package path

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	templateDir, tmpDir := t.TempDir(), t.TempDir()
	b, err := NewBuilder(templateDir+"/", tmpDir, func() string { return "batch" })
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(templateDir, "ru.pptx"), b.Template("ru.pptx"))

	dir, err := b.WorkDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "brochure-batch"), dir)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = b.WorkDir()
	assert.Error(t, err)

	assert.Equal(t, filepath.Join(dir, "qr_0012.png"), b.File(dir, "qr", 12, "png"))
}

func TestNewBuilderMissingDir(t *testing.T) {
	_, err := NewBuilder(filepath.Join(t.TempDir(), "missing"), t.TempDir(), nil)
	assert.Error(t, err)

	_, err = NewBuilder(t.TempDir(), filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)
}
