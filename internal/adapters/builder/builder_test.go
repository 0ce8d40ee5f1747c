package builder

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanternhq/lantern/internal/blueprint"
	"github.com/lanternhq/lantern/internal/core/domain"
)

func TestTarContext_ContainsDockerfile(t *testing.T) {
	dockerfile, err := blueprint.Render(domain.DefaultBlueprint())
	require.NoError(t, err)

	stream, err := tarContext(dockerfile)
	require.NoError(t, err)
	defer stream.Close()

	tr := tar.NewReader(stream)
	hdr, err := tr.Next()
	require.NoError(t, err)
	assert.Equal(t, "Dockerfile", hdr.Name)

	content, err := io.ReadAll(tr)
	require.NoError(t, err)
	assert.Equal(t, dockerfile, string(content))

	// Exactly one entry.
	_, err = tr.Next()
	assert.Equal(t, io.EOF, err)
}

func TestMergeRequirements(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "requirements.txt")
	require.NoError(t, os.WriteFile(path, []byte(`
# research stack
pandas
numpy
fastapi==0.110.0

`), 0o644))

	bp := domain.DefaultBlueprint()
	merged, err := mergeRequirements(bp, path)
	require.NoError(t, err)

	// numpy is already in the blueprint and must not repeat.
	assert.Equal(t, []string{"jupyter", "numpy", "tokenizers", "pandas", "fastapi==0.110.0"}, merged.Packages)
}

func TestMergeRequirements_MissingFile(t *testing.T) {
	bp := domain.DefaultBlueprint()
	merged, err := mergeRequirements(bp, filepath.Join(t.TempDir(), "requirements.txt"))
	require.NoError(t, err)
	assert.Equal(t, bp.Packages, merged.Packages)
}
