package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRender(t *testing.T, args ...string) string {
	t.Helper()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append([]string{"render"}, args...))
	require.NoError(t, rootCmd.Execute())

	// Flags are package globals; reset for the next test.
	t.Cleanup(func() {
		manifestFile = ""
		renderWorkspace = false
	})
	return buf.String()
}

func TestRenderCommand_StockBlueprint(t *testing.T) {
	t.Chdir(t.TempDir())

	out := runRender(t)
	assert.Contains(t, out, "FROM python:3.11-slim")
	assert.Contains(t, out, "WORKDIR /app")
	assert.Contains(t, out, "RUN pip install --no-cache-dir jupyter numpy tokenizers")
	assert.Contains(t, out, "EXPOSE 8888")
	assert.Contains(t, out, `CMD ["jupyter", "notebook", "--ip=0.0.0.0", "--port=8888", "--no-browser", "--allow-root"]`)
	assert.NotContains(t, out, "COPY")
}

func TestRenderCommand_ManifestFlag(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9001\n"), 0o644))

	out := runRender(t, "-f", path)
	assert.Contains(t, out, "EXPOSE 9001")
	assert.Contains(t, out, "--port=9001")
}

func TestRenderCommand_Workspace(t *testing.T) {
	t.Chdir(t.TempDir())

	out := runRender(t, "--workspace")
	assert.Contains(t, out, "COPY . /app")
}
