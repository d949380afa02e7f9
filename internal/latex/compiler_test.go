package latex

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript drops an executable shell script standing in for the
// external renderer. Argument order matches the real command: document,
// output PDF, build dir.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("renderer stub scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "renderer.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestCompilerCompile(t *testing.T) {
	ctx := context.Background()
	docPath := filepath.Join(t.TempDir(), "resume.yaml")
	require.NoError(t, os.WriteFile(docPath, []byte("profile: {}\n"), 0o644))

	t.Run("successful render", func(t *testing.T) {
		cmd := writeScript(t, `printf 'pdf bytes' > "$2"`)
		c := NewCompiler(cmd, 5*time.Second)

		out := filepath.Join(t.TempDir(), "out", "resume.pdf")
		err := c.Compile(ctx, docPath, out, t.TempDir())
		require.NoError(t, err)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "pdf bytes", string(data))
	})

	t.Run("non-zero exit carries the renderer log", func(t *testing.T) {
		cmd := writeScript(t, "echo 'missing font'\nexit 3")
		c := NewCompiler(cmd, 5*time.Second)

		err := c.Compile(ctx, docPath, filepath.Join(t.TempDir(), "resume.pdf"), t.TempDir())
		require.Error(t, err)

		var cerr *CompilationError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, docPath, cerr.DocumentPath)
		assert.Contains(t, cerr.Log, "missing font")
	})

	t.Run("clean exit without a PDF is a failure", func(t *testing.T) {
		cmd := writeScript(t, "exit 0")
		c := NewCompiler(cmd, 5*time.Second)

		err := c.Compile(ctx, docPath, filepath.Join(t.TempDir(), "resume.pdf"), t.TempDir())
		require.Error(t, err)

		var cerr *CompilationError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, cerr.Reason, "no PDF")
	})

	t.Run("timeout is a hard failure", func(t *testing.T) {
		cmd := writeScript(t, "sleep 5")
		c := NewCompiler(cmd, 100*time.Millisecond)

		err := c.Compile(ctx, docPath, filepath.Join(t.TempDir(), "resume.pdf"), t.TempDir())
		require.Error(t, err)

		var cerr *CompilationError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, cerr.Reason, "timed out")
	})
}
