package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/vuldesign/internal/app"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcome of one command run against a project.
type HarnessResult struct {
	Output string
	Err    error
	App    *app.App
	Dir    string
}

// WriteProject writes files, keyed by path relative to a fresh temporary
// directory, and returns that directory.
func WriteProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// RunDesignTest loads files as a project and runs one command on it, with
// debug logging captured in the result output.
func RunDesignTest(t *testing.T, files map[string]string, command string, args ...string) *HarnessResult {
	t.Helper()
	dir := WriteProject(t, files)

	cfg, err := app.NewConfig(app.Config{
		ProjectPath: dir,
		LogLevel:    "debug",
		LogFormat:   "text",
		Command:     command,
		Args:        args,
	})
	require.NoError(t, err)

	out := &SafeBuffer{}
	a, err := app.NewApp(out, cfg)
	if err != nil {
		return &HarnessResult{Output: out.String(), Err: err, Dir: dir}
	}
	err = a.Run(context.Background())

	if os.Getenv("VUL_TEST_LOGS") == "true" {
		t.Logf("--- Full output for %s ---\n%s", t.Name(), out.String())
	}
	return &HarnessResult{Output: out.String(), Err: err, App: a, Dir: dir}
}
