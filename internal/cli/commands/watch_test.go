package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchCommand_Creation(t *testing.T) {
	cmd := NewWatchCommand()

	assert.Equal(t, "watch", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	delay := cmd.Flags().Lookup("delay")
	require.NotNil(t, delay)
	assert.Equal(t, "100ms", delay.DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("out"))
}

func TestWatchCommand_RegeneratesOnChange(t *testing.T) {
	p := setupProject(t, "MyApp.Blog.Post")
	output := filepath.Join(p.dir, "out", "typegen.ts")
	original := readFile(t, p.metadata)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	root := NewRootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"watch", "--config", p.config, "--delay", "10ms", "--no-color", "--log-level", "error"})
	t.Cleanup(colorReset)

	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return fileContains(output, "PostResourceSchema")
	}, 3*time.Second, 20*time.Millisecond)

	// the watcher starts right after the first pass; keep touching the file until
	// a pass picks the change up
	changed := strings.Replace(original, "      - name: title\n", "      - name: subtitle\n        type: {kind: primitive, name: string}\n      - name: title\n", 1)
	require.Eventually(t, func() bool {
		writeMetadata(t, p, changed)
		return fileContains(output, "subtitle")
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop")
	}
}

// newTestWatchLoop builds a loop on the watch command of a fresh root command,
// printing messages into stderr
func newTestWatchLoop(t *testing.T, p *project, stderr *bytes.Buffer) *watchLoop {
	t.Helper()
	t.Cleanup(colorReset)

	root := NewRootCommand()
	root.SetOut(io.Discard)
	root.SetErr(stderr)
	cmd, _, err := root.Find([]string{"watch"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{"--config", p.config, "--no-color", "--log-level", "error"}))

	s, err := newSession(cmd)
	require.NoError(t, err)
	return &watchLoop{cmd: cmd, session: s, stdout: io.Discard}
}

func TestWatchLoop_FailedPassKeepsOutput(t *testing.T) {
	p := setupProject(t, "MyApp.Blog.Post")
	output := filepath.Join(p.dir, "out", "typegen.ts")

	var stderr bytes.Buffer
	loop := newTestWatchLoop(t, p, &stderr)

	require.NoError(t, loop.rebuild(nil))
	first := readFile(t, output)

	writeMetadata(t, p, "resources: [")
	require.NoError(t, loop.rebuild([]string{p.metadata}), "a failed pass does not stop watching")

	assert.Contains(t, stderr.String(), "GENERATION FAILED")
	assert.Equal(t, first, readFile(t, output))
}

func TestWatchLoop_ConfigMovesMetadata(t *testing.T) {
	p := setupProject(t, "MyApp.Blog.Post")

	var stderr bytes.Buffer
	loop := newTestWatchLoop(t, p, &stderr)

	moved := filepath.Join(p.dir, "moved.yml")
	require.NoError(t, os.WriteFile(moved, []byte(readFile(t, p.metadata)), 0644))
	cfg := strings.Replace(readFile(t, p.config), "metadata: metadata.yml", "metadata: moved.yml", 1)
	require.NoError(t, os.WriteFile(p.config, []byte(cfg), 0644))

	require.NoError(t, loop.rebuild([]string{p.config}))

	assert.Contains(t, stderr.String(), "metadata moved to "+moved)
	assert.Contains(t, stderr.String(), "restart watch to follow it")
	assert.Equal(t, moved, loop.session.cfg.MetadataPath())
}

func TestContainsPath(t *testing.T) {
	abs, err := filepath.Abs("typegen.yml")
	require.NoError(t, err)

	assert.True(t, containsPath([]string{"/x/metadata.json", abs}, "typegen.yml"))
	assert.False(t, containsPath([]string{"/x/metadata.json"}, "typegen.yml"))
	assert.False(t, containsPath(nil, "typegen.yml"))
}
