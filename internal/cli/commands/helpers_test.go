package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

type project struct {
	dir      string
	config   string
	metadata string
}

// setupProject creates a project directory with the fixture metadata and a
// typegen.yml listing roots
func setupProject(t *testing.T, roots ...string) *project {
	t.Helper()
	dir := t.TempDir()

	data, err := os.ReadFile(filepath.Join("testdata", "metadata.yml"))
	require.NoError(t, err)
	p := &project{
		dir:      dir,
		config:   filepath.Join(dir, "typegen.yml"),
		metadata: filepath.Join(dir, "metadata.yml"),
	}
	require.NoError(t, os.WriteFile(p.metadata, data, 0644))

	cfg := "metadata: metadata.yml\noutput: out/typegen.ts\nroots:\n"
	for _, r := range roots {
		cfg += "  - " + r + "\n"
	}
	require.NoError(t, os.WriteFile(p.config, []byte(cfg), 0644))
	return p
}

// run executes the root command and returns stdout, stderr and the error
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(colorReset)

	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--no-color", "--log-level", "error"))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func hasSubcommand(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func writeMetadata(t *testing.T, p *project, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(p.metadata, []byte(content), 0644))
}

func colorReset() { color.NoColor = false }

func fileContains(path, substr string) bool {
	data, err := os.ReadFile(path)
	return err == nil && strings.Contains(string(data), substr)
}
