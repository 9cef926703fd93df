package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_WorkshopRoundTrip(t *testing.T) {
	dir := t.TempDir()
	exportPath := filepath.Join(t.TempDir(), "orders.yaml")

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "eventstorm version")

	out, err = run(t, "workshop", "create", "Orders", "--dir", dir, "--domain", "retail")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)
	assert.FileExists(t, filepath.Join(dir, id+".json"))

	out, err = run(t, "workshop", "ls", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Orders")
	assert.Contains(t, out, "retail")

	_, err = run(t, "export", id, "--dir", dir, "--format", "yaml", "-o", exportPath)
	require.NoError(t, err)
	assert.FileExists(t, exportPath)

	out, err = run(t, "validate", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, `Workshop "Orders" is valid!`)

	out, err = run(t, "import", exportPath, "--dir", dir, "--name", "Copy")
	require.NoError(t, err)
	copyID := strings.TrimSpace(out)
	assert.NotEqual(t, id, copyID)

	out, err = run(t, "workshop", "ls", "--dir", dir, "--json")
	require.NoError(t, err)
	var list []domain.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Len(t, list, 2)

	out, err = run(t, "graph", id, "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "graph LR\n", out)

	out, err = run(t, "stats", copyID, "--dir", dir, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Copy"`)

	out, err = run(t, "workshop", "rm", id, "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted workshop "+id)

	_, err = run(t, "workshop", "inspect", id, "--dir", dir)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCLI_ValidateRejectsInconsistentDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	doc := `{
  "metadata": {"id": "w1", "name": "Broken", "schema_version": "2.0"},
  "elements": [
    {"id": "a", "type": "command", "name": "A", "triggers": ["ghost"], "triggered_by": []}
  ],
  "bounded_contexts": []
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := run(t, "validate", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Contains(t, err.Error(), `triggers unknown element "ghost"`)
}

func TestCLI_RejectsUnknownDriver(t *testing.T) {
	_, err := run(t, "workshop", "ls", "--store", "mongo")
	assert.ErrorContains(t, err, "invalid configuration")
}
