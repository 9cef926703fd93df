package tui_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/eventstorm/internal/presentation/tui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer_PlainForFiles(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.md"))
	require.NoError(t, err)
	defer f.Close()

	render := tui.NewRenderer(f)
	got, err := render("# Title")
	require.NoError(t, err)
	assert.Equal(t, "# Title\n", got)

	got, err = tui.NewRenderer(nil)("**x**")
	require.NoError(t, err)
	assert.Equal(t, "**x**\n", got)
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}
