package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/aretw0/boardgen/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), "boardgen %v", args)
	return out.String()
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOARDGEN_BOARD_TOPIC", "Rivers")
	t.Setenv("BOARDGEN_BOARD_SECTIONS", "2")
	t.Setenv("BOARDGEN_BOARD_CELLS", "2")

	run(t, "init", "--dir", dir, "-b", "quiz", "--quiet")
	out := run(t, "generate", "--dir", dir, "-b", "quiz")
	assert.Contains(t, out, "applied")

	run(t, "rescale", "--dir", dir, "-b", "quiz", "50")
	run(t, "edit", "--dir", dir, "-b", "quiz", "1", "0", "--answer", "Nile", "--answered")
	run(t, "regen", "--dir", dir, "-b", "quiz", "0", "1")

	var view dto.BoardView
	require.NoError(t, json.Unmarshal([]byte(run(t, "show", "--dir", dir, "-b", "quiz", "--json")), &view))
	assert.Equal(t, "Rivers 1", view.Document.Sections[0].Title)
	assert.Equal(t, 100, view.Document.Sections[1].Cells[1].PointValue)
	assert.Equal(t, "Nile", view.Document.Sections[1].Cells[0].RevealedText)
	assert.True(t, view.Document.Sections[1].Cells[0].Answered)

	md := run(t, "show", "--dir", dir, "-b", "quiz", "--raw", "--json=false")
	assert.Contains(t, md, "# quiz: Rivers")
	assert.NotContains(t, md, "Nile")
}

func TestVersion(t *testing.T) {
	assert.Contains(t, run(t, "version"), "boardgen version")
}
