package tui_test

import (
	"strings"
	"testing"

	"github.com/aretw0/boardgen/internal/presentation/tui"
	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc(t *testing.T) *domain.Document {
	doc, err := domain.NewDocument(2, 2, 100)
	require.NoError(t, err)
	doc.Sections[0].Title = "Rivers | Lakes"
	doc.Sections[0].Cells[0].PromptText = "Longest river?"
	doc.Sections[0].Cells[0].RevealedText = "Nile"
	doc.Sections[0].Cells[0].Answered = true
	doc.Sections[1].Cells[1].Voided = true
	doc.Sections[1].Cells[0].Bonus = true
	return doc
}

func TestBoardMarkdown(t *testing.T) {
	md := tui.BoardMarkdown("b1", sampleDoc(t), tui.MarkdownOptions{
		Topic:  "Geography",
		Status: domain.Status{State: domain.StateComplete},
	})

	assert.True(t, strings.HasPrefix(md, "# b1: Geography\n"))
	assert.Contains(t, md, "Status: **complete**")
	assert.Contains(t, md, `| Rivers \| Lakes | Section 2 |`)
	assert.Contains(t, md, "| ~~100~~ | 100 |")
	assert.Contains(t, md, "| 200 | x |")
	assert.Contains(t, md, "- **100** Longest river?")
	assert.Contains(t, md, "*(bonus)*")
	assert.NotContains(t, md, "Nile", "answers hidden by default")
}

func TestBoardMarkdown_Reveal(t *testing.T) {
	md := tui.BoardMarkdown("b1", sampleDoc(t), tui.MarkdownOptions{Reveal: true})
	assert.Contains(t, md, "> Nile")
	assert.NotContains(t, md, "Status:")
}

func TestBoardMarkdown_Empty(t *testing.T) {
	md := tui.BoardMarkdown("b1", &domain.Document{}, tui.MarkdownOptions{})
	assert.Contains(t, md, "_empty board_")
}

func TestNewRenderer(t *testing.T) {
	render, err := tui.NewRenderer(80)
	require.NoError(t, err)
	out, err := render(tui.BoardMarkdown("b1", sampleDoc(t), tui.MarkdownOptions{Topic: "Geography"}))
	require.NoError(t, err)
	assert.Contains(t, out, "Geography")
}

func TestStateLabel(t *testing.T) {
	for _, s := range []domain.GenerationState{domain.StateIdle, domain.StateGenerating, domain.StateFailed} {
		assert.Contains(t, tui.StateLabel(s), string(s))
	}
}
