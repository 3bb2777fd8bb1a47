// Package tui renders boards for the terminal.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/boardgen/pkg/domain"
)

// MarkdownOptions controls BoardMarkdown.
type MarkdownOptions struct {
	Topic  string
	Status domain.Status
	// Reveal includes the answers.
	Reveal bool
}

// BoardMarkdown renders doc as a score grid followed by the questions of
// each section. Answered cells are struck through, voided ones crossed out.
func BoardMarkdown(id string, doc *domain.Document, opts MarkdownOptions) string {
	var sb strings.Builder

	title := id
	if opts.Topic != "" {
		title = fmt.Sprintf("%s: %s", id, opts.Topic)
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if opts.Status.State != "" {
		fmt.Fprintf(&sb, "Status: **%s**", opts.Status.State)
		if opts.Status.Scope != nil {
			fmt.Fprintf(&sb, " (%s)", opts.Status.Scope)
		}
		sb.WriteString("\n\n")
	}

	sections, cells := doc.Shape()
	if sections == 0 {
		sb.WriteString("_empty board_\n")
		return sb.String()
	}

	sb.WriteString("|")
	for _, sec := range doc.Sections {
		fmt.Fprintf(&sb, " %s |", escape(sec.Title))
	}
	sb.WriteString("\n|")
	for range doc.Sections {
		sb.WriteString(" :---: |")
	}
	sb.WriteString("\n")
	for row := 0; row < cells; row++ {
		sb.WriteString("|")
		for _, sec := range doc.Sections {
			fmt.Fprintf(&sb, " %s |", scoreLabel(sec.Cells[row]))
		}
		sb.WriteString("\n")
	}

	for s, sec := range doc.Sections {
		fmt.Fprintf(&sb, "\n## %d. %s\n\n", s+1, sec.Title)
		for _, c := range sec.Cells {
			prompt := c.PromptText
			if prompt == "" {
				prompt = "_(empty)_"
			}
			fmt.Fprintf(&sb, "- **%d** %s", c.PointValue, prompt)
			if c.Bonus {
				sb.WriteString(" *(bonus)*")
			}
			if opts.Reveal && c.RevealedText != "" {
				fmt.Fprintf(&sb, "\n  > %s", c.RevealedText)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func scoreLabel(c domain.Cell) string {
	label := strconv.Itoa(c.PointValue)
	switch {
	case c.Voided:
		return "x"
	case c.Answered:
		return "~~" + label + "~~"
	}
	return label
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
