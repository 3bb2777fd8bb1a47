package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Cell is a single prompt/answer slot on the board.
type Cell struct {
	// ID is assigned once at initialization and never changes.
	ID           string `json:"id"`
	PromptText   string `json:"prompt_text"`
	RevealedText string `json:"revealed_text"`
	// PointValue is (position+1) * scale. Only a rescale changes it.
	PointValue int  `json:"point_value"`
	Answered   bool `json:"answered"`
	Voided     bool `json:"voided"`
	Bonus      bool `json:"bonus"`
}

// Section is one column of the board.
type Section struct {
	Title string `json:"title"`
	Cells []Cell `json:"cells"`
}

// Document is the shared mutable board.
// Its shape (section count, cells per section) is fixed by NewDocument.
type Document struct {
	Sections []Section `json:"sections"`
}

// NewDocument creates a blank board with permanent cell ids and point values
// derived from scale.
func NewDocument(sections, cellsPerSection, scale int) (*Document, error) {
	if sections <= 0 || cellsPerSection <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, sections, cellsPerSection)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScale, scale)
	}

	doc := &Document{Sections: make([]Section, sections)}
	for s := range doc.Sections {
		cells := make([]Cell, cellsPerSection)
		for i := range cells {
			cells[i] = Cell{
				ID:         uuid.NewString(),
				PointValue: (i + 1) * scale,
			}
		}
		doc.Sections[s] = Section{
			Title: fmt.Sprintf("Section %d", s+1),
			Cells: cells,
		}
	}
	return doc, nil
}

// Shape returns the section count and the cells-per-section count.
// Boards are rectangular, so the first section is representative.
func (d *Document) Shape() (sections, cellsPerSection int) {
	if d == nil || len(d.Sections) == 0 {
		return 0, 0
	}
	return len(d.Sections), len(d.Sections[0].Cells)
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return &Document{Sections: CloneSections(d.Sections)}
}

// CloneSections deep-copies a slice of sections.
func CloneSections(src []Section) []Section {
	if src == nil {
		return nil
	}
	dst := make([]Section, len(src))
	for i, sec := range src {
		dst[i] = Section{Title: sec.Title}
		if sec.Cells != nil {
			dst[i].Cells = make([]Cell, len(sec.Cells))
			copy(dst[i].Cells, sec.Cells)
		}
	}
	return dst
}

// CellAt returns a pointer to the addressed cell, or nil when out of range.
func (d *Document) CellAt(section, cell int) *Cell {
	if d == nil || section < 0 || section >= len(d.Sections) {
		return nil
	}
	cells := d.Sections[section].Cells
	if cell < 0 || cell >= len(cells) {
		return nil
	}
	return &cells[cell]
}

// CurrentScale returns the scale implied by the first cell of the first
// section, or 0 for an empty board.
func CurrentScale(sections []Section) int {
	if len(sections) == 0 || len(sections[0].Cells) == 0 {
		return 0
	}
	return sections[0].Cells[0].PointValue
}
