package domain

// BoardDiff represents the changes between two versions of a board.
// It is designed to be serialized to JSON for partial updates on the client.
type BoardDiff struct {
	// Titles maps section index to the new title, for changed titles only.
	Titles map[int]string `json:"titles,omitempty"`

	// Cells lists every cell with at least one changed field.
	Cells []CellDelta `json:"cells,omitempty"`
}

// CellDelta describes the fields that changed on one cell.
type CellDelta struct {
	ID      string   `json:"id"`
	Section int      `json:"section"`
	Index   int      `json:"index"`
	Fields  []string `json:"fields"`
	Current Cell     `json:"current"`
}

// Diff calculates the difference between two boards of the same shape.
// If old is nil, every cell of new is reported (initial load).
// Returns nil when nothing changed.
func Diff(old, new *Document) *BoardDiff {
	if new == nil {
		return nil
	}

	diff := &BoardDiff{}
	for s, sec := range new.Sections {
		var oldSec *Section
		if old != nil && s < len(old.Sections) {
			oldSec = &old.Sections[s]
		}

		if oldSec == nil || oldSec.Title != sec.Title {
			if diff.Titles == nil {
				diff.Titles = make(map[int]string)
			}
			diff.Titles[s] = sec.Title
		}

		for i, cell := range sec.Cells {
			var fields []string
			if oldSec == nil || i >= len(oldSec.Cells) {
				fields = []string{"*"}
			} else {
				fields = diffCell(oldSec.Cells[i], cell)
			}
			if len(fields) == 0 {
				continue
			}
			diff.Cells = append(diff.Cells, CellDelta{
				ID:      cell.ID,
				Section: s,
				Index:   i,
				Fields:  fields,
				Current: cell,
			})
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffCell(a, b Cell) []string {
	var fields []string
	if a.ID != b.ID {
		fields = append(fields, "id")
	}
	if a.PromptText != b.PromptText {
		fields = append(fields, "prompt_text")
	}
	if a.RevealedText != b.RevealedText {
		fields = append(fields, "revealed_text")
	}
	if a.PointValue != b.PointValue {
		fields = append(fields, "point_value")
	}
	if a.Answered != b.Answered {
		fields = append(fields, "answered")
	}
	if a.Voided != b.Voided {
		fields = append(fields, "voided")
	}
	if a.Bonus != b.Bonus {
		fields = append(fields, "bonus")
	}
	return fields
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *BoardDiff) IsEmpty() bool {
	return d == nil || (len(d.Titles) == 0 && len(d.Cells) == 0)
}
