package domain

import "fmt"

// ScopeKind is the granularity of a generation.
type ScopeKind string

const (
	// ScopeBoard regenerates every section and cell.
	ScopeBoard ScopeKind = "board"
	// ScopeSection regenerates the cells of one section.
	ScopeSection ScopeKind = "section"
	// ScopeCell regenerates the text of one cell.
	ScopeCell ScopeKind = "cell"
	// ScopeRefresh rewrites text across the board, keeping ids, scores and progress.
	ScopeRefresh ScopeKind = "refresh"
)

// Scope addresses the part of the board a generation targets.
// Section and Cell are only meaningful for the kinds that use them.
type Scope struct {
	Kind    ScopeKind `json:"kind"`
	Section int       `json:"section,omitempty"`
	Cell    int       `json:"cell,omitempty"`
}

// BoardScope targets the whole board.
func BoardScope() Scope { return Scope{Kind: ScopeBoard} }

// RefreshScope targets the text of the whole board.
func RefreshScope() Scope { return Scope{Kind: ScopeRefresh} }

// SectionScope targets one section.
func SectionScope(section int) Scope { return Scope{Kind: ScopeSection, Section: section} }

// CellScope targets one cell.
func CellScope(section, cell int) Scope {
	return Scope{Kind: ScopeCell, Section: section, Cell: cell}
}

func (s Scope) String() string {
	switch s.Kind {
	case ScopeSection:
		return fmt.Sprintf("section[%d]", s.Section)
	case ScopeCell:
		return fmt.Sprintf("cell[%d][%d]", s.Section, s.Cell)
	default:
		return string(s.Kind)
	}
}

// Validate checks that the scope addresses an existing part of a board with
// the given shape.
func (s Scope) Validate(sections, cellsPerSection int) error {
	switch s.Kind {
	case ScopeBoard, ScopeRefresh:
		return nil
	case ScopeSection:
		if s.Section < 0 || s.Section >= sections {
			return fmt.Errorf("%w: section %d out of range [0,%d)", ErrInvalidScope, s.Section, sections)
		}
		return nil
	case ScopeCell:
		if s.Section < 0 || s.Section >= sections {
			return fmt.Errorf("%w: section %d out of range [0,%d)", ErrInvalidScope, s.Section, sections)
		}
		if s.Cell < 0 || s.Cell >= cellsPerSection {
			return fmt.Errorf("%w: cell %d out of range [0,%d)", ErrInvalidScope, s.Cell, cellsPerSection)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidScope, s.Kind)
	}
}
