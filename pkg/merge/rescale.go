package merge

import "github.com/aretw0/boardgen/pkg/domain"

// Rescale recomputes every point value as (position+1) * newScale.
// It is the identity when newScale already is the board's scale, and it
// ignores non-positive scales.
func Rescale(sections []domain.Section, newScale int) []domain.Section {
	out := domain.CloneSections(sections)
	if newScale <= 0 || newScale == domain.CurrentScale(sections) {
		return out
	}
	for s := range out {
		for i := range out[s].Cells {
			out[s].Cells[i].PointValue = (i + 1) * newScale
		}
	}
	return out
}
