package merge

import (
	"fmt"
	"math/rand/v2"

	"github.com/aretw0/boardgen/pkg/domain"
)

const (
	// PlaceholderPrompt fills cells the provider did not supply.
	PlaceholderPrompt = "Placeholder question"
	// PlaceholderRevealed is the answer paired with PlaceholderPrompt.
	PlaceholderRevealed = "Placeholder answer"
)

// Strategy folds a provider result into the existing sections.
type Strategy func(existing []domain.Section, res domain.ProviderResult) []domain.Section

// For returns the strategy matching the scope kind. rng picks the bonus cell
// for whole-board replacement; nil uses the global source.
func For(scope domain.Scope, rng *rand.Rand) (Strategy, error) {
	switch scope.Kind {
	case domain.ScopeBoard:
		return func(existing []domain.Section, res domain.ProviderResult) []domain.Section {
			return WholeDocumentReplace(existing, res, rng)
		}, nil
	case domain.ScopeSection:
		return func(existing []domain.Section, res domain.ProviderResult) []domain.Section {
			return SubtreeRewrite(existing, scope.Section, res)
		}, nil
	case domain.ScopeCell:
		return func(existing []domain.Section, res domain.ProviderResult) []domain.Section {
			return CellPatch(existing, scope.Section, scope.Cell, res)
		}, nil
	case domain.ScopeRefresh:
		return ZipMergePreserving, nil
	default:
		return nil, fmt.Errorf("%w: no merge strategy for %q", domain.ErrInvalidScope, scope.Kind)
	}
}

// WholeDocumentReplace replaces every section's content by position.
//
// Ids and point values stay with their positions. Progress flags are reset.
// Missing sections and cells become placeholders and extra ones are dropped.
// Each section ends up with exactly one bonus cell: the first one the provider
// flagged, or a random one.
func WholeDocumentReplace(existing []domain.Section, res domain.ProviderResult, rng *rand.Rand) []domain.Section {
	out := domain.CloneSections(existing)
	for s := range out {
		var src domain.SectionContent
		if s < len(res.Sections) {
			src = res.Sections[s]
		}

		out[s].Title = src.Title
		if out[s].Title == "" {
			out[s].Title = fmt.Sprintf("Section %d", s+1)
		}

		bonus := -1
		cells := out[s].Cells
		for i := range cells {
			content := domain.CellContent{PromptText: PlaceholderPrompt, RevealedText: PlaceholderRevealed}
			if i < len(src.Cells) {
				content = src.Cells[i]
			}
			cells[i].PromptText = content.PromptText
			cells[i].RevealedText = content.RevealedText
			cells[i].Answered = false
			cells[i].Voided = false
			cells[i].Bonus = false
			if content.Bonus && bonus < 0 {
				bonus = i
			}
		}
		if len(cells) == 0 {
			continue
		}
		if bonus < 0 {
			bonus = pick(rng, len(cells))
		}
		cells[bonus].Bonus = true
	}
	return out
}

// SubtreeRewrite replaces the text of one section's cells by position.
// Rewritten cells lose their progress flags. Bonus flags and the title are
// kept. Positions the result does not cover are left alone.
func SubtreeRewrite(existing []domain.Section, section int, res domain.ProviderResult) []domain.Section {
	out := domain.CloneSections(existing)
	if section < 0 || section >= len(out) {
		return out
	}
	cells := out[section].Cells
	for i := range cells {
		if i >= len(res.Cells) {
			break
		}
		cells[i].PromptText = res.Cells[i].PromptText
		cells[i].RevealedText = res.Cells[i].RevealedText
		cells[i].Answered = false
		cells[i].Voided = false
	}
	return out
}

// CellPatch overwrites the prompt and revealed text of one cell.
func CellPatch(existing []domain.Section, section, cell int, res domain.ProviderResult) []domain.Section {
	out := domain.CloneSections(existing)
	if res.Cell == nil || section < 0 || section >= len(out) {
		return out
	}
	cells := out[section].Cells
	if cell < 0 || cell >= len(cells) {
		return out
	}
	cells[cell].PromptText = res.Cell.PromptText
	cells[cell].RevealedText = res.Cell.RevealedText
	return out
}

// ZipMergePreserving rewrites text pairwise by position across all sections.
// Ids, point values, progress and bonus flags are always kept. A shorter
// result leaves the remaining sections and cells unchanged.
func ZipMergePreserving(existing []domain.Section, res domain.ProviderResult) []domain.Section {
	out := domain.CloneSections(existing)
	for s := range out {
		if s >= len(res.Sections) {
			break
		}
		src := res.Sections[s]
		out[s].Title = src.Title
		cells := out[s].Cells
		for i := range cells {
			if i >= len(src.Cells) {
				break
			}
			cells[i].PromptText = src.Cells[i].PromptText
			cells[i].RevealedText = src.Cells[i].RevealedText
		}
	}
	return out
}

func pick(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}
