package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/aretw0/boardgen/pkg/domain"
)

// Static is a deterministic offline ContentProvider. Each call bumps a round
// counter so regenerations produce visibly different text.
type Static struct {
	round atomic.Int64
}

// NewStatic creates a Static provider.
func NewStatic() *Static { return &Static{} }

// Generate implements ports.ContentProvider.
func (p *Static) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	round := p.round.Add(1)
	topic := req.Prompt.Topic
	if topic == "" {
		topic = "Trivia"
	}

	var payload any
	switch req.Scope.Kind {
	case domain.ScopeBoard, domain.ScopeRefresh:
		sections := make([]domain.SectionContent, req.Prompt.SectionCount)
		for s := range sections {
			sections[s] = domain.SectionContent{
				Title: fmt.Sprintf("%s %d", topic, s+1),
				Cells: staticCells(topic, round, s, req.Prompt.CellsPerSection),
			}
		}
		payload = map[string]any{"sections": sections}
	case domain.ScopeSection:
		payload = map[string]any{"cells": staticCells(topic, round, req.Scope.Section, req.Prompt.CellsPerSection)}
	case domain.ScopeCell:
		payload = map[string]any{"cell": staticCell(topic, round, req.Scope.Section, req.Scope.Cell)}
	default:
		return "", &domain.ValidationError{Err: fmt.Errorf("unsupported scope %q", req.Scope.Kind)}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func staticCells(topic string, round int64, section, n int) []domain.CellContent {
	cells := make([]domain.CellContent, n)
	for i := range cells {
		cells[i] = staticCell(topic, round, section, i)
	}
	return cells
}

func staticCell(topic string, round int64, section, cell int) domain.CellContent {
	return domain.CellContent{
		PromptText:   fmt.Sprintf("%s question %d.%d (round %d)", topic, section+1, cell+1, round),
		RevealedText: fmt.Sprintf("%s answer %d.%d", topic, section+1, cell+1),
	}
}
