package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/boardgen/internal/dto"
	"github.com/aretw0/boardgen/pkg/adapters/memory"
	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/aretw0/boardgen/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *session.Manager) {
	t.Helper()
	mgr := session.NewManager(memory.NewStore())
	t.Cleanup(mgr.Wait)
	return NewServer(mgr), mgr
}

func TestCreateAndGenerate(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	view, err := s.handleCreateBoard(ctx, mcp.CallToolRequest{}, map[string]any{
		"id": "b1", "topic": "Rivers", "sections": float64(2), "cells": float64(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 200, view.Document.Sections[0].Cells[1].PointValue, "default scale is 100")

	resp, err := s.handleGenerate(ctx, mcp.CallToolRequest{}, map[string]any{
		"id": "b1", "kind": "board", "wait": true,
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.Token)
	assert.Equal(t, "applied", resp.Outcome)
	require.NotNil(t, resp.Board)
	assert.Equal(t, "Rivers 2", resp.Board.Document.Sections[1].Title)
	assert.Equal(t, domain.StateComplete, resp.Board.Status.State)
}

func TestGenerate_InvalidScope(t *testing.T) {
	s, mgr := newTestServer(t)
	ctx := context.Background()
	_, err := mgr.Create(ctx, "b1", "", 1, 1, 100)
	require.NoError(t, err)

	_, err = s.handleGenerate(ctx, mcp.CallToolRequest{}, map[string]any{"id": "b1", "kind": "section", "section": float64(3)})
	assert.ErrorIs(t, err, domain.ErrInvalidScope)

	_, err = s.handleGenerate(ctx, mcp.CallToolRequest{}, map[string]any{"id": "b1", "kind": "galaxy"})
	assert.ErrorIs(t, err, dto.ErrInvalidRequest)

	_, err = s.handleGenerate(ctx, mcp.CallToolRequest{}, map[string]any{"id": "nope", "kind": "board"})
	assert.ErrorIs(t, err, domain.ErrBoardNotFound)
}

func TestEditAndRescalePersist(t *testing.T) {
	s, mgr := newTestServer(t)
	ctx := context.Background()
	_, err := mgr.Create(ctx, "b1", "", 1, 2, 100)
	require.NoError(t, err)

	view, err := s.handleEditCell(ctx, mcp.CallToolRequest{}, map[string]any{
		"id": "b1", "section": float64(0), "cell": float64(1), "revealed_text": "Nile", "voided": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Nile", view.Document.Sections[0].Cells[1].RevealedText)
	assert.True(t, view.Document.Sections[0].Cells[1].Voided)

	view, err = s.handleRescale(ctx, mcp.CallToolRequest{}, map[string]any{"id": "b1", "scale": float64(25)})
	require.NoError(t, err)
	assert.Equal(t, 50, view.Document.Sections[0].Cells[1].PointValue)

	rec, err := mgr.Store().Load(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 50, rec.Document.Sections[0].Cells[1].PointValue)
	assert.Equal(t, "Nile", rec.Document.Sections[0].Cells[1].RevealedText)

	_, err = s.handleRescale(ctx, mcp.CallToolRequest{}, map[string]any{"id": "b1", "scale": float64(0)})
	assert.ErrorIs(t, err, dto.ErrInvalidRequest)
}
