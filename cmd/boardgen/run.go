package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/boardgen"
	"github.com/aretw0/boardgen/internal/cli"
	"github.com/aretw0/boardgen/internal/presentation/tui"
	"github.com/aretw0/boardgen/pkg/domain"
)

func versionString() string {
	return "v" + strings.TrimSpace(boardgen.Version)
}

// runGeneration starts scope on the board, waits for it and persists the
// result. SIGINT/SIGTERM cancels the generation and restores the board.
func runGeneration(ctx context.Context, app *cli.App, id string, scope domain.Scope, out io.Writer) error {
	sigCtx := cli.NewSignalContext(ctx)
	defer sigCtx.Cancel()

	b, created, err := app.OpenOrCreate(sigCtx, id)
	if err != nil {
		return err
	}
	if created {
		cli.PrintSystemMessage("Board '%s' created.", id)
	}

	g, err := b.Generate(sigCtx, scope)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "generating %s (token %d)...\n", scope, g.Token)

	select {
	case <-g.Done():
	case <-sigCtx.Done():
		if b.Cancel(sigCtx) {
			fmt.Fprintf(out, "\ncanceled on %v, board restored\n", sigCtx.Signal())
		}
		<-g.Done()
	}

	if err := app.Sessions.Save(ctx, b); err != nil {
		return fmt.Errorf("failed to save board: %w", err)
	}

	fmt.Fprintf(out, "%s: %s\n", tui.StateLabel(b.Status().State), g.Outcome())
	if g.Outcome() == boardgen.OutcomeFailed {
		return g.Err()
	}
	return nil
}
