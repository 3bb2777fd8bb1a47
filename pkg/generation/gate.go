package generation

import (
	"context"

	"github.com/aretw0/boardgen/pkg/domain"
)

// Gate is the single choke point for document writes.
//
// While a generation is in flight, only the tagged write of the current
// token is admitted. Everything else is dropped and reported.
type Gate struct {
	c *Controller
}

// Write applies an untagged mutation, such as a manual edit or a rescale.
// It returns false when the board is locked.
func (g *Gate) Write(ctx context.Context, mutate Mutator) bool {
	return g.WriteTagged(ctx, 0, mutate)
}

// WriteTagged applies mutate on behalf of the generation identified by tag.
func (g *Gate) WriteTagged(ctx context.Context, tag domain.Token, mutate Mutator) bool {
	c := g.c
	c.mu.Lock()
	if c.state.IsLocked() && (tag == 0 || tag != c.current) {
		state, current := c.state, c.current
		c.mu.Unlock()

		ev := c.event(domain.EventGateRejected, tag, nil)
		ev.Fields = map[string]any{"state": string(state), "current": uint64(current)}
		c.logger.Debug("write rejected by gate", "board", c.boardID, "tag", uint64(tag), "state", state)
		c.reporter.Report(ctx, ev)
		return false
	}
	defer c.mu.Unlock()
	mutate(c.doc)
	return true
}

// applyLocked runs the generation's own write. c.mu must be held and tag
// must be current.
func (g *Gate) applyLocked(tag domain.Token, mutate Mutator) {
	if tag != g.c.current {
		return
	}
	mutate(g.c.doc)
}

// Read returns a deep copy of the document. Reads are never gated.
func (g *Gate) Read() *domain.Document {
	g.c.mu.Lock()
	defer g.c.mu.Unlock()
	return g.c.doc.Clone()
}
