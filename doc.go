/*
Package boardgen coordinates generative content for grid-shaped quiz boards.

A board is a fixed grid of sections and cells. An operator asks a content
provider to (re)populate the whole board, one section, one cell, or the text of
the entire board, while continuing to edit it by hand. Requests may overlap,
arrive out of order, or fail.

# Concept

Every generation receives a token when it starts. Only the most recently
started token may write its result; anything that resolves under an older
token is discarded. While a generation is in flight the board is locked:
manual edits and rescales are rejected through a single write gate. A failed
or canceled generation restores the board to the snapshot taken when the
generation started.

# Key Features

  - Last-Started-Wins: Results are applied by token, never by completion order.
  - Rollback: Failures leave the board exactly as it was before the generation.
  - Bounded Retries: Transient and malformed responses are retried with backoff.
  - Hexagonal Architecture: Providers, stores and transports are adapters.

# Usage

	doc, _ := domain.NewDocument(6, 5, 200)
	board, _ := boardgen.New(doc, boardgen.WithTopic("Rivers"))

	gen, err := board.Generate(ctx, domain.BoardScope())
	if err != nil {
		log.Fatal(err)
	}
	if err := gen.Wait(ctx); err != nil {
		log.Printf("generation rolled back: %v", err)
	}
	fmt.Println(board.Document().Sections[0].Title)
*/
package boardgen
