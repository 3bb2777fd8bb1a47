/*
Package domain contains the core domain models of the board generation engine.

It defines the board itself, the generation state machine vocabulary, the
provider-facing request/result shapes and the error taxonomy. This package is
kept pure and free of I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Document: The board. An ordered list of Sections, each an ordered list of Cells.
  - Cell: One prompt/answer slot with a permanent ID and a derived PointValue.
  - Scope: Which part of the board a generation targets (board, section, cell, refresh).
  - Token: Identifies a generation; only the most recently minted one may write.
  - Event: A structured record sent to the observability Reporter.
*/
package domain
