/*
Package generation coordinates asynchronous content generation against one
shared board.

A Controller owns the board document, the generation state machine, the
current token and the pre-generation snapshot. Its Gate is the only path
through which anything writes to the document. Both share one mutex, so a
token check and the write it guards are atomic.

	Start(scope)      idle|complete|failed|canceled -> generating (mints T, snapshots)
	Start(scope)      generating -> generating (supersedes, keeps the snapshot)
	Resolve(T, merge) generating -> applying -> complete, iff T is current
	Reject(T, err)    generating -> failed, iff T is current (restores snapshot)
	Cancel(T)         generating -> canceled, iff T is current (restores snapshot)

Calls carrying a stale token are reported and otherwise ignored.
*/
package generation
