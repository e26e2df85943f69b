package engine

import (
	"github.com/samber/lo"

	"github.com/hailam/shellchess/internal/rules"
)

// OrderMoves returns a new slice with every capture ahead of every
// non-capture. Relative order inside each group is kept and no move is
// dropped.
func OrderMoves[M comparable](pos rules.Position[M], moves []M) []M {
	isCapture := func(m M, _ int) bool { return pos.IsCapture(m) }
	captures := lo.Filter(moves, isCapture)
	quiets := lo.Reject(moves, isCapture)
	return append(captures, quiets...)
}
