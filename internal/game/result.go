package game

import (
	"time"

	"github.com/notnil/chess"

	"github.com/hailam/shellchess/internal/rules"
)

// Reason says how a game ended.
type Reason string

const (
	Checkmate    Reason = "checkmate"
	Stalemate    Reason = "stalemate"
	DrawReason   Reason = "draw"
	Resignation  Reason = "resignation"
	Adjudication Reason = "adjudication"
)

// Result describes a finished game.
type Result struct {
	Winner   rules.Color // NoColor for a draw
	Reason   Reason
	Detail   string // the specific draw rule, when Reason is DrawReason
	Plies    int
	Duration time.Duration
}

// Draw reports whether nobody won.
func (r Result) Draw() bool {
	return r.Winner == rules.NoColor
}

// Score returns the PGN result token.
func (r Result) Score() string {
	switch r.Winner {
	case rules.White:
		return "1-0"
	case rules.Black:
		return "0-1"
	}
	return "1/2-1/2"
}

// Won reports whether c won the game.
func (r Result) Won(c rules.Color) bool {
	return !r.Draw() && r.Winner == c
}

func (r Result) String() string {
	s := r.Score() + " by " + string(r.Reason)
	if r.Detail != "" {
		s += " (" + r.Detail + ")"
	}
	return s
}

var drawDetails = map[chess.Method]string{
	chess.InsufficientMaterial: "insufficient material",
	chess.ThreefoldRepetition:  "threefold repetition",
	chess.FivefoldRepetition:   "fivefold repetition",
	chess.FiftyMoveRule:        "fifty-move rule",
	chess.SeventyFiveMoveRule:  "seventy-five-move rule",
	chess.DrawOffer:            "agreement",
}

func resultOf(outcome chess.Outcome, method chess.Method) (rules.Color, Reason, string) {
	var winner rules.Color
	switch outcome {
	case chess.WhiteWon:
		winner = rules.White
	case chess.BlackWon:
		winner = rules.Black
	default:
		winner = rules.NoColor
	}

	switch method {
	case chess.Checkmate:
		return winner, Checkmate, ""
	case chess.Resignation:
		return winner, Resignation, ""
	case chess.Stalemate:
		return rules.NoColor, Stalemate, ""
	}
	return rules.NoColor, DrawReason, drawDetails[method]
}
