// Package game runs a chess game between a human and the engine, or between
// two engine sides, on top of a notnil/chess game record.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"

	"github.com/hailam/shellchess/internal/engine"
	"github.com/hailam/shellchess/internal/rules"
	"github.com/hailam/shellchess/internal/rules/notnil"
)

var (
	ErrGameOver      = errors.New("game is over")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrIllegalMove   = rules.ErrIllegalMove
	ErrNoHumanPlayer = errors.New("no human player in this game")
	ErrEngineNoMove  = errors.New("engine found no move")
)

// Ply is one move as played.
type Ply struct {
	SAN     string
	UCI     string
	Color   rules.Color
	Capture bool
	Check   bool
}

// Options configures a new Session.
type Options struct {
	// HumanColor is the side the human plays, or rules.NoColor when both
	// sides are played by the engine.
	HumanColor rules.Color
	Difficulty engine.Difficulty
	// FEN is the starting position; empty means the standard one.
	FEN string
	// Engine is shared by all engine moves of the session; nil creates one.
	Engine *engine.Engine[notnil.Move]
}

// Session is a single game. It is not safe for concurrent use.
type Session struct {
	game       *chess.Game
	startFEN   string
	human      rules.Color
	difficulty engine.Difficulty
	eng        *engine.Engine[notnil.Move]
	started    time.Time

	adjudicated bool
	finished    time.Time

	// OnPly is called after every move, from either side.
	OnPly func(Ply)
}

// New starts a session.
func New(opts Options) (*Session, error) {
	g, err := newChessGame(opts.FEN)
	if err != nil {
		return nil, err
	}
	eng := opts.Engine
	if eng == nil {
		eng = engine.NewEngine[notnil.Move]()
	}
	d := opts.Difficulty
	if d == 0 {
		d = engine.Medium
	}
	return &Session{
		game:       g,
		startFEN:   opts.FEN,
		human:      opts.HumanColor,
		difficulty: d.Clamp(),
		eng:        eng,
		started:    time.Now(),
	}, nil
}

func newChessGame(fen string) (*chess.Game, error) {
	if fen == "" {
		return chess.NewGame(), nil
	}
	if err := rules.ValidateFEN(fen); err != nil {
		return nil, fmt.Errorf("%w: %q", err, fen)
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rules.ErrInvalidFEN, err)
	}
	return chess.NewGame(opt), nil
}

// HumanColor returns the side played by the human.
func (s *Session) HumanColor() rules.Color { return s.human }

// Difficulty returns the engine tier.
func (s *Session) Difficulty() engine.Difficulty { return s.difficulty }

// SetDifficulty changes the engine tier for the following engine moves.
func (s *Session) SetDifficulty(d engine.Difficulty) {
	s.difficulty = d.Clamp()
}

// Turn returns the side to move.
func (s *Session) Turn() rules.Color {
	if s.game.Position().Turn() == chess.White {
		return rules.White
	}
	return rules.Black
}

// HumanToMove reports whether the next move is the human's.
func (s *Session) HumanToMove() bool {
	return !s.Over() && s.Turn() == s.human
}

// Over reports whether the game has ended.
func (s *Session) Over() bool {
	return s.adjudicated || s.game.Outcome() != chess.NoOutcome
}

// HumanMove plays text (SAN or UCI) for the human.
func (s *Session) HumanMove(text string) (Ply, error) {
	switch {
	case s.Over():
		return Ply{}, ErrGameOver
	case s.human == rules.NoColor:
		return Ply{}, ErrNoHumanPlayer
	case s.Turn() != s.human:
		return Ply{}, ErrNotYourTurn
	}
	m, err := notnil.FindMove(s.game.Position(), text)
	if err != nil {
		return Ply{}, err
	}
	return s.play(m)
}

// EngineMove lets the engine choose and play a move for the side to move.
func (s *Session) EngineMove() (Ply, error) {
	switch {
	case s.Over():
		return Ply{}, ErrGameOver
	case s.Turn() == s.human:
		return Ply{}, ErrNotYourTurn
	}
	m, ok := s.eng.SelectMove(notnil.FromGame(s.game), s.difficulty)
	if !ok {
		return Ply{}, ErrEngineNoMove
	}
	return s.play(m)
}

func (s *Session) play(m *chess.Move) (Ply, error) {
	pos := s.game.Position()
	ply := Ply{
		SAN:     notnil.SAN(pos, m),
		UCI:     m.String(),
		Color:   s.Turn(),
		Capture: m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant),
		Check:   m.HasTag(chess.Check),
	}
	if err := s.game.Move(m); err != nil {
		return Ply{}, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	if s.Over() {
		s.finished = time.Now()
	}
	log.Debug().Str("san", ply.SAN).Str("color", ply.Color.String()).Msg("move")
	if s.OnPly != nil {
		s.OnPly(ply)
	}
	return ply, nil
}

// Undo takes back the last two plies, the engine's reply and the human move
// before it, or a single ply when only one has been played.
func (s *Session) Undo() error {
	moves := s.game.Moves()
	if len(moves) == 0 {
		return ErrNothingToUndo
	}
	keep := len(moves) - min(2, len(moves))
	g, err := s.replay(keep)
	if err != nil {
		return err
	}
	s.game = g
	s.adjudicated = false
	s.finished = time.Time{}
	return nil
}

// replay rebuilds the game from the start with its first n moves.
func (s *Session) replay(n int) (*chess.Game, error) {
	g, err := newChessGame(s.startFEN)
	if err != nil {
		return nil, err
	}
	for _, m := range s.game.Moves()[:n] {
		found, err := notnil.FindMove(g.Position(), m.String())
		if err != nil {
			return nil, err
		}
		if err := g.Move(found); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Resign ends the game in favor of the engine.
func (s *Session) Resign() error {
	if s.Over() {
		return ErrGameOver
	}
	loser := s.human
	if loser == rules.NoColor {
		loser = s.Turn()
	}
	s.game.Resign(notnil.ChessColor(loser))
	s.finished = time.Now()
	return nil
}

// ClaimDraw ends the game if a threefold repetition or fifty-move draw can
// be claimed. It reports whether the game was drawn.
func (s *Session) ClaimDraw() bool {
	if s.Over() {
		return false
	}
	for _, m := range s.game.EligibleDraws() {
		if m == chess.ThreefoldRepetition || m == chess.FiftyMoveRule {
			if err := s.game.Draw(m); err == nil {
				s.finished = time.Now()
				return true
			}
		}
	}
	return false
}

// Adjudicate ends an unfinished game as a draw.
func (s *Session) Adjudicate() {
	if s.Over() {
		return
	}
	s.adjudicated = true
	s.finished = time.Now()
}

// Result describes the finished game. ok is false while it is in progress.
func (s *Session) Result() (Result, bool) {
	if !s.Over() {
		return Result{}, false
	}
	r := Result{
		Plies:    len(s.game.Moves()),
		Duration: s.finished.Sub(s.started),
	}
	if s.adjudicated {
		r.Winner, r.Reason = rules.NoColor, Adjudication
		return r, true
	}
	r.Winner, r.Reason, r.Detail = resultOf(s.game.Outcome(), s.game.Method())
	return r, true
}

// Plies returns the number of moves played.
func (s *Session) Plies() int {
	return len(s.game.Moves())
}

// History returns the moves played in SAN.
func (s *Session) History() []string {
	positions := s.game.Positions()
	moves := s.game.Moves()
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = notnil.SAN(positions[i], m)
	}
	return out
}

// LegalMoves returns the moves available to the side to move, in SAN.
func (s *Session) LegalMoves() []string {
	pos := s.game.Position()
	var out []string
	for _, m := range pos.ValidMoves() {
		out = append(out, notnil.SAN(pos, m))
	}
	return out
}

// PGN returns the game record.
func (s *Session) PGN() string {
	return s.game.String()
}

// FEN returns the current position.
func (s *Session) FEN() string {
	return s.game.FEN()
}

// Board draws the current position.
func (s *Session) Board() string {
	return rules.Draw(notnil.FromGame(s.game))
}

// InCheck reports whether the side to move is in check.
func (s *Session) InCheck() bool {
	return notnil.FromGame(s.game).InCheck()
}

// Elapsed returns the time since the session started.
func (s *Session) Elapsed() time.Duration {
	if !s.finished.IsZero() {
		return s.finished.Sub(s.started)
	}
	return time.Since(s.started)
}
