// Package arena plays engine-vs-engine matches.
package arena

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/shellchess/internal/archive"
	"github.com/hailam/shellchess/internal/engine"
	"github.com/hailam/shellchess/internal/game"
	"github.com/hailam/shellchess/internal/rules"
)

var ErrNoGames = errors.New("arena needs at least one game")

// Options configures a match.
type Options struct {
	Games    int
	Workers  int
	White    engine.Difficulty
	Black    engine.Difficulty
	MaxPlies int
	// FEN is the start position of every game; empty means the standard one.
	FEN string
	// Archive, if set, receives every finished game.
	Archive *archive.Archive
	// OnGame is called as games finish, from the worker goroutines.
	OnGame func(GameReport)
}

// GameReport is one finished arena game.
type GameReport struct {
	Index  int
	Result game.Result
	PGN    string
}

// Run plays opts.Games games, at most opts.Workers at a time. Every game
// has its own session and engine. A cancelled ctx stops the match between
// moves and Run returns the context error.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Games <= 0 {
		return nil, ErrNoGames
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.MaxPlies <= 0 {
		opts.MaxPlies = 200
	}
	opts.White, opts.Black = opts.White.Clamp(), opts.Black.Clamp()

	start := time.Now()
	games := make([]GameReport, opts.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i := range opts.Games {
		g.Go(func() error {
			gr, err := playGame(ctx, i, opts)
			if err != nil {
				return err
			}
			games[i] = gr
			if opts.OnGame != nil {
				opts.OnGame(gr)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := newReport(opts.White, opts.Black, games)
	rep.Elapsed = time.Since(start)
	return rep, nil
}

func playGame(ctx context.Context, index int, opts Options) (GameReport, error) {
	s, err := game.New(game.Options{HumanColor: rules.NoColor, Difficulty: opts.White, FEN: opts.FEN})
	if err != nil {
		return GameReport{}, err
	}

	for !s.Over() {
		if err := ctx.Err(); err != nil {
			return GameReport{}, err
		}
		if s.Plies() >= opts.MaxPlies {
			s.Adjudicate()
			break
		}
		if s.Turn() == rules.White {
			s.SetDifficulty(opts.White)
		} else {
			s.SetDifficulty(opts.Black)
		}
		if _, err := s.EngineMove(); err != nil {
			return GameReport{}, fmt.Errorf("game %d: %w", index, err)
		}
		s.ClaimDraw()
	}

	r, _ := s.Result()
	gr := GameReport{Index: index, Result: r, PGN: s.PGN()}
	log.Debug().Int("game", index).Str("result", r.String()).Int("plies", r.Plies).Msg("arena game finished")

	if opts.Archive != nil {
		_, err := opts.Archive.Save(ctx, archive.Record{
			PlayedAt:   time.Now(),
			White:      "shellchess " + opts.White.String(),
			Black:      "shellchess " + opts.Black.String(),
			Result:     r.Score(),
			Reason:     string(r.Reason),
			Difficulty: int(opts.White),
			Plies:      r.Plies,
			Duration:   r.Duration,
			PGN:        gr.PGN,
		})
		if err != nil {
			return GameReport{}, fmt.Errorf("archiving game %d: %w", index, err)
		}
	}
	return gr, nil
}
