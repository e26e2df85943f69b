package arena

import (
	"bytes"
	"context"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/shellchess/internal/archive"
	"github.com/hailam/shellchess/internal/engine"
	"github.com/hailam/shellchess/internal/game"
	"github.com/hailam/shellchess/internal/rules"
)

const whiteMates = "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"

func TestRunAdjudicatesLongGames(t *testing.T) {
	rep, err := Run(context.Background(), Options{
		Games:    3,
		Workers:  2,
		White:    engine.Easy,
		Black:    engine.Easy,
		MaxPlies: 6,
	})
	require.NoError(t, err)
	require.Len(t, rep.Games, 3)
	assert.Equal(t, 3, rep.WhiteWins+rep.BlackWins+rep.Draws)
	for i, g := range rep.Games {
		assert.Equal(t, i, g.Index)
		assert.LessOrEqual(t, g.Result.Plies, 6)
		if g.Result.Reason == game.Adjudication {
			assert.Equal(t, 6, g.Result.Plies)
			assert.True(t, g.Result.Draw())
		}
	}
}

func TestRunFromPosition(t *testing.T) {
	ctx := context.Background()
	arch, err := archive.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer arch.Close()

	var finished atomic.Int32
	rep, err := Run(ctx, Options{
		Games:   4,
		Workers: 4,
		White:   engine.Medium,
		Black:   engine.Easy,
		FEN:     whiteMates,
		Archive: arch,
		OnGame:  func(GameReport) { finished.Add(1) },
	})
	require.NoError(t, err)
	assert.Equal(t, int32(4), finished.Load())
	assert.Equal(t, 4, rep.WhiteWins)
	assert.Equal(t, 1.0, rep.Score())
	assert.Equal(t, 1.0, rep.MeanPlies)
	assert.Zero(t, rep.StdDevPlies)
	for _, g := range rep.Games {
		assert.Equal(t, game.Checkmate, g.Result.Reason)
		assert.Contains(t, g.PGN, "Ra8#")
	}

	n, err := arch.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	results, err := arch.Results(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, results["1-0"])

	diff, _ := rep.Elo(95)
	assert.True(t, math.IsInf(diff, 1))
	var buf bytes.Buffer
	require.NoError(t, rep.Write(&buf))
	assert.NotContains(t, buf.String(), "Elo difference")
	assert.NotContains(t, buf.String(), "Game length distribution")
}

func TestRunErrors(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrNoGames)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, Options{Games: 2})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = Run(context.Background(), Options{Games: 1, FEN: "8/8/8 w - - 0 1"})
	assert.ErrorIs(t, err, rules.ErrInvalidFEN)
}

func TestReport(t *testing.T) {
	games := []GameReport{
		{Index: 0, Result: game.Result{Winner: rules.White, Reason: game.Checkmate, Plies: 10}},
		{Index: 1, Result: game.Result{Winner: rules.NoColor, Reason: game.Adjudication, Plies: 20}},
		{Index: 2, Result: game.Result{Winner: rules.Black, Reason: game.Checkmate, Plies: 30}},
	}
	rep := newReport(engine.Hard, engine.Medium, games)
	assert.Equal(t, 1, rep.WhiteWins)
	assert.Equal(t, 1, rep.BlackWins)
	assert.Equal(t, 1, rep.Draws)
	assert.Equal(t, 0.5, rep.Score())
	assert.InDelta(t, 20.0, rep.MeanPlies, 1e-9)
	assert.InDelta(t, 10.0, rep.StdDevPlies, 1e-9)

	diff, margin := rep.Elo(95)
	assert.InDelta(t, 0, diff, 1e-9)
	assert.Greater(t, margin, 0.0)

	var buf bytes.Buffer
	require.NoError(t, rep.Write(&buf))
	out := buf.String()
	assert.Contains(t, out, "hard (White) vs medium (Black), 3 games")
	assert.Contains(t, out, "Elo difference: 0 +/-")
	assert.Contains(t, out, "Game length distribution:")
}

func TestZVal(t *testing.T) {
	assert.InDelta(t, 1.96, zVal(95), 0.01)
}
