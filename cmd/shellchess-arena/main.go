// shellchess-arena plays the engine against itself at two difficulties.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/hailam/shellchess/internal/archive"
	"github.com/hailam/shellchess/internal/arena"
	"github.com/hailam/shellchess/internal/config"
	"github.com/hailam/shellchess/internal/storage"
)

func main() {
	cfg := config.New()
	if _, err := cfg.Load("shellchess-arena", os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	if err := cfg.Logging(); err != nil {
		log.Fatal().Err(err).Msg("setting up logging")
	}
	white, black, err := cfg.ArenaDifficulties()
	if err != nil {
		log.Fatal().Err(err).Msg("bad arena difficulty")
	}

	stop, err := cfg.StartProfile()
	if err != nil {
		log.Fatal().Err(err).Msg("profiling")
	}
	defer stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := arena.Options{
		Games:    cfg.GetInt(config.KeyArenaGames),
		Workers:  cfg.GetInt(config.KeyArenaWorkers),
		White:    white,
		Black:    black,
		MaxPlies: cfg.GetInt(config.KeyArenaMaxPlies),
		OnGame: func(g arena.GameReport) {
			log.Info().Int("game", g.Index).Str("result", g.Result.String()).Int("plies", g.Result.Plies).Msg("finished")
		},
	}
	if cfg.GetBool(config.KeyArchive) {
		dataDir, err := cfg.DataDir()
		if err != nil {
			log.Fatal().Err(err).Msg("no data directory")
		}
		arch, err := archive.Open(ctx, storage.ArchivePath(dataDir))
		if err != nil {
			log.Fatal().Err(err).Msg("opening archive")
		}
		defer arch.Close()
		opts.Archive = arch
	}

	rep, err := arena.Run(ctx, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("arena")
	}
	if err := rep.Write(os.Stdout); err != nil {
		log.Error().Err(err).Msg("writing report")
	}
}
