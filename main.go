// shellchess - play chess against the engine in a terminal.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/hailam/shellchess/internal/archive"
	"github.com/hailam/shellchess/internal/config"
	"github.com/hailam/shellchess/internal/shell"
	"github.com/hailam/shellchess/internal/storage"
)

func main() {
	cfg := config.New()
	if _, err := cfg.Load("shellchess", os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	if err := cfg.Logging(); err != nil {
		log.Fatal().Err(err).Msg("setting up logging")
	}
	log.Debug().Interface("config", cfg.SanitizedSettings()).Msg("starting shellchess")

	d, err := cfg.Difficulty()
	if err != nil {
		log.Fatal().Err(err).Msg("bad difficulty")
	}
	col, err := cfg.PlayerColor()
	if err != nil {
		log.Fatal().Err(err).Msg("bad player color")
	}
	dataDir, err := cfg.DataDir()
	if err != nil {
		log.Fatal().Err(err).Msg("no data directory")
	}

	stop, err := cfg.StartProfile()
	if err != nil {
		log.Fatal().Err(err).Msg("profiling")
	}
	defer stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := shell.Options{
		Out:           os.Stdout,
		VerifyRestore: cfg.GetBool(config.KeyVerifyRestore),
		HistoryFile:   filepath.Join(dataDir, "history"),
	}
	// Flags and env only override saved preferences when given explicitly.
	if cfg.IsSet(config.KeyDifficulty) {
		opts.Difficulty = d
	}
	if cfg.IsSet(config.KeyPlayerColor) {
		opts.PlayerColor = col.String()
	}

	dbDir, err := storage.DatabaseDir(dataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("creating database directory")
	}
	store, err := storage.Open(dbDir)
	if err != nil {
		log.Fatal().Err(err).Msg("opening statistics database")
	}
	defer store.Close()
	opts.Store = store

	if cfg.GetBool(config.KeyArchive) {
		arch, err := archive.Open(ctx, storage.ArchivePath(dataDir))
		if err != nil {
			log.Error().Err(err).Msg("game archive disabled")
		} else {
			defer arch.Close()
			opts.Archive = arch
		}
	}

	sc, err := shell.New(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("starting shell")
	}
	if err := sc.Loop(ctx); err != nil {
		log.Error().Err(err).Msg("shell")
	}
}
