// Package config loads settings from flags, SHELLCHESS_* environment
// variables and an optional shellchess.yaml, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hailam/shellchess/internal/engine"
	"github.com/hailam/shellchess/internal/rules"
	"github.com/hailam/shellchess/internal/storage"
)

// Setting keys. Flags, env vars (upper case, '-' as '_') and file keys share
// these names.
const (
	KeyConfigFile    = "config"
	KeyDifficulty    = "difficulty"
	KeyPlayerColor   = "player-color"
	KeyDataDir       = "data-dir"
	KeyLogLevel      = "log-level"
	KeyLogPretty     = "log-pretty"
	KeyVerifyRestore = "verify-restore"
	KeyArchive       = "archive"
	KeyNatsURL       = "nats-url"
	KeyNatsSubject   = "nats-subject"
	KeyArenaGames    = "arena-games"
	KeyArenaWorkers  = "arena-workers"
	KeyArenaWhite    = "arena-white"
	KeyArenaBlack    = "arena-black"
	KeyArenaMaxPlies = "arena-max-plies"
	KeySuite         = "suite"
	KeyCPUProfile    = "cpu-profile"
)

// Config wraps a viper instance.
type Config struct {
	*viper.Viper
}

// New returns a config holding only defaults.
func New() *Config {
	v := viper.New()
	v.SetEnvPrefix("SHELLCHESS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return &Config{Viper: v}
}

func flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String(KeyConfigFile, "", "path to a config file (yaml)")
	fs.String(KeyDifficulty, "2", "engine difficulty: 1-4 or easy, medium, hard, grandmaster")
	fs.String(KeyPlayerColor, "white", "color played by the human: white or black")
	fs.String(KeyDataDir, "", "directory for the stats database and game archive")
	fs.String(KeyLogLevel, "info", "log level: debug, info, warn, error, disabled")
	fs.Bool(KeyLogPretty, true, "human-readable console logs instead of JSON")
	fs.Bool(KeyVerifyRestore, false, "check that searches leave the position unchanged")
	fs.Bool(KeyArchive, true, "store finished games in the sqlite archive")
	fs.String(KeyNatsURL, "nats://127.0.0.1:4222", "NATS server for the move service")
	fs.String(KeyNatsSubject, "shellchess.move", "subject the move service answers on")
	fs.Int(KeyArenaGames, 10, "number of arena games")
	fs.Int(KeyArenaWorkers, 4, "arena games played at once")
	fs.String(KeyArenaWhite, "2", "difficulty of the engine playing White in the arena")
	fs.String(KeyArenaBlack, "2", "difficulty of the engine playing Black in the arena")
	fs.Int(KeyArenaMaxPlies, 200, "arena games reaching this many plies are drawn")
	fs.String(KeySuite, "", "bench suite file (yaml); empty uses the built-in suite")
	fs.String(KeyCPUProfile, "", "write a CPU profile to this file")
	return fs
}

// Load parses args and reads the config file if one is found. It returns
// the positional arguments left over.
func (c *Config) Load(name string, args []string) ([]string, error) {
	fs := flagSet(name)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := c.BindPFlags(fs); err != nil {
		return nil, err
	}

	if path := c.GetString(KeyConfigFile); path != "" {
		c.SetConfigFile(path)
	} else {
		c.SetConfigName("shellchess")
		c.SetConfigType("yaml")
		c.AddConfigPath(".")
		if dir, err := c.DataDir(); err == nil {
			c.AddConfigPath(dir)
		}
	}
	if err := c.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return fs.Args(), nil
}

// Difficulty returns the configured engine tier.
func (c *Config) Difficulty() (engine.Difficulty, error) {
	return c.difficulty(KeyDifficulty)
}

// ArenaDifficulties returns the tiers of the White and Black arena engines.
func (c *Config) ArenaDifficulties() (white, black engine.Difficulty, err error) {
	if white, err = c.difficulty(KeyArenaWhite); err != nil {
		return 0, 0, err
	}
	if black, err = c.difficulty(KeyArenaBlack); err != nil {
		return 0, 0, err
	}
	return white, black, nil
}

func (c *Config) difficulty(key string) (engine.Difficulty, error) {
	d, err := engine.ParseDifficulty(c.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// PlayerColor returns the configured human color.
func (c *Config) PlayerColor() (rules.Color, error) {
	s := c.GetString(KeyPlayerColor)
	col, ok := rules.ParseColor(s)
	if !ok {
		return rules.NoColor, fmt.Errorf("%s: unknown color %q", KeyPlayerColor, s)
	}
	return col, nil
}

// DataDir returns the configured data directory or the platform default.
func (c *Config) DataDir() (string, error) {
	if dir := c.GetString(KeyDataDir); dir != "" {
		return dir, nil
	}
	return storage.GetDataDir()
}

// SanitizedSettings returns all settings for logging.
func (c *Config) SanitizedSettings() map[string]any {
	settings := c.AllSettings()
	if u, ok := settings[KeyNatsURL].(string); ok && strings.Contains(u, "@") {
		settings[KeyNatsURL] = "<redacted>"
	}
	return settings
}
