package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
)

// Outcome is a finished game seen from the human player's side.
type Outcome int

const (
	Win Outcome = iota
	Loss
	Draw
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	case Draw:
		return "draw"
	}
	return "unknown"
}

// Preferences stores user settings.
type Preferences struct {
	Difficulty   int       `json:"difficulty"`
	PlayerColor  string    `json:"player_color"`
	SoundEnabled bool      `json:"sound_enabled"`
	LastPlayed   time.Time `json:"last_played"`
}

// DefaultPreferences returns default user preferences
func DefaultPreferences() *Preferences {
	return &Preferences{
		Difficulty:   2,
		PlayerColor:  "white",
		SoundEnabled: true,
	}
}

// PlayerStats accumulates results across sessions.
type PlayerStats struct {
	GamesPlayed          int         `json:"games_played"`
	Wins                 int         `json:"wins"`
	Losses               int         `json:"losses"`
	Draws                int         `json:"draws"`
	TotalMoves           int         `json:"total_moves"`
	TotalDurationSeconds int64       `json:"total_duration_seconds"`
	DifficultyHistory    map[int]int `json:"difficulty_history"`
	CurrentStreak        int         `json:"current_streak"`
	LongestWinStreak     int         `json:"longest_win_streak"`
}

// NewPlayerStats returns empty statistics
func NewPlayerStats() *PlayerStats {
	return &PlayerStats{DifficultyHistory: make(map[int]int)}
}

// GameResult is what the store needs to know about a completed game.
type GameResult struct {
	Outcome    Outcome
	Moves      int
	Duration   time.Duration
	Difficulty int
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens or creates the database in dir.
func Open(dir string) (*Storage, error) {
	return open(badger.DefaultOptions(dir))
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Storage, error) {
	opts = opts.WithLogger(badgerLogger{log.With().Str("component", "badger").Logger()})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})
	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes key into v, leaving v untouched when the key is absent.
func (s *Storage) get(key string, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()
	return s.put(keyPreferences, prefs)
}

// LoadPreferences loads user preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	if err := s.get(keyPreferences, prefs); err != nil {
		return nil, fmt.Errorf("loading preferences: %w", err)
	}
	return prefs, nil
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *PlayerStats) error {
	return s.put(keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*PlayerStats, error) {
	stats := NewPlayerStats()
	if err := s.get(keyStats, stats); err != nil {
		return nil, fmt.Errorf("loading stats: %w", err)
	}
	if stats.DifficultyHistory == nil {
		stats.DifficultyHistory = make(map[int]int)
	}
	return stats, nil
}

// ResetStats discards all recorded results.
func (s *Storage) ResetStats() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyStats))
	})
}

// RecordGame records a completed game and returns the updated statistics.
func (s *Storage) RecordGame(result GameResult) (*PlayerStats, error) {
	stats, err := s.LoadStats()
	if err != nil {
		return nil, err
	}
	stats.Apply(result)
	if err := s.SaveStats(stats); err != nil {
		return nil, fmt.Errorf("saving stats: %w", err)
	}
	return stats, nil
}

// Apply folds one result into the totals.
func (s *PlayerStats) Apply(result GameResult) {
	s.GamesPlayed++
	s.TotalMoves += result.Moves
	s.TotalDurationSeconds += int64(result.Duration / time.Second)
	s.DifficultyHistory[result.Difficulty]++

	switch result.Outcome {
	case Win:
		s.Wins++
		s.CurrentStreak++
		s.LongestWinStreak = max(s.LongestWinStreak, s.CurrentStreak)
	case Loss:
		s.Losses++
		s.CurrentStreak = 0
	case Draw:
		s.Draws++
		s.CurrentStreak = 0
	}
}

// WinRate returns the win rate as a percentage (0-100)
func (s *PlayerStats) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}

// AverageMoves returns the mean game length in moves.
func (s *PlayerStats) AverageMoves() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.TotalMoves) / float64(s.GamesPlayed)
}

// badgerLogger routes badger's warnings and errors into zerolog and drops
// its chatty info and debug output.
type badgerLogger struct {
	l zerolog.Logger
}

func (b badgerLogger) Errorf(format string, args ...any)   { b.l.Error().Msgf(format, args...) }
func (b badgerLogger) Warningf(format string, args ...any) { b.l.Warn().Msgf(format, args...) }
func (b badgerLogger) Infof(string, ...any)                {}
func (b badgerLogger) Debugf(string, ...any)               {}
