package storage

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPreferences(t *testing.T) {
	s := openTest(t)

	prefs, err := s.LoadPreferences()
	require.NoError(t, err)
	assert.Equal(t, 2, prefs.Difficulty)
	assert.Equal(t, "white", prefs.PlayerColor)
	assert.True(t, prefs.SoundEnabled)

	prefs.Difficulty = 4
	prefs.PlayerColor = "black"
	prefs.SoundEnabled = false
	require.NoError(t, s.SavePreferences(prefs))
	assert.False(t, prefs.LastPlayed.IsZero())

	loaded, err := s.LoadPreferences()
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Difficulty)
	assert.Equal(t, "black", loaded.PlayerColor)
	assert.False(t, loaded.SoundEnabled)
}

func TestFirstLaunch(t *testing.T) {
	s := openTest(t)
	first, err := s.IsFirstLaunch()
	require.NoError(t, err)
	assert.True(t, first)

	require.NoError(t, s.MarkFirstLaunchComplete())
	first, err = s.IsFirstLaunch()
	require.NoError(t, err)
	assert.False(t, first)
}

func TestRecordGame(t *testing.T) {
	s := openTest(t)

	results := []GameResult{
		{Outcome: Win, Moves: 40, Duration: 90 * time.Second, Difficulty: 1},
		{Outcome: Win, Moves: 30, Duration: 60 * time.Second, Difficulty: 2},
		{Outcome: Loss, Moves: 22, Duration: 45 * time.Second, Difficulty: 3},
		{Outcome: Draw, Moves: 8, Duration: 1500 * time.Millisecond, Difficulty: 2},
	}
	for _, r := range results {
		_, err := s.RecordGame(r)
		require.NoError(t, err)
	}

	stats, err := s.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, 4, stats.GamesPlayed)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.Equal(t, 1, stats.Draws)
	assert.Equal(t, 100, stats.TotalMoves)
	assert.Equal(t, int64(196), stats.TotalDurationSeconds)
	assert.Equal(t, map[int]int{1: 1, 2: 2, 3: 1}, stats.DifficultyHistory)
	assert.Equal(t, 2, stats.LongestWinStreak)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.InDelta(t, 50.0, stats.WinRate(), 1e-9)
	assert.InDelta(t, 25.0, stats.AverageMoves(), 1e-9)

	require.NoError(t, s.ResetStats())
	stats, err = s.LoadStats()
	require.NoError(t, err)
	assert.Zero(t, stats.GamesPlayed)
	assert.Empty(t, stats.DifficultyHistory)
	assert.Zero(t, stats.WinRate())
}

func TestOpenOnDisk(t *testing.T) {
	dir, err := DatabaseDir(t.TempDir())
	require.NoError(t, err)

	s, err := Open(dir)
	require.NoError(t, err)
	_, err = s.RecordGame(GameResult{Outcome: Win, Moves: 10, Difficulty: 2})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()
	stats, err := s.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Wins)
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	dataDir, err := GetDataDir()
	require.NoError(t, err)
	assert.NotEmpty(t, dataDir)

	_, err = os.Stat(dataDir)
	assert.NoError(t, err)
	assert.Contains(t, ArchivePath(dataDir), "games.sqlite")
	t.Logf("Data directory: %s", dataDir)
}
