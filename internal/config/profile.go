package config

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/rs/zerolog/log"
)

// StartProfile starts CPU profiling to the configured file, if any. The
// returned function stops profiling and is never nil.
func (c *Config) StartProfile() (stop func(), err error) {
	path := c.GetString(KeyCPUProfile)
	if path == "" {
		return func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("could not start CPU profile: %w", err)
	}
	log.Info().Str("path", path).Msg("CPU profiling enabled")
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}
