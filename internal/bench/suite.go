// Package bench runs the engine over suites of positions and reports how
// much work each search took.
package bench

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hailam/shellchess/internal/rules"
)

//go:embed default.yaml
var defaultSuite []byte

var ErrEmptySuite = errors.New("suite has no positions")

// Position is one suite entry. Expect lists acceptable moves in UCI form;
// "0000" stands for "no legal move".
type Position struct {
	Name       string   `yaml:"name"`
	FEN        string   `yaml:"fen"`
	Difficulty int      `yaml:"difficulty"`
	Expect     []string `yaml:"expect,omitempty"`
}

// Suite is an ordered list of positions.
type Suite []Position

// LoadSuite decodes a YAML suite and checks every entry.
func LoadSuite(r io.Reader) (Suite, error) {
	var s Suite
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptySuite
		}
		return nil, fmt.Errorf("decoding suite: %w", err)
	}
	if len(s) == 0 {
		return nil, ErrEmptySuite
	}
	for i, p := range s {
		if p.Name == "" {
			s[i].Name = fmt.Sprintf("position %d", i+1)
		}
		if err := rules.ValidateFEN(p.FEN); err != nil {
			return nil, fmt.Errorf("%s: %w", s[i].Name, err)
		}
	}
	return s, nil
}

// LoadSuiteFile reads a suite from path.
func LoadSuiteFile(path string) (Suite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSuite(f)
}

// DefaultSuite returns the built-in suite.
func DefaultSuite() Suite {
	var s Suite
	if err := yaml.Unmarshal(defaultSuite, &s); err != nil {
		panic(err)
	}
	return s
}
