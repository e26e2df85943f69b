package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Difficulty represents the AI difficulty level. Its numeric value is also
// the search depth in plies.
type Difficulty int

const (
	Easy        Difficulty = iota + 1 // 1 ply, mostly random moves
	Medium                            // 2 ply
	Hard                              // 3 ply
	Grandmaster                       // 4 ply
)

// RandomMoveThreshold is compared against a uniform draw in [0,1) at Easy:
// a draw above it plays a random legal move instead of searching.
const RandomMoveThreshold = 0.2

var difficultyNames = map[Difficulty]string{
	Easy:        "easy",
	Medium:      "medium",
	Hard:        "hard",
	Grandmaster: "grandmaster",
}

func (d Difficulty) String() string {
	if name, ok := difficultyNames[d]; ok {
		return name
	}
	return "difficulty(" + strconv.Itoa(int(d)) + ")"
}

// Valid reports whether d is one of the four tiers.
func (d Difficulty) Valid() bool {
	return d >= Easy && d <= Grandmaster
}

// Clamp forces d into the supported range.
func (d Difficulty) Clamp() Difficulty {
	return min(max(d, Easy), Grandmaster)
}

// Depth returns the search depth for the tier.
func (d Difficulty) Depth() int {
	return int(d.Clamp())
}

// ParseDifficulty accepts a tier name or its number.
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		d := Difficulty(n)
		if !d.Valid() {
			return 0, fmt.Errorf("difficulty %d out of range 1-4", n)
		}
		return d, nil
	}
	for d, name := range difficultyNames {
		if name == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}
