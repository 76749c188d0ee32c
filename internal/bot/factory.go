package bot

import (
	"fmt"
	"math/rand"
	"strings"
)

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelEasy BotLevel = iota
	BotLevelSmart
)

func (l BotLevel) String() string {
	if l == BotLevelSmart {
		return "smart"
	}
	return "easy"
}

// ParseLevel maps a configured difficulty name to a level.
func ParseLevel(name string) (BotLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "easy", "random":
		return BotLevelEasy, nil
	case "medium", "hard", "smart":
		return BotLevelSmart, nil
	default:
		return BotLevelEasy, fmt.Errorf("unknown bot level: %q", name)
	}
}

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel, rng *rand.Rand) (Brain, error) {
	switch level {
	case BotLevelEasy:
		return NewRandomBot(rng), nil
	case BotLevelSmart:
		return NewSmartBot(rng, DefaultTuning), nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
