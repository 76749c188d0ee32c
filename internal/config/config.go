package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"

	"wolfbot/internal/domain"
)

// EnvPrefix is prepended to every runtime environment key the config reads.
const EnvPrefix = "WOLFBOT_"

// GameConfig controls session limits, phase lengths and the match runtime.
type GameConfig struct {
	DaySeconds   int  `json:"day_seconds" env:"DAY_SECONDS"`
	NightSeconds int  `json:"night_seconds" env:"NIGHT_SECONDS"`
	MinPlayers   int  `json:"min_players" env:"MIN_PLAYERS"`
	MaxPlayers   int  `json:"max_players" env:"MAX_PLAYERS"`
	RevealRoles  bool `json:"reveal_roles" env:"REVEAL_ROLES"`
	// Mode is the role table family a lobby starts with; the owner may pick another at start.
	Mode string `json:"mode" env:"MODE"`

	// TickRate is the number of match loop ticks per second.
	TickRate int `json:"tick_rate" env:"TICK_RATE"`
	// LobbyResetSeconds is how long a finished game stays visible before the match reopens its lobby.
	LobbyResetSeconds int `json:"lobby_reset_seconds" env:"LOBBY_RESET_SECONDS"`
	// LeavePenalty is the number of games a player sits out after leaving a running game.
	LeavePenalty int `json:"leave_penalty" env:"LEAVE_PENALTY"`
	// AutoSubscribe signs newly created accounts up for new-game notifications.
	AutoSubscribe bool `json:"auto_subscribe" env:"AUTO_SUBSCRIBE"`

	BotsEnabled     bool   `json:"bots_enabled" env:"BOTS_ENABLED"`
	BotLevel        string `json:"bot_level" env:"BOT_LEVEL"`
	BotFillSeconds  int    `json:"bot_fill_seconds" env:"BOT_FILL_SECONDS"`
	BotDelaySeconds int    `json:"bot_delay_seconds" env:"BOT_DELAY_SECONDS"`

	TicketSecret     string `json:"-" env:"TICKET_SECRET"`
	TicketIssuer     string `json:"ticket_issuer" env:"TICKET_ISSUER"`
	TicketTTLSeconds int    `json:"ticket_ttl_seconds" env:"TICKET_TTL_SECONDS"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() GameConfig {
	return GameConfig{
		DaySeconds:        120,
		NightSeconds:      120,
		MinPlayers:        4,
		MaxPlayers:        24,
		RevealRoles:       true,
		Mode:              string(domain.ModeDefault),
		TickRate:          1,
		LobbyResetSeconds: 10,
		LeavePenalty:      1,
		AutoSubscribe:     true,
		BotLevel:          "easy",
		BotFillSeconds:    30,
		BotDelaySeconds:   3,
		TicketIssuer:      "wolfbot",
		TicketTTLSeconds:  300,
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the process-wide configuration from path once. A
// missing file leaves the defaults in place.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		c, err := Load(path)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the process-wide configuration, or the defaults if
// LoadGameConfig was never called or failed.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Defaults()
	}
	return *cfg
}

// Load reads a JSON config file over the defaults.
func Load(path string) (GameConfig, error) {
	c := Defaults()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("failed to read game config: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return Defaults(), fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Defaults(), err
	}
	return c, nil
}

// WithEnv overlays prefixed keys from a runtime environment map, such as the
// one Nakama passes in RUNTIME_CTX_ENV. Keys that are absent keep their value.
func WithEnv(c GameConfig, environment map[string]string) (GameConfig, error) {
	out := c
	if err := env.ParseWithOptions(&out, env.Options{Environment: environment, Prefix: EnvPrefix}); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	if err := out.Validate(); err != nil {
		return c, err
	}
	return out, nil
}

// Validate checks the limits the engine depends on.
func (c GameConfig) Validate() error {
	switch {
	case c.DaySeconds <= 0 || c.NightSeconds <= 0:
		return fmt.Errorf("phase lengths must be positive (day=%d night=%d)", c.DaySeconds, c.NightSeconds)
	case c.MinPlayers < 4 || c.MaxPlayers < c.MinPlayers:
		return fmt.Errorf("invalid player limits %d..%d", c.MinPlayers, c.MaxPlayers)
	case c.TickRate <= 0:
		return fmt.Errorf("tick rate must be positive, got %d", c.TickRate)
	case c.LeavePenalty < 0:
		return fmt.Errorf("leave penalty must not be negative, got %d", c.LeavePenalty)
	}
	if _, ok := domain.ParseMode(c.Mode); !ok {
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	return nil
}

func (c GameConfig) DayDuration() time.Duration   { return time.Duration(c.DaySeconds) * time.Second }
func (c GameConfig) NightDuration() time.Duration { return time.Duration(c.NightSeconds) * time.Second }
func (c GameConfig) TicketTTL() time.Duration     { return time.Duration(c.TicketTTLSeconds) * time.Second }

// GameMode returns the configured mode, or the default for an unknown name.
func (c GameConfig) GameMode() domain.Mode {
	if m, ok := domain.ParseMode(c.Mode); ok {
		return m
	}
	return domain.ModeDefault
}

// Ticks converts a number of seconds into match loop ticks.
func (c GameConfig) Ticks(seconds int) int64 {
	return int64(seconds) * int64(c.TickRate)
}
