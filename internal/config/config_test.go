package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"wolfbot/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game_config.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{"day_seconds": 60, "min_players": 6, "bots_enabled": true}`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.DaySeconds != 60 || c.MinPlayers != 6 || !c.BotsEnabled {
		t.Fatalf("Load() = %+v, want file values", c)
	}
	if c.NightSeconds != Defaults().NightSeconds || c.MaxPlayers != 24 {
		t.Fatalf("unset fields should keep defaults, got %+v", c)
	}
	if c.DayDuration() != time.Minute {
		t.Fatalf("DayDuration() = %v, want 1m", c.DayDuration())
	}
}

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c != Defaults() {
		t.Fatalf("Load() = %+v, want defaults", c)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"day_seconds": `},
		{name: "zero night", body: `{"night_seconds": 0}`},
		{name: "too few players", body: `{"min_players": 3}`},
		{name: "max below min", body: `{"min_players": 8, "max_players": 6}`},
		{name: "unknown mode", body: `{"mode": "lycan"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Fatalf("Load(%s) error = nil", tt.body)
			}
		})
	}
}

func TestWithEnv(t *testing.T) {
	c, err := WithEnv(Defaults(), map[string]string{
		"WOLFBOT_NIGHT_SECONDS": "45",
		"WOLFBOT_REVEAL_ROLES":  "false",
		"WOLFBOT_TICKET_SECRET": "s3cret",
		"WOLFBOT_MODE":          "noreveal",
		"NIGHT_SECONDS":         "999",
	})
	if err != nil {
		t.Fatalf("WithEnv() error: %v", err)
	}
	if c.NightSeconds != 45 || c.RevealRoles || c.TicketSecret != "s3cret" || c.GameMode() != domain.ModeNoReveal {
		t.Fatalf("WithEnv() = %+v", c)
	}
	if c.DaySeconds != Defaults().DaySeconds {
		t.Fatalf("absent keys must keep their value, DaySeconds = %d", c.DaySeconds)
	}
}

func TestWithEnvKeepsConfigOnError(t *testing.T) {
	base := Defaults()
	tests := map[string]string{
		"unparsable": "soon",
		"invalid":    "-5",
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := WithEnv(base, map[string]string{"WOLFBOT_DAY_SECONDS": value})
			if err == nil {
				t.Fatalf("WithEnv(%q) error = nil", value)
			}
			if c != base {
				t.Fatalf("WithEnv() on error = %+v, want input unchanged", c)
			}
		})
	}
}

func TestTicks(t *testing.T) {
	c := Defaults()
	c.TickRate = 5
	if got := c.Ticks(3); got != 15 {
		t.Fatalf("Ticks(3) = %d, want 15", got)
	}
}
