package app

import "time"

const (
	// GunnerHitChance is the probability that a plain gunner's shot lands.
	GunnerHitChance = 0.8

	// DefaultDayDuration and DefaultNightDuration apply when no config overrides them.
	DefaultDayDuration   = 120 * time.Second
	DefaultNightDuration = 120 * time.Second
)
