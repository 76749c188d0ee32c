package bot

import "wolfbot/internal/bot/brain"

// Tuning holds the thresholds the smart strategy plays by.
type Tuning struct {
	Weights brain.Weights
	// KillThreshold is the suspicion a village killer needs before shooting blind.
	KillThreshold float64
	// ShootThreshold is the suspicion a gunner needs before firing at someone not known to be a wolf.
	ShootThreshold float64
	// BandwagonVotes is how many votes a leader needs before the bot joins in.
	BandwagonVotes int
	// RevealMayorDay is the first day a mayor discloses the template.
	RevealMayorDay int
}

// DefaultTuning is tuned against the random strategy in simulated games.
var DefaultTuning = Tuning{
	Weights: brain.Weights{
		VoteAgainstSelf:    1.0,
		VoteAgainstCleared: 1.5,
		VoteAgainstWolf:    -1.0,
	},
	KillThreshold:  2.0,
	ShootThreshold: 2.5,
	BandwagonVotes: 2,
	RevealMayorDay: 2,
}
