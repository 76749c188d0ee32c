package domain

// StatusEffect is a single flag in a player's status set.
type StatusEffect uint8

const (
	// StatusProtected blocks one lethal attack tonight.
	StatusProtected StatusEffect = 1 << iota
	// StatusInjured keeps the player from voting.
	StatusInjured
	// StatusSilenced keeps the player from voting and from using abilities.
	StatusSilenced
	// StatusCharmed marks a player charmed by the piper.
	StatusCharmed
	// StatusRevealed marks a role that has been disclosed to everybody.
	StatusRevealed
)

var statusNames = map[StatusEffect]string{
	StatusProtected: "protected",
	StatusInjured:   "injured",
	StatusSilenced:  "silenced",
	StatusCharmed:   "charmed",
	StatusRevealed:  "revealed",
}

func (e StatusEffect) String() string { return statusNames[e] }

// StatusSet is a bit set of status effects.
type StatusSet uint8

// Has reports whether e is set.
func (s StatusSet) Has(e StatusEffect) bool { return s&StatusSet(e) != 0 }

// With returns the set with e added.
func (s StatusSet) With(e StatusEffect) StatusSet { return s | StatusSet(e) }

// Without returns the set with e removed.
func (s StatusSet) Without(e StatusEffect) StatusSet { return s &^ StatusSet(e) }

// Expiry names the end of a specific night or day. The zero value never expires.
type Expiry struct {
	Phase Phase
	Count int
}

// EndOfNight expires at the end of night n.
func EndOfNight(n int) Expiry { return Expiry{Phase: PhaseNight, Count: n} }

// EndOfDay expires at the end of day n.
func EndOfDay(n int) Expiry { return Expiry{Phase: PhaseDay, Count: n} }

// Due reports whether the expiry has been reached when the given phase number ends.
func (e Expiry) Due(phase Phase, count int) bool {
	return e.Phase == phase && e.Count <= count
}

// ExpireStatuses drops every status that ends with the given phase.
func (p *Player) ExpireStatuses(phase Phase, count int) {
	for effect, until := range p.Expires {
		if until.Due(phase, count) {
			p.Clear(effect)
		}
	}
}
