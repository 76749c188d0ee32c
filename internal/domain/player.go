package domain

// Template is a secondary modifier attached to a player independent of team.
type Template uint8

const (
	TemplateCursed Template = 1 << iota
	TemplateBlessed
	TemplateGunner
	TemplateSharpshooter
	TemplateMayor
	TemplateAssassin
)

var templateNames = map[Template]string{
	TemplateCursed:       "cursed",
	TemplateBlessed:      "blessed",
	TemplateGunner:       "gunner",
	TemplateSharpshooter: "sharpshooter",
	TemplateMayor:        "mayor",
	TemplateAssassin:     "assassin",
}

// String returns the template name.
func (t Template) String() string {
	return templateNames[t]
}

// ParseTemplate maps a template name to its flag.
func ParseTemplate(name string) (Template, bool) {
	for t, n := range templateNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// TemplateSet is a bit set of templates.
type TemplateSet uint8

// Has reports whether t is in the set.
func (ts TemplateSet) Has(t Template) bool { return ts&TemplateSet(t) != 0 }

// With returns the set with t added.
func (ts TemplateSet) With(t Template) TemplateSet { return ts | TemplateSet(t) }

// Without returns the set with t removed.
func (ts TemplateSet) Without(t Template) TemplateSet { return ts &^ TemplateSet(t) }

// Names lists the template names in declaration order.
func (ts TemplateSet) Names() []string {
	var out []string
	for t := TemplateCursed; t <= TemplateAssassin; t <<= 1 {
		if ts.Has(t) {
			out = append(out, t.String())
		}
	}
	return out
}

// Investigation is one detective result in investigation order.
type Investigation struct {
	Target PlayerID
	Role   RoleName
}

// Player holds the state for a participant in a session.
type Player struct {
	ID    PlayerID
	Name  string
	Role  RoleName
	Alive bool

	Templates      TemplateSet
	Bullets        int
	BlessCharges   int
	AssassinTarget PlayerID
	MayorRevealed  bool

	Totem   Totem
	Status  StatusSet
	Expires map[StatusEffect]Expiry

	Uses           map[ActionKind]int
	Investigations []Investigation
	Lover          PlayerID
	Visiting       PlayerID // harlot target for the current night

	// LastGuarded is whom the player guarded on night GuardedNight.
	LastGuarded  PlayerID
	GuardedNight int
}

// NewPlayer constructs a living villager with no modifiers.
func NewPlayer(id PlayerID, name string) *Player {
	return &Player{
		ID:      id,
		Name:    name,
		Role:    RoleVillager,
		Alive:   true,
		Expires: make(map[StatusEffect]Expiry),
		Uses:    make(map[ActionKind]int),
	}
}

// Team returns the team of the player's current role.
func (p *Player) Team() Team {
	return RoleOf(p.Role).Team
}

// AddTemplate attaches t and sets up its charges.
func (p *Player) AddTemplate(t Template) {
	p.Templates = p.Templates.With(t)
	switch t {
	case TemplateBlessed:
		p.BlessCharges++
	case TemplateGunner:
		p.Bullets++
	case TemplateSharpshooter:
		p.Bullets += 2
	}
}

// UsesLeft returns how many charges of kind remain, or -1 for unlimited.
func (p *Player) UsesLeft(kind ActionKind) int {
	limit := RoleOf(p.Role).Limit(kind)
	if limit == 0 {
		return -1
	}
	left := limit - p.Uses[kind]
	if left < 0 {
		return 0
	}
	return left
}

// GuardedLastNight reports whether the player guarded target on the night
// before the current one.
func (p *Player) GuardedLastNight(s *Session, target PlayerID) bool {
	return p.LastGuarded != NoPlayer && p.LastGuarded == target && p.GuardedNight == s.NightNumber()-1
}

// Apply sets a status effect that lasts until the end of the given phase.
func (p *Player) Apply(effect StatusEffect, until Expiry) {
	p.Status = p.Status.With(effect)
	if until.Phase != "" {
		p.Expires[effect] = until
	} else {
		delete(p.Expires, effect)
	}
}

// Clear removes a status effect.
func (p *Player) Clear(effect StatusEffect) {
	p.Status = p.Status.Without(effect)
	delete(p.Expires, effect)
}

// Has reports whether the player currently carries effect.
func (p *Player) Has(effect StatusEffect) bool {
	return p.Status.Has(effect)
}

// CanVote reports whether the player is an eligible day voter.
func (p *Player) CanVote() bool {
	return p.Alive && !p.Has(StatusInjured) && !p.Has(StatusSilenced)
}
