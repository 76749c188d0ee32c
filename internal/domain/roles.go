package domain

import "strings"

// Team is the side a role plays for.
type Team string

const (
	TeamVillage Team = "village"
	TeamWolf    Team = "wolf"
	TeamNeutral Team = "neutral"
)

// RoleName identifies a role.
type RoleName string

const (
	RoleVillager      RoleName = "villager"
	RoleSeer          RoleName = "seer"
	RoleOracle        RoleName = "oracle"
	RoleAugur         RoleName = "augur"
	RoleDetective     RoleName = "detective"
	RoleGuardianAngel RoleName = "guardian angel"
	RoleBodyguard     RoleName = "bodyguard"
	RoleHarlot        RoleName = "harlot"
	RoleShaman        RoleName = "shaman"
	RoleMystic        RoleName = "mystic"
	RoleHunter        RoleName = "hunter"
	RoleVigilante     RoleName = "vigilante"
	RoleMatchmaker    RoleName = "matchmaker"
	RolePriest        RoleName = "priest"

	RoleWolf       RoleName = "wolf"
	RoleWerecrow   RoleName = "werecrow"
	RoleWolfCub    RoleName = "wolf cub"
	RoleWerekitten RoleName = "werekitten"
	RoleTraitor    RoleName = "traitor"
	RoleWolfShaman RoleName = "wolf shaman"
	RoleSorcerer   RoleName = "sorcerer"
	RoleHag        RoleName = "hag"
	RoleWarlock    RoleName = "warlock"
	RoleDoomsayer  RoleName = "doomsayer"
	RoleWolfMystic RoleName = "wolf mystic"

	RoleJester       RoleName = "jester"
	RoleFool         RoleName = "fool"
	RoleMonster      RoleName = "monster"
	RoleSerialKiller RoleName = "serial killer"
	RolePiper        RoleName = "piper"
	RoleCrazedShaman RoleName = "crazed shaman"
)

// ActionKind names an ability a player can invoke.
type ActionKind string

const (
	ActionKill    ActionKind = "kill"
	ActionSee     ActionKind = "see"
	ActionID      ActionKind = "id"
	ActionGuard   ActionKind = "guard"
	ActionVisit   ActionKind = "visit"
	ActionGive    ActionKind = "give"
	ActionSense   ActionKind = "sense"
	ActionObserve ActionKind = "observe"
	ActionCharm   ActionKind = "charm"
	ActionBless   ActionKind = "bless"
	ActionMatch   ActionKind = "match"
	ActionCurse   ActionKind = "curse"
	ActionDoom    ActionKind = "doom"
	ActionHex     ActionKind = "hex"
	// ActionPass explicitly skips the night so the phase can end early.
	ActionPass ActionKind = "pass"

	ActionShoot  ActionKind = "shoot"
	ActionReveal ActionKind = "reveal"
	ActionTarget ActionKind = "target"
)

// Vision is the kind of answer a seeing role receives.
type Vision int

const (
	VisionNone Vision = iota
	VisionRole        // exact (apparent) role
	VisionTeam        // village, wolf or neutral
	VisionKiller      // whether the target can kill
	VisionSeerType    // whether the target is a seeing role
)

// Role is the static capability descriptor of a role.
type Role struct {
	Name RoleName
	Team Team

	Night []ActionKind
	// Limits caps the number of uses of an action per game.
	Limits map[ActionKind]int
	// FirstNightOnly roles may only act on night one.
	FirstNightOnly bool
	// Pack roles vote on the shared wolf kill.
	Pack bool
	// AllowSelf permits targeting oneself with night actions.
	AllowSelf bool
	// NoRepeatGuard forbids guarding the same player two nights running.
	NoRepeatGuard bool

	TotemPool []Totem
	// HideTotem keeps the drawn totem secret from the giver.
	HideTotem bool

	Vision Vision
	// SeenAs is what a seer observes; empty means the true role.
	SeenAs  RoleName
	CanKill bool
	Power   bool
}

// Acts reports whether the role has the night action kind.
func (r Role) Acts(kind ActionKind) bool {
	if kind == ActionPass {
		return len(r.Night) > 0
	}
	for _, k := range r.Night {
		if k == kind {
			return true
		}
	}
	return false
}

// Limit returns the per-game cap for kind, or 0 if unlimited.
func (r Role) Limit(kind ActionKind) int {
	return r.Limits[kind]
}

var roles = map[RoleName]Role{
	RoleVillager:      {Name: RoleVillager, Team: TeamVillage},
	RoleSeer:          {Name: RoleSeer, Team: TeamVillage, Night: []ActionKind{ActionSee}, Vision: VisionRole, Power: true},
	RoleOracle:        {Name: RoleOracle, Team: TeamVillage, Night: []ActionKind{ActionSee}, Vision: VisionTeam, Power: true},
	RoleAugur:         {Name: RoleAugur, Team: TeamVillage, Night: []ActionKind{ActionSee}, Vision: VisionKiller, Power: true},
	RoleDetective:     {Name: RoleDetective, Team: TeamVillage, Night: []ActionKind{ActionID}, Power: true},
	RoleGuardianAngel: {Name: RoleGuardianAngel, Team: TeamVillage, Night: []ActionKind{ActionGuard}, NoRepeatGuard: true, Power: true},
	RoleBodyguard:     {Name: RoleBodyguard, Team: TeamVillage, Night: []ActionKind{ActionGuard}, Power: true},
	RoleHarlot:        {Name: RoleHarlot, Team: TeamVillage, Night: []ActionKind{ActionVisit}, Power: true},
	RoleShaman:        {Name: RoleShaman, Team: TeamVillage, Night: []ActionKind{ActionGive}, AllowSelf: true, TotemPool: ShamanTotems, Power: true},
	RoleMystic:        {Name: RoleMystic, Team: TeamVillage, Night: []ActionKind{ActionSense}, Power: true},
	RoleHunter:        {Name: RoleHunter, Team: TeamVillage, Night: []ActionKind{ActionKill}, Limits: map[ActionKind]int{ActionKill: 1}, CanKill: true, Power: true},
	RoleVigilante:     {Name: RoleVigilante, Team: TeamVillage, Night: []ActionKind{ActionKill}, CanKill: true, Power: true},
	RoleMatchmaker:    {Name: RoleMatchmaker, Team: TeamVillage, Night: []ActionKind{ActionMatch}, FirstNightOnly: true, AllowSelf: true},
	RolePriest:        {Name: RolePriest, Team: TeamVillage, Night: []ActionKind{ActionBless}, Limits: map[ActionKind]int{ActionBless: 1}, Power: true},

	RoleWolf:       {Name: RoleWolf, Team: TeamWolf, Night: []ActionKind{ActionKill}, Pack: true, CanKill: true, Power: true},
	RoleWerecrow:   {Name: RoleWerecrow, Team: TeamWolf, Night: []ActionKind{ActionKill, ActionObserve}, Pack: true, CanKill: true, Power: true},
	RoleWolfCub:    {Name: RoleWolfCub, Team: TeamWolf, Night: []ActionKind{ActionKill}, Pack: true, CanKill: true, Power: true},
	RoleWerekitten: {Name: RoleWerekitten, Team: TeamWolf, Night: []ActionKind{ActionKill}, Pack: true, SeenAs: RoleVillager, CanKill: true, Power: true},
	RoleTraitor:    {Name: RoleTraitor, Team: TeamWolf, SeenAs: RoleVillager},
	RoleWolfShaman: {Name: RoleWolfShaman, Team: TeamWolf, Night: []ActionKind{ActionKill, ActionGive}, Pack: true, AllowSelf: true, TotemPool: WolfShamanTotems, CanKill: true, Power: true},
	RoleSorcerer:   {Name: RoleSorcerer, Team: TeamWolf, Night: []ActionKind{ActionSee}, Vision: VisionSeerType, SeenAs: RoleVillager, Power: true},
	RoleHag:        {Name: RoleHag, Team: TeamWolf, Night: []ActionKind{ActionHex}, SeenAs: RoleVillager, Power: true},
	RoleWarlock:    {Name: RoleWarlock, Team: TeamWolf, Night: []ActionKind{ActionCurse}, Limits: map[ActionKind]int{ActionCurse: 1}, SeenAs: RoleVillager, Power: true},
	RoleDoomsayer:  {Name: RoleDoomsayer, Team: TeamWolf, Night: []ActionKind{ActionKill, ActionDoom}, Limits: map[ActionKind]int{ActionDoom: 1}, Pack: true, CanKill: true, Power: true},
	RoleWolfMystic: {Name: RoleWolfMystic, Team: TeamWolf, Night: []ActionKind{ActionKill, ActionSense}, Pack: true, CanKill: true, Power: true},

	RoleJester:       {Name: RoleJester, Team: TeamNeutral, SeenAs: RoleVillager},
	RoleFool:         {Name: RoleFool, Team: TeamNeutral, SeenAs: RoleVillager},
	RoleMonster:      {Name: RoleMonster, Team: TeamNeutral, Night: []ActionKind{ActionKill}, SeenAs: RoleWolf, CanKill: true, Power: true},
	RoleSerialKiller: {Name: RoleSerialKiller, Team: TeamNeutral, Night: []ActionKind{ActionKill}, CanKill: true, Power: true},
	RolePiper:        {Name: RolePiper, Team: TeamNeutral, Night: []ActionKind{ActionCharm}, SeenAs: RoleVillager, Power: true},
	RoleCrazedShaman: {Name: RoleCrazedShaman, Team: TeamNeutral, Night: []ActionKind{ActionGive}, AllowSelf: true, TotemPool: AllTotems, HideTotem: true, Power: true},
}

// RoleOf returns the descriptor for name. Unknown names describe a plain villager.
func RoleOf(name RoleName) Role {
	if r, ok := roles[name]; ok {
		return r
	}
	return roles[RoleVillager]
}

// KnownRole reports whether name is a defined role.
func KnownRole(name RoleName) bool {
	_, ok := roles[name]
	return ok
}

// AllRoles lists every defined role name.
func AllRoles() []RoleName {
	out := make([]RoleName, 0, len(roles))
	for name := range roles {
		out = append(out, name)
	}
	return out
}

// ParseRole normalizes a role name such as "Guardian_Angel".
func ParseRole(name string) (RoleName, bool) {
	r := RoleName(normalizeName(name))
	return r, KnownRole(r)
}

// DayActions lists the day abilities a player's templates grant.
func DayActions(p *Player) []ActionKind {
	var out []ActionKind
	if p.Templates.Has(TemplateGunner) || p.Templates.Has(TemplateSharpshooter) {
		out = append(out, ActionShoot)
	}
	if p.Templates.Has(TemplateMayor) {
		out = append(out, ActionReveal)
	}
	if p.Templates.Has(TemplateAssassin) {
		out = append(out, ActionTarget)
	}
	return out
}

func normalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", " ")
	return strings.Join(strings.Fields(n), " ")
}
