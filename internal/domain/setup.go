package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

const (
	// MinPlayers is the smallest session that may leave the lobby.
	MinPlayers = 4
	// MaxPlayers is the largest session the role tables describe.
	MaxPlayers = 24
)

// ErrUnsupportedConfiguration reports a player count with no usable role table.
// The accompanying Setup is still valid: it is the villager/wolf fallback.
var ErrUnsupportedConfiguration = errors.New("no role table for player count")

// Mode selects the family of role tables a game deals from.
type Mode string

const (
	ModeDefault   Mode = "default"
	ModeFoolish   Mode = "foolish"
	ModeCharming  Mode = "charming"
	ModeNoReveal  Mode = "noreveal"
	ModeBloodbath Mode = "bloodbath"
	ModeRandom    Mode = "random"
)

var modes = []Mode{ModeDefault, ModeFoolish, ModeCharming, ModeNoReveal, ModeBloodbath, ModeRandom}

// Modes lists the playable modes in display order.
func Modes() []Mode {
	return append([]Mode(nil), modes...)
}

// ParseMode normalizes a mode name. The empty string selects the default mode.
func ParseMode(name string) (Mode, bool) {
	n := strings.ReplaceAll(normalizeName(name), " ", "")
	if n == "" {
		return ModeDefault, true
	}
	for _, m := range modes {
		if string(m) == n {
			return m, true
		}
	}
	return "", false
}

// HidesRoles reports whether deaths keep the victim's role secret.
func (m Mode) HidesRoles() bool {
	return m == ModeNoReveal
}

// Setup is the list of roles and templates dealt for one session size.
type Setup struct {
	Mode      Mode
	Roles     []RoleName
	Templates []Template
	Fallback  bool
}

type setupRow struct {
	roles     string
	templates string
}

// Each row lists "count role" pairs; counts default to one.
var defaultSetups = map[int]setupRow{
	4:  {roles: "2 villager, seer, wolf"},
	5:  {roles: "3 villager, seer, wolf"},
	6:  {roles: "4 villager, seer, wolf", templates: "cursed"},
	7:  {roles: "3 villager, seer, wolf, shaman", templates: "cursed, gunner"},
	8:  {roles: "3 villager, seer, wolf, traitor, shaman, harlot", templates: "cursed, gunner"},
	9:  {roles: "3 villager, seer, wolf, traitor, shaman, harlot, crazed shaman", templates: "cursed, gunner"},
	10: {roles: "3 villager, seer, wolf, traitor, shaman, harlot, crazed shaman, wolf cub", templates: "assassin, cursed, gunner"},
	11: {roles: "3 villager, seer, wolf, traitor, shaman, harlot, crazed shaman, wolf cub, matchmaker", templates: "assassin, cursed, gunner"},
	12: {roles: "3 villager, seer, wolf, traitor, shaman, harlot, crazed shaman, wolf cub, werecrow, matchmaker", templates: "assassin, 2 cursed, gunner"},
	13: {roles: "3 villager, seer, wolf, traitor, shaman, harlot, crazed shaman, wolf cub, werecrow, detective, matchmaker", templates: "assassin, 2 cursed, gunner"},
	14: {roles: "4 villager, seer, wolf, traitor, shaman, harlot, crazed shaman, wolf cub, werecrow, detective, matchmaker", templates: "assassin, 2 cursed, gunner"},
	15: {roles: "3 villager, seer, 2 wolf, traitor, shaman, harlot, crazed shaman, wolf cub, werecrow, detective, matchmaker, hunter, monster", templates: "assassin, 2 cursed, gunner"},
	16: {roles: "3 villager, seer, 2 wolf, traitor, shaman, harlot, crazed shaman, wolf cub, werecrow, detective, matchmaker, hunter, bodyguard, monster", templates: "assassin, 2 cursed, gunner"},
	17: {roles: "4 villager, seer, 2 wolf, traitor, shaman, harlot, crazed shaman, wolf cub, werecrow, detective, matchmaker, hunter, oracle, augur, monster, hag", templates: "assassin, 3 cursed, gunner"},
	18: {roles: "4 villager, seer, 2 wolf, traitor, shaman, harlot, crazed shaman, wolf cub, werecrow, matchmaker, hunter, oracle, augur, monster, hag, werekitten", templates: "2 assassin, 3 cursed, gunner"},
	19: {roles: "5 villager, seer, 2 wolf, traitor, shaman, harlot, crazed shaman, wolf cub, werecrow, matchmaker, hunter, oracle, augur, monster, hag, werekitten", templates: "2 assassin, 3 cursed, gunner"},
	20: {roles: "4 villager, seer, 2 wolf, traitor, shaman, harlot, crazed shaman, wolf cub, werecrow, matchmaker, hunter, oracle, augur, monster, hag, werekitten", templates: "2 assassin, mayor, 3 cursed, gunner"},
	21: {roles: "4 villager, seer, 2 wolf, traitor, shaman, harlot, crazed shaman, wolf cub, werecrow, matchmaker, hunter, oracle, augur, monster, hag, werekitten", templates: "2 assassin, mayor, 3 cursed, gunner"},
	22: {roles: "5 villager, seer, 2 wolf, traitor, shaman, harlot, crazed shaman, wolf cub, werecrow, matchmaker, hunter, oracle, augur, monster, hag, werekitten", templates: "2 assassin, mayor, 3 cursed, gunner"},
	23: {roles: "5 villager, seer, 2 wolf, traitor, shaman, harlot, crazed shaman, wolf cub, werecrow, matchmaker, hunter, oracle, augur, monster, hag, werekitten", templates: "2 assassin, mayor, 3 cursed, gunner"},
	24: {roles: "5 villager, seer, 2 wolf, traitor, shaman, harlot, crazed shaman, wolf cub, werecrow, matchmaker, hunter, oracle, augur, monster, hag, werekitten, warlock", templates: "2 assassin, mayor, 3 cursed, gunner"},
}

// Rows whose roles are not all dealt by this engine are left out; those
// counts use the mode's fallback.
var foolishSetups = map[int]setupRow{
	8:  {roles: "3 villager, oracle, harlot, fool, wolf, traitor", templates: "cursed"},
	9:  {roles: "3 villager, oracle, harlot, hunter, fool, wolf, traitor", templates: "cursed"},
	10: {roles: "3 villager, oracle, harlot, hunter, fool, 2 wolf, traitor", templates: "cursed, gunner"},
}

var charmingSetups = map[int]setupRow{
	6: {roles: "3 villager, seer, piper, wolf"},
	7: {roles: "4 villager, seer, piper, wolf"},
}

var norevealSetups = map[int]setupRow{
	4:  {roles: "2 villager, seer, wolf"},
	5:  {roles: "3 villager, seer, wolf"},
	6:  {roles: "4 villager, seer, wolf"},
	7:  {roles: "5 villager, seer, wolf"},
	8:  {roles: "4 villager, seer, wolf, mystic, wolf mystic"},
	9:  {roles: "5 villager, seer, wolf, mystic, wolf mystic"},
	10: {roles: "4 villager, seer, wolf, mystic, traitor, wolf mystic, hunter"},
	11: {roles: "5 villager, seer, wolf, mystic, traitor, wolf mystic, hunter"},
	12: {roles: "4 villager, seer, 2 wolf, mystic, traitor, wolf mystic, guardian angel, hunter"},
	13: {roles: "5 villager, seer, 2 wolf, mystic, traitor, wolf mystic, guardian angel, hunter"},
	14: {roles: "6 villager, seer, 2 wolf, mystic, traitor, wolf mystic, guardian angel, hunter"},
}

var bloodbathSetups = map[int]setupRow{
	9: {roles: "4 villager, seer, bodyguard, serial killer, wolf, traitor"},
}

type modeTable struct {
	rows map[int]setupRow
	// fallback lists the fixed roles of the fallback split; villagers fill the rest.
	fallback func(n int) []RoleName
}

var modeTables = map[Mode]modeTable{
	ModeDefault:  {rows: defaultSetups, fallback: func(int) []RoleName { return []RoleName{RoleWolf} }},
	ModeFoolish:  {rows: foolishSetups, fallback: func(int) []RoleName { return []RoleName{RoleFool, RoleWolf} }},
	ModeCharming: {rows: charmingSetups, fallback: func(int) []RoleName { return []RoleName{RolePiper, RoleWolf} }},
	ModeNoReveal: {rows: norevealSetups, fallback: func(n int) []RoleName {
		if n < MinPlayers {
			return []RoleName{RoleWolf}
		}
		return []RoleName{RoleSeer, RoleWolf}
	}},
	ModeBloodbath: {rows: bloodbathSetups, fallback: func(n int) []RoleName {
		if n < 9 {
			return []RoleName{RoleSerialKiller, RoleSeer, RoleWolf}
		}
		return []RoleName{RoleSeer, RoleBodyguard, RoleSerialKiller, RoleWolf, RoleTraitor}
	}},
}

// SetupFor returns the role list of mode for n players. When the mode has no
// row for n it returns the mode's fallback split and ErrUnsupportedConfiguration.
// rng is only drawn from in random mode.
func SetupFor(mode Mode, n int, rng *rand.Rand) (Setup, error) {
	if mode == "" {
		mode = ModeDefault
	}
	if mode == ModeRandom {
		if rng == nil {
			return Setup{}, errors.New("random mode needs a random source")
		}
		return randomSetup(n, rng), nil
	}
	table, ok := modeTables[mode]
	if !ok {
		return Setup{}, fmt.Errorf("unknown mode %q", mode)
	}

	row, ok := table.rows[n]
	if !ok {
		return table.fallbackSetup(mode, n), fmt.Errorf("%w: %d players in %s mode", ErrUnsupportedConfiguration, n, mode)
	}
	setup, err := row.expand()
	if err != nil {
		return table.fallbackSetup(mode, n), fmt.Errorf("%w: %v", ErrUnsupportedConfiguration, err)
	}
	if len(setup.Roles) != n {
		return table.fallbackSetup(mode, n), fmt.Errorf("%w: table lists %d roles for %d players", ErrUnsupportedConfiguration, len(setup.Roles), n)
	}
	setup.Mode = mode
	return setup, nil
}

func (t modeTable) fallbackSetup(mode Mode, n int) Setup {
	if n < 1 {
		return Setup{Mode: mode, Fallback: true}
	}
	fixed := t.fallback(n)
	if n < len(fixed) {
		fixed = []RoleName{RoleWolf}
	}
	roles := make([]RoleName, 0, n)
	for i := 0; i < n-len(fixed); i++ {
		roles = append(roles, RoleVillager)
	}
	roles = append(roles, fixed...)
	return Setup{Mode: mode, Roles: roles, Fallback: true}
}

var (
	randomVillage = []RoleName{
		RoleVillager, RoleSeer, RoleOracle, RoleShaman, RoleHarlot, RoleBodyguard, RoleGuardianAngel,
		RolePriest, RoleDetective, RoleAugur, RoleMystic, RoleMatchmaker, RoleHunter, RoleVigilante,
	}
	randomPack = []RoleName{
		RoleWolf, RoleWolfCub, RoleWerecrow, RoleWolfShaman, RoleWolfMystic, RoleWerekitten, RoleDoomsayer,
	}
	randomOther = []RoleName{
		RoleTraitor, RoleJester, RoleFool, RoleSerialKiller, RolePiper, RoleMonster,
		RoleHag, RoleWarlock, RoleCrazedShaman, RoleSorcerer,
	}
	randomSeers     = []RoleName{RoleSeer, RoleOracle, RoleDetective, RoleAugur, RoleMystic}
	randomTemplates = []Template{TemplateCursed, TemplateGunner, TemplateAssassin, TemplateMayor, TemplateBlessed}
)

// randomSetup deals pack wolves, one investigator and a village core, then
// fills the remaining seats from every pool. Fillers that would leave the
// village no larger than the wolf team become villagers.
func randomSetup(n int, rng *rand.Rand) Setup {
	setup := Setup{Mode: ModeRandom}
	if n < 1 {
		return setup
	}
	pick := func(pool []RoleName) RoleName { return pool[rng.Intn(len(pool))] }

	wolves := max(1, n/6)
	core := max(2, n/3)
	for i := 0; i < wolves && len(setup.Roles) < n; i++ {
		setup.Roles = append(setup.Roles, pick(randomPack))
	}
	if len(setup.Roles) < n {
		setup.Roles = append(setup.Roles, pick(randomSeers))
	}
	for i := 1; i < core && len(setup.Roles) < n; i++ {
		setup.Roles = append(setup.Roles, pick(randomVillage))
	}
	all := make([]RoleName, 0, len(randomVillage)+len(randomPack)+len(randomOther))
	all = append(append(append(all, randomVillage...), randomPack...), randomOther...)
	fixed := len(setup.Roles)
	for len(setup.Roles) < n {
		setup.Roles = append(setup.Roles, pick(all))
	}
	for i := n - 1; i >= fixed && teamCount(setup.Roles, TeamVillage) <= teamCount(setup.Roles, TeamWolf); i-- {
		if RoleOf(setup.Roles[i]).Team != TeamVillage {
			setup.Roles[i] = RoleVillager
		}
	}

	lo, hi := max(1, n/6), max(2, n/3)
	for i := lo + rng.Intn(hi-lo+1); i > 0; i-- {
		setup.Templates = append(setup.Templates, randomTemplates[rng.Intn(len(randomTemplates))])
	}
	return setup
}

func teamCount(roles []RoleName, team Team) int {
	n := 0
	for _, r := range roles {
		if RoleOf(r).Team == team {
			n++
		}
	}
	return n
}

func (r setupRow) expand() (Setup, error) {
	var setup Setup
	for _, entry := range splitList(r.roles) {
		count, name := splitCount(entry)
		role, ok := ParseRole(name)
		if !ok {
			return Setup{}, fmt.Errorf("unknown role %q", name)
		}
		for i := 0; i < count; i++ {
			setup.Roles = append(setup.Roles, role)
		}
	}
	for _, entry := range splitList(r.templates) {
		count, name := splitCount(entry)
		t, ok := ParseTemplate(name)
		if !ok {
			return Setup{}, fmt.Errorf("unknown template %q", name)
		}
		for i := 0; i < count; i++ {
			setup.Templates = append(setup.Templates, t)
		}
	}
	return setup, nil
}

func splitList(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if item := normalizeName(s[start:i]); item != "" {
				out = append(out, item)
			}
			start = i + 1
		}
	}
	return out
}

func splitCount(entry string) (int, string) {
	count := 0
	i := 0
	for i < len(entry) && entry[i] >= '0' && entry[i] <= '9' {
		count = count*10 + int(entry[i]-'0')
		i++
	}
	if i == 0 {
		return 1, entry
	}
	return count, normalizeName(entry[i:])
}
