package domain

// Totem is a status object handed out by shaman-type roles.
type Totem string

const (
	TotemNone         Totem = ""
	TotemDeath        Totem = "death"
	TotemProtection   Totem = "protection"
	TotemRevealing    Totem = "revealing"
	TotemInfluence    Totem = "influence"
	TotemImpatience   Totem = "impatience"
	TotemPacifism     Totem = "pacifism"
	TotemCursed       Totem = "cursed"
	TotemLycanthropy  Totem = "lycanthropy"
	TotemRetribution  Totem = "retribution"
	TotemBlinding     Totem = "blinding"
	TotemDeceit       Totem = "deceit"
	TotemMisdirection Totem = "misdirection"
	TotemLuck         Totem = "luck"
	TotemSilence      Totem = "silence"
	TotemPestilence   Totem = "pestilence"
	TotemDesperation  Totem = "desperation"
)

// TotemClass describes whether a totem helps or hurts its holder.
type TotemClass string

const (
	ClassHarmful    TotemClass = "harmful"
	ClassBeneficial TotemClass = "beneficial"
	ClassMixed      TotemClass = "mixed"
)

// TotemTiming describes when a held totem stops applying.
type TotemTiming int

const (
	// TimingImmediate totems fire when assigned and are never held.
	TimingImmediate TotemTiming = iota
	// TimingNight totems are cleared at the end of the night they were given.
	TimingNight
	// TimingDay totems last through the following day.
	TimingDay
)

// TotemInfo is the static descriptor of a totem.
type TotemInfo struct {
	Name   Totem
	Class  TotemClass
	Timing TotemTiming
}

var totems = map[Totem]TotemInfo{
	TotemDeath:        {TotemDeath, ClassHarmful, TimingImmediate},
	TotemProtection:   {TotemProtection, ClassBeneficial, TimingNight},
	TotemRevealing:    {TotemRevealing, ClassMixed, TimingDay},
	TotemInfluence:    {TotemInfluence, ClassBeneficial, TimingDay},
	TotemImpatience:   {TotemImpatience, ClassMixed, TimingDay},
	TotemPacifism:     {TotemPacifism, ClassHarmful, TimingDay},
	TotemCursed:       {TotemCursed, ClassHarmful, TimingImmediate},
	TotemLycanthropy:  {TotemLycanthropy, ClassHarmful, TimingNight},
	TotemRetribution:  {TotemRetribution, ClassMixed, TimingNight},
	TotemBlinding:     {TotemBlinding, ClassHarmful, TimingImmediate},
	TotemDeceit:       {TotemDeceit, ClassHarmful, TimingNight},
	TotemMisdirection: {TotemMisdirection, ClassMixed, TimingNight},
	TotemLuck:         {TotemLuck, ClassMixed, TimingNight},
	TotemSilence:      {TotemSilence, ClassHarmful, TimingImmediate},
	TotemPestilence:   {TotemPestilence, ClassHarmful, TimingNight},
	TotemDesperation:  {TotemDesperation, ClassHarmful, TimingDay},
}

// AllTotems lists every totem in a stable order.
var AllTotems = []Totem{
	TotemDeath, TotemProtection, TotemRevealing, TotemInfluence,
	TotemImpatience, TotemPacifism, TotemCursed, TotemLycanthropy,
	TotemRetribution, TotemBlinding, TotemDeceit, TotemMisdirection,
	TotemLuck, TotemSilence, TotemPestilence, TotemDesperation,
}

// ShamanTotems is the village shaman pool.
var ShamanTotems = []Totem{
	TotemDeath, TotemProtection, TotemRevealing, TotemInfluence,
	TotemImpatience, TotemPacifism, TotemSilence, TotemDesperation,
}

// WolfShamanTotems is the wolf shaman pool. It shares only protection with the village pool.
var WolfShamanTotems = []Totem{
	TotemProtection, TotemCursed, TotemLycanthropy, TotemRetribution,
	TotemBlinding, TotemDeceit, TotemMisdirection, TotemLuck,
}

// InfoOf returns the descriptor for t.
func InfoOf(t Totem) (TotemInfo, bool) {
	info, ok := totems[t]
	return info, ok
}

// ParseTotem normalizes a totem name such as "Protection Totem" or "protection_totem".
func ParseTotem(name string) (Totem, bool) {
	n := normalizeName(name)
	if len(n) > 6 && n[len(n)-6:] == " totem" {
		n = n[:len(n)-6]
	}
	t := Totem(n)
	_, ok := totems[t]
	return t, ok
}
