package domain

// Phase represents the lifecycle stage of a game session.
type Phase string

const (
	// PhaseLobby is the pre-game state where players can join.
	PhaseLobby Phase = "lobby"
	// PhaseNight is the private phase where roles submit night actions.
	PhaseNight Phase = "night"
	// PhaseDay is the public phase where the village votes on a lynch.
	PhaseDay Phase = "day"
	// PhaseEnded is the state after a win condition was met.
	PhaseEnded Phase = "ended"
)

// PlayerID identifies a seated player. IDs are handed out in seating order starting at 1.
type PlayerID int64

// NoPlayer is the zero PlayerID and never identifies a seated player.
const NoPlayer PlayerID = 0

// Vote is a single recorded day vote. Abstain votes carry no target.
type Vote struct {
	Target  PlayerID
	Abstain bool
}

// NightAction is the single action a player has queued for the current night.
type NightAction struct {
	Kind    ActionKind
	Target  PlayerID
	Payload map[string]string
}

// DelayedKind identifies an effect scheduled for a later phase.
type DelayedKind string

const (
	// DelayedCurse kills its target at the end of a later night.
	DelayedCurse DelayedKind = "curse"
	// DelayedDoom kills its target at the start of the next day.
	DelayedDoom DelayedKind = "doom"
	// DelayedHex swaps roles between the hexer and its target when the hexer dies.
	DelayedHex DelayedKind = "hex"
)

// DelayedEffect is a pending curse, doom or hex.
type DelayedEffect struct {
	Kind   DelayedKind
	Source PlayerID
	Target PlayerID
	// TriggerNight is the night number whose resolution fires a curse.
	TriggerNight int
	// TriggerDay is the day number whose start fires a doom.
	TriggerDay int
}

// Faction names the side that won a game.
type Faction string

const (
	FactionVillage Faction = "village"
	FactionWolf    Faction = "wolf"
	FactionNeutral Faction = "neutral"
	FactionNone    Faction = "none"
)

// Outcome records how a session ended.
type Outcome struct {
	Faction Faction
	Reason  string
	Winners []PlayerID
}

// Session holds the authoritative state of one game.
type Session struct {
	ID    string
	Phase Phase
	// Mode picks the role tables StartGame deals from.
	Mode Mode

	// DayCount increments when a day starts; NightCount increments when a night ends.
	DayCount   int
	NightCount int

	Players map[PlayerID]*Player
	Order   []PlayerID // seating order

	Votes          map[PlayerID]Vote
	NightActions   map[PlayerID]NightAction
	AssignedTotems map[PlayerID]Totem
	UsedShamans    map[PlayerID]bool
	Delayed        []DelayedEffect

	// Resolved is set once the current night or day has been resolved.
	Resolved bool
	// WolvesSickNight is the night number on which the pack cannot kill.
	WolvesSickNight int

	Outcome *Outcome
}

// NewSession constructs an empty lobby session.
func NewSession(id string) *Session {
	return &Session{
		ID:             id,
		Phase:          PhaseLobby,
		Mode:           ModeDefault,
		Players:        make(map[PlayerID]*Player),
		Votes:          make(map[PlayerID]Vote),
		NightActions:   make(map[PlayerID]NightAction),
		AssignedTotems: make(map[PlayerID]Totem),
		UsedShamans:    make(map[PlayerID]bool),
	}
}

// NightNumber returns the number of the current night, or of the next one when called during the day.
func (s *Session) NightNumber() int {
	return s.NightCount + 1
}

// Player returns the player with the given id, or nil.
func (s *Session) Player(id PlayerID) *Player {
	return s.Players[id]
}

// IsAlive reports whether id is a seated, living player.
func (s *Session) IsAlive(id PlayerID) bool {
	p, ok := s.Players[id]
	return ok && p.Alive
}
