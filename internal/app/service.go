package app

import (
	"errors"
	"math/rand"
	"time"

	"wolfbot/internal/domain"
)

// Service contains the round resolution use-cases operating on a session.
// A Service holds no session state of its own; callers serialize access to
// each session.
type Service struct {
	rng         *rand.Rand
	totems      *TotemAssigner
	revealRoles bool
	minPlayers  int
	maxPlayers  int
}

// Option configures a Service.
type Option func(*Service)

// WithRevealRoles controls whether death reports carry the victim's role.
func WithRevealRoles(on bool) Option {
	return func(s *Service) { s.revealRoles = on }
}

// WithPlayerLimits overrides the lobby bounds. Values outside the supported
// table range are ignored.
func WithPlayerLimits(lo, hi int) Option {
	return func(s *Service) {
		if lo >= domain.MinPlayers && lo <= domain.MaxPlayers {
			s.minPlayers = lo
		}
		if hi >= s.minPlayers && hi <= domain.MaxPlayers {
			s.maxPlayers = hi
		}
	}
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand, opts ...Option) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	svc := &Service{
		rng:         rng,
		totems:      NewTotemAssigner(rng),
		revealRoles: true,
		minPlayers:  domain.MinPlayers,
		maxPlayers:  domain.MaxPlayers,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// MinPlayers returns the number of players required to start.
func (svc *Service) MinPlayers() int { return svc.minPlayers }

// MaxPlayers returns the lobby capacity.
func (svc *Service) MaxPlayers() int { return svc.maxPlayers }

// Join seats a new player in the lobby.
func (svc *Service) Join(s *domain.Session, name string) (domain.PlayerID, []Event, error) {
	if s.Phase != domain.PhaseLobby {
		return domain.NoPlayer, nil, ErrNotInLobby
	}
	if len(s.Players) >= svc.maxPlayers {
		return domain.NoPlayer, nil, ErrSessionFull
	}

	id := domain.PlayerID(1)
	for pid := range s.Players {
		if pid >= id {
			id = pid + 1
		}
	}
	s.Players[id] = domain.NewPlayer(id, name)
	s.Order = append(s.Order, id)

	return id, []Event{broadcast(EventPlayerJoined, PlayerJoinedPayload{Player: id, Name: name})}, nil
}

// Leave removes a player. In the lobby the seat is freed; in a running game
// the player dies having fled.
func (svc *Service) Leave(s *domain.Session, id domain.PlayerID) ([]Event, error) {
	p := s.Player(id)
	if p == nil {
		return nil, ErrUnknownPlayer
	}

	switch s.Phase {
	case domain.PhaseLobby:
		delete(s.Players, id)
		for i, pid := range s.Order {
			if pid == id {
				s.Order = append(s.Order[:i], s.Order[i+1:]...)
				break
			}
		}
		return []Event{broadcast(EventPlayerLeft, PlayerLeftPayload{Player: id})}, nil
	case domain.PhaseNight, domain.PhaseDay:
		r := svc.newResolution(s)
		r.emit(broadcast(EventPlayerLeft, PlayerLeftPayload{Player: id, InGame: p.Alive}))
		delete(s.Votes, id)
		delete(s.NightActions, id)
		r.kill(p, CauseFled)
		return r.events, nil
	default:
		return []Event{broadcast(EventPlayerLeft, PlayerLeftPayload{Player: id})}, nil
	}
}

// StartGame deals roles and templates to the seated players and opens the first night.
func (svc *Service) StartGame(s *domain.Session) ([]Event, error) {
	if s.Phase != domain.PhaseLobby {
		return nil, ErrNotInLobby
	}
	n := len(s.Order)
	if n < svc.minPlayers {
		return nil, ErrTooFewPlayers
	}

	setup, err := domain.SetupFor(s.Mode, n, svc.rng)
	if err != nil && !errors.Is(err, domain.ErrUnsupportedConfiguration) {
		return nil, err
	}

	roles := append([]domain.RoleName(nil), setup.Roles...)
	svc.rng.Shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })
	for i, id := range s.Order {
		s.Players[id].Role = roles[i]
	}
	for _, t := range setup.Templates {
		if p := svc.templateCandidate(s, t); p != nil {
			p.AddTemplate(t)
		}
	}

	events := make([]Event, 0, n+2)
	events = append(events, broadcast(EventGameStarted, GameStartedPayload{
		SessionID: s.ID,
		Players:   n,
		Mode:      setup.Mode,
		Fallback:  setup.Fallback,
	}))

	var pack []domain.PlayerID
	for _, id := range s.Order {
		if s.Players[id].Team() == domain.TeamWolf {
			pack = append(pack, id)
		}
	}
	for _, id := range s.Order {
		p := s.Players[id]
		payload := RoleAssignedPayload{Player: id, Role: p.Role, Templates: p.Templates.Names()}
		if p.Team() == domain.TeamWolf {
			for _, mate := range pack {
				if mate != id {
					payload.Teammates = append(payload.Teammates, mate)
				}
			}
		}
		events = append(events, private(EventRoleAssigned, payload, id))
	}

	night, err := svc.StartNight(s)
	if err != nil {
		return nil, err
	}
	return append(events, night...), nil
}

// templateCandidate picks a random village player that does not yet carry t.
// Cursed only lands on plain villagers. Any player without t is used when no
// village player qualifies.
func (svc *Service) templateCandidate(s *domain.Session, t domain.Template) *domain.Player {
	var preferred, others []*domain.Player
	for _, id := range s.Order {
		p := s.Players[id]
		if p.Templates.Has(t) {
			continue
		}
		others = append(others, p)
		if p.Role != domain.RoleVillager && t == domain.TemplateCursed {
			continue
		}
		if p.Team() == domain.TeamVillage {
			preferred = append(preferred, p)
		}
	}
	if len(preferred) > 0 {
		return preferred[svc.rng.Intn(len(preferred))]
	}
	if len(others) > 0 {
		return others[svc.rng.Intn(len(others))]
	}
	return nil
}

// StartNight opens a night. It is valid from the lobby start and after a resolved day.
func (svc *Service) StartNight(s *domain.Session) ([]Event, error) {
	switch s.Phase {
	case domain.PhaseLobby:
	case domain.PhaseDay:
		if !s.Resolved {
			return nil, ErrNotResolved
		}
	case domain.PhaseEnded:
		return nil, ErrGameEnded
	default:
		return nil, ErrWrongPhase
	}

	s.Phase = domain.PhaseNight
	s.Resolved = false
	return []Event{broadcast(EventPhaseStarted, PhaseStartedPayload{
		Phase:  domain.PhaseNight,
		Number: s.NightNumber(),
	})}, nil
}

// StartDay opens a day after a resolved night. The day counter advances here
// and nowhere else. Dooms due today take effect immediately.
func (svc *Service) StartDay(s *domain.Session) ([]Event, error) {
	switch s.Phase {
	case domain.PhaseNight:
		if !s.Resolved {
			return nil, ErrNotResolved
		}
	case domain.PhaseEnded:
		return nil, ErrGameEnded
	default:
		return nil, ErrWrongPhase
	}

	s.Phase = domain.PhaseDay
	s.Resolved = false
	s.DayCount++

	r := svc.newResolution(s)
	r.emit(broadcast(EventPhaseStarted, PhaseStartedPayload{
		Phase:  domain.PhaseDay,
		Number: s.DayCount,
	}))
	r.fireDue(func(d domain.DelayedEffect) bool {
		return d.Kind == domain.DelayedDoom && d.TriggerDay <= s.DayCount
	}, CauseDoom)
	return r.events, nil
}

// EndGame moves the session to ended and reveals every role.
func (svc *Service) EndGame(s *domain.Session, outcome domain.Outcome) []Event {
	s.Phase = domain.PhaseEnded
	s.Resolved = true
	s.Outcome = &outcome

	roles := make(map[domain.PlayerID]domain.RoleName, len(s.Players))
	for id, p := range s.Players {
		roles[id] = p.Role
	}
	return []Event{broadcast(EventGameEnded, GameEndedPayload{Outcome: outcome, Roles: roles})}
}
