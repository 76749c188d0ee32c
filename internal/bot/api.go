package bot

import (
	"wolfbot/internal/app"
	"wolfbot/internal/domain"
)

// Decision is an action chosen by a bot. Abstain only applies to votes.
type Decision struct {
	Kind    domain.ActionKind
	Target  domain.PlayerID
	Abstain bool
	Payload map[string]string
}

// Brain is the interface that all bot strategies must implement. Night and
// Day return false when the bot does not want to act.
type Brain interface {
	Night(s *domain.Session, self *domain.Player) (Decision, bool)
	Day(s *domain.Session, self *domain.Player) (Decision, bool)
	Vote(s *domain.Session, self *domain.Player) Decision
	OnEvent(event app.Event)
}
