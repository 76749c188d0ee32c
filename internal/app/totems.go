package app

import (
	"math/rand"

	"wolfbot/internal/domain"
)

// TotemAssigner draws the nightly totem of shaman-type roles.
type TotemAssigner struct {
	rng *rand.Rand
}

// NewTotemAssigner constructs an assigner drawing from rng.
func NewTotemAssigner(rng *rand.Rand) *TotemAssigner {
	return &TotemAssigner{rng: rng}
}

// Draw returns the actor's totem for the current night. The first call per
// night draws uniformly from the role's pool and caches the result; later
// calls return the cached totem. drawn reports whether this call drew.
func (a *TotemAssigner) Draw(s *domain.Session, actor *domain.Player) (totem domain.Totem, drawn bool, err error) {
	if s.UsedShamans[actor.ID] {
		return s.AssignedTotems[actor.ID], false, nil
	}
	pool := domain.RoleOf(actor.Role).TotemPool
	if len(pool) == 0 {
		return domain.TotemNone, false, reject(RejectNotPermitted, "%s has no totems", actor.Role)
	}

	totem = pool[a.rng.Intn(len(pool))]
	s.AssignedTotems[actor.ID] = totem
	s.UsedShamans[actor.ID] = true
	return totem, true, nil
}
