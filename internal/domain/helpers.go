package domain

import "sort"

// AlivePlayers returns the living player ids in seating order.
func AlivePlayers(s *Session) []PlayerID {
	out := make([]PlayerID, 0, len(s.Order))
	for _, id := range s.Order {
		if s.IsAlive(id) {
			out = append(out, id)
		}
	}
	return out
}

// CountAlive returns the number of living players.
func CountAlive(s *Session) int {
	n := 0
	for _, p := range s.Players {
		if p.Alive {
			n++
		}
	}
	return n
}

// CountAliveByTeam returns the number of living players on team.
func CountAliveByTeam(s *Session, team Team) int {
	n := 0
	for _, p := range s.Players {
		if p.Alive && p.Team() == team {
			n++
		}
	}
	return n
}

// SortedIDs returns the keys of a player-keyed map in ascending order.
func SortedIDs[V any](m map[PlayerID]V) []PlayerID {
	ids := make([]PlayerID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Neighbors returns the nearest living players to either side of id in seating
// order, skipping any id listed in exclude. At most two ids are returned.
func Neighbors(s *Session, id PlayerID, exclude ...PlayerID) []PlayerID {
	n := len(s.Order)
	idx := -1
	for i, pid := range s.Order {
		if pid == id {
			idx = i
			break
		}
	}
	if idx < 0 || n < 2 {
		return nil
	}

	skip := func(pid PlayerID) bool {
		if pid == id || !s.IsAlive(pid) {
			return true
		}
		for _, e := range exclude {
			if pid == e {
				return true
			}
		}
		return false
	}

	var out []PlayerID
	for step := 1; step < n; step++ {
		left := s.Order[(idx-step+n)%n]
		if !skip(left) {
			out = append(out, left)
			break
		}
	}
	for step := 1; step < n; step++ {
		right := s.Order[(idx+step)%n]
		if !skip(right) {
			if len(out) == 0 || out[0] != right {
				out = append(out, right)
			}
			break
		}
	}
	return out
}

// ApparentRole is the role a seer observes for p.
func ApparentRole(p *Player) RoleName {
	if p.Templates.Has(TemplateCursed) {
		return RoleWolf
	}
	if seen := RoleOf(p.Role).SeenAs; seen != "" {
		return seen
	}
	return p.Role
}

// LooksLikeWolf reports whether a seer would see p as wolf-aligned.
func LooksLikeWolf(p *Player) bool {
	return RoleOf(ApparentRole(p)).Team == TeamWolf
}

// IsSeerType reports whether the role is one of the seeing roles.
func IsSeerType(name RoleName) bool {
	switch name {
	case RoleSeer, RoleOracle, RoleAugur:
		return true
	}
	return false
}
