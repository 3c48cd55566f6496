package world

import "time"

// DefeatResult reports what a kill was worth. A duplicate defeat of an
// already-dead enemy comes back with Accepted=false and no reward; it is a
// no-op, not an error.
type DefeatResult struct {
	Accepted   bool     `json:"accepted"`
	EnemyID    string   `json:"enemyId"`
	Experience int      `json:"experience,omitempty"`
	Loot       []string `json:"loot,omitempty"`
}

// DefeatEnemy marks an enemy dead at most once. Health pins to 0 and the
// record survives for a grace window so a slightly delayed duplicate
// defeated message from another client resolves against a stable id
// instead of earning a second reward.
func (s *Store) DefeatEnemy(sessionID, enemyID, playerID string, now time.Time) DefeatResult {
	result := DefeatResult{EnemyID: enemyID}

	s.with(sessionID, func(st *State) {
		st.lastActivity = now

		e, ok := st.Enemies[enemyID]
		if !ok || !e.Alive {
			return
		}

		e.Alive = false
		e.Health = 0
		e.AggroTarget = ""
		e.DefeatedBy = playerID
		e.LastActivity = now
		e.diedAt = now

		result.Accepted = true
		result.Experience = e.Experience
		result.Loot = append([]string(nil), e.Loot...)
	})

	return result
}

// pruneCorpsesLocked removes dead enemies whose grace window has elapsed.
func pruneCorpsesLocked(st *State, now time.Time) {
	for id, e := range st.Enemies {
		if !e.Alive && now.Sub(e.diedAt) > corpseGrace {
			delete(st.Enemies, id)
		}
	}
}
