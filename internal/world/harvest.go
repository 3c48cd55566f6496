package world

import (
	"math/rand/v2"
	"time"
)

// HarvestReason explains a rejected harvest.
type HarvestReason string

const (
	HarvestUnknownResource HarvestReason = "unknown_resource"
	HarvestRespawning      HarvestReason = "respawning"
	HarvestDepleted        HarvestReason = "depleted"
)

// HarvestResult is the discriminated outcome of a harvest attempt. Race
// losses come back as rejections, never errors: two clients fighting over
// the last use of a node is normal traffic.
type HarvestResult struct {
	Accepted   bool          `json:"accepted"`
	Reason     HarvestReason `json:"reason,omitempty"`
	ResourceID string        `json:"resourceId"`
	Item       string        `json:"item,omitempty"`
	Remaining  int           `json:"remaining"`
	Respawning bool          `json:"respawning"`
}

// Harvest resolves one harvest attempt against a shared resource. The
// check-and-decrement runs under the world lock, so with one use left two
// concurrent callers get exactly one acceptance. A node mid-respawn rejects
// even if a stale client still sees uses on it.
func (s *Store) Harvest(sessionID, resourceID, playerID string, now time.Time) HarvestResult {
	result := HarvestResult{ResourceID: resourceID, Reason: HarvestUnknownResource}

	s.with(sessionID, func(st *State) {
		st.lastActivity = now

		res, ok := st.Resources[resourceID]
		if !ok {
			return
		}
		if res.Respawning {
			result.Reason = HarvestRespawning
			result.Respawning = true
			return
		}
		if res.RemainingUses <= 0 {
			result.Reason = HarvestDepleted
			return
		}

		res.RemainingUses--
		res.LastHarvested = now
		res.HarvestedBy = playerID

		result.Accepted = true
		result.Reason = ""
		result.Item = rollDrop(res.Type)
		result.Remaining = res.RemainingUses

		if res.RemainingUses == 0 {
			res.Respawning = true
			result.Respawning = true
			st.schedule(newEvent(EventResourceRespawn,
				now.Add(respawnDelay(res.RespawnDelay, st.PlayerCount)),
				respawnPayload{ResourceID: res.ID}))
		}
	})

	return result
}

// respawnDelay shortens the base delay as the session grows, floored at a
// sane minimum so busy servers still feel scarcity.
func respawnDelay(base time.Duration, playerCount int) time.Duration {
	if playerCount < 1 {
		playerCount = 1
	}
	d := base / time.Duration(playerCount)
	if d < minRespawnDelay {
		d = minRespawnDelay
	}
	return d
}

// rollDrop picks the yielded item for a resource type. Most types have one
// drop; the weighted roll only matters where a rare alternative exists.
func rollDrop(t ResourceType) string {
	for _, kind := range resourceKinds {
		if kind.typ != t {
			continue
		}
		total := 0
		for _, d := range kind.drops {
			total += d.weight
		}
		pick := rand.IntN(total)
		for _, d := range kind.drops {
			if pick < d.weight {
				return d.item
			}
			pick -= d.weight
		}
	}
	return ""
}
