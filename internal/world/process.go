package world

import "time"

// ProcessDueEvents drains and applies every event scheduled at or before
// now, leaving future events queued. Each event type has exactly one
// handler and the Processed flag makes application idempotent. The applied
// events are returned for broadcast.
func (s *Store) ProcessDueEvents(sessionID string, now time.Time) []Event {
	var out []Event
	s.with(sessionID, func(st *State) {
		out = s.processEventsLocked(st, now)
	})
	return out
}

func (s *Store) processEventsLocked(st *State, now time.Time) []Event {
	var out []Event
	for {
		ev := st.popDue(now)
		if ev == nil {
			return out
		}
		s.applyEventLocked(st, ev, now)
		ev.Processed = true
		out = append(out, *ev)
	}
}

func (s *Store) applyEventLocked(st *State, ev *Event, now time.Time) {
	switch ev.Type {
	case EventResourceRespawn:
		p, ok := ev.Payload.(respawnPayload)
		if !ok {
			return
		}
		if res, found := st.Resources[p.ResourceID]; found {
			res.RemainingUses = res.MaxUses
			res.Respawning = false
			res.HarvestedBy = ""
		}

	case EventEnemySpawn:
		p, ok := ev.Payload.(spawnPayload)
		if !ok {
			return
		}
		s.spawnFromEventLocked(st, p, now)

	case EventWeatherChange:
		// A nil payload is the initial scheduled change: roll fresh
		// weather at processing time.
		if p, ok := ev.Payload.(weatherPayload); ok {
			st.Weather = p.Weather
			return
		}
		w := rollWeather(st.Season, now)
		st.Weather = w
		ev.Payload = weatherPayload{Weather: w}

	case EventSeasonalChange:
		p, ok := ev.Payload.(seasonPayload)
		if !ok {
			return
		}
		s.applySeasonLocked(st, p.Season, now)

	case EventMarketFluctuation:
		// Prices were already recalculated when the event was enqueued;
		// the event exists to be broadcast.
	}
}

func (s *Store) spawnFromEventLocked(st *State, p spawnPayload, now time.Time) {
	live := 0
	for _, e := range st.Enemies {
		if e.Chunk == p.Chunk && e.Alive {
			live++
		}
	}
	if live >= maxEnemiesPerChunk {
		return
	}

	for _, kind := range enemyKinds {
		if kind.typ == p.Type {
			spawnEnemyLocked(st, p.Chunk, kind, now)
			return
		}
	}
	for _, kind := range seasonalEnemies {
		if kind.typ == p.Type {
			spawnEnemyLocked(st, p.Chunk, kind, now)
			return
		}
	}
}

// applySeasonLocked rescales every resource's respawn delay for the new
// season and queues one seasonal spawn per loaded chunk where the season
// has one.
func (s *Store) applySeasonLocked(st *State, season Season, now time.Time) {
	mult := respawnMultiplier[season]
	for _, res := range st.Resources {
		for _, kind := range resourceKinds {
			if kind.typ == res.Type {
				res.RespawnDelay = time.Duration(float64(kind.baseRespawn) * mult)
				break
			}
		}
	}

	kind, ok := seasonalEnemies[season]
	if !ok {
		return
	}
	for key := range st.LoadedChunks {
		st.schedule(newEvent(EventEnemySpawn, now.Add(randDuration(time.Minute)),
			spawnPayload{Chunk: key, Type: kind.typ}))
	}
}
