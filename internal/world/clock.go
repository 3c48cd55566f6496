package world

import "time"

// AdvanceTime moves a world's game clock forward and recomputes the season.
// Crossing a season boundary enqueues a seasonal_change event; the handler
// rescales respawn timers and rolls seasonal spawns.
func (s *Store) AdvanceTime(sessionID string, delta time.Duration, now time.Time) bool {
	return s.with(sessionID, func(st *State) {
		s.advanceTimeLocked(st, delta, now)
	})
}

func (s *Store) advanceTimeLocked(st *State, delta time.Duration, now time.Time) {
	st.GameTime += delta

	days := int(st.GameTime / s.dayLength)
	season := seasonOrder[(days/seasonDays)%len(seasonOrder)]
	if season == st.Season {
		return
	}

	st.Season = season
	st.schedule(newEvent(EventSeasonalChange, now, seasonPayload{Season: season}))
}

// seasonFor is the season after the given number of whole game days.
func seasonFor(days int) Season {
	return seasonOrder[(days/seasonDays)%len(seasonOrder)]
}
