package world

import (
	"math/rand/v2"
	"time"
)

// weatherWeights is the season-conditioned draw table. Winter favors snow
// and fog, summer favors clear skies.
var weatherWeights = map[Season][]struct {
	t WeatherType
	w int
}{
	SeasonSpring: {{WeatherClear, 4}, {WeatherRain, 4}, {WeatherFog, 2}, {WeatherStorm, 1}},
	SeasonSummer: {{WeatherClear, 6}, {WeatherRain, 2}, {WeatherStorm, 2}, {WeatherFog, 1}},
	SeasonAutumn: {{WeatherClear, 3}, {WeatherRain, 4}, {WeatherFog, 3}, {WeatherStorm, 2}},
	SeasonWinter: {{WeatherSnow, 5}, {WeatherFog, 3}, {WeatherClear, 2}, {WeatherStorm, 1}},
}

// UpdateWeather rolls new weather once the current spell's duration has
// elapsed. The change is applied immediately and a weather_change event is
// enqueued at now so the room hears about it on the same tick.
func (s *Store) UpdateWeather(sessionID string, now time.Time) bool {
	return s.with(sessionID, func(st *State) {
		s.updateWeatherLocked(st, now)
	})
}

func (s *Store) updateWeatherLocked(st *State, now time.Time) {
	if now.Sub(st.Weather.StartedAt) < st.Weather.Duration {
		return
	}

	w := rollWeather(st.Season, now)
	st.Weather = w
	st.schedule(newEvent(EventWeatherChange, now, weatherPayload{Weather: w}))
}

// rollWeather draws a type from the season's table with random intensity
// and a 5-20 minute duration.
func rollWeather(season Season, now time.Time) Weather {
	table := weatherWeights[season]
	total := 0
	for _, e := range table {
		total += e.w
	}

	pick := rand.IntN(total)
	t := table[len(table)-1].t
	for _, e := range table {
		if pick < e.w {
			t = e.t
			break
		}
		pick -= e.w
	}

	return Weather{
		Type:      t,
		Intensity: 0.3 + 0.7*rand.Float64(),
		Duration:  5*time.Minute + randDuration(15*time.Minute),
		StartedAt: now,
	}
}
