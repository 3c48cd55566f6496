package world

import (
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestRollWeather(t *testing.T) {
	now := time.Now()

	for _, season := range seasonOrder {
		for i := 0; i < 50; i++ {
			w := rollWeather(season, now)

			valid := false
			for _, e := range weatherWeights[season] {
				if e.t == w.Type {
					valid = true
				}
			}
			if !valid {
				t.Fatalf("%s rolled %s, not in its table", season, w.Type)
			}
			if w.Intensity < 0.3 || w.Intensity > 1.0 {
				t.Fatalf("intensity %f out of range", w.Intensity)
			}
			if w.Duration < 5*time.Minute || w.Duration > 20*time.Minute {
				t.Fatalf("duration %v out of range", w.Duration)
			}
			testutil.AssertEqual(t, "started at", w.StartedAt, now)
		}
	}
}

func TestRollWeather_WinterNeverRains(t *testing.T) {
	for i := 0; i < 100; i++ {
		w := rollWeather(SeasonWinter, time.Now())
		if w.Type == WeatherRain {
			t.Fatal("winter rolled rain")
		}
	}
}

func TestUpdateWeather_DurationGate(t *testing.T) {
	now := time.Now()
	s := newTestStore()
	s.Create("sess", 1, 1, now)

	st := s.get("sess")
	st.Weather = Weather{Type: WeatherClear, Duration: 10 * time.Minute, StartedAt: now}

	// Still inside the current spell: nothing changes.
	s.UpdateWeather("sess", now.Add(5*time.Minute))
	testutil.AssertEqual(t, "unchanged", st.Weather.StartedAt, now)

	// Past the spell's end a fresh roll is applied and announced.
	at := now.Add(11 * time.Minute)
	s.UpdateWeather("sess", at)
	testutil.AssertEqual(t, "restarted", s.get("sess").Weather.StartedAt, at)

	announced := 0
	for _, ev := range s.PendingEvents("sess") {
		if ev.Type == EventWeatherChange && ev.ScheduledAt.Equal(at) {
			announced++
		}
	}
	testutil.AssertEqual(t, "change announced", announced, 1)
}
