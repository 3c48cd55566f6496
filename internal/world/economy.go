package world

import (
	"math/rand/v2"
	"time"
)

const maxVolumeSample = 50

// UpdateEconomy recalculates every tracked price at most once per ten
// minutes of wall time. New price = old price x demand factor x volume
// factor x random factor, floored at one unit of currency. Trade volume is
// consumed by the recalculation and resets to zero.
func (s *Store) UpdateEconomy(sessionID string, now time.Time) bool {
	return s.with(sessionID, func(st *State) {
		s.updateEconomyLocked(st, now)
	})
}

func (s *Store) updateEconomyLocked(st *State, now time.Time) {
	if now.Sub(st.Economy.LastTick) < economyInterval {
		return
	}
	st.Economy.LastTick = now

	for item, price := range st.Economy.Prices {
		next := price * demandFactor(st.Economy.Demand[item]) *
			volumeFactor(st.Economy.TradeVolume[item]) *
			(0.95 + 0.1*rand.Float64())
		if next < 1 {
			next = 1
		}
		st.Economy.Prices[item] = next
		st.Economy.TradeVolume[item] = 0
	}

	st.schedule(newEvent(EventMarketFluctuation, now, marketSnapshot(st)))
}

// demandFactor maps demand in [0,1] onto [0.8,1.2].
func demandFactor(demand float64) float64 {
	if demand < 0 {
		demand = 0
	} else if demand > 1 {
		demand = 1
	}
	return 0.8 + 0.4*demand
}

// volumeFactor maps recent trade volume onto [1.0,1.2], capped and
// non-decreasing with volume.
func volumeFactor(volume int) float64 {
	if volume < 0 {
		volume = 0
	} else if volume > maxVolumeSample {
		volume = maxVolumeSample
	}
	return 1.0 + 0.2*float64(volume)/maxVolumeSample
}

func marketSnapshot(st *State) map[string]float64 {
	prices := make(map[string]float64, len(st.Economy.Prices))
	for item, price := range st.Economy.Prices {
		prices[item] = price
	}
	return prices
}
