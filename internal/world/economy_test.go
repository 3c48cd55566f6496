package world

import (
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestUpdateEconomy_BoundsWithoutTrades(t *testing.T) {
	now := time.Now()
	s := newTestStore()
	s.Create("sess", 1, 1, now)

	ok := s.UpdateEconomy("sess", now.Add(economyInterval))
	testutil.AssertEqual(t, "updated", ok, true)

	// Wood: base 2, demand 0.6, no volume. Factors bound the result to
	// [2*0.8*1.0*0.95, 2*1.2*1.0*1.05].
	price := s.get("sess").Economy.Prices["wood"]
	if price < 2*0.8*0.95 || price > 2*1.2*1.05 {
		t.Errorf("wood price %f outside bounds", price)
	}
}

func TestUpdateEconomy_IntervalGate(t *testing.T) {
	now := time.Now()
	s := newTestStore()
	s.Create("sess", 1, 1, now)

	before := s.get("sess").Economy.Prices["wood"]
	s.UpdateEconomy("sess", now.Add(time.Minute))
	after := s.get("sess").Economy.Prices["wood"]

	testutil.AssertEqual(t, "price unchanged inside interval", after, before)
}

func TestUpdateEconomy_VolumeResets(t *testing.T) {
	now := time.Now()
	s := newTestStore()
	s.Create("sess", 1, 1, now)
	s.MergeUpdate("sess", UpdatePatch{Trades: map[string]int{"wood": 10}}, now)

	s.UpdateEconomy("sess", now.Add(economyInterval))

	st := s.get("sess")
	testutil.AssertEqual(t, "volume reset", st.Economy.TradeVolume["wood"], 0)
}

func TestUpdateEconomy_PriceFloor(t *testing.T) {
	now := time.Now()
	s := newTestStore()
	s.Create("sess", 1, 1, now)

	st := s.get("sess")
	st.Economy.Prices["wood"] = 1
	st.Economy.Demand["wood"] = 0

	// Run several ticks at minimum demand; the floor holds.
	at := now
	for i := 0; i < 5; i++ {
		at = at.Add(economyInterval)
		s.UpdateEconomy("sess", at)
	}

	if price := s.get("sess").Economy.Prices["wood"]; price < 1 {
		t.Errorf("price %f dropped below floor", price)
	}
}

func TestUpdateEconomy_EmitsMarketEvent(t *testing.T) {
	now := time.Now()
	s := newTestStore()
	s.Create("sess", 1, 1, now)

	s.UpdateEconomy("sess", now.Add(economyInterval))

	found := false
	for _, ev := range s.PendingEvents("sess") {
		if ev.Type == EventMarketFluctuation {
			found = true
		}
	}
	testutil.AssertEqual(t, "market event queued", found, true)
}

func TestDemandFactor(t *testing.T) {
	tests := map[string]struct {
		demand float64
		exp    float64
	}{
		"zero demand":  {demand: 0, exp: 0.8},
		"full demand":  {demand: 1, exp: 1.2},
		"mid demand":   {demand: 0.5, exp: 1.0},
		"clamped low":  {demand: -3, exp: 0.8},
		"clamped high": {demand: 7, exp: 1.2},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := demandFactor(tt.demand)
			if got < tt.exp-1e-9 || got > tt.exp+1e-9 {
				t.Errorf("demandFactor(%f) = %f, expected %f", tt.demand, got, tt.exp)
			}
		})
	}
}

func TestVolumeFactor(t *testing.T) {
	testutil.AssertEqual(t, "no volume", volumeFactor(0), 1.0)
	testutil.AssertEqual(t, "capped", volumeFactor(1000), 1.2)

	// Monotonically non-decreasing with volume.
	prev := volumeFactor(0)
	for v := 1; v <= maxVolumeSample; v++ {
		f := volumeFactor(v)
		if f < prev {
			t.Fatalf("volumeFactor(%d)=%f dropped below %f", v, f, prev)
		}
		prev = f
	}
}
