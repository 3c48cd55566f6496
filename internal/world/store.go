package world

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/emberwild/worldserver/internal/catalog"
)

const (
	DefaultDayLength    = 10 * time.Minute
	DefaultCleanupAfter = time.Hour

	seasonDays      = 30
	corpseGrace     = 30 * time.Second
	economyInterval = 10 * time.Minute
	sweepInterval   = time.Minute
	minRespawnDelay = 15 * time.Second
)

// EventSink receives the events a world emitted during a tick so the
// transport layer can broadcast them to the session room.
type EventSink interface {
	WorldEvents(sessionID string, events []Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(sessionID string, events []Event)

func (f EventSinkFunc) WorldEvents(sessionID string, events []Event) {
	f(sessionID, events)
}

// Store owns every live world. It is the only mutation path: callers never
// touch a State directly. Each world carries its own lock, so harvests and
// event processing are linearizable per session while distinct sessions
// proceed in parallel.
type Store struct {
	mu     sync.RWMutex
	worlds map[string]*State

	items        map[string]catalog.Item
	sink         EventSink
	dayLength    time.Duration
	cleanupAfter time.Duration
	lastSweep    time.Time
}

func NewStore(items map[string]catalog.Item, opts ...StoreOpt) *Store {
	s := &Store{
		worlds:       make(map[string]*State),
		items:        items,
		dayLength:    DefaultDayLength,
		cleanupAfter: DefaultCleanupAfter,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create builds the authoritative world for a new session, seeds the
// economy from the item catalog, and schedules the first weather change at
// a randomized 5-15 minute horizon.
func (s *Store) Create(sessionID string, seed int64, playerCount int, now time.Time) {
	st := &State{
		SessionID:    sessionID,
		Seed:         seed,
		Season:       SeasonSpring,
		LoadedChunks: make(map[ChunkKey]bool),
		Resources:    make(map[string]*Resource),
		Enemies:      make(map[string]*Enemy),
		Discovered:   make(map[string]bool),
		Weather: Weather{
			Type:      WeatherClear,
			Intensity: 0.3,
			Duration:  10 * time.Minute,
			StartedAt: now,
		},
		Economy: Economy{
			Prices:      make(map[string]float64),
			Demand:      make(map[string]float64),
			TradeVolume: make(map[string]int),
			LastTick:    now,
		},
		PlayerCount:  playerCount,
		LastUpdate:   now,
		lastActivity: now,
	}

	for id, item := range s.items {
		st.Economy.Prices[id] = item.BasePrice
		st.Economy.Demand[id] = item.BaseDemand
		st.Economy.TradeVolume[id] = 0
	}

	st.schedule(newEvent(EventWeatherChange, now.Add(5*time.Minute+randDuration(10*time.Minute)), nil))

	s.mu.Lock()
	s.worlds[sessionID] = st
	s.mu.Unlock()
}

// Delete drops a world. Deletion is a barrier: whatever was still queued
// for the session is discarded with it and can never fire.
func (s *Store) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.worlds[sessionID]
	delete(s.worlds, sessionID)
	return ok
}

// Count returns the number of live worlds.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.worlds)
}

// SetPlayerCount records how many players share the world. Respawn delays
// divide by it, so bigger sessions regenerate faster.
func (s *Store) SetPlayerCount(sessionID string, n int) {
	s.with(sessionID, func(st *State) {
		st.PlayerCount = n
	})
}

// SetAggro points an enemy at a player. Dead enemies keep their last
// target.
func (s *Store) SetAggro(sessionID, enemyID, playerID string, now time.Time) {
	s.with(sessionID, func(st *State) {
		if e, ok := st.Enemies[enemyID]; ok && e.Alive {
			e.AggroTarget = playerID
			e.LastActivity = now
			st.lastActivity = now
		}
	})
}

// UpdatePatch is the mergeable subset of a world_update payload. Anything
// else in the payload is rebroadcast untouched by the gateway.
type UpdatePatch struct {
	DiscoveredLocations []string       `json:"discoveredLocations,omitempty"`
	Trades              map[string]int `json:"trades,omitempty"`
}

// MergeUpdate folds a client world_update into the authoritative state.
func (s *Store) MergeUpdate(sessionID string, patch UpdatePatch, now time.Time) bool {
	return s.with(sessionID, func(st *State) {
		for _, loc := range patch.DiscoveredLocations {
			st.Discovered[loc] = true
		}
		for item, qty := range patch.Trades {
			if qty <= 0 {
				continue
			}
			if _, ok := st.Economy.Prices[item]; ok {
				st.Economy.TradeVolume[item] += qty
			}
		}
		st.lastActivity = now
	})
}

// Snapshot returns a serializable copy of the world.
func (s *Store) Snapshot(sessionID string) (Snapshot, bool) {
	var snap Snapshot
	ok := s.with(sessionID, func(st *State) {
		snap = Snapshot{
			SessionID:   st.SessionID,
			Seed:        st.Seed,
			GameTimeMs:  st.GameTime.Milliseconds(),
			Season:      st.Season,
			Resources:   make([]Resource, 0, len(st.Resources)),
			Enemies:     make([]Enemy, 0, len(st.Enemies)),
			Discovered:  make([]string, 0, len(st.Discovered)),
			Weather:     st.Weather,
			Prices:      make(map[string]float64, len(st.Economy.Prices)),
			PlayerCount: st.PlayerCount,
		}
		for _, r := range st.Resources {
			snap.Resources = append(snap.Resources, *r)
		}
		for _, e := range st.Enemies {
			snap.Enemies = append(snap.Enemies, *e)
		}
		for loc := range st.Discovered {
			snap.Discovered = append(snap.Discovered, loc)
		}
		for item, price := range st.Economy.Prices {
			snap.Prices[item] = price
		}
	})
	return snap, ok
}

// PendingEvents returns a copy of a world's unprocessed event queue.
func (s *Store) PendingEvents(sessionID string) []Event {
	var evs []Event
	s.with(sessionID, func(st *State) {
		evs = st.pendingEvents()
	})
	return evs
}

// Tick advances every live world by the wall-clock delta since its last
// update, then drains due events and prunes expired corpses. It implements
// driver.Manager.
func (s *Store) Tick(ctx context.Context) error {
	now := time.Now()

	s.mu.RLock()
	ids := make([]string, 0, len(s.worlds))
	for id := range s.worlds {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		var emitted []Event
		ok := s.with(id, func(st *State) {
			delta := now.Sub(st.LastUpdate)
			if delta < 0 {
				delta = 0
			}
			s.advanceTimeLocked(st, delta, now)
			s.updateWeatherLocked(st, now)
			s.updateEconomyLocked(st, now)
			emitted = s.processEventsLocked(st, now)
			pruneCorpsesLocked(st, now)
			st.LastUpdate = now
		})
		if ok && len(emitted) > 0 && s.sink != nil {
			s.sink.WorldEvents(id, emitted)
		}
	}

	if now.Sub(s.lastSweep) >= sweepInterval {
		s.lastSweep = now
		for _, id := range s.sweepStale(now) {
			slog.InfoContext(ctx, "removed stale world", "session", id)
		}
	}

	return nil
}

// sweepStale removes worlds with no player-driven activity inside the
// cleanup horizon. The session registry usually deletes worlds first; this
// is the safety net behind it.
func (s *Store) sweepStale(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for id, st := range s.worlds {
		st.mu.Lock()
		stale := now.Sub(st.lastActivity) > s.cleanupAfter
		st.mu.Unlock()
		if stale {
			delete(s.worlds, id)
			removed = append(removed, id)
		}
	}
	return removed
}

func (s *Store) get(sessionID string) *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.worlds[sessionID]
}

// with runs fn while holding the world's lock. Returns false when the
// session has no world.
func (s *Store) with(sessionID string, fn func(*State)) bool {
	st := s.get(sessionID)
	if st == nil {
		return false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(st)
	return true
}

func randDuration(span time.Duration) time.Duration {
	return time.Duration(rand.Int64N(int64(span)))
}
