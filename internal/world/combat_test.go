package world

import (
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func addEnemy(s *Store, sessionID string, e *Enemy) {
	st := s.get(sessionID)
	st.Enemies[e.ID] = e
}

func testEnemy(id string) *Enemy {
	return &Enemy{
		ID:         id,
		Type:       "wolf",
		Level:      2,
		Health:     40,
		MaxHealth:  40,
		Alive:      true,
		Chunk:      ChunkKey{X: 0, Z: 0},
		Loot:       []string{"wolf_pelt"},
		Experience: 25,
	}
}

func TestDefeatEnemy(t *testing.T) {
	now := time.Now()
	s := newTestStore()
	s.Create("sess", 1, 1, now)
	addEnemy(s, "sess", testEnemy("enemy-1"))

	result := s.DefeatEnemy("sess", "enemy-1", "player-aria", now)

	testutil.AssertEqual(t, "accepted", result.Accepted, true)
	testutil.AssertEqual(t, "experience", result.Experience, 25)
	testutil.AssertEqual(t, "loot count", len(result.Loot), 1)
	testutil.AssertEqual(t, "loot", result.Loot[0], "wolf_pelt")

	e := s.get("sess").Enemies["enemy-1"]
	testutil.AssertEqual(t, "alive", e.Alive, false)
	testutil.AssertEqual(t, "health pinned", e.Health, 0)
	testutil.AssertEqual(t, "defeated by", e.DefeatedBy, "player-aria")
}

func TestDefeatEnemy_DuplicateIsNoOp(t *testing.T) {
	now := time.Now()
	s := newTestStore()
	s.Create("sess", 1, 1, now)
	addEnemy(s, "sess", testEnemy("enemy-1"))

	first := s.DefeatEnemy("sess", "enemy-1", "player-aria", now)
	testutil.AssertEqual(t, "first accepted", first.Accepted, true)

	// A delayed duplicate from another client earns nothing.
	second := s.DefeatEnemy("sess", "enemy-1", "player-bram", now.Add(time.Second))

	testutil.AssertEqual(t, "second accepted", second.Accepted, false)
	testutil.AssertEqual(t, "no experience", second.Experience, 0)
	testutil.AssertEqual(t, "no loot", len(second.Loot), 0)

	e := s.get("sess").Enemies["enemy-1"]
	testutil.AssertEqual(t, "health stays 0", e.Health, 0)
	testutil.AssertEqual(t, "credit unchanged", e.DefeatedBy, "player-aria")
}

func TestDefeatEnemy_UnknownIsNoOp(t *testing.T) {
	now := time.Now()
	s := newTestStore()
	s.Create("sess", 1, 1, now)

	result := s.DefeatEnemy("sess", "enemy-ghost", "player-1", now)
	testutil.AssertEqual(t, "accepted", result.Accepted, false)
}

func TestPruneCorpses(t *testing.T) {
	now := time.Now()
	s := newTestStore()
	s.Create("sess", 1, 1, now)
	addEnemy(s, "sess", testEnemy("enemy-1"))
	s.DefeatEnemy("sess", "enemy-1", "player-1", now)

	st := s.get("sess")

	// Inside the grace window the id stays resolvable.
	st.mu.Lock()
	pruneCorpsesLocked(st, now.Add(corpseGrace/2))
	st.mu.Unlock()
	if _, ok := st.Enemies["enemy-1"]; !ok {
		t.Fatal("corpse removed inside grace window")
	}

	st.mu.Lock()
	pruneCorpsesLocked(st, now.Add(corpseGrace+time.Second))
	st.mu.Unlock()
	if _, ok := st.Enemies["enemy-1"]; ok {
		t.Error("corpse should be pruned after grace window")
	}
}

func TestSetAggro(t *testing.T) {
	now := time.Now()
	s := newTestStore()
	s.Create("sess", 1, 1, now)
	addEnemy(s, "sess", testEnemy("enemy-1"))

	s.SetAggro("sess", "enemy-1", "player-aria", now)
	testutil.AssertEqual(t, "aggro", s.get("sess").Enemies["enemy-1"].AggroTarget, "player-aria")

	// Dead enemies ignore aggro changes.
	s.DefeatEnemy("sess", "enemy-1", "player-aria", now)
	s.SetAggro("sess", "enemy-1", "player-bram", now)
	testutil.AssertEqual(t, "aggro cleared on death", s.get("sess").Enemies["enemy-1"].AggroTarget, "")
}
