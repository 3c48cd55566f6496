package world

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

const (
	chunkSize          = 64.0
	maxEnemiesPerChunk = 5
)

type drop struct {
	item   string
	weight int
}

type resourceKind struct {
	typ         ResourceType
	maxUses     int
	baseRespawn time.Duration
	drops       []drop
}

// resourceKinds is the fixed spawn table; the chunk hash indexes into it.
var resourceKinds = []resourceKind{
	{ResourceTree, 3, 2 * time.Minute, []drop{{"wood", 9}, {"herbs", 1}}},
	{ResourceRock, 4, 3 * time.Minute, []drop{{"stone", 10}}},
	{ResourceBerryBush, 2, 90 * time.Second, []drop{{"berries", 10}}},
	{ResourceIronVein, 5, 5 * time.Minute, []drop{{"iron_ore", 8}, {"stone", 2}}},
	{ResourceHerb, 1, time.Minute, []drop{{"herbs", 10}}},
}

type enemyKind struct {
	typ       string
	baseLevel int
	health    int
	loot      []string
	xp        int
}

var enemyKinds = []enemyKind{
	{"wolf", 2, 40, []string{"wolf_pelt"}, 25},
	{"boar", 1, 30, []string{"leather"}, 15},
	{"bandit", 3, 60, []string{"leather", "health_potion"}, 40},
	{"skeleton", 4, 50, []string{"iron_ore"}, 50},
}

// seasonalEnemies spawn once per loaded chunk when their season arrives.
var seasonalEnemies = map[Season]enemyKind{
	SeasonWinter: {"frost_wolf", 5, 80, []string{"wolf_pelt", "wolf_pelt"}, 70},
	SeasonSummer: {"giant_wasp", 3, 35, []string{"herbs"}, 30},
}

// chunkHash mixes the world seed with chunk coordinates and an index. It
// drives resource counts, types, and positions so generating the same
// unloaded chunk twice yields identical resources.
func chunkHash(seed int64, key ChunkKey, index int) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%d:%d:%d", seed, key.X, key.Z, index)
	return h.Sum64()
}

// GenerateChunkResources materializes a chunk's resources exactly once.
// Calling it for an already-loaded chunk returns the live resources without
// regenerating, so depleted state is never clobbered.
func (s *Store) GenerateChunkResources(sessionID string, key ChunkKey, now time.Time) ([]Resource, bool) {
	var out []Resource
	ok := s.with(sessionID, func(st *State) {
		s.generateResourcesLocked(st, key, now)
		out = chunkResourcesLocked(st, key)
		st.lastActivity = now
	})
	return out, ok
}

func (s *Store) generateResourcesLocked(st *State, key ChunkKey, now time.Time) {
	if st.LoadedChunks[key] {
		return
	}
	st.LoadedChunks[key] = true

	count := 3 + int(chunkHash(st.Seed, key, -1)%5)
	mult := respawnMultiplier[st.Season]

	for i := 0; i < count; i++ {
		h := chunkHash(st.Seed, key, i)
		kind := resourceKinds[h%uint64(len(resourceKinds))]

		res := &Resource{
			ID:            fmt.Sprintf("resource-%d_%d-%d", key.X, key.Z, i),
			Type:          kind.typ,
			Position:      chunkPosition(key, h),
			RemainingUses: kind.maxUses,
			MaxUses:       kind.maxUses,
			RespawnDelay:  time.Duration(float64(kind.baseRespawn) * mult),
			Chunk:         key,
		}
		st.Resources[res.ID] = res
	}
}

// GenerateChunkEnemies tops a chunk up to the live-enemy cap. Repeated
// calls only fill the deficit, never exceed the cap.
func (s *Store) GenerateChunkEnemies(sessionID string, key ChunkKey, now time.Time) ([]Enemy, bool) {
	var out []Enemy
	ok := s.with(sessionID, func(st *State) {
		topUpEnemiesLocked(st, key, now)
		out = chunkEnemiesLocked(st, key)
		st.lastActivity = now
	})
	return out, ok
}

func topUpEnemiesLocked(st *State, key ChunkKey, now time.Time) {
	live := 0
	for _, e := range st.Enemies {
		if e.Chunk == key && e.Alive {
			live++
		}
	}

	for live < maxEnemiesPerChunk {
		kind := enemyKinds[rand.IntN(len(enemyKinds))]
		spawnEnemyLocked(st, key, kind, now)
		live++
	}
}

func spawnEnemyLocked(st *State, key ChunkKey, kind enemyKind, now time.Time) *Enemy {
	level := kind.baseLevel + rand.IntN(3)
	health := kind.health + 10*(level-kind.baseLevel)

	e := &Enemy{
		ID:           fmt.Sprintf("enemy-%s", uuid.New().String()),
		Type:         kind.typ,
		Level:        level,
		Position:     chunkPosition(key, rand.Uint64()),
		Health:       health,
		MaxHealth:    health,
		Alive:        true,
		SpawnedAt:    now,
		LastActivity: now,
		Chunk:        key,
		Loot:         append([]string(nil), kind.loot...),
		Experience:   kind.xp * level / max(kind.baseLevel, 1),
	}
	st.Enemies[e.ID] = e
	return e
}

// chunkPosition spreads an object inside the chunk's world-space bounds
// using hash bits.
func chunkPosition(key ChunkKey, h uint64) Position {
	return Position{
		X: float64(key.X)*chunkSize + float64(h%997)/997.0*chunkSize,
		Y: 0,
		Z: float64(key.Z)*chunkSize + float64((h>>32)%991)/991.0*chunkSize,
	}
}

func chunkResourcesLocked(st *State, key ChunkKey) []Resource {
	var out []Resource
	for _, r := range st.Resources {
		if r.Chunk == key {
			out = append(out, *r)
		}
	}
	return out
}

func chunkEnemiesLocked(st *State, key ChunkKey) []Enemy {
	var out []Enemy
	for _, e := range st.Enemies {
		if e.Chunk == key {
			out = append(out, *e)
		}
	}
	return out
}
