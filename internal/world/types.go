package world

import (
	"fmt"
	"sync"
	"time"
)

// Season of the in-game calendar. Each season lasts SeasonLength game days.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

// seasonOrder is the progression used when deriving the season from elapsed
// game days.
var seasonOrder = []Season{SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter}

// respawnMultiplier scales resource respawn delays per season. Winter is
// lean, summer is generous.
var respawnMultiplier = map[Season]float64{
	SeasonSpring: 1.0,
	SeasonSummer: 0.8,
	SeasonAutumn: 1.2,
	SeasonWinter: 1.5,
}

type WeatherType string

const (
	WeatherClear WeatherType = "clear"
	WeatherRain  WeatherType = "rain"
	WeatherStorm WeatherType = "storm"
	WeatherSnow  WeatherType = "snow"
	WeatherFog   WeatherType = "fog"
)

// Position is a point in world space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ChunkKey identifies one spatial partition of the world.
type ChunkKey struct {
	X int `json:"x"`
	Z int `json:"z"`
}

func (k ChunkKey) String() string {
	return fmt.Sprintf("%d_%d", k.X, k.Z)
}

type ResourceType string

const (
	ResourceTree      ResourceType = "tree"
	ResourceRock      ResourceType = "rock"
	ResourceBerryBush ResourceType = "berry_bush"
	ResourceIronVein  ResourceType = "iron_vein"
	ResourceHerb      ResourceType = "herb"
)

// Resource is a harvestable world object. RemainingUses only decreases via a
// successful harvest and only returns to MaxUses via a respawn event. While
// Respawning is true all harvest attempts fail, regardless of what a stale
// client believes RemainingUses to be.
type Resource struct {
	ID            string       `json:"id"`
	Type          ResourceType `json:"type"`
	Position      Position     `json:"position"`
	RemainingUses int          `json:"remainingUses"`
	MaxUses       int          `json:"maxUses"`
	RespawnDelay  time.Duration `json:"respawnDelay"`
	LastHarvested time.Time    `json:"lastHarvested,omitzero"`
	HarvestedBy   string       `json:"harvestedBy,omitempty"`
	Chunk         ChunkKey     `json:"chunk"`
	Respawning    bool         `json:"respawning"`
}

// Enemy is a shared combat target. Once Alive flips to false, Health is
// pinned to 0 and the record survives for a grace window so a delayed
// duplicate defeat message resolves against a stable id instead of
// double-rewarding.
type Enemy struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Level        int       `json:"level"`
	Position     Position  `json:"position"`
	Health       int       `json:"health"`
	MaxHealth    int       `json:"maxHealth"`
	Alive        bool      `json:"alive"`
	SpawnedAt    time.Time `json:"spawnedAt"`
	LastActivity time.Time `json:"lastActivity"`
	Chunk        ChunkKey  `json:"chunk"`
	AggroTarget  string    `json:"aggroTarget,omitempty"`
	Loot         []string  `json:"loot,omitempty"`
	Experience   int       `json:"experience"`
	DefeatedBy   string    `json:"defeatedBy,omitempty"`
	diedAt       time.Time
}

// Weather is the per-session weather scalar state. It changes only through
// the event scheduler.
type Weather struct {
	Type      WeatherType   `json:"type"`
	Intensity float64       `json:"intensity"`
	Duration  time.Duration `json:"duration"`
	StartedAt time.Time     `json:"startedAt"`
}

// Economy tracks per-item price, demand, and recent trade volume for one
// session. Prices never drop below one unit of currency.
type Economy struct {
	Prices      map[string]float64 `json:"prices"`
	Demand      map[string]float64 `json:"demand"`
	TradeVolume map[string]int     `json:"tradeVolume"`
	LastTick    time.Time          `json:"lastTick"`
}

// State is the authoritative simulated world for one session. All access
// goes through Store methods, which hold mu for the duration of a mutation.
// Different sessions lock independently; nothing is shared between them.
type State struct {
	mu sync.Mutex

	SessionID    string
	Seed         int64
	GameTime     time.Duration
	Season       Season
	LoadedChunks map[ChunkKey]bool
	Resources    map[string]*Resource
	Enemies      map[string]*Enemy
	Discovered   map[string]bool
	Weather      Weather
	Economy      Economy
	PlayerCount  int
	LastUpdate   time.Time

	// lastActivity is bumped by player-driven mutations only, never by the
	// tick itself, so the cleanup sweep can find abandoned worlds.
	lastActivity time.Time

	events eventQueue
}

// Snapshot is a copy-safe view of a world suitable for serialization to
// clients.
type Snapshot struct {
	SessionID   string               `json:"sessionId"`
	Seed        int64                `json:"worldSeed"`
	GameTimeMs  int64                `json:"gameTime"`
	Season      Season               `json:"season"`
	Resources   []Resource           `json:"resources"`
	Enemies     []Enemy              `json:"enemies"`
	Discovered  []string             `json:"discoveredLocations"`
	Weather     Weather              `json:"weather"`
	Prices      map[string]float64   `json:"prices"`
	PlayerCount int                  `json:"playerCount"`
}
