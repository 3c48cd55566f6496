package session

import (
	"encoding/json"
	"time"
)

const (
	// MaxPlayers is the fixed per-session cap.
	MaxPlayers = 8
)

// Position is a player's last reported location, cached for reconnect and
// inspection only; it is never authoritative gameplay state.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Player is one connection's membership in a session.
type Player struct {
	ID       string    `json:"id"`
	ConnID   string    `json:"-"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
	LastSeen time.Time `json:"lastSeen"`
	Position *Position `json:"position,omitempty"`
	Level    int       `json:"level"`
	IsHost   bool      `json:"isHost"`

	// Stats is the last inventory/stats blob the client sent, kept
	// verbatim for inspection.
	Stats json.RawMessage `json:"stats,omitempty"`
}

// GameState is the session-level snapshot of shared progress. The world
// store owns the simulation; this records what the party has consumed so a
// reconnecting client can be caught up cheaply.
type GameState struct {
	HarvestedResources map[string]bool `json:"harvestedResources"`
	DefeatedEnemies    map[string]bool `json:"defeatedEnemies"`
	SharedInventory    map[string]int  `json:"sharedInventory"`
}

func newGameState() GameState {
	return GameState{
		HarvestedResources: make(map[string]bool),
		DefeatedEnemies:    make(map[string]bool),
		SharedInventory:    make(map[string]int),
	}
}

func (g GameState) clone() GameState {
	out := GameState{
		HarvestedResources: make(map[string]bool, len(g.HarvestedResources)),
		DefeatedEnemies:    make(map[string]bool, len(g.DefeatedEnemies)),
		SharedInventory:    make(map[string]int, len(g.SharedInventory)),
	}
	for k, v := range g.HarvestedResources {
		out.HarvestedResources[k] = v
	}
	for k, v := range g.DefeatedEnemies {
		out.DefeatedEnemies[k] = v
	}
	for k, v := range g.SharedInventory {
		out.SharedInventory[k] = v
	}
	return out
}

// Session is one hosted game instance. Players is ordered by join time;
// that order is the documented host-succession rule, not an accident of
// storage. While the session has any players, exactly one of them is host.
type Session struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	HostConnID   string    `json:"-"`
	HostName     string    `json:"hostName"`
	Players      []*Player `json:"players"`
	MaxPlayers   int       `json:"maxPlayers"`
	Public       bool      `json:"public"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	WorldSeed    int64     `json:"worldSeed"`
	State        GameState `json:"state"`
}

func (s *Session) player(connID string) *Player {
	for _, p := range s.Players {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

// clone returns a copy safe to read outside the registry lock: the player
// list and the game-state maps are detached from the live session, which
// RecordHarvest and RecordDefeat keep mutating.
func (s *Session) clone() Session {
	out := *s
	out.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		cp := *p
		out.Players[i] = &cp
	}
	out.State = s.State.clone()
	return out
}

// Info is the public-listing view of a session.
type Info struct {
	ID          string `json:"id"`
	HostName    string `json:"hostName"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
}

func (s *Session) info() Info {
	return Info{
		ID:          s.ID,
		HostName:    s.HostName,
		PlayerCount: len(s.Players),
		MaxPlayers:  s.MaxPlayers,
	}
}
