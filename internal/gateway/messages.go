package gateway

import (
	"encoding/json"
	"time"

	"github.com/emberwild/worldserver/internal/session"
	"github.com/emberwild/worldserver/internal/world"
)

// Envelope is the wire framing for every message in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound message types.
const (
	MsgCreateSession     = "create_session"
	MsgJoinSession       = "join_session"
	MsgLeaveSession      = "leave_session"
	MsgChat              = "chat_message"
	MsgPlayerUpdate      = "player_update"
	MsgGameMessage       = "game_message"
	MsgResourceHarvested = "resource_harvested"
	MsgEnemyDefeated     = "enemy_defeated"
	MsgWorldUpdate       = "world_update"
	MsgRequestWorldState = "request_world_state"
)

// Outbound message types.
const (
	MsgSessionCreated = "session_created"
	MsgSessionJoined  = "session_joined"
	MsgPlayerJoined   = "player_joined"
	MsgPlayerLeft     = "player_left"
	MsgWorldState     = "world_state"
	MsgWorldEvent     = "world_event"
	MsgError          = "error"
)

type createSessionRequest struct {
	HostName string `json:"hostName"`
	Public   bool   `json:"public"`
}

type joinSessionRequest struct {
	HostCode   string `json:"hostCode"`
	PlayerName string `json:"playerName"`
}

type chatRequest struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

type playerUpdateRequest struct {
	Position *session.Position `json:"position,omitempty"`
	Level    int               `json:"level,omitempty"`
	Stats    json.RawMessage   `json:"stats,omitempty"`
}

type harvestRequest struct {
	ResourceID string `json:"resourceId"`
}

type defeatRequest struct {
	EnemyID    string   `json:"enemyId"`
	Experience int      `json:"experience,omitempty"`
	Loot       []string `json:"loot,omitempty"`
	AggroOn    string   `json:"aggroOn,omitempty"`
}

type worldStateRequest struct {
	ChunkX int `json:"chunkX"`
	ChunkZ int `json:"chunkZ"`
}

type sessionCreatedReply struct {
	SessionID string          `json:"sessionId"`
	HostCode  string          `json:"hostCode"`
	Player    session.Player  `json:"player"`
	Session   session.Session `json:"session"`
}

type sessionJoinedReply struct {
	SessionID string            `json:"sessionId"`
	Player    session.Player    `json:"player"`
	Players   []*session.Player `json:"players"`
}

type playerJoinedBroadcast struct {
	SessionID string         `json:"sessionId"`
	Player    session.Player `json:"player"`
}

type playerLeftBroadcast struct {
	SessionID  string `json:"sessionId"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	NewHostID  string `json:"newHostId,omitempty"`
}

type chatBroadcast struct {
	ID        string `json:"id"`
	SenderID  string `json:"senderId"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type harvestBroadcast struct {
	world.HarvestResult
	HarvestedBy string `json:"harvestedBy"`
	Timestamp   int64  `json:"timestamp"`
}

type defeatBroadcast struct {
	world.DefeatResult
	DefeatedBy string `json:"defeatedBy"`
	Timestamp  int64  `json:"timestamp"`
}

type worldEventBroadcast struct {
	SessionID string      `json:"sessionId"`
	Event     world.Event `json:"event"`
}

type errorReply struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
	ReplyTo string `json:"replyTo,omitempty"`
}

// relay is a gameplay payload passed through unmodified except for the
// attached sender.
type relay struct {
	SenderID string          `json:"senderId"`
	Payload  json.RawMessage `json:"payload"`
}

func encode(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func stamp(now time.Time) int64 {
	return now.UnixMilli()
}
