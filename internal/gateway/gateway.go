package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/emberwild/worldserver/internal/session"
	"github.com/emberwild/worldserver/internal/world"
)

// Publisher delivers encoded messages to a single connection or a session
// room.
type Publisher interface {
	ToConn(connID string, data []byte) error
	ToSession(sessionID string, exclude []string, data []byte) error
}

// Gateway translates connection events into registry and world-store calls
// and routes the results back out. It holds no game state of its own and
// performs no business logic beyond routing; a message from a connection
// with no mapped session is a logged no-op, never a failure.
type Gateway struct {
	registry  *session.Registry
	worlds    *world.Store
	pub       Publisher
	startedAt time.Time
	seed      int64
}

func NewGateway(registry *session.Registry, worlds *world.Store, pub Publisher, seed int64) *Gateway {
	return &Gateway{
		registry:  registry,
		worlds:    worlds,
		pub:       pub,
		startedAt: time.Now(),
		seed:      seed,
	}
}

// Dispatch routes one inbound message from a connection.
func (g *Gateway) Dispatch(ctx context.Context, connID string, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		g.sendError(ctx, connID, "malformed_message", "message was not valid JSON", "")
		return
	}

	now := time.Now()

	switch env.Type {
	case MsgCreateSession:
		g.handleCreate(ctx, connID, env.Payload, now)
	case MsgJoinSession:
		g.handleJoin(ctx, connID, env.Payload, now)
	case MsgLeaveSession:
		g.handleLeave(ctx, connID, now)
	case MsgChat:
		g.handleChat(ctx, connID, env.Payload, now)
	case MsgPlayerUpdate:
		g.handlePlayerUpdate(ctx, connID, env.Payload, now)
	case MsgGameMessage:
		g.handleGameMessage(ctx, connID, env.Payload, now)
	case MsgResourceHarvested:
		g.handleHarvest(ctx, connID, env.Payload, now)
	case MsgEnemyDefeated:
		g.handleDefeat(ctx, connID, env.Payload, now)
	case MsgWorldUpdate:
		g.handleWorldUpdate(ctx, connID, env.Payload, now)
	case MsgRequestWorldState:
		g.handleWorldState(ctx, connID, env.Payload, now)
	default:
		slog.WarnContext(ctx, "unknown message type", "type", env.Type, "conn", connID)
		g.sendError(ctx, connID, "unknown_type", "unrecognized message type", env.Type)
	}
}

// Disconnect handles the transport-level connection drop as an implicit
// leave.
func (g *Gateway) Disconnect(ctx context.Context, connID string) {
	g.handleLeave(ctx, connID, time.Now())
}

func (g *Gateway) handleCreate(ctx context.Context, connID string, payload json.RawMessage, now time.Time) {
	var req createSessionRequest
	if err := json.Unmarshal(payload, &req); err != nil || req.HostName == "" {
		g.sendError(ctx, connID, "invalid_payload", "create_session requires a hostName", MsgCreateSession)
		return
	}

	sess, reject := g.registry.Create(connID, req.HostName, req.Public, now)
	if reject != "" {
		g.sendError(ctx, connID, string(reject), "could not create session", MsgCreateSession)
		return
	}

	g.worlds.Create(sess.ID, sess.WorldSeed, 1, now)

	g.sendTo(ctx, connID, MsgSessionCreated, sessionCreatedReply{
		SessionID: sess.ID,
		HostCode:  sess.Code,
		Player:    *sess.Players[0],
		Session:   sess,
	})
}

func (g *Gateway) handleJoin(ctx context.Context, connID string, payload json.RawMessage, now time.Time) {
	var req joinSessionRequest
	if err := json.Unmarshal(payload, &req); err != nil || req.HostCode == "" {
		g.sendError(ctx, connID, "invalid_payload", "join_session requires a hostCode", MsgJoinSession)
		return
	}
	name := req.PlayerName
	if name == "" {
		name = "Adventurer"
	}

	sess, player, reject := g.registry.Join(connID, req.HostCode, name, now)
	if reject != "" {
		g.sendError(ctx, connID, string(reject), "could not join session", MsgJoinSession)
		return
	}

	g.worlds.SetPlayerCount(sess.ID, len(sess.Players))

	g.sendTo(ctx, connID, MsgSessionJoined, sessionJoinedReply{
		SessionID: sess.ID,
		Player:    player,
		Players:   sess.Players,
	})
	g.broadcast(ctx, sess.ID, []string{connID}, MsgPlayerJoined, playerJoinedBroadcast{
		SessionID: sess.ID,
		Player:    player,
	})
}

func (g *Gateway) handleLeave(ctx context.Context, connID string, now time.Time) {
	res := g.registry.Leave(connID, now)
	if !res.Found {
		slog.DebugContext(ctx, "leave from unmapped connection", "conn", connID)
		return
	}

	if res.Deleted {
		// The registry's delete hook already tore the world down.
		return
	}

	g.worlds.SetPlayerCount(res.SessionID, len(res.Session.Players))

	msg := playerLeftBroadcast{
		SessionID:  res.SessionID,
		PlayerID:   res.Removed.ID,
		PlayerName: res.Removed.Name,
	}
	if res.NewHost != nil {
		msg.NewHostID = res.NewHost.ID
	}
	g.broadcast(ctx, res.SessionID, nil, MsgPlayerLeft, msg)
}

func (g *Gateway) handleChat(ctx context.Context, connID string, payload json.RawMessage, now time.Time) {
	sess, player, ok := g.lookup(ctx, connID, now)
	if !ok {
		return
	}

	var req chatRequest
	if err := json.Unmarshal(payload, &req); err != nil || req.Message == "" {
		g.sendError(ctx, connID, "invalid_payload", "chat_message requires a message", MsgChat)
		return
	}
	sender := req.Sender
	if sender == "" {
		sender = player.Name
	}

	g.broadcast(ctx, sess.ID, []string{connID}, MsgChat, chatBroadcast{
		ID:        uuid.New().String(),
		SenderID:  player.ID,
		Sender:    sender,
		Message:   req.Message,
		Timestamp: stamp(now),
	})
}

func (g *Gateway) handlePlayerUpdate(ctx context.Context, connID string, payload json.RawMessage, now time.Time) {
	sess, player, ok := g.lookup(ctx, connID, now)
	if !ok {
		return
	}

	var req playerUpdateRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		g.sendError(ctx, connID, "invalid_payload", "player_update payload was malformed", MsgPlayerUpdate)
		return
	}
	g.registry.RecordUpdate(connID, req.Position, req.Level, req.Stats, now)

	g.broadcast(ctx, sess.ID, []string{connID}, MsgPlayerUpdate, relay{
		SenderID: player.ID,
		Payload:  payload,
	})
}

func (g *Gateway) handleGameMessage(ctx context.Context, connID string, payload json.RawMessage, now time.Time) {
	sess, player, ok := g.lookup(ctx, connID, now)
	if !ok {
		return
	}

	// Combat intents carry an aggro hint the world tracks; everything else
	// in the payload is opaque.
	var hint struct {
		Action  string `json:"action"`
		EnemyID string `json:"enemyId"`
	}
	if err := json.Unmarshal(payload, &hint); err == nil && hint.Action == "attack" && hint.EnemyID != "" {
		g.worlds.SetAggro(sess.ID, hint.EnemyID, player.ID, now)
	}

	g.broadcast(ctx, sess.ID, []string{connID}, MsgGameMessage, relay{
		SenderID: player.ID,
		Payload:  payload,
	})
}

func (g *Gateway) handleHarvest(ctx context.Context, connID string, payload json.RawMessage, now time.Time) {
	sess, player, ok := g.lookup(ctx, connID, now)
	if !ok {
		return
	}

	var req harvestRequest
	if err := json.Unmarshal(payload, &req); err != nil || req.ResourceID == "" {
		g.sendError(ctx, connID, "invalid_payload", "resource_harvested requires a resourceId", MsgResourceHarvested)
		return
	}

	result := g.worlds.Harvest(sess.ID, req.ResourceID, player.ID, now)
	msg := harvestBroadcast{
		HarvestResult: result,
		HarvestedBy:   player.ID,
		Timestamp:     stamp(now),
	}

	// The requester always hears the outcome; the room only hears wins.
	g.sendTo(ctx, connID, MsgResourceHarvested, msg)
	if result.Accepted {
		g.registry.RecordHarvest(sess.ID, req.ResourceID, result.Item)
		g.broadcast(ctx, sess.ID, []string{connID}, MsgResourceHarvested, msg)
	}
}

func (g *Gateway) handleDefeat(ctx context.Context, connID string, payload json.RawMessage, now time.Time) {
	sess, player, ok := g.lookup(ctx, connID, now)
	if !ok {
		return
	}

	var req defeatRequest
	if err := json.Unmarshal(payload, &req); err != nil || req.EnemyID == "" {
		g.sendError(ctx, connID, "invalid_payload", "enemy_defeated requires an enemyId", MsgEnemyDefeated)
		return
	}

	result := g.worlds.DefeatEnemy(sess.ID, req.EnemyID, player.ID, now)
	if !result.Accepted {
		// Duplicate defeat of a corpse inside the grace window: harmless.
		return
	}

	g.registry.RecordDefeat(sess.ID, req.EnemyID)
	msg := defeatBroadcast{
		DefeatResult: result,
		DefeatedBy:   player.ID,
		Timestamp:    stamp(now),
	}
	g.sendTo(ctx, connID, MsgEnemyDefeated, msg)
	g.broadcast(ctx, sess.ID, []string{connID}, MsgEnemyDefeated, msg)
}

func (g *Gateway) handleWorldUpdate(ctx context.Context, connID string, payload json.RawMessage, now time.Time) {
	sess, player, ok := g.lookup(ctx, connID, now)
	if !ok {
		return
	}

	var patch world.UpdatePatch
	if err := json.Unmarshal(payload, &patch); err != nil {
		g.sendError(ctx, connID, "invalid_payload", "world_update payload was malformed", MsgWorldUpdate)
		return
	}
	g.worlds.MergeUpdate(sess.ID, patch, now)

	g.broadcast(ctx, sess.ID, []string{connID}, MsgWorldUpdate, relay{
		SenderID: player.ID,
		Payload:  payload,
	})
}

func (g *Gateway) handleWorldState(ctx context.Context, connID string, payload json.RawMessage, now time.Time) {
	sess, _, ok := g.lookup(ctx, connID, now)
	if !ok {
		return
	}

	var req worldStateRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		g.sendError(ctx, connID, "invalid_payload", "request_world_state payload was malformed", MsgRequestWorldState)
		return
	}

	key := world.ChunkKey{X: req.ChunkX, Z: req.ChunkZ}
	g.worlds.GenerateChunkResources(sess.ID, key, now)
	g.worlds.GenerateChunkEnemies(sess.ID, key, now)

	snap, found := g.worlds.Snapshot(sess.ID)
	if !found {
		slog.WarnContext(ctx, "session has no world", "session", sess.ID)
		return
	}
	g.sendTo(ctx, connID, MsgWorldState, snap)
}

// WorldEvents broadcasts scheduler output to the session room. Implements
// world.EventSink.
func (g *Gateway) WorldEvents(sessionID string, events []world.Event) {
	ctx := context.Background()
	for _, ev := range events {
		g.broadcast(ctx, sessionID, nil, MsgWorldEvent, worldEventBroadcast{
			SessionID: sessionID,
			Event:     ev,
		})
	}
}

// lookup resolves a connection to its session and player, refreshing
// activity stamps. A miss is logged and swallowed.
func (g *Gateway) lookup(ctx context.Context, connID string, now time.Time) (session.Session, session.Player, bool) {
	g.registry.Touch(connID, now)
	sess, ok := g.registry.Get(connID)
	if !ok {
		slog.DebugContext(ctx, "message from unmapped connection", "conn", connID)
		return session.Session{}, session.Player{}, false
	}
	for _, p := range sess.Players {
		if p.ConnID == connID {
			return sess, *p, true
		}
	}
	slog.WarnContext(ctx, "connection mapped to session without player", "conn", connID, "session", sess.ID)
	return session.Session{}, session.Player{}, false
}

func (g *Gateway) sendTo(ctx context.Context, connID, msgType string, payload any) {
	data, err := encode(msgType, payload)
	if err != nil {
		slog.ErrorContext(ctx, "encoding message", "type", msgType, "error", err)
		return
	}
	if err := g.pub.ToConn(connID, data); err != nil {
		slog.WarnContext(ctx, "sending to connection", "conn", connID, "error", err)
	}
}

func (g *Gateway) broadcast(ctx context.Context, sessionID string, exclude []string, msgType string, payload any) {
	data, err := encode(msgType, payload)
	if err != nil {
		slog.ErrorContext(ctx, "encoding broadcast", "type", msgType, "error", err)
		return
	}
	if err := g.pub.ToSession(sessionID, exclude, data); err != nil {
		slog.WarnContext(ctx, "broadcasting to session", "session", sessionID, "error", err)
	}
}

func (g *Gateway) sendError(ctx context.Context, connID, reason, message, replyTo string) {
	g.sendTo(ctx, connID, MsgError, errorReply{
		Reason:  reason,
		Message: message,
		ReplyTo: replyTo,
	})
}
