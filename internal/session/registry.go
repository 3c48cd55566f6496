package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-log"
)

const (
	DefaultMaxSessions = 100
	DefaultIdleAfter   = 30 * time.Minute

	sweepInterval = 30 * time.Second
)

// RejectReason explains why a registry operation refused a request. These
// are results, not errors: nothing here crashes a caller.
type RejectReason string

const (
	ReasonServerFull       RejectReason = "server_full"
	ReasonUnknownCode      RejectReason = "unknown_code"
	ReasonSessionFull      RejectReason = "session_full"
	ReasonAlreadyInSession RejectReason = "already_in_session"
)

// Registry owns the mapping of join codes and connection identities to
// sessions. It is constructed once at process start and injected into the
// transport layer; there is no ambient global registry.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	byCode   map[string]string
	byConn   map[string]string

	maxSessions int
	idleAfter   time.Duration
	lastSweep   time.Time
	onDelete    func(sessionID string)
}

func NewRegistry(opts ...RegistryOpt) *Registry {
	r := &Registry{
		sessions:    make(map[string]*Session),
		byCode:      make(map[string]string),
		byConn:      make(map[string]string),
		maxSessions: DefaultMaxSessions,
		idleAfter:   DefaultIdleAfter,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Create opens a new session with the caller as sole player and host.
// Rejected when the global session cap is reached or the connection is
// already in a session.
func (r *Registry) Create(connID, hostName string, public bool, now time.Time) (Session, RejectReason) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byConn[connID]; ok {
		return Session{}, ReasonAlreadyInSession
	}
	if len(r.sessions) >= r.maxSessions {
		return Session{}, ReasonServerFull
	}

	code := r.uniqueCodeLocked()

	host := &Player{
		ID:       uuid.New().String(),
		ConnID:   connID,
		Name:     hostName,
		JoinedAt: now,
		LastSeen: now,
		Level:    1,
		IsHost:   true,
	}

	sess := &Session{
		ID:           uuid.New().String(),
		Code:         code,
		HostConnID:   connID,
		HostName:     hostName,
		Players:      []*Player{host},
		MaxPlayers:   MaxPlayers,
		Public:       public,
		CreatedAt:    now,
		LastActivity: now,
		WorldSeed:    int64(uuid.New().ID())<<16 ^ now.UnixNano(),
		State:        newGameState(),
	}

	r.sessions[sess.ID] = sess
	r.byCode[code] = sess.ID
	r.byConn[connID] = sess.ID

	return sess.clone(), ""
}

// uniqueCodeLocked draws join codes until one misses the code map.
func (r *Registry) uniqueCodeLocked() string {
	for {
		code, err := newJoinCode()
		if err != nil {
			// crypto/rand only fails when the platform entropy source is
			// broken; a uuid-derived code keeps the server limping.
			code = normalizeCode(uuid.New().String()[:codeLength])
		}
		if _, taken := r.byCode[code]; !taken {
			return code
		}
	}
}

// Join adds a player to the session behind a join code. Rejections are
// checked in order: unknown code, session full, caller already in a
// session.
func (r *Registry) Join(connID, code, name string, now time.Time) (Session, Player, RejectReason) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byCode[normalizeCode(code)]
	if !ok {
		return Session{}, Player{}, ReasonUnknownCode
	}
	sess, ok := r.sessions[id]
	if !ok {
		// Stale code mapping; heal it rather than propagate.
		delete(r.byCode, normalizeCode(code))
		return Session{}, Player{}, ReasonUnknownCode
	}
	if len(sess.Players) >= sess.MaxPlayers {
		return Session{}, Player{}, ReasonSessionFull
	}
	if _, ok := r.byConn[connID]; ok {
		return Session{}, Player{}, ReasonAlreadyInSession
	}

	p := &Player{
		ID:       uuid.New().String(),
		ConnID:   connID,
		Name:     name,
		JoinedAt: now,
		LastSeen: now,
		Level:    1,
	}
	sess.Players = append(sess.Players, p)
	sess.LastActivity = now
	r.byConn[connID] = sess.ID

	return sess.clone(), *p, ""
}

// LeaveResult describes the fallout of a leave: who left, who inherited
// the host seat, and whether the session died with them.
type LeaveResult struct {
	Found     bool
	SessionID string
	Session   *Session
	Removed   Player
	NewHost   *Player
	Deleted   bool
}

// Leave removes the connection's player. The longest-tenured remaining
// player (first in join order) inherits the host seat; a session with no
// players left is deleted on the spot, mappings and all.
func (r *Registry) Leave(connID string, now time.Time) LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byConn[connID]
	if !ok {
		return LeaveResult{}
	}
	delete(r.byConn, connID)

	sess, ok := r.sessions[id]
	if !ok {
		// Mapping outlived its session; already healed above.
		return LeaveResult{}
	}

	result := LeaveResult{Found: true, SessionID: id}

	for i, p := range sess.Players {
		if p.ConnID == connID {
			result.Removed = *p
			sess.Players = append(sess.Players[:i], sess.Players[i+1:]...)
			break
		}
	}

	if len(sess.Players) == 0 {
		r.deleteSessionLocked(sess)
		result.Deleted = true
		return result
	}

	if result.Removed.IsHost {
		next := sess.Players[0]
		next.IsHost = true
		sess.HostConnID = next.ConnID
		sess.HostName = next.Name
		cp := *next
		result.NewHost = &cp
	}

	sess.LastActivity = now
	clone := sess.clone()
	result.Session = &clone
	return result
}

func (r *Registry) deleteSessionLocked(sess *Session) {
	delete(r.sessions, sess.ID)
	delete(r.byCode, sess.Code)
	for _, p := range sess.Players {
		delete(r.byConn, p.ConnID)
	}
	if r.onDelete != nil {
		r.onDelete(sess.ID)
	}
}

// Touch refreshes activity stamps for any message bearing a connection id.
func (r *Registry) Touch(connID string, now time.Time) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byConn[connID]
	if !ok {
		return "", false
	}
	sess, ok := r.sessions[id]
	if !ok {
		delete(r.byConn, connID)
		return "", false
	}

	sess.LastActivity = now
	if p := sess.player(connID); p != nil {
		p.LastSeen = now
	}
	return id, true
}

// RecordUpdate caches the latest position, level, and stats blob a client
// reported.
func (r *Registry) RecordUpdate(connID string, pos *Position, level int, stats json.RawMessage, now time.Time) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byConn[connID]
	if !ok {
		return "", false
	}
	sess, ok := r.sessions[id]
	if !ok {
		delete(r.byConn, connID)
		return "", false
	}

	sess.LastActivity = now
	p := sess.player(connID)
	if p == nil {
		return id, false
	}
	p.LastSeen = now
	if pos != nil {
		p.Position = pos
	}
	if level > 0 {
		p.Level = level
	}
	if len(stats) > 0 {
		p.Stats = stats
	}
	return id, true
}

// RecordHarvest marks a resource consumed in the session snapshot.
func (r *Registry) RecordHarvest(sessionID, resourceID, item string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[sessionID]; ok {
		sess.State.HarvestedResources[resourceID] = true
		if item != "" {
			sess.State.SharedInventory[item]++
		}
	}
}

// RecordDefeat marks an enemy defeated in the session snapshot.
func (r *Registry) RecordDefeat(sessionID, enemyID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[sessionID]; ok {
		sess.State.DefeatedEnemies[enemyID] = true
	}
}

// Get returns a copy of the session a connection belongs to.
func (r *Registry) Get(connID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byConn[connID]
	if !ok {
		return Session{}, false
	}
	sess, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return sess.clone(), true
}

// ConnIDs lists the live connection ids in a session, for room fan-out.
func (r *Registry) ConnIDs(sessionID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(sess.Players))
	for _, p := range sess.Players {
		ids = append(ids, p.ConnID)
	}
	return ids
}

// CheckCode reports whether a join code refers to a joinable session.
func (r *Registry) CheckCode(code string) (Info, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byCode[normalizeCode(code)]
	if !ok {
		return Info{}, false
	}
	sess, ok := r.sessions[id]
	if !ok {
		return Info{}, false
	}
	return sess.info(), true
}

// PublicSessions lists sessions flagged public.
func (r *Registry) PublicSessions() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Info, 0)
	for _, sess := range r.sessions {
		if sess.Public {
			out = append(out, sess.info())
		}
	}
	return out
}

// Stats returns the active session count and total player count.
func (r *Registry) Stats() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	players := 0
	for _, sess := range r.sessions {
		players += len(sess.Players)
	}
	return len(r.sessions), players
}

// SweepIdle deletes every session whose last activity is older than the
// idle threshold, with the same cascading cleanup as an explicit leave.
// Returns the deleted session ids.
func (r *Registry) SweepIdle(now time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for id, sess := range r.sessions {
		if now.Sub(sess.LastActivity) > r.idleAfter {
			r.deleteSessionLocked(sess)
			removed = append(removed, id)
		}
	}
	return removed
}

// Tick runs the idle sweep on its own cadence. Implements driver.Manager.
func (r *Registry) Tick(ctx context.Context) error {
	now := time.Now()

	r.mu.Lock()
	due := now.Sub(r.lastSweep) >= sweepInterval
	if due {
		r.lastSweep = now
	}
	r.mu.Unlock()
	if !due {
		return nil
	}

	removed := r.SweepIdle(now)
	if len(removed) > 0 {
		log.GetLogger(ctx).Infof("swept %d idle sessions", len(removed))
	}
	return nil
}
