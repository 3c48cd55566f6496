package world

import (
	"container/heap"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the deferred world mutations the scheduler knows how
// to apply.
type EventType string

const (
	EventResourceRespawn   EventType = "resource_respawn"
	EventEnemySpawn        EventType = "enemy_spawn"
	EventWeatherChange     EventType = "weather_change"
	EventMarketFluctuation EventType = "market_fluctuation"
	EventSeasonalChange    EventType = "seasonal_change"
)

// Event is one scheduled world mutation. Payload is opaque to everything
// except the handler for its type. Processed guards against
// double-application if the queue is ever scanned twice.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Payload     any       `json:"payload,omitempty"`
	Processed   bool      `json:"-"`
}

func newEvent(t EventType, at time.Time, payload any) *Event {
	return &Event{
		ID:          uuid.New().String(),
		Type:        t,
		ScheduledAt: at,
		Payload:     payload,
	}
}

// Payloads carried by the event types that need one.

type respawnPayload struct {
	ResourceID string `json:"resourceId"`
}

type spawnPayload struct {
	Chunk ChunkKey `json:"chunk"`
	Type  string   `json:"enemyType"`
}

type weatherPayload struct {
	Weather Weather `json:"weather"`
}

type seasonPayload struct {
	Season Season `json:"season"`
}

// eventQueue is a min-heap ordered by ScheduledAt. It replaces
// callback-style timers so pending work is plain data: tests advance a
// logical clock and drain the queue deterministically.
type eventQueue []*Event

func (q eventQueue) Len() int            { return len(q) }
func (q eventQueue) Less(i, j int) bool  { return q[i].ScheduledAt.Before(q[j].ScheduledAt) }
func (q eventQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x any)         { *q = append(*q, x.(*Event)) }
func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return ev
}

func (s *State) schedule(ev *Event) {
	heap.Push(&s.events, ev)
}

// popDue removes and returns the earliest event scheduled at or before now,
// or nil if none is due.
func (s *State) popDue(now time.Time) *Event {
	for s.events.Len() > 0 {
		next := s.events[0]
		if next.ScheduledAt.After(now) {
			return nil
		}
		ev := heap.Pop(&s.events).(*Event)
		if ev.Processed {
			continue
		}
		return ev
	}
	return nil
}

// pendingEvents returns a copy of the queue for inspection.
func (s *State) pendingEvents() []Event {
	out := make([]Event, 0, s.events.Len())
	for _, ev := range s.events {
		out = append(out, *ev)
	}
	return out
}
