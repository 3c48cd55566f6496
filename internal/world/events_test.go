package world

import (
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestEventQueue_Ordering(t *testing.T) {
	now := time.Now()
	st := &State{}

	// Scheduled out of order, drained in ScheduledAt order.
	st.schedule(newEvent(EventEnemySpawn, now.Add(3*time.Minute), nil))
	st.schedule(newEvent(EventWeatherChange, now.Add(time.Minute), nil))
	st.schedule(newEvent(EventResourceRespawn, now.Add(2*time.Minute), nil))

	var drained []EventType
	for {
		ev := st.popDue(now.Add(time.Hour))
		if ev == nil {
			break
		}
		drained = append(drained, ev.Type)
	}

	testutil.AssertEqual(t, "drained", len(drained), 3)
	testutil.AssertEqual(t, "first", drained[0], EventWeatherChange)
	testutil.AssertEqual(t, "second", drained[1], EventResourceRespawn)
	testutil.AssertEqual(t, "third", drained[2], EventEnemySpawn)
}

func TestEventQueue_FutureEventsStayQueued(t *testing.T) {
	now := time.Now()
	st := &State{}

	st.schedule(newEvent(EventWeatherChange, now, nil))
	st.schedule(newEvent(EventEnemySpawn, now.Add(time.Hour), nil))

	due := st.popDue(now)
	if due == nil {
		t.Fatal("expected the due event")
	}
	testutil.AssertEqual(t, "due type", due.Type, EventWeatherChange)

	testutil.AssertEqual(t, "future stays", st.popDue(now) == nil, true)
	testutil.AssertEqual(t, "still pending", len(st.pendingEvents()), 1)
}

func TestEventQueue_SkipsProcessed(t *testing.T) {
	now := time.Now()
	st := &State{}

	ev := newEvent(EventWeatherChange, now, nil)
	ev.Processed = true
	st.schedule(ev)
	st.schedule(newEvent(EventEnemySpawn, now, nil))

	got := st.popDue(now)
	if got == nil {
		t.Fatal("expected the unprocessed event")
	}
	testutil.AssertEqual(t, "skipped processed", got.Type, EventEnemySpawn)
	testutil.AssertEqual(t, "queue drained", st.popDue(now) == nil, true)
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	a := newEvent(EventWeatherChange, time.Now(), nil)
	b := newEvent(EventWeatherChange, time.Now(), nil)
	if a.ID == b.ID {
		t.Error("event ids must be unique")
	}
}
