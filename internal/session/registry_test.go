package session

import (
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestRegistry_Create(t *testing.T) {
	now := time.Now()
	r := NewRegistry()

	sess, reject := r.Create("conn-1", "Aria", true, now)
	if reject != "" {
		t.Fatalf("unexpected rejection: %s", reject)
	}

	testutil.AssertEqual(t, "player count", len(sess.Players), 1)
	testutil.AssertEqual(t, "host flag", sess.Players[0].IsHost, true)
	testutil.AssertEqual(t, "host name", sess.HostName, "Aria")
	testutil.AssertEqual(t, "max players", sess.MaxPlayers, MaxPlayers)
	testutil.AssertEqual(t, "code length", len(sess.Code), codeLength)
}

func TestRegistry_Create_ServerFull(t *testing.T) {
	now := time.Now()
	r := NewRegistry(WithMaxSessions(1))

	_, reject := r.Create("conn-1", "Aria", false, now)
	testutil.AssertEqual(t, "first create", string(reject), "")

	_, reject = r.Create("conn-2", "Bram", false, now)
	testutil.AssertEqual(t, "second create", reject, ReasonServerFull)

	sessions, _ := r.Stats()
	testutil.AssertEqual(t, "no partial session", sessions, 1)
}

func TestRegistry_Create_AlreadyInSession(t *testing.T) {
	now := time.Now()
	r := NewRegistry()

	_, reject := r.Create("conn-1", "Aria", false, now)
	testutil.AssertEqual(t, "first create", string(reject), "")

	_, reject = r.Create("conn-1", "Aria again", false, now)
	testutil.AssertEqual(t, "duplicate create", reject, ReasonAlreadyInSession)
}

func TestRegistry_Join(t *testing.T) {
	now := time.Now()
	r := NewRegistry()
	host, _ := r.Create("conn-host", "Aria", false, now)

	tests := map[string]struct {
		connID    string
		code      string
		expReject RejectReason
	}{
		"valid code":            {connID: "conn-2", code: host.Code},
		"unknown code":          {connID: "conn-4", code: "ZZZZZZ", expReject: ReasonUnknownCode},
		"already mapped":        {connID: "conn-host", code: host.Code, expReject: ReasonAlreadyInSession},
		"empty code is unknown": {connID: "conn-5", code: "", expReject: ReasonUnknownCode},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			sess, player, reject := r.Join(tt.connID, tt.code, "Bram", now)

			if tt.expReject != "" {
				testutil.AssertEqual(t, "reject", reject, tt.expReject)
				return
			}
			if reject != "" {
				t.Fatalf("unexpected rejection: %s", reject)
			}
			testutil.AssertEqual(t, "session id", sess.ID, host.ID)
			testutil.AssertEqual(t, "joiner not host", player.IsHost, false)
		})
	}
}

func TestRegistry_Join_CaseInsensitiveCode(t *testing.T) {
	now := time.Now()
	r := NewRegistry()
	host, _ := r.Create("conn-host", "Aria", false, now)

	lower := make([]byte, len(host.Code))
	for i := range host.Code {
		c := host.Code[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		lower[i] = c
	}

	_, _, reject := r.Join("conn-2", string(lower), "Bram", now)
	testutil.AssertEqual(t, "lowercase join", string(reject), "")
}

func TestRegistry_Join_SessionFull(t *testing.T) {
	now := time.Now()
	r := NewRegistry()
	host, _ := r.Create("conn-host", "Aria", false, now)

	for i := 1; i < MaxPlayers; i++ {
		_, _, reject := r.Join(connName(i), host.Code, "Guest", now)
		if reject != "" {
			t.Fatalf("join %d rejected: %s", i, reject)
		}
	}

	_, _, reject := r.Join("conn-ninth", host.Code, "Ninth", now)
	testutil.AssertEqual(t, "ninth join", reject, ReasonSessionFull)

	sess, _ := r.Get("conn-host")
	testutil.AssertEqual(t, "player count capped", len(sess.Players), MaxPlayers)
}

func TestRegistry_Leave_HostTransfer(t *testing.T) {
	now := time.Now()
	r := NewRegistry()
	host, _ := r.Create("conn-aria", "Aria", false, now)
	r.Join("conn-bram", host.Code, "Bram", now.Add(time.Second))
	r.Join("conn-cleo", host.Code, "Cleo", now.Add(2*time.Second))

	res := r.Leave("conn-aria", now.Add(3*time.Second))

	testutil.AssertEqual(t, "found", res.Found, true)
	testutil.AssertEqual(t, "deleted", res.Deleted, false)
	if res.NewHost == nil {
		t.Fatal("expected a new host")
	}
	// Host succession is join order: Bram joined before Cleo.
	testutil.AssertEqual(t, "new host name", res.NewHost.Name, "Bram")
	testutil.AssertEqual(t, "session id unchanged", res.SessionID, host.ID)
	testutil.AssertEqual(t, "player count", len(res.Session.Players), 2)

	hosts := 0
	for _, p := range res.Session.Players {
		if p.IsHost {
			hosts++
		}
	}
	testutil.AssertEqual(t, "exactly one host", hosts, 1)
	testutil.AssertEqual(t, "host name updated", res.Session.HostName, "Bram")
}

func TestRegistry_Leave_NonHost(t *testing.T) {
	now := time.Now()
	r := NewRegistry()
	host, _ := r.Create("conn-aria", "Aria", false, now)
	r.Join("conn-bram", host.Code, "Bram", now)

	res := r.Leave("conn-bram", now)

	testutil.AssertEqual(t, "found", res.Found, true)
	if res.NewHost != nil {
		t.Errorf("no host transfer expected, got %s", res.NewHost.Name)
	}
	testutil.AssertEqual(t, "remaining players", len(res.Session.Players), 1)
	testutil.AssertEqual(t, "host still host", res.Session.Players[0].IsHost, true)
}

func TestRegistry_Leave_LastPlayerDeletesSession(t *testing.T) {
	now := time.Now()
	var deleted []string
	r := NewRegistry(WithDeleteHook(func(id string) {
		deleted = append(deleted, id)
	}))
	sess, _ := r.Create("conn-1", "Aria", false, now)

	res := r.Leave("conn-1", now)

	testutil.AssertEqual(t, "deleted", res.Deleted, true)
	testutil.AssertEqual(t, "hook fired", len(deleted), 1)
	testutil.AssertEqual(t, "hook session id", deleted[0], sess.ID)

	sessions, players := r.Stats()
	testutil.AssertEqual(t, "no sessions", sessions, 0)
	testutil.AssertEqual(t, "no players", players, 0)

	// No orphaned mappings survive.
	_, _, reject := r.Join("conn-2", sess.Code, "Bram", now)
	testutil.AssertEqual(t, "code unmapped", reject, ReasonUnknownCode)
	if _, ok := r.Get("conn-1"); ok {
		t.Error("conn mapping should be gone")
	}
}

func TestRegistry_Leave_UnmappedConnection(t *testing.T) {
	r := NewRegistry()
	res := r.Leave("conn-ghost", time.Now())
	testutil.AssertEqual(t, "found", res.Found, false)
}

func TestRegistry_SweepIdle(t *testing.T) {
	now := time.Now()
	r := NewRegistry(WithIdleAfter(30 * time.Minute))

	stale, _ := r.Create("conn-old", "Old", false, now.Add(-45*time.Minute))
	fresh, _ := r.Create("conn-new", "New", false, now.Add(-5*time.Minute))

	removed := r.SweepIdle(now)

	testutil.AssertEqual(t, "removed count", len(removed), 1)
	testutil.AssertEqual(t, "removed id", removed[0], stale.ID)

	if _, ok := r.Get("conn-new"); !ok {
		t.Error("fresh session should survive the sweep")
	}
	if _, ok := r.Get("conn-old"); ok {
		t.Error("stale session should be gone")
	}
	_ = fresh
}

func TestRegistry_SweepIdle_ActivityRefreshes(t *testing.T) {
	now := time.Now()
	r := NewRegistry(WithIdleAfter(30 * time.Minute))

	r.Create("conn-1", "Aria", false, now.Add(-45*time.Minute))
	r.Touch("conn-1", now.Add(-time.Minute))

	removed := r.SweepIdle(now)
	testutil.AssertEqual(t, "nothing removed", len(removed), 0)
}

func TestRegistry_RecordHarvestAndDefeat(t *testing.T) {
	now := time.Now()
	r := NewRegistry()
	sess, _ := r.Create("conn-1", "Aria", false, now)

	r.RecordHarvest(sess.ID, "resource-0_0-1", "wood")
	r.RecordDefeat(sess.ID, "enemy-abc")

	got, _ := r.Get("conn-1")
	testutil.AssertEqual(t, "harvested", got.State.HarvestedResources["resource-0_0-1"], true)
	testutil.AssertEqual(t, "defeated", got.State.DefeatedEnemies["enemy-abc"], true)
	testutil.AssertEqual(t, "shared inventory", got.State.SharedInventory["wood"], 1)
}

func TestRegistry_PublicSessions(t *testing.T) {
	now := time.Now()
	r := NewRegistry()

	pub, _ := r.Create("conn-1", "Aria", true, now)
	r.Create("conn-2", "Bram", false, now)

	list := r.PublicSessions()
	testutil.AssertEqual(t, "public count", len(list), 1)
	testutil.AssertEqual(t, "public id", list[0].ID, pub.ID)
	testutil.AssertEqual(t, "host name", list[0].HostName, "Aria")
}

func TestRegistry_CheckCode(t *testing.T) {
	now := time.Now()
	r := NewRegistry()
	sess, _ := r.Create("conn-1", "Aria", false, now)

	info, ok := r.CheckCode(sess.Code)
	testutil.AssertEqual(t, "valid code", ok, true)
	testutil.AssertEqual(t, "info id", info.ID, sess.ID)

	_, ok = r.CheckCode("NOPE99")
	testutil.AssertEqual(t, "unknown code", ok, false)
}

func connName(i int) string {
	return string(rune('a'+i)) + "-conn"
}
