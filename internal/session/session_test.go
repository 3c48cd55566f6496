package session

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestClone_DetachesGameState(t *testing.T) {
	now := time.Now()
	r := NewRegistry()
	sess, _ := r.Create("conn-1", "Aria", false, now)

	// Mutations after the clone was handed out must not show through it.
	r.RecordHarvest(sess.ID, "resource-1", "wood")
	r.RecordDefeat(sess.ID, "enemy-1")

	testutil.AssertEqual(t, "clone harvested", len(sess.State.HarvestedResources), 0)
	testutil.AssertEqual(t, "clone defeated", len(sess.State.DefeatedEnemies), 0)
	testutil.AssertEqual(t, "clone inventory", len(sess.State.SharedInventory), 0)

	live, ok := r.Get("conn-1")
	testutil.AssertEqual(t, "session found", ok, true)
	testutil.AssertEqual(t, "live harvested", live.State.HarvestedResources["resource-1"], true)
	testutil.AssertEqual(t, "live defeated", live.State.DefeatedEnemies["enemy-1"], true)
	testutil.AssertEqual(t, "live inventory", live.State.SharedInventory["wood"], 1)
}

func TestClone_ReadableDuringRecords(t *testing.T) {
	now := time.Now()
	r := NewRegistry()
	sess, _ := r.Create("conn-1", "Aria", false, now)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			r.RecordHarvest(sess.ID, fmt.Sprintf("resource-%d", i), "wood")
			r.RecordDefeat(sess.ID, fmt.Sprintf("enemy-%d", i))
		}
	}()

	// Serializing the clone must be safe while the live maps churn.
	for i := 0; i < 200; i++ {
		if _, err := json.Marshal(sess.State); err != nil {
			t.Fatalf("marshaling clone state: %v", err)
		}
	}
	<-done
}

func TestClone_DetachesPlayers(t *testing.T) {
	now := time.Now()
	r := NewRegistry()
	sess, _ := r.Create("conn-1", "Aria", false, now)

	sess.Players[0].Name = "Imposter"

	live, _ := r.Get("conn-1")
	testutil.AssertEqual(t, "live name", live.Players[0].Name, "Aria")
}
