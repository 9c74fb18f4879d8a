package game

import (
	"testing"
	"time"

	"github.com/besuhoff/arena-shooter-go/internal/config"
	"github.com/besuhoff/arena-shooter-go/internal/types"
)

func TestTwoHitsWithoutDying(t *testing.T) {
	h := newTestHarness(t)
	h.place(t, "a", vec(0, 1.7, 0))
	h.place(t, "b", vec(1.5, 1.7, 0))
	h.out.reset()

	for i, want := range []int{80, 60} {
		h.fire(t, "a", vec(0, 1.7, 0), vec(1, 0, 0))
		h.engine.Tick()

		b := h.player(t, "b")
		if b.Health != want {
			t.Fatalf("hit %d: health = %d, want %d", i+1, b.Health, want)
		}
		if !b.IsAlive {
			t.Fatalf("hit %d: player died at %d health", i+1, b.Health)
		}
	}

	updates := h.out.ofType(types.MsgTypeHealthUpdate)
	if len(updates) != 2 {
		t.Fatalf("healthUpdate events = %d, want 2", len(updates))
	}
	for i, want := range []int{80, 60} {
		payload := updates[i].event.Payload.(types.HealthUpdate)
		if payload.ID != "b" || payload.Health != want {
			t.Errorf("healthUpdate %d = %+v, want {b %d}", i, payload, want)
		}
	}
	if n := len(h.out.ofType(types.MsgTypePlayerDied)); n != 0 {
		t.Errorf("playerDied events = %d, want 0", n)
	}
}

func TestLethalHitKillsAndRespawns(t *testing.T) {
	rec := &fakeRecorder{records: make(chan types.KillRecord, 1)}
	h := newTestHarness(t, WithKillRecorder(rec))
	h.place(t, "a", vec(0, 1.7, 0))
	h.place(t, "c", vec(1.5, 1.7, 0))

	h.engine.mu.Lock()
	h.engine.players["c"].Health = config.BulletDamage
	h.engine.mu.Unlock()
	h.out.reset()

	h.fire(t, "a", vec(0, 1.7, 0), vec(1, 0, 0))
	h.engine.Tick()

	c := h.player(t, "c")
	if c.IsAlive || c.Health != 0 {
		t.Fatalf("c alive=%v health=%d, want dead at 0", c.IsAlive, c.Health)
	}
	if c.Deaths != 1 {
		t.Errorf("c deaths = %d, want 1", c.Deaths)
	}
	if a := h.player(t, "a"); a.Kills != 1 {
		t.Errorf("a kills = %d, want 1", a.Kills)
	}

	died := h.out.ofType(types.MsgTypePlayerDied)
	if len(died) != 1 {
		t.Fatalf("playerDied events = %d, want 1", len(died))
	}
	payload := died[0].event.Payload.(types.PlayerDied)
	if payload != (types.PlayerDied{ID: "c", KillerID: "a", KillerKills: 1}) {
		t.Errorf("playerDied = %+v", payload)
	}

	select {
	case record := <-rec.records:
		if record.VictimID != "c" || record.VictimKey != "c" || record.KillerID != "a" || record.KillerKey != "a" || record.KillerName != "a" {
			t.Errorf("kill record = %+v", record)
		}
	case <-time.After(time.Second):
		t.Fatal("kill was not recorded")
	}

	if h.sched.Pending() != 1 || h.sched.delays[0] != config.RespawnDelay {
		t.Fatalf("respawn not scheduled with %v delay: pending=%d delays=%v", config.RespawnDelay, h.sched.Pending(), h.sched.delays)
	}
	if h.engine.UpdatePlayerMovement("c", types.MovementInput{X: 2, Y: 1.7}) {
		t.Error("dead player moved before respawn")
	}

	h.sched.RunAll()

	c = h.player(t, "c")
	if !c.IsAlive || c.Health != config.MaxHealth {
		t.Fatalf("after respawn alive=%v health=%d", c.IsAlive, c.Health)
	}
	if c.Position.Y != config.RespawnHeight ||
		c.Position.X < -config.RespawnHalfExtent || c.Position.X >= config.RespawnHalfExtent ||
		c.Position.Z < -config.RespawnHalfExtent || c.Position.Z >= config.RespawnHalfExtent {
		t.Errorf("respawn position %+v outside spawn bounds", c.Position)
	}
	if c.Deaths != 1 {
		t.Errorf("respawn reset deaths to %d", c.Deaths)
	}

	respawned := h.out.ofType(types.MsgTypePlayerRespawn)
	if len(respawned) != 1 || !respawned[0].broadcast || respawned[0].excludeID != "" {
		t.Fatalf("playerRespawn = %+v, want one event to everyone", respawned)
	}
	if p := respawned[0].event.Payload.(*types.Player); p.ID != "c" || p.Health != config.MaxHealth {
		t.Errorf("playerRespawn payload = %+v", p)
	}
}

func TestDamageIsNotFloored(t *testing.T) {
	h := newTestHarness(t)
	h.place(t, "a", vec(0, 1.7, 0))
	h.place(t, "b", vec(1.5, 1.7, 0))

	h.engine.mu.Lock()
	h.engine.players["b"].Health = 10
	h.engine.mu.Unlock()
	h.out.reset()

	h.fire(t, "a", vec(0, 1.7, 0), vec(1, 0, 0))
	h.engine.Tick()

	updates := h.out.ofType(types.MsgTypeHealthUpdate)
	if len(updates) != 1 || updates[0].event.Payload.(types.HealthUpdate).Health != -10 {
		t.Fatalf("healthUpdate = %+v, want health -10", updates)
	}
	b := h.player(t, "b")
	if b.IsAlive != (b.Health > 0) {
		t.Errorf("alive=%v with health %d", b.IsAlive, b.Health)
	}
}

func TestRespawnAfterDisconnectIsNoop(t *testing.T) {
	h := newTestHarness(t)
	h.place(t, "a", vec(0, 1.7, 0))
	h.place(t, "c", vec(1.5, 1.7, 0))

	h.engine.mu.Lock()
	h.engine.players["c"].Health = config.BulletDamage
	h.engine.mu.Unlock()

	h.fire(t, "a", vec(0, 1.7, 0), vec(1, 0, 0))
	h.engine.Tick()
	h.engine.Disconnect("c")
	h.out.reset()

	h.sched.RunAll()

	if _, ok := h.engine.GetPlayer("c"); ok {
		t.Error("respawn recreated a disconnected player")
	}
	if evs := h.out.eventTypes(); len(evs) != 0 {
		t.Errorf("respawn of a disconnected player produced events %v", evs)
	}
}

func TestKillCreditForDepartedKiller(t *testing.T) {
	h := newTestHarness(t)
	h.place(t, "b", vec(0, 1.7, 0))

	h.engine.mu.Lock()
	victim := h.engine.players["b"]
	victim.Health = config.BulletDamage
	h.engine.applyDamage(victim, "gone")
	h.engine.mu.Unlock()

	died := h.out.ofType(types.MsgTypePlayerDied)
	if len(died) != 1 {
		t.Fatalf("playerDied events = %d, want 1", len(died))
	}
	if payload := died[0].event.Payload.(types.PlayerDied); payload.KillerID != "gone" || payload.KillerKills != 0 {
		t.Errorf("playerDied = %+v", payload)
	}
	if b := h.player(t, "b"); b.IsAlive || b.Deaths != 1 {
		t.Errorf("victim alive=%v deaths=%d", b.IsAlive, b.Deaths)
	}
}

func TestReportedLethalHitUsesSameDeathPayload(t *testing.T) {
	h := newTestHarness(t)
	h.place(t, "a", vec(0, 1.7, 0))
	h.place(t, "b", vec(30, 1.7, 0))

	h.engine.mu.Lock()
	h.engine.players["b"].Health = config.BulletDamage
	h.engine.players["a"].Kills = 4
	h.engine.mu.Unlock()

	p := h.fire(t, "a", vec(0, 1.7, 0), vec(1, 0, 0))
	if !h.engine.ReportHit("b", types.HitReport{BulletID: uptr(p.ID), TargetID: "b"}) {
		t.Fatal("report rejected")
	}

	died := h.out.ofType(types.MsgTypePlayerDied)
	if len(died) != 1 {
		t.Fatalf("playerDied events = %d, want 1", len(died))
	}
	if payload := died[0].event.Payload.(types.PlayerDied); payload.KillerKills != 5 {
		t.Errorf("killerKills = %d, want 5", payload.KillerKills)
	}
}

func TestKillRecordUsesAccountIDs(t *testing.T) {
	rec := &fakeRecorder{records: make(chan types.KillRecord, 1)}
	h := newTestHarness(t, WithKillRecorder(rec))
	h.engine.ConnectAccount("session-a", "Alice", "account-alice")
	h.place(t, "guest", vec(1.5, 1.7, 0))

	h.engine.mu.Lock()
	h.engine.players["guest"].Health = config.BulletDamage
	h.engine.mu.Unlock()

	h.fire(t, "session-a", vec(0, 1.7, 0), vec(1, 0, 0))
	h.engine.Tick()

	select {
	case record := <-rec.records:
		want := types.KillRecord{
			VictimID:   "guest",
			VictimKey:  "guest",
			VictimName: "guest",
			KillerID:   "session-a",
			KillerKey:  "account-alice",
			KillerName: "Alice",
		}
		if record != want {
			t.Errorf("kill record = %+v, want %+v", record, want)
		}
	case <-time.After(time.Second):
		t.Fatal("kill was not recorded")
	}
}
