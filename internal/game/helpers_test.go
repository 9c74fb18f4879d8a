package game

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/besuhoff/arena-shooter-go/internal/types"
)

type sentEvent struct {
	event     types.Event
	to        string // set for SendTo
	excludeID string // set for Broadcast
	broadcast bool
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	sent []sentEvent
}

func (r *recordingBroadcaster) Broadcast(event types.Event, excludeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentEvent{event: event, excludeID: excludeID, broadcast: true})
}

func (r *recordingBroadcaster) SendTo(playerID string, event types.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentEvent{event: event, to: playerID})
}

func (r *recordingBroadcaster) ofType(t types.MessageType) []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []sentEvent
	for _, s := range r.sent {
		if s.event.Type == t {
			out = append(out, s)
		}
	}
	return out
}

func (r *recordingBroadcaster) eventTypes() []types.MessageType {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]types.MessageType, len(r.sent))
	for i, s := range r.sent {
		out[i] = s.event.Type
	}
	return out
}

func (r *recordingBroadcaster) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeScheduler collects deferred respawns so tests decide when they fire.
type fakeScheduler struct {
	mu      sync.Mutex
	delays  []time.Duration
	pending []func()
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	s.pending = append(s.pending, f)
}

func (s *fakeScheduler) RunAll() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, f := range pending {
		f()
	}
}

func (s *fakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

type fakeRecorder struct {
	records chan types.KillRecord
}

func (r *fakeRecorder) RecordKill(_ context.Context, record types.KillRecord) error {
	r.records <- record
	return nil
}

type testHarness struct {
	engine *Engine
	out    *recordingBroadcaster
	clock  *fakeClock
	sched  *fakeScheduler
}

func newTestHarness(t *testing.T, opts ...Option) *testHarness {
	t.Helper()

	h := &testHarness{
		out:   &recordingBroadcaster{},
		clock: &fakeClock{now: time.Unix(1_700_000_000, 0)},
		sched: &fakeScheduler{},
	}
	base := []Option{
		WithClock(h.clock.Now),
		WithAfterFunc(h.sched.AfterFunc),
		WithRand(rand.New(rand.NewSource(42))),
	}
	h.engine = NewEngine(h.out, append(base, opts...)...)
	return h
}

// walkStep stays under config.MaxPositionChange on every axis.
const walkStep = 4.0

// place connects a player and walks it from the spawn point to pos in
// accepted steps.
func (h *testHarness) place(t *testing.T, id string, pos types.Vector3) {
	t.Helper()

	h.engine.Connect(id, "")
	h.walk(t, id, pos)
}

func (h *testHarness) walk(t *testing.T, id string, pos types.Vector3) {
	t.Helper()

	cur := h.player(t, id).Position
	for cur != pos {
		next := types.Vector3{
			X: stepToward(cur.X, pos.X),
			Y: stepToward(cur.Y, pos.Y),
			Z: stepToward(cur.Z, pos.Z),
		}
		if !h.engine.UpdatePlayerMovement(id, types.MovementInput{X: next.X, Y: next.Y, Z: next.Z}) {
			t.Fatalf("movement of %s from %+v to %+v rejected", id, cur, next)
		}
		cur = next
	}
}

func stepToward(from, to float64) float64 {
	switch {
	case to-from > walkStep:
		return from + walkStep
	case from-to > walkStep:
		return from - walkStep
	default:
		return to
	}
}

func (h *testHarness) fire(t *testing.T, owner string, origin, dir types.Vector3) *types.Projectile {
	t.Helper()

	p, err := h.engine.FireProjectile(owner, types.FireInput{Origin: &origin, Direction: &dir})
	if err != nil {
		t.Fatalf("FireProjectile(%s) error: %v", owner, err)
	}
	return p
}

func (h *testHarness) player(t *testing.T, id string) *types.Player {
	t.Helper()

	p, ok := h.engine.GetPlayer(id)
	if !ok {
		t.Fatalf("player %s not found", id)
	}
	return p
}

func vec(x, y, z float64) types.Vector3 {
	return types.Vector3{X: x, Y: y, Z: z}
}

func approxEqual(a, b types.Vector3) bool {
	return a.Sub(b).Length() < 1e-9
}
