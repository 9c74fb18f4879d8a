package game

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/besuhoff/arena-shooter-go/internal/config"
	"github.com/besuhoff/arena-shooter-go/internal/types"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerDead     = errors.New("player is dead")
	ErrMalformedFire  = errors.New("fire request missing origin or direction")
)

// Engine owns the world state: every player, every projectile and the
// projectile id counter. All mutations go through mu.
type Engine struct {
	mu               sync.Mutex
	players          map[string]*types.Player
	projectiles      []*types.Projectile
	nextProjectileID uint64

	out       Broadcaster
	recorder  KillRecorder
	now       func() time.Time
	rng       *rand.Rand
	afterFunc func(time.Duration, func())
}

// Option customizes an Engine
type Option func(*Engine)

// WithClock replaces time.Now, used for lastUpdate and idle reaping.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRand replaces the random source used for respawn positions.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithAfterFunc replaces the one-shot timer used to schedule respawns.
func WithAfterFunc(f func(time.Duration, func())) Option {
	return func(e *Engine) { e.afterFunc = f }
}

// WithKillRecorder stores every kill through r.
func WithKillRecorder(r KillRecorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// NewEngine creates a new game engine
func NewEngine(out Broadcaster, opts ...Option) *Engine {
	if out == nil {
		out = noopBroadcaster{}
	}
	e := &Engine{
		players:     make(map[string]*types.Player),
		projectiles: make([]*types.Projectile, 0),
		out:         out,
		now:         time.Now,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tick runs one simulation step: projectile motion, expiry and collisions.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.projectiles) == 0 {
		return
	}

	e.advanceProjectiles()
	e.resolveCollisions()

	if len(e.projectiles) > 0 {
		positions := make([]types.ProjectilePosition, len(e.projectiles))
		for i, p := range e.projectiles {
			positions[i] = types.ProjectilePosition{ID: p.ID, Position: p.Position}
		}
		e.out.Broadcast(types.Event{Type: types.MsgTypeBulletsUpdate, Payload: positions}, "")
	}
}

// GetPlayer returns a copy of the player
func (e *Engine) GetPlayer(id string) (*types.Player, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	player, exists := e.players[id]
	if !exists {
		return nil, false
	}
	return player.Clone(), true
}

// GetAllPlayers returns copies of all players ordered by id
func (e *Engine) GetAllPlayers() []*types.Player {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := e.sortedPlayerIDs()
	players := make([]*types.Player, len(ids))
	for i, id := range ids {
		players[i] = e.players[id].Clone()
	}
	return players
}

// GetProjectiles returns copies of all live projectiles in simulation order
func (e *Engine) GetProjectiles() []*types.Projectile {
	e.mu.Lock()
	defer e.mu.Unlock()

	projectiles := make([]*types.Projectile, len(e.projectiles))
	for i, p := range e.projectiles {
		projectiles[i] = p.Clone()
	}
	return projectiles
}

func (e *Engine) PlayerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.players)
}

// Snapshot returns the init payload for the given session
func (e *Engine) Snapshot(id string) *types.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(id)
}

func (e *Engine) snapshotLocked(id string) *types.Snapshot {
	players := make(map[string]*types.Player, len(e.players))
	for pid, p := range e.players {
		players[pid] = p.Clone()
	}
	projectiles := make([]*types.Projectile, len(e.projectiles))
	for i, p := range e.projectiles {
		projectiles[i] = p.Clone()
	}
	return &types.Snapshot{ID: id, Players: players, Projectiles: projectiles}
}

// sortedPlayerIDs fixes the collision tie-break: ascending session id.
func (e *Engine) sortedPlayerIDs() []string {
	ids := make([]string, 0, len(e.players))
	for id := range e.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (e *Engine) projectileIndex(id uint64) int {
	for i, p := range e.projectiles {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) removeProjectileAt(i int) {
	copy(e.projectiles[i:], e.projectiles[i+1:])
	e.projectiles[len(e.projectiles)-1] = nil
	e.projectiles = e.projectiles[:len(e.projectiles)-1]
}

func (e *Engine) emitProjectileRemoved(id uint64) {
	e.out.Broadcast(types.Event{
		Type:    types.MsgTypeRemoveBullet,
		Payload: types.ProjectileRemoved{ID: id},
	}, "")
}

// recordKill hands the record to the recorder without holding up the tick.
func (e *Engine) recordKill(record types.KillRecord) {
	if e.recorder == nil {
		return
	}
	go func(rec KillRecorder) {
		ctx, cancel := context.WithTimeout(context.Background(), config.LeaderboardWriteWait)
		defer cancel()

		if err := rec.RecordKill(ctx, record); err != nil {
			log.Printf("Failed to record kill of %s by %s: %v", record.VictimID, record.KillerID, err)
		}
	}(e.recorder)
}
