package game

import (
	"log"

	"github.com/besuhoff/arena-shooter-go/internal/config"
	"github.com/besuhoff/arena-shooter-go/internal/types"
)

// Connect creates the player for a new guest session, sends it the full
// snapshot and announces it to everyone else.
func (e *Engine) Connect(id, name string) *types.Snapshot {
	return e.ConnectAccount(id, name, "")
}

// ConnectAccount is Connect for a session authenticated as accountID.
func (e *Engine) ConnectAccount(id, name, accountID string) *types.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.players[id]; exists {
		log.Printf("Player %s already connected", id)
		return e.snapshotLocked(id)
	}

	player := types.NewPlayer(id, name, e.now())
	player.AccountID = accountID
	e.players[id] = player

	snapshot := e.snapshotLocked(id)
	e.out.SendTo(id, types.Event{Type: types.MsgTypeInit, Payload: snapshot})
	e.out.Broadcast(types.Event{Type: types.MsgTypeNewPlayer, Payload: player.Clone()}, id)

	log.Printf("Player connected: %s (total players: %d)", id, len(e.players))
	return snapshot
}

// Disconnect removes the session's player and its projectiles. Reports false
// when the player was already gone, for example after an idle reap.
func (e *Engine) Disconnect(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.removePlayer(id) {
		return false
	}
	log.Printf("Player disconnected: %s (remaining players: %d)", id, len(e.players))
	return true
}

// ReapIdle removes every player whose last activity is older than
// config.IdleTimeout, exactly as if its session had disconnected. Returns the
// reaped ids so the transport can close those sessions.
func (e *Engine) ReapIdle() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	var reaped []string
	for _, id := range e.sortedPlayerIDs() {
		if now.Sub(e.players[id].LastUpdate) <= config.IdleTimeout {
			continue
		}
		log.Printf("Removing inactive player: %s", id)
		e.removePlayer(id)
		reaped = append(reaped, id)
	}
	return reaped
}

func (e *Engine) removePlayer(id string) bool {
	if _, exists := e.players[id]; !exists {
		return false
	}

	kept := e.projectiles[:0]
	for _, p := range e.projectiles {
		if p.OwnerID != id {
			kept = append(kept, p)
		}
	}
	clear(e.projectiles[len(kept):])
	e.projectiles = kept

	delete(e.players, id)

	e.out.Broadcast(types.Event{Type: types.MsgTypePlayerDisconnected, Payload: types.PlayerRemoved{ID: id}}, "")
	return true
}
