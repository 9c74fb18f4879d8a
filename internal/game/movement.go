package game

import (
	"log"
	"math"

	"github.com/besuhoff/arena-shooter-go/internal/config"
	"github.com/besuhoff/arena-shooter-go/internal/types"
	"github.com/besuhoff/arena-shooter-go/internal/utils"
)

// UpdatePlayerMovement validates a client-reported position. Implausible
// steps are rejected, never clamped: the sender gets its authoritative
// position back and nobody else hears about it. Reports whether the update
// was applied.
func (e *Engine) UpdatePlayerMovement(playerID string, input types.MovementInput) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	player, exists := e.players[playerID]
	if !exists || !player.IsAlive {
		return false
	}

	next := input.Position()
	finite := next.IsFinite() && !math.IsNaN(input.RY) && !math.IsInf(input.RY, 0)
	// The spawn point counts as the previous position, so the first update
	// after connect or respawn is checked like any other.
	valid := finite && utils.IsValidStep(player.Position, next, config.MaxPositionChange)
	if !valid {
		log.Printf("[ANTI-CHEAT] Suspicious movement from %s: %+v -> %+v", playerID, player.Position, next)
		e.out.SendTo(playerID, types.Event{Type: types.MsgTypeForcePosition, Payload: player.Clone()})
		return false
	}

	player.Position = next
	player.Rotation = input.RY
	player.LastUpdate = e.now()

	e.out.Broadcast(types.Event{Type: types.MsgTypePlayerMoved, Payload: player.Clone()}, playerID)
	return true
}
