package game

import (
	"log"

	"github.com/besuhoff/arena-shooter-go/internal/config"
	"github.com/besuhoff/arena-shooter-go/internal/types"
	"github.com/besuhoff/arena-shooter-go/internal/utils"
)

// applyDamage subtracts one hit from the victim. Health is not floored, so
// the value on the healthUpdate event may go below zero.
func (e *Engine) applyDamage(victim *types.Player, killerID string) {
	victim.Health -= config.BulletDamage

	e.out.Broadcast(types.Event{
		Type:    types.MsgTypeHealthUpdate,
		Payload: types.HealthUpdate{ID: victim.ID, Health: victim.Health},
	}, "")

	if victim.Health <= 0 && victim.IsAlive {
		e.killPlayer(victim, killerID)
	}
}

func (e *Engine) killPlayer(victim *types.Player, killerID string) {
	victim.IsAlive = false
	victim.Deaths++

	record := types.KillRecord{
		VictimID:   victim.ID,
		VictimKey:  victim.StatsKey(),
		VictimName: victim.Name,
		KillerID:   killerID,
		KillerKey:  killerID,
	}

	killerKills := 0
	if killer, exists := e.players[killerID]; exists {
		killer.Kills++
		killerKills = killer.Kills
		record.KillerKey = killer.StatsKey()
		record.KillerName = killer.Name
	}

	log.Printf("%s was killed by %s", victim.ID, killerID)

	e.out.Broadcast(types.Event{
		Type: types.MsgTypePlayerDied,
		Payload: types.PlayerDied{
			ID:          victim.ID,
			KillerID:    killerID,
			KillerKills: killerKills,
		},
	}, "")

	e.recordKill(record)

	victimID := victim.ID
	e.afterFunc(config.RespawnDelay, func() {
		e.respawnPlayer(victimID)
	})
}

// respawnPlayer runs when the respawn delay elapses. A player that left in
// the meantime is simply gone from the map, which makes this a no-op.
func (e *Engine) respawnPlayer(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	player, exists := e.players[id]
	if !exists {
		return
	}

	if !player.Respawn(e.randomSpawnPosition()) {
		return
	}

	log.Printf("%s respawned at (%.2f, %.2f, %.2f)", id, player.Position.X, player.Position.Y, player.Position.Z)

	e.out.Broadcast(types.Event{Type: types.MsgTypePlayerRespawn, Payload: player.Clone()}, "")
}

func (e *Engine) randomSpawnPosition() types.Vector3 {
	return types.Vector3{
		X: utils.RandomInRange(e.rng.Float64(), config.RespawnHalfExtent),
		Y: config.RespawnHeight,
		Z: utils.RandomInRange(e.rng.Float64(), config.RespawnHalfExtent),
	}
}
