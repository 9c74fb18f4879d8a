package game

import (
	"log"

	"github.com/besuhoff/arena-shooter-go/internal/config"
	"github.com/besuhoff/arena-shooter-go/internal/types"
	"github.com/besuhoff/arena-shooter-go/internal/utils"
)

// resolveCollisions tests every surviving projectile against the players.
// Players are scanned in ascending id order and the first hit consumes the
// projectile.
func (e *Engine) resolveCollisions() {
	if len(e.players) == 0 {
		return
	}

	ids := e.sortedPlayerIDs()
	survivors := e.projectiles[:0]
	for _, p := range e.projectiles {
		keep := e.isolate("resolving", p.ID, func() bool {
			return !e.resolveProjectile(p, ids)
		})
		if keep {
			survivors = append(survivors, p)
		}
	}
	clear(e.projectiles[len(survivors):])
	e.projectiles = survivors
}

func (e *Engine) resolveProjectile(p *types.Projectile, ids []string) bool {
	for _, id := range ids {
		player, exists := e.players[id]
		if !exists || !player.IsAlive || id == p.OwnerID {
			continue
		}

		if utils.CheckPointSphereCollision(p.Position, player.Position, config.HitRadius) {
			e.applyDamage(player, p.OwnerID)
			log.Printf("Server detected: bullet #%d hit %s (%d HP)", p.ID, id, player.Health)
			e.emitProjectileRemoved(p.ID)
			return true
		}
	}
	return false
}

// ReportHit handles a client-reported hit. The server re-validates the
// target and projectile; the projectile is consumed on success, so a later
// report or tick collision for the same id finds nothing. Reports whether
// damage was applied.
func (e *Engine) ReportHit(reporterID string, report types.HitReport) bool {
	if report.BulletID == nil || report.TargetID == "" {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	target, exists := e.players[report.TargetID]
	if !exists || !target.IsAlive {
		return false
	}

	idx := e.projectileIndex(*report.BulletID)
	if idx < 0 {
		return false
	}
	projectile := e.projectiles[idx]
	if projectile.OwnerID == report.TargetID {
		return false
	}

	e.applyDamage(target, projectile.OwnerID)
	log.Printf("Bullet #%d hit %s (%d HP remaining, reported by %s)", projectile.ID, target.ID, target.Health, reporterID)

	e.removeProjectileAt(idx)
	e.emitProjectileRemoved(projectile.ID)
	return true
}
