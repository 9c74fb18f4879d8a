package game

import (
	"fmt"
	"log"

	"github.com/besuhoff/arena-shooter-go/internal/config"
	"github.com/besuhoff/arena-shooter-go/internal/types"
)

// FireProjectile spawns a projectile owned by ownerID. The direction is
// normalized so every shot travels at config.ProjectileSpeed.
func (e *Engine) FireProjectile(ownerID string, input types.FireInput) (*types.Projectile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	owner, exists := e.players[ownerID]
	if !exists {
		return nil, ErrPlayerNotFound
	}
	if !owner.IsAlive {
		return nil, ErrPlayerDead
	}

	if input.Origin == nil || input.Direction == nil {
		return nil, ErrMalformedFire
	}
	if !input.Origin.IsFinite() {
		return nil, fmt.Errorf("%w: non-finite origin", ErrMalformedFire)
	}
	direction, ok := input.Direction.Normalize()
	if !ok {
		return nil, fmt.Errorf("%w: zero-length direction", ErrMalformedFire)
	}

	projectile := &types.Projectile{
		ID:       e.nextProjectileID,
		OwnerID:  ownerID,
		Position: *input.Origin,
		Velocity: direction.Scale(config.ProjectileSpeed),
		Life:     config.ProjectileLifetime,
	}
	e.nextProjectileID++
	e.projectiles = append(e.projectiles, projectile)
	owner.LastUpdate = e.now()

	log.Printf("%s fired bullet #%d", ownerID, projectile.ID)

	e.out.Broadcast(types.Event{Type: types.MsgTypeSpawnBullet, Payload: projectile.Clone()}, "")
	return projectile.Clone(), nil
}

// advanceProjectiles moves every projectile by one velocity step and drops
// the ones whose lifetime ran out.
func (e *Engine) advanceProjectiles() {
	survivors := e.projectiles[:0]
	for _, p := range e.projectiles {
		keep := e.isolate("advancing", p.ID, func() bool {
			p.Position = p.Position.Add(p.Velocity)
			p.Life--
			if p.Life <= 0 {
				e.emitProjectileRemoved(p.ID)
				return false
			}
			return true
		})
		if keep {
			survivors = append(survivors, p)
		}
	}
	clear(e.projectiles[len(survivors):])
	e.projectiles = survivors
}

// isolate runs fn for a single projectile. A panic drops that projectile and
// lets the rest of the tick continue.
func (e *Engine) isolate(stage string, id uint64, fn func() bool) (keep bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered while %s bullet #%d: %v", stage, id, r)
			e.emitProjectileRemoved(id)
			keep = false
		}
	}()
	return fn()
}
