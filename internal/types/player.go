package types

import (
	"time"

	"github.com/besuhoff/arena-shooter-go/internal/config"
)

// Player is the authoritative record of one connected session
type Player struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Position   Vector3   `json:"position"`
	Rotation   float64   `json:"ry"` // heading in radians
	Health     int       `json:"health"`
	IsAlive    bool      `json:"alive"`
	Kills      int       `json:"kills"`
	Deaths     int       `json:"deaths"`
	LastUpdate time.Time `json:"-"`
	// AccountID is the authenticated subject behind the session, empty for
	// guests. Stats are kept under it so they survive reconnects.
	AccountID string `json:"-"`
}

// NewPlayer returns a player at the default spawn point with full health.
func NewPlayer(id, name string, now time.Time) *Player {
	if name == "" {
		name = id
	}
	return &Player{
		ID:   id,
		Name: name,
		Position: Vector3{
			X: config.DefaultSpawnX,
			Y: config.DefaultSpawnY,
			Z: config.DefaultSpawnZ,
		},
		Health:     config.MaxHealth,
		IsAlive:    true,
		LastUpdate: now,
	}
}

// StatsKey is the id the leaderboard keys this player's stats on.
func (p *Player) StatsKey() string {
	if p.AccountID != "" {
		return p.AccountID
	}
	return p.ID
}

func (p *Player) Clone() *Player {
	clone := *p
	return &clone
}

// Respawn restores full health at the given position. It reports false when
// the player is not dead.
func (p *Player) Respawn(pos Vector3) bool {
	if p.IsAlive {
		return false
	}

	p.IsAlive = true
	p.Health = config.MaxHealth
	p.Position = pos

	return true
}
