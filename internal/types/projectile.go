package types

// Projectile is a server-simulated bullet
type Projectile struct {
	ID       uint64  `json:"id"`
	OwnerID  string  `json:"ownerId"`
	Position Vector3 `json:"pos"`
	Velocity Vector3 `json:"vel"`
	Life     int     `json:"life"` // remaining ticks
}

func (p *Projectile) Clone() *Projectile {
	clone := *p
	return &clone
}

// ProjectilePosition is one entry of the batched position update.
type ProjectilePosition struct {
	ID       uint64  `json:"id"`
	Position Vector3 `json:"pos"`
}
