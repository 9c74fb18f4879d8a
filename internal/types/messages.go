package types

// MessageType names a message on the wire
type MessageType string

const (
	// Client -> Server
	MsgTypePlayerMovement MessageType = "playerMovement"
	MsgTypeFireBullet     MessageType = "fireBullet"
	MsgTypePlayerHit      MessageType = "playerHit"

	// Server -> Client
	MsgTypeInit               MessageType = "init"
	MsgTypeNewPlayer          MessageType = "newPlayer"
	MsgTypePlayerMoved        MessageType = "playerMoved"
	MsgTypeForcePosition      MessageType = "forcePosition"
	MsgTypeSpawnBullet        MessageType = "spawnBullet"
	MsgTypeBulletsUpdate      MessageType = "bulletsUpdate"
	MsgTypeRemoveBullet       MessageType = "removeBullet"
	MsgTypeHealthUpdate       MessageType = "healthUpdate"
	MsgTypePlayerDied         MessageType = "playerDied"
	MsgTypePlayerRespawn      MessageType = "playerRespawn"
	MsgTypePlayerDisconnected MessageType = "playerDisconnected"
)

// Event is one outbound message produced by the simulation
type Event struct {
	Type    MessageType
	Payload interface{}
}

// MovementInput for playerMovement messages
type MovementInput struct {
	X  float64 `json:"x" jsonschema:"required"`
	Y  float64 `json:"y" jsonschema:"required"`
	Z  float64 `json:"z" jsonschema:"required"`
	RY float64 `json:"ry,omitempty"` // defaults to 0
}

func (m MovementInput) Position() Vector3 {
	return Vector3{X: m.X, Y: m.Y, Z: m.Z}
}

// FireInput for fireBullet messages. Missing fields stay nil.
type FireInput struct {
	Origin    *Vector3 `json:"pos" jsonschema:"required"`
	Direction *Vector3 `json:"dir" jsonschema:"required"`
}

// HitReport for playerHit messages
type HitReport struct {
	BulletID *uint64 `json:"bulletId" jsonschema:"required"`
	TargetID string  `json:"targetId" jsonschema:"required"`
}

// Snapshot is the init payload sent to a newly connected session
type Snapshot struct {
	ID          string             `json:"id"`
	Players     map[string]*Player `json:"players"`
	Projectiles []*Projectile      `json:"bullets"`
}

// ProjectileRemoved is sent as the bare projectile id
type ProjectileRemoved struct {
	ID uint64
}

// PlayerRemoved is sent as the bare session id
type PlayerRemoved struct {
	ID string
}

type HealthUpdate struct {
	ID     string `json:"id"`
	Health int    `json:"health"`
}

type PlayerDied struct {
	ID          string `json:"id"`
	KillerID    string `json:"killerId"`
	KillerKills int    `json:"killerKills"`
}

// KillRecord describes one death for the leaderboard. The key fields hold
// the account id for authenticated players and the session id otherwise.
type KillRecord struct {
	VictimID   string
	VictimKey  string
	VictimName string
	KillerID   string
	KillerKey  string // session id when the killer already left
	KillerName string // empty when the killer already left
}
