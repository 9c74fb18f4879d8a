package config

import "time"

// Simulation
const (
	TickRate         = 60
	GameLoopInterval = time.Second / TickRate
)

// Movement
const (
	MaxPositionChange = 5.0
)

// Projectiles
const (
	ProjectileSpeed    = 1.5
	ProjectileLifetime = 200 // ticks (~3.3 seconds at 60 ticks per second)
	HitRadius          = 0.6
)

// Combat
const (
	BulletDamage = 20
	MaxHealth    = 100
	RespawnDelay = 3 * time.Second
)

// Spawning
const (
	DefaultSpawnX = 0.0
	DefaultSpawnY = 1.7
	DefaultSpawnZ = 0.0

	RespawnHalfExtent = 10.0 // respawn x and z are drawn from [-RespawnHalfExtent, RespawnHalfExtent)
	RespawnHeight     = 20.0
)

// Sessions
const (
	IdleTimeout      = 60 * time.Second
	IdleReapInterval = 30 * time.Second

	ClientSendBuffer = 256
	PongWait         = 60 * time.Second
	PingPeriod       = 54 * time.Second
	WriteWait        = 10 * time.Second
	MaxMessageSize   = 1 << 16
)

// Storage
const (
	DatabaseName         = "arena_shooter"
	LeaderboardWriteWait = 5 * time.Second
)
