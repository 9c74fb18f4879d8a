package game

import (
	"context"

	"github.com/besuhoff/arena-shooter-go/internal/types"
)

//go:generate go tool mockgen -destination=./mocks/broadcaster_mock.go -package=mocks . Broadcaster

// Broadcaster delivers simulation events to sessions. Implementations must
// not block and must not call back into the Engine.
type Broadcaster interface {
	// Broadcast sends the event to every session except excludeID. An empty
	// excludeID reaches everyone.
	Broadcast(event types.Event, excludeID string)
	// SendTo sends the event to a single session.
	SendTo(playerID string, event types.Event)
}

// KillRecorder stores kill statistics outside the simulation.
type KillRecorder interface {
	RecordKill(ctx context.Context, record types.KillRecord) error
}

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(types.Event, string) {}
func (noopBroadcaster) SendTo(string, types.Event)    {}
