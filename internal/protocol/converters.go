package protocol

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/besuhoff/arena-shooter-go/internal/types"
)

var ErrUnknownPayload = errors.New("unknown payload type")

// ToProtoVector3 converts types.Vector3 to a {x, y, z} object
func ToProtoVector3(v types.Vector3) map[string]interface{} {
	return map[string]interface{}{
		"x": v.X,
		"y": v.Y,
		"z": v.Z,
	}
}

// ToProtoPlayer flattens a player the way clients expect it: position
// components sit next to the other fields.
func ToProtoPlayer(p *types.Player) map[string]interface{} {
	if p == nil {
		return nil
	}
	return map[string]interface{}{
		"id":         p.ID,
		"name":       p.Name,
		"x":          p.Position.X,
		"y":          p.Position.Y,
		"z":          p.Position.Z,
		"ry":         p.Rotation,
		"health":     p.Health,
		"alive":      p.IsAlive,
		"kills":      p.Kills,
		"deaths":     p.Deaths,
		"lastUpdate": p.LastUpdate.UnixMilli(),
	}
}

// ToProtoBullet converts types.Projectile to its wire object
func ToProtoBullet(b *types.Projectile) map[string]interface{} {
	if b == nil {
		return nil
	}
	return map[string]interface{}{
		"id":      b.ID,
		"ownerId": b.OwnerID,
		"pos":     ToProtoVector3(b.Position),
		"vel":     ToProtoVector3(b.Velocity),
		"life":    b.Life,
	}
}

// ToProtoSnapshot converts the init payload
func ToProtoSnapshot(s *types.Snapshot) map[string]interface{} {
	players := make(map[string]interface{}, len(s.Players))
	for id, p := range s.Players {
		players[id] = ToProtoPlayer(p)
	}
	bullets := make([]interface{}, len(s.Projectiles))
	for i, b := range s.Projectiles {
		bullets[i] = ToProtoBullet(b)
	}
	return map[string]interface{}{
		"id":      s.ID,
		"players": players,
		"bullets": bullets,
	}
}

func toProtoPositions(positions []types.ProjectilePosition) []interface{} {
	out := make([]interface{}, len(positions))
	for i, p := range positions {
		out[i] = map[string]interface{}{
			"id":  p.ID,
			"pos": ToProtoVector3(p.Position),
		}
	}
	return out
}

// ToProtoPayload converts any outbound event payload into a structpb value.
func ToProtoPayload(payload interface{}) (*structpb.Value, error) {
	var raw interface{}

	switch p := payload.(type) {
	case *types.Snapshot:
		raw = ToProtoSnapshot(p)
	case *types.Player:
		raw = ToProtoPlayer(p)
	case *types.Projectile:
		raw = ToProtoBullet(p)
	case []types.ProjectilePosition:
		raw = toProtoPositions(p)
	case types.ProjectileRemoved:
		return structpb.NewNumberValue(float64(p.ID)), nil
	case types.PlayerRemoved:
		return structpb.NewStringValue(p.ID), nil
	case types.HealthUpdate:
		raw = map[string]interface{}{
			"id":     p.ID,
			"health": p.Health,
		}
	case types.PlayerDied:
		raw = map[string]interface{}{
			"id":          p.ID,
			"killerId":    p.KillerID,
			"killerKills": p.KillerKills,
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownPayload, payload)
	}

	v, err := structpb.NewValue(raw)
	if err != nil {
		return nil, fmt.Errorf("converting %T: %w", payload, err)
	}
	return v, nil
}

// NewEnvelope wraps an event as {type, payload}.
func NewEnvelope(ev types.Event) (*structpb.Struct, error) {
	payload, err := ToProtoPayload(ev.Payload)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"type":    structpb.NewStringValue(string(ev.Type)),
			"payload": payload,
		},
	}, nil
}
