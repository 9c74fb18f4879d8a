package protocol

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/besuhoff/arena-shooter-go/internal/types"
)

var (
	ErrMalformedEnvelope = errors.New("malformed envelope")
	ErrMissingField      = errors.New("missing field")
	ErrInvalidField      = errors.New("invalid field")
)

// ParseEnvelope splits an inbound envelope into its type and payload.
func ParseEnvelope(env *structpb.Struct) (types.MessageType, *structpb.Value, error) {
	typ, ok := env.GetFields()["type"]
	if !ok {
		return "", nil, fmt.Errorf("%w: no type", ErrMalformedEnvelope)
	}
	name, ok := typ.GetKind().(*structpb.Value_StringValue)
	if !ok || name.StringValue == "" {
		return "", nil, fmt.Errorf("%w: type is not a string", ErrMalformedEnvelope)
	}

	payload, ok := env.GetFields()["payload"]
	if !ok {
		return "", nil, fmt.Errorf("%w: no payload", ErrMalformedEnvelope)
	}
	return types.MessageType(name.StringValue), payload, nil
}

// ParseMovement reads a playerMovement payload {x, y, z, ry}.
func ParseMovement(v *structpb.Value) (types.MovementInput, error) {
	fields, err := objectFields(v)
	if err != nil {
		return types.MovementInput{}, err
	}

	var input types.MovementInput
	if input.X, err = requireNumber(fields, "x"); err != nil {
		return types.MovementInput{}, err
	}
	if input.Y, err = requireNumber(fields, "y"); err != nil {
		return types.MovementInput{}, err
	}
	if input.Z, err = requireNumber(fields, "z"); err != nil {
		return types.MovementInput{}, err
	}
	if _, ok := fields["ry"]; ok {
		if input.RY, err = requireNumber(fields, "ry"); err != nil {
			return types.MovementInput{}, err
		}
	}
	return input, nil
}

// ParseFire reads a fireBullet payload {pos, dir}. Absent vectors stay nil
// so the engine can reject the request.
func ParseFire(v *structpb.Value) (types.FireInput, error) {
	fields, err := objectFields(v)
	if err != nil {
		return types.FireInput{}, err
	}

	var input types.FireInput
	if input.Origin, err = optionalVector(fields, "pos"); err != nil {
		return types.FireInput{}, err
	}
	if input.Direction, err = optionalVector(fields, "dir"); err != nil {
		return types.FireInput{}, err
	}
	return input, nil
}

// ParseHit reads a playerHit payload {bulletId, targetId}.
func ParseHit(v *structpb.Value) (types.HitReport, error) {
	fields, err := objectFields(v)
	if err != nil {
		return types.HitReport{}, err
	}

	var report types.HitReport
	if _, ok := fields["bulletId"]; ok {
		id, err := requireNumber(fields, "bulletId")
		if err != nil {
			return types.HitReport{}, err
		}
		if id < 0 || id != math.Trunc(id) || id > math.MaxInt64 {
			return types.HitReport{}, fmt.Errorf("%w: bulletId %v", ErrInvalidField, id)
		}
		bulletID := uint64(id)
		report.BulletID = &bulletID
	}

	if target, ok := fields["targetId"]; ok {
		s, ok := target.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return types.HitReport{}, fmt.Errorf("%w: targetId is not a string", ErrInvalidField)
		}
		report.TargetID = s.StringValue
	}
	return report, nil
}

func objectFields(v *structpb.Value) (map[string]*structpb.Value, error) {
	obj := v.GetStructValue()
	if obj == nil {
		return nil, fmt.Errorf("%w: payload is not an object", ErrMalformedEnvelope)
	}
	return obj.GetFields(), nil
}

func requireNumber(fields map[string]*structpb.Value, name string) (float64, error) {
	v, ok := fields[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: %s is not a number", ErrInvalidField, name)
	}
	return n.NumberValue, nil
}

func optionalVector(fields map[string]*structpb.Value, name string) (*types.Vector3, error) {
	v, ok := fields[name]
	if !ok {
		return nil, nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, nil
	}

	obj := v.GetStructValue()
	if obj == nil {
		return nil, fmt.Errorf("%w: %s is not an object", ErrInvalidField, name)
	}

	var vec types.Vector3
	var err error
	if vec.X, err = requireNumber(obj.GetFields(), "x"); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if vec.Y, err = requireNumber(obj.GetFields(), "y"); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if vec.Z, err = requireNumber(obj.GetFields(), "z"); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &vec, nil
}
