package protocol

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/besuhoff/arena-shooter-go/internal/types"
)

// Codec turns envelopes into websocket frames and back
type Codec interface {
	Name() string
	// Binary reports whether frames go out as binary websocket messages.
	Binary() bool
	Encode(env *structpb.Struct) ([]byte, error)
	Decode(data []byte) (*structpb.Struct, error)
}

// CodecFor picks the codec requested with ?protocol=. JSON is the default.
func CodecFor(name string) Codec {
	switch name {
	case "binary":
		return ProtoCodec{}
	case "msgpack":
		return MsgpackCodec{}
	default:
		return JSONCodec{}
	}
}

// Encode builds the envelope for ev and encodes it with c.
func Encode(c Codec, ev types.Event) ([]byte, error) {
	env, err := NewEnvelope(ev)
	if err != nil {
		return nil, err
	}
	return c.Encode(env)
}

type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }
func (JSONCodec) Binary() bool { return false }

func (JSONCodec) Encode(env *structpb.Struct) ([]byte, error) {
	data, err := protojson.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON message: %w", err)
	}
	return data, nil
}

func (JSONCodec) Decode(data []byte) (*structpb.Struct, error) {
	env := &structpb.Struct{}
	if err := protojson.Unmarshal(data, env); err != nil {
		return nil, fmt.Errorf("unmarshaling JSON message: %w", err)
	}
	return env, nil
}

// ProtoCodec sends the envelope as a protobuf Struct
type ProtoCodec struct{}

func (ProtoCodec) Name() string { return "binary" }
func (ProtoCodec) Binary() bool { return true }

func (ProtoCodec) Encode(env *structpb.Struct) ([]byte, error) {
	data, err := proto.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshaling proto message: %w", err)
	}
	return data, nil
}

func (ProtoCodec) Decode(data []byte) (*structpb.Struct, error) {
	env := &structpb.Struct{}
	if err := proto.Unmarshal(data, env); err != nil {
		return nil, fmt.Errorf("unmarshaling proto message: %w", err)
	}
	return env, nil
}

type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }
func (MsgpackCodec) Binary() bool { return true }

func (MsgpackCodec) Encode(env *structpb.Struct) ([]byte, error) {
	data, err := msgpack.Marshal(env.AsMap())
	if err != nil {
		return nil, fmt.Errorf("marshaling msgpack message: %w", err)
	}
	return data, nil
}

func (MsgpackCodec) Decode(data []byte) (*structpb.Struct, error) {
	var raw map[string]interface{}
	if err := msgpack.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshaling msgpack message: %w", err)
	}

	normalized, ok := normalizeMsgpack(raw).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: msgpack frame is not a map", ErrMalformedEnvelope)
	}
	env, err := structpb.NewStruct(normalized)
	if err != nil {
		return nil, fmt.Errorf("unmarshaling msgpack message: %w", err)
	}
	return env, nil
}

// normalizeMsgpack maps the sized integers and interface-keyed maps msgpack
// decodes into the value shapes structpb accepts.
func normalizeMsgpack(v interface{}) interface{} {
	switch val := v.(type) {
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case uint:
		return float64(val)
	case float32:
		return float64(val)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = normalizeMsgpack(item)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeMsgpack(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeMsgpack(item)
		}
		return out
	default:
		return v
	}
}
