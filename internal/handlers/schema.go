package handlers

import (
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/besuhoff/arena-shooter-go/internal/types"
)

// InboundSchemas describes the payload of every client message, keyed by
// message type.
func InboundSchemas() map[types.MessageType]*jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
		ExpandedStruct:             true,
	}

	return map[types.MessageType]*jsonschema.Schema{
		types.MsgTypePlayerMovement: reflector.ReflectFromType(reflect.TypeOf(types.MovementInput{})),
		types.MsgTypeFireBullet:     reflector.ReflectFromType(reflect.TypeOf(types.FireInput{})),
		types.MsgTypePlayerHit:      reflector.ReflectFromType(reflect.TypeOf(types.HitReport{})),
	}
}

// HandleGetSchema serves InboundSchemas as JSON
func HandleGetSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(InboundSchemas())
}
