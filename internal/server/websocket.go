package server

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/besuhoff/arena-shooter-go/internal/config"
	"github.com/besuhoff/arena-shooter-go/internal/protocol"
	"github.com/besuhoff/arena-shooter-go/internal/types"
)

// WebsocketClient represents a connected client
type WebsocketClient struct {
	ID        string
	Name      string
	AccountID string // token subject, empty for guests
	Conn      *websocket.Conn
	Send      chan []byte
	Server    *GameServer
	Codec     protocol.Codec
}

// Client methods
func (c *WebsocketClient) readPump() {
	defer func() {
		select {
		case c.Server.unregister <- c:
		case <-c.Server.shutdown:
		}
	}()

	c.Conn.SetReadLimit(config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		env, err := c.decoderFor(messageType).Decode(message)
		if err != nil {
			log.Printf("Malformed message from %s: %v", c.ID, err)
			continue
		}

		c.handleMessage(env)
	}
}

// decoderFor picks the codec for an inbound frame. Text frames are always
// JSON; binary frames use the client's codec, or protobuf for JSON clients.
func (c *WebsocketClient) decoderFor(messageType int) protocol.Codec {
	if messageType == websocket.TextMessage {
		return protocol.JSONCodec{}
	}
	if !c.Codec.Binary() {
		return protocol.ProtoCodec{}
	}
	return c.Codec
}

func (c *WebsocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			msgType := websocket.TextMessage
			if c.Codec.Binary() {
				msgType = websocket.BinaryMessage
			}

			if err := c.Conn.WriteMessage(msgType, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches one inbound envelope to the engine. Malformed
// input is logged and dropped.
func (c *WebsocketClient) handleMessage(env *structpb.Struct) {
	msgType, payload, err := protocol.ParseEnvelope(env)
	if err != nil {
		log.Printf("Malformed message from %s: %v", c.ID, err)
		return
	}

	engine := c.Server.engine

	switch msgType {
	case types.MsgTypePlayerMovement:
		input, err := protocol.ParseMovement(payload)
		if err != nil {
			log.Printf("Invalid movement from %s: %v", c.ID, err)
			return
		}
		engine.UpdatePlayerMovement(c.ID, input)

	case types.MsgTypeFireBullet:
		input, err := protocol.ParseFire(payload)
		if err != nil {
			log.Printf("Invalid bullet data from %s: %v", c.ID, err)
			return
		}
		if _, err := engine.FireProjectile(c.ID, input); err != nil {
			log.Printf("Rejected bullet from %s: %v", c.ID, err)
		}

	case types.MsgTypePlayerHit:
		report, err := protocol.ParseHit(payload)
		if err != nil {
			log.Printf("Invalid hit report from %s: %v", c.ID, err)
			return
		}
		engine.ReportHit(c.ID, report)

	default:
		log.Printf("Unknown message type %q from %s", msgType, c.ID)
	}
}

// trySend queues a frame without blocking. Callers hold the server lock.
func (c *WebsocketClient) trySend(data []byte) {
	select {
	case c.Send <- data:
	default:
		log.Printf("Send buffer full for %s, dropping message", c.ID)
	}
}
