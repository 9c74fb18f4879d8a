package server

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/besuhoff/arena-shooter-go/internal/auth"
	"github.com/besuhoff/arena-shooter-go/internal/config"
	"github.com/besuhoff/arena-shooter-go/internal/game"
	"github.com/besuhoff/arena-shooter-go/internal/protocol"
	"github.com/besuhoff/arena-shooter-go/internal/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// GameServer owns the engine and every websocket client. It is the
// engine's Broadcaster, so events are delivered while the engine lock is
// held: GameServer must never call into the engine while holding mu.
type GameServer struct {
	engine     *game.Engine
	clients    map[string]*WebsocketClient
	register   chan *WebsocketClient
	unregister chan *WebsocketClient
	shutdown   chan struct{}
	closeOnce  sync.Once
	mu         sync.RWMutex
}

// NewGameServer creates a new game server
func NewGameServer(opts ...game.Option) *GameServer {
	gs := &GameServer{
		clients:    make(map[string]*WebsocketClient),
		register:   make(chan *WebsocketClient),
		unregister: make(chan *WebsocketClient),
		shutdown:   make(chan struct{}),
	}
	gs.engine = game.NewEngine(gs, opts...)
	return gs
}

// Engine returns the simulation driven by this server
func (gs *GameServer) Engine() *game.Engine {
	return gs.engine
}

// Run drives the simulation tick and the idle reaper until ctx is done or
// Shutdown is called.
func (gs *GameServer) Run(ctx context.Context) error {
	ticker := time.NewTicker(config.GameLoopInterval)
	defer ticker.Stop()
	reaper := time.NewTicker(config.IdleReapInterval)
	defer reaper.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Game server loop shutting down...")
			return nil

		case <-gs.shutdown:
			log.Println("Game server loop shutting down...")
			return nil

		case client := <-gs.register:
			gs.registerClient(client)

		case client := <-gs.unregister:
			gs.unregisterClient(client)

		case <-ticker.C:
			gs.engine.Tick()

		case <-reaper.C:
			gs.reapIdleClients()
		}
	}
}

// Shutdown gracefully shuts down the server
func (gs *GameServer) Shutdown() {
	gs.closeOnce.Do(func() {
		log.Println("Starting graceful shutdown...")
		close(gs.shutdown)
	})

	gs.mu.Lock()
	defer gs.mu.Unlock()

	log.Printf("Closing %d client connections...", len(gs.clients))
	for id, client := range gs.clients {
		client.Conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Server shutting down"),
			time.Now().Add(time.Second))
		client.Conn.Close()
		delete(gs.clients, id)
		close(client.Send)
	}

	log.Println("Graceful shutdown complete")
}

// ClientCount reports the number of open websocket clients
func (gs *GameServer) ClientCount() int {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return len(gs.clients)
}

func (gs *GameServer) registerClient(client *WebsocketClient) {
	gs.mu.Lock()
	gs.clients[client.ID] = client
	gs.mu.Unlock()

	// The client is in the map before Connect so the init snapshot reaches it.
	gs.engine.ConnectAccount(client.ID, client.Name, client.AccountID)

	log.Printf("Player %s (%s) joined using %s protocol", client.Name, client.ID, client.Codec.Name())
}

func (gs *GameServer) unregisterClient(client *WebsocketClient) {
	if !gs.dropClient(client.ID) {
		return
	}

	gs.engine.Disconnect(client.ID)
	log.Printf("Player %s (%s) left", client.Name, client.ID)
}

// dropClient removes the client and closes its send buffer, which makes the
// write pump close the socket. Reports false when it was already gone.
func (gs *GameServer) dropClient(id string) bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	client, exists := gs.clients[id]
	if !exists {
		return false
	}
	delete(gs.clients, id)
	close(client.Send)
	return true
}

func (gs *GameServer) reapIdleClients() {
	for _, id := range gs.engine.ReapIdle() {
		if gs.dropClient(id) {
			log.Printf("Closed idle session %s", id)
		}
	}
}

// Broadcast implements game.Broadcaster
func (gs *GameServer) Broadcast(event types.Event, excludeID string) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	// A codec that fails to encode is cached as nil so only its clients miss
	// the event and the error is logged once.
	frames := make(map[string][]byte)
	for id, client := range gs.clients {
		if id == excludeID {
			continue
		}

		codec := client.Codec.Name()
		data, ok := frames[codec]
		if !ok {
			var err error
			if data, err = protocol.Encode(client.Codec, event); err != nil {
				log.Printf("Error encoding %s message with %s: %v", event.Type, codec, err)
				data = nil
			}
			frames[codec] = data
		}
		if data == nil {
			continue
		}
		client.trySend(data)
	}
}

// SendTo implements game.Broadcaster
func (gs *GameServer) SendTo(playerID string, event types.Event) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	client, exists := gs.clients[playerID]
	if !exists {
		return
	}

	data, err := protocol.Encode(client.Codec, event)
	if err != nil {
		log.Printf("Error encoding %s message: %v", event.Type, err)
		return
	}
	client.trySend(data)
}

// HandleWebSocket handles WebSocket connections
func (gs *GameServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	var accountID string

	if config.AppConfig != nil && config.AppConfig.AuthEnabled() {
		token := r.URL.Query().Get("token")
		if token == "" {
			// Check Authorization header as fallback
			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if token == "" {
			http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			log.Printf("Token validation error: %v", err)
			http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
			return
		}
		name = claims.DisplayName()
		accountID = claims.Subject
	}

	select {
	case <-gs.shutdown:
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &WebsocketClient{
		ID:        uuid.New().String(),
		Name:      name,
		AccountID: accountID,
		Conn:      conn,
		Send:      make(chan []byte, config.ClientSendBuffer),
		Server:    gs,
		Codec:     protocol.CodecFor(r.URL.Query().Get("protocol")),
	}
	if client.Name == "" {
		client.Name = client.ID
	}

	log.Printf("New client connected (ID: %s, Name: %s, Protocol: %s)", client.ID, client.Name, client.Codec.Name())

	go client.writePump()
	go client.readPump()

	select {
	case gs.register <- client:
	case <-gs.shutdown:
		conn.Close()
	}
}
