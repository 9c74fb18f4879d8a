package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/besuhoff/arena-shooter-go/internal/types"
)

// PlayerLister exposes the players currently in the world
type PlayerLister interface {
	GetAllPlayers() []*types.Player
}

// SessionHandler reports the live websocket sessions
type SessionHandler struct {
	players PlayerLister
}

func NewSessionHandler(players PlayerLister) *SessionHandler {
	return &SessionHandler{players: players}
}

// SessionResponse is the public view of one connected player
type SessionResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Health int     `json:"health"`
	Alive  bool    `json:"alive"`
	Kills  int     `json:"kills"`
	Deaths int     `json:"deaths"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
}

// HandleListSessions lists connected players ordered by id
func (h *SessionHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	players := h.players.GetAllPlayers()
	responses := make([]SessionResponse, len(players))
	for i, p := range players {
		responses[i] = SessionResponse{
			ID:     p.ID,
			Name:   p.Name,
			Health: p.Health,
			Alive:  p.IsAlive,
			Kills:  p.Kills,
			Deaths: p.Deaths,
			X:      p.Position.X,
			Y:      p.Position.Y,
			Z:      p.Position.Z,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}
