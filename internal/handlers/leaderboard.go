package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/besuhoff/arena-shooter-go/internal/db"
)

const (
	defaultLeaderboardLimit = 100
	leaderboardQueryWait    = 5 * time.Second
)

// LeaderboardStore reads kill statistics
type LeaderboardStore interface {
	GetTopKills(ctx context.Context, limit int) ([]db.LeaderboardEntry, error)
	GetPlayerStats(ctx context.Context, playerID string) (*db.LeaderboardEntry, error)
}

// LeaderboardHandler handles leaderboard-related HTTP requests
type LeaderboardHandler struct {
	store LeaderboardStore
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(store LeaderboardStore) *LeaderboardHandler {
	return &LeaderboardHandler{store: store}
}

// LeaderboardEntry represents an entry in the leaderboard
type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Kills    int     `json:"kills"`
	Deaths   int     `json:"deaths"`
	Ratio    float64 `json:"kd_ratio"`
}

func toLeaderboardEntry(rank int, e db.LeaderboardEntry) LeaderboardEntry {
	name := e.Name
	if name == "" {
		name = e.PlayerID
	}
	return LeaderboardEntry{
		Rank:     rank,
		PlayerID: e.PlayerID,
		Name:     name,
		Kills:    e.Kills,
		Deaths:   e.Deaths,
		Ratio:    killDeathRatio(e.Kills, e.Deaths),
	}
}

func killDeathRatio(kills, deaths int) float64 {
	if deaths == 0 {
		return float64(kills)
	}
	return float64(kills) / float64(deaths)
}

// HandleGetGlobalLeaderboard returns the top players by kills
func (h *LeaderboardHandler) HandleGetGlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultLeaderboardLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if val, err := strconv.Atoi(limitStr); err == nil && val > 0 && val <= defaultLeaderboardLimit {
			limit = val
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), leaderboardQueryWait)
	defer cancel()

	top, err := h.store.GetTopKills(ctx, limit)
	if err != nil {
		log.Printf("Failed to fetch leaderboard: %v", err)
		http.Error(w, "Failed to fetch leaderboard", http.StatusInternalServerError)
		return
	}

	entries := make([]LeaderboardEntry, len(top))
	for i, e := range top {
		entries[i] = toLeaderboardEntry(i+1, e)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// HandleGetPlayerStats returns statistics for a single player
func (h *LeaderboardHandler) HandleGetPlayerStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	playerID := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/v1/leaderboard/player/"))
	if playerID == "" || strings.Contains(playerID, "/") {
		http.Error(w, "Invalid player ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leaderboardQueryWait)
	defer cancel()

	entry, err := h.store.GetPlayerStats(ctx, playerID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		http.Error(w, "Player not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Failed to fetch stats for %s: %v", playerID, err)
		http.Error(w, "Failed to fetch player stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toLeaderboardEntry(0, *entry))
}
