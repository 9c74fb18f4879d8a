package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/besuhoff/arena-shooter-go/internal/types"
)

const leaderboardCollection = "leaderboard"

// Leaderboard
type LeaderboardEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlayerID  string             `bson:"player_id" json:"player_id"`
	Name      string             `bson:"name" json:"name"`
	Kills     int                `bson:"kills" json:"kills"`
	Deaths    int                `bson:"deaths" json:"deaths"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type LeaderboardRepository struct {
	collection *mongo.Collection
}

// NewLeaderboardRepository creates a new leaderboard repository
func NewLeaderboardRepository() *LeaderboardRepository {
	return &LeaderboardRepository{
		collection: Database.Collection(leaderboardCollection),
	}
}

// RecordKill adds one death to the victim and one kill to the killer. Rows
// are keyed on the account id when the player signed in, so a reconnecting
// player keeps one row. A killer that already left still gets the kill under
// its session id.
func (r *LeaderboardRepository) RecordKill(ctx context.Context, record types.KillRecord) error {
	now := time.Now()
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, bson.M{"player_id": statsKey(record.VictimKey, record.VictimID)}, statUpdate("deaths", record.VictimName, now), opts); err != nil {
		return err
	}

	killer := statsKey(record.KillerKey, record.KillerID)
	if killer == "" {
		return nil
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"player_id": killer}, statUpdate("kills", record.KillerName, now), opts)
	return err
}

func statsKey(key, sessionID string) string {
	if key != "" {
		return key
	}
	return sessionID
}

// statUpdate increments one counter. The name is only overwritten when known.
func statUpdate(counter, name string, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if name != "" {
		set["name"] = name
	}
	return bson.M{
		"$inc": bson.M{counter: 1},
		"$set": set,
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}
}

// GetTopKills returns the top N players by kills
func (r *LeaderboardRepository) GetTopKills(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "kills", Value: -1}, {Key: "deaths", Value: 1}}).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []LeaderboardEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetPlayerStats returns the entry for a single player
func (r *LeaderboardRepository) GetPlayerStats(ctx context.Context, playerID string) (*LeaderboardEntry, error) {
	var entry LeaderboardEntry
	err := r.collection.FindOne(ctx, bson.M{"player_id": playerID}).Decode(&entry)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
