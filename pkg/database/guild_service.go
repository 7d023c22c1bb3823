// Package database - guild configuration queries.
package database

import (
	"context"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const guildsCollection = "guilds"

// GuildService issues the guild configuration queries
type GuildService struct {
	guilds *mongo.Collection
}

// NewGuildService creates a GuildService over the given database
func NewGuildService(db *Database) *GuildService {
	return &GuildService{guilds: db.GetCollection(guildsCollection)}
}

// All returns every watched guild; the replication engine iterates these
// rows to decide fan-out targets
func (s *GuildService) All(ctx context.Context) ([]*models.GuildConfig, error) {
	cursor, err := s.guilds.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []*models.GuildConfig
	for cursor.Next(ctx) {
		var g models.GuildConfig
		if err := cursor.Decode(&g); err != nil {
			continue
		}
		results = append(results, &g)
	}
	return results, cursor.Err()
}

// ByID retrieves a guild configuration, nil if the guild is not watched
func (s *GuildService) ByID(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	var g models.GuildConfig
	err := s.guilds.FindOne(ctx, bson.M{"_id": guildID}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}
