// Package database - penalty collection queries.
package database

import (
	"context"
	"errors"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoHiddenBanPenalty is returned when the reconciliation loop needs the
// hidden ban row and the collection does not carry one.
var ErrNoHiddenBanPenalty = errors.New("no hidden ban penalty configured")

const penaltiesCollection = "penalties"

// PenaltyService issues the penalty collection queries
type PenaltyService struct {
	penalties *mongo.Collection
}

// NewPenaltyService creates a PenaltyService over the given database
func NewPenaltyService(db *Database) *PenaltyService {
	return &PenaltyService{penalties: db.GetCollection(penaltiesCollection)}
}

// All returns every penalty, hidden rows included
func (s *PenaltyService) All(ctx context.Context) ([]models.Penalty, error) {
	cursor, err := s.penalties.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []models.Penalty
	for cursor.Next(ctx) {
		var p models.Penalty
		if err := cursor.Decode(&p); err != nil {
			continue
		}
		results = append(results, p)
	}
	return results, cursor.Err()
}

// Visible returns the penalties offered as moderator-facing choices
func (s *PenaltyService) Visible(ctx context.Context) ([]models.Penalty, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	visible := all[:0]
	for _, p := range all {
		if !p.Hidden {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// ByName retrieves a penalty by name, nil if it does not exist
func (s *PenaltyService) ByName(ctx context.Context, name string) (*models.Penalty, error) {
	var p models.Penalty
	err := s.penalties.FindOne(ctx, bson.M{"name": name}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// HiddenBan returns the hidden ban row used for reconciled external bans
func (s *PenaltyService) HiddenBan(ctx context.Context) (*models.Penalty, error) {
	var p models.Penalty
	err := s.penalties.FindOne(ctx, bson.M{"ban": true, "hidden": true}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoHiddenBanPenalty
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// EnsureDefaults seeds the penalty collection on first start
func (s *PenaltyService) EnsureDefaults(ctx context.Context) error {
	count, err := s.penalties.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []interface{}{
		models.Penalty{Name: "warning"},
		models.Penalty{Name: "timeout", Timeout: 24 * time.Hour},
		models.Penalty{Name: "kick", Kick: true},
		models.Penalty{Name: "ban", Ban: true, DeleteMessages: true},
		models.Penalty{Name: "regular ban", Ban: true, Hidden: true},
	}

	_, err = s.penalties.InsertMany(ctx, defaults, options.InsertMany())
	return err
}
