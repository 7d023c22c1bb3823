// Package database - warning collection queries.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrAlreadyResolved is returned when a write-once field (notified,
	// penalised) already holds a terminal state.
	ErrAlreadyResolved = errors.New("outcome already resolved for this warning")

	// ErrImageCapExceeded is returned when an append would push the extra
	// image count past models.MaxExtraImages. Nothing is written.
	ErrImageCapExceeded = errors.New("extra image cap exceeded")
)

const (
	warningsCollection = "warnings"
	countersCollection = "counters"
)

// WarningService issues the warning queries used by the pipeline. All
// mutations are single filtered updates so interleaved handlers cannot lose
// writes or overwrite resolved outcomes.
type WarningService struct {
	warnings *mongo.Collection
	counters *mongo.Collection
}

// NewWarningService creates a WarningService over the given database
func NewWarningService(db *Database) *WarningService {
	return &WarningService{
		warnings: db.GetCollection(warningsCollection),
		counters: db.GetCollection(countersCollection),
	}
}

// unresolvedOutcome matches documents where an outcome field has no value yet
var unresolvedOutcome = bson.M{"$in": bson.A{nil, ""}}

// nextID assigns the next monotonic warning id from the counters document
func (s *WarningService) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": warningsCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate warning id: %w", err)
	}
	return counter.Seq, nil
}

// Create inserts a new warning, assigning its id and creation time
func (s *WarningService) Create(ctx context.Context, w *models.Warning) (*models.Warning, error) {
	id, err := s.nextID(ctx)
	if err != nil {
		return nil, err
	}

	w.ID = id
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	if w.Images == nil {
		w.Images = []models.WarningImage{}
	}
	if w.LogMessages == nil {
		w.LogMessages = []models.LogMessage{}
	}

	if _, err := s.warnings.InsertOne(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Delete removes a warning. Only the fatal DM path uses this: the record
// must not survive an unexplained notification failure.
func (s *WarningService) Delete(ctx context.Context, id int64) error {
	_, err := s.warnings.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ByID retrieves a warning by id, nil if it does not exist
func (s *WarningService) ByID(ctx context.Context, id int64) (*models.Warning, error) {
	var w models.Warning
	err := s.warnings.FindOne(ctx, bson.M{"_id": id}).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ByLogMessage finds the warning owning the given replica message id
func (s *WarningService) ByLogMessage(ctx context.Context, messageID string) (*models.Warning, error) {
	var w models.Warning
	err := s.warnings.FindOne(ctx, bson.M{"logMessages.messageId": messageID}).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// LatestForUser returns the most recent warning against a user, nil if none
func (s *WarningService) LatestForUser(ctx context.Context, userID string) (*models.Warning, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var w models.Warning
	err := s.warnings.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// LatestExternalBan returns the most recent reconciled external ban for the
// user in the guild since the given time. The reconciliation loop uses it to
// dedupe redelivered ban events.
func (s *WarningService) LatestExternalBan(ctx context.Context, userID, guildID string, since time.Time) (*models.Warning, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var w models.Warning
	err := s.warnings.FindOne(ctx, bson.M{
		"userId":    userID,
		"guildId":   guildID,
		"notified":  models.NotifiedRegularBan,
		"createdAt": bson.M{"$gte": since},
	}, opts).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// SetNotified records the notification outcome. Write-once: a warning whose
// outcome is already resolved is never overwritten.
func (s *WarningService) SetNotified(ctx context.Context, id int64, state models.NotifiedState) error {
	res, err := s.warnings.UpdateOne(ctx,
		bson.M{"_id": id, "notified": unresolvedOutcome},
		bson.M{"$set": bson.M{"notified": state}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrAlreadyResolved
	}
	return nil
}

// SetPenalised records the enforcement outcome. Write-once like SetNotified.
func (s *WarningService) SetPenalised(ctx context.Context, id int64, state models.PenalisedState) error {
	res, err := s.warnings.UpdateOne(ctx,
		bson.M{"_id": id, "penalised": unresolvedOutcome},
		bson.M{"$set": bson.M{"penalised": state}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrAlreadyResolved
	}
	return nil
}

// SetDescription updates the free-text description
func (s *WarningService) SetDescription(ctx context.Context, id int64, description string) error {
	_, err := s.warnings.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"description": description}},
	)
	return err
}

// AddLogMessage registers one replica reference. Atomic list append at the
// store layer: two interleaved fan-out sends can never lose each other's
// entry.
func (s *WarningService) AddLogMessage(ctx context.Context, id int64, lm models.LogMessage) error {
	_, err := s.warnings.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"logMessages": lm}},
	)
	return err
}

// AppendExtraImages appends uploaded image URLs as extra images. The cap is
// enforced inside the update filter on the extraImages counter, so a racing
// append can never push the count past the limit.
func (s *WarningService) AppendExtraImages(ctx context.Context, id int64, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	entries := make([]models.WarningImage, 0, len(urls))
	for _, url := range urls {
		entries = append(entries, models.WarningImage{URL: url, Extra: true})
	}

	res, err := s.warnings.UpdateOne(ctx,
		bson.M{
			"_id":         id,
			"extraImages": bson.M{"$lte": models.MaxExtraImages - len(urls)},
		},
		bson.M{
			"$push": bson.M{"images": bson.M{"$each": entries}},
			"$inc":  bson.M{"extraImages": len(urls)},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrImageCapExceeded
	}
	return nil
}

// Count returns the total number of warnings
func (s *WarningService) Count(ctx context.Context) (int64, error) {
	return s.warnings.CountDocuments(ctx, bson.M{})
}
