package database

import (
	"context"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
)

// Store bundles the moderation services behind a single surface so
// consumers depend on one value instead of three.
type Store struct {
	Warnings  *WarningService
	Penalties *PenaltyService
	GuildCfgs *GuildService
}

// NewStore builds a Store over the shared connection
func NewStore(db *Database) *Store {
	return &Store{
		Warnings:  NewWarningService(db),
		Penalties: NewPenaltyService(db),
		GuildCfgs: NewGuildService(db),
	}
}

func (s *Store) CreateWarning(ctx context.Context, w *models.Warning) (*models.Warning, error) {
	return s.Warnings.Create(ctx, w)
}

func (s *Store) DeleteWarning(ctx context.Context, id int64) error {
	return s.Warnings.Delete(ctx, id)
}

func (s *Store) WarningByID(ctx context.Context, id int64) (*models.Warning, error) {
	return s.Warnings.ByID(ctx, id)
}

func (s *Store) WarningByLogMessage(ctx context.Context, messageID string) (*models.Warning, error) {
	return s.Warnings.ByLogMessage(ctx, messageID)
}

func (s *Store) LatestExternalBan(ctx context.Context, userID, guildID string, since time.Time) (*models.Warning, error) {
	return s.Warnings.LatestExternalBan(ctx, userID, guildID, since)
}

func (s *Store) SetNotified(ctx context.Context, id int64, state models.NotifiedState) error {
	return s.Warnings.SetNotified(ctx, id, state)
}

func (s *Store) SetPenalised(ctx context.Context, id int64, state models.PenalisedState) error {
	return s.Warnings.SetPenalised(ctx, id, state)
}

func (s *Store) SetDescription(ctx context.Context, id int64, description string) error {
	return s.Warnings.SetDescription(ctx, id, description)
}

func (s *Store) AddLogMessage(ctx context.Context, id int64, lm models.LogMessage) error {
	return s.Warnings.AddLogMessage(ctx, id, lm)
}

func (s *Store) AppendExtraImages(ctx context.Context, id int64, urls []string) error {
	return s.Warnings.AppendExtraImages(ctx, id, urls)
}

func (s *Store) Guilds(ctx context.Context) ([]*models.GuildConfig, error) {
	return s.GuildCfgs.All(ctx)
}

func (s *Store) Guild(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	return s.GuildCfgs.ByID(ctx, guildID)
}

func (s *Store) HiddenBanPenalty(ctx context.Context) (*models.Penalty, error) {
	return s.Penalties.HiddenBan(ctx)
}
