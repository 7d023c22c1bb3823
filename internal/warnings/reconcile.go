package warnings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/logger"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// ErrAuditLogNotFound means a ban event arrived but the platform's audit
// log shows no matching entry after the settle delay. A platform or timing
// problem, not a normal skip.
var ErrAuditLogNotFound = errors.New("no matching audit log entry for ban")

const (
	// The audit log is eventually consistent with the ban event.
	auditLogSettleDelay = 2 * time.Second

	// Redelivered ban events within this window are treated as duplicates.
	reconcileDedupeWindow = 5 * time.Minute
)

// ReconcileExternalBan folds a ban taken outside the bot into the record
// store. Bans the bot itself applied, bans with the exempt reason prefix
// and bans already reconciled within the dedupe window are skipped.
func (p *Pipeline) ReconcileExternalBan(ctx context.Context, guildID string, target *discordgo.User) error {
	select {
	case <-time.After(auditLogSettleDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	entry, err := p.platform.BanAuditLogEntry(guildID, target.ID)
	if err != nil {
		return err
	}
	if entry == nil {
		err := fmt.Errorf("%w: user %s in guild %s", ErrAuditLogNotFound, target.ID, guildID)
		if p.reporter != nil {
			p.reporter.Report(err, guildID)
		}
		return err
	}

	if entry.ExecutorID == p.platform.BotUserID() {
		// Already recorded by the enforcement pipeline.
		return nil
	}
	if p.exemptReasonPrefix != "" && strings.HasPrefix(entry.Reason, p.exemptReasonPrefix) {
		logger.Debug(fmt.Sprintf("Ban exento omitido para %s: %q", target.ID, entry.Reason), "Reconcile")
		return nil
	}

	since := time.Now().Add(-reconcileDedupeWindow)
	existing, err := p.store.LatestExternalBan(ctx, target.ID, guildID, since)
	if err != nil {
		return err
	}
	if existing != nil {
		logger.Debug(fmt.Sprintf("Ban externo de %s ya registrado como #%d", target.ID, existing.ID), "Reconcile")
		return nil
	}

	penalty, err := p.store.HiddenBanPenalty(ctx)
	if err != nil {
		return err
	}

	w := &models.Warning{
		CreatedBy:   entry.ExecutorID,
		UserID:      target.ID,
		GuildID:     guildID,
		Description: entry.Reason,
		Silent:      true,
		Penalty:     *penalty,
		Notified:    models.NotifiedRegularBan,
		Penalised:   models.PenalisedApplied,
	}

	w, err = p.store.CreateWarning(ctx, w)
	if err != nil {
		return err
	}

	if _, err := p.Publish(ctx, w); err != nil {
		return err
	}

	if p.publisher != nil {
		p.publisher.PublishWarning(w)
	}

	logger.Audit(fmt.Sprintf("Ban externo registrado como advertencia #%d (%s en %s)", w.ID, target.Username, guildID), "Reconcile")
	return nil
}
