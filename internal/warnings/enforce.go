package warnings

import (
	"context"
	"fmt"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
)

// banDeleteDays is how many days of messages a deleteMessages ban purges.
const banDeleteDays = 7

// Enforce applies the warning's penalty and records the outcome. It runs
// after Notify has fully resolved.
//
// A silent warning is never enforced (NOT_NOTIFIED). Platform errors during
// ban/kick/timeout are reported to the operator and recorded as ERROR; they
// do not unwind the action.
func (p *Pipeline) Enforce(ctx context.Context, w *models.Warning, guild *models.GuildConfig) (models.PenalisedState, error) {
	state := p.resolveEnforce(w, guild)
	if err := p.store.SetPenalised(ctx, w.ID, state); err != nil {
		return "", err
	}
	return state, nil
}

func (p *Pipeline) resolveEnforce(w *models.Warning, guild *models.GuildConfig) models.PenalisedState {
	if w.Notified == models.NotifiedSilent {
		return models.PenalisedNotNotified
	}

	reason := w.Description
	if reason == "" {
		reason = fmt.Sprintf("Warning #%d", w.ID)
	}

	if w.Penalty.Ban {
		// Bans work by identity, membership is not required.
		deleteDays := 0
		if w.Penalty.DeleteMessages {
			deleteDays = banDeleteDays
		}
		if err := p.platform.Ban(guild.ID, w.UserID, reason, deleteDays); err != nil {
			p.reportEnforceError(w, guild, "ban", err)
			return models.PenalisedError
		}
		return models.PenalisedApplied
	}

	isMember, err := p.platform.IsMember(guild.ID, w.UserID)
	if err != nil {
		p.reportEnforceError(w, guild, "member lookup", err)
		return models.PenalisedError
	}
	if !isMember {
		return models.PenalisedNotInServer
	}

	switch {
	case w.Penalty.Kick:
		if err := p.platform.Kick(guild.ID, w.UserID, reason); err != nil {
			p.reportEnforceError(w, guild, "kick", err)
			return models.PenalisedError
		}
		return models.PenalisedApplied

	case w.Penalty.Timeout > 0:
		until := time.Now().Add(w.Penalty.Timeout)
		if err := p.platform.Timeout(guild.ID, w.UserID, until); err != nil {
			p.reportEnforceError(w, guild, "timeout", err)
			return models.PenalisedError
		}
		return models.PenalisedApplied

	default:
		return models.PenalisedNoPenalty
	}
}

func (p *Pipeline) reportEnforceError(w *models.Warning, guild *models.GuildConfig, action string, err error) {
	if p.reporter != nil {
		p.reporter.Report(fmt.Errorf("warning #%d: %s of %s failed: %w", w.ID, action, w.UserID, err), guild.ID)
	}
}
