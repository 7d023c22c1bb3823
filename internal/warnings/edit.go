package warnings

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/logger"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// SetDescription updates a warning's description and pushes the new
// rendering to every stored log replica.
func (p *Pipeline) SetDescription(ctx context.Context, warningID int64, description string) error {
	if err := p.store.SetDescription(ctx, warningID, description); err != nil {
		return err
	}

	w, err := p.store.WarningByID(ctx, warningID)
	if err != nil {
		return err
	}
	if w == nil {
		return fmt.Errorf("warning #%d no longer exists", warningID)
	}

	return p.rerenderReplicas(w)
}

// AppendImages matches reply attachments back to a warning and appends them
// as extra images.
//
// The cap is checked up front for an exact overflow count and enforced again
// inside the store's conditional append, so racing appends still cannot
// exceed it. On overflow nothing is written and the overflow count is
// returned; callers surface it verbatim ("N too many").
func (p *Pipeline) AppendImages(ctx context.Context, w *models.Warning, attachments []*discordgo.MessageAttachment) (int, error) {
	if len(attachments) == 0 {
		return 0, nil
	}

	if overflow := w.ExtraImages + len(attachments) - models.MaxExtraImages; overflow > 0 {
		return overflow, nil
	}

	urls := make([]string, 0, len(attachments))
	for _, att := range attachments {
		url, err := p.uploadAttachment(ctx, att)
		if err != nil {
			return 0, fmt.Errorf("failed to store image for warning #%d: %w", w.ID, err)
		}
		urls = append(urls, url)
	}

	err := p.store.AppendExtraImages(ctx, w.ID, urls)
	if errors.Is(err, ErrImageCapExceeded) {
		// Lost a race with a concurrent append; re-read for the exact count.
		current, readErr := p.store.WarningByID(ctx, w.ID)
		if readErr != nil || current == nil {
			return len(attachments), nil
		}
		return current.ExtraImages + len(attachments) - models.MaxExtraImages, nil
	}
	if err != nil {
		return 0, err
	}

	updated, err := p.store.WarningByID(ctx, w.ID)
	if err != nil {
		return 0, err
	}
	if updated == nil {
		return 0, fmt.Errorf("warning #%d no longer exists", w.ID)
	}

	return 0, p.rerenderReplicas(updated)
}

// rerenderReplicas renders the warning once and edits every stored replica
// in place. Per-replica failures are reported and do not stop the rest.
func (p *Pipeline) rerenderReplicas(w *models.Warning) error {
	rc, err := p.renderContext(w)
	if err != nil {
		return err
	}
	rendered := RenderLog(w, rc)

	var failures []error
	for _, lm := range w.LogMessages {
		if err := p.platform.EditMessage(lm.ChannelID, lm.MessageID, rendered.Embeds, rendered.Components); err != nil {
			failures = append(failures, fmt.Errorf("message %s in guild %s: %w", lm.MessageID, lm.GuildID, err))
		}
	}

	for _, failure := range failures {
		logger.Error(fmt.Sprintf("Fallo actualizando réplica de advertencia #%d: %v", w.ID, failure), "Warnings")
		if p.reporter != nil {
			p.reporter.Report(fmt.Errorf("warning #%d replica edit: %w", w.ID, failure), w.GuildID)
		}
	}

	return nil
}
