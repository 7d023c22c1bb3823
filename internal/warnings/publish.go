package warnings

import (
	"context"
	"fmt"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/logger"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// Publish renders a warning once and fans the rendering out: the main
// replica to the originating guild's log channel, one secondary replica per
// other watched guild where the target is currently a member. Each replica
// reference is registered as it succeeds; a failed secondary send is
// reported and never blocks the remaining sends.
func (p *Pipeline) Publish(ctx context.Context, w *models.Warning) (*models.Warning, error) {
	rc, err := p.renderContext(w)
	if err != nil {
		return nil, err
	}
	rendered := RenderLog(w, rc)

	guilds, err := p.store.Guilds(ctx)
	if err != nil {
		return nil, err
	}

	var origin *models.GuildConfig
	for _, g := range guilds {
		if g.ID == w.GuildID {
			origin = g
			break
		}
	}
	if origin == nil {
		return nil, fmt.Errorf("originating guild %s is not configured", w.GuildID)
	}

	// The main replica has to exist before any secondary copy.
	if err := p.sendReplica(ctx, w, origin, rendered, true); err != nil {
		return nil, fmt.Errorf("failed to publish main log entry for warning #%d: %w", w.ID, err)
	}

	var failures []error
	for _, g := range guilds {
		if g.ID == w.GuildID {
			continue
		}

		isMember, err := p.platform.IsMember(g.ID, w.UserID)
		if err != nil {
			failures = append(failures, fmt.Errorf("guild %s: %w", g.ID, err))
			continue
		}
		if !isMember {
			continue
		}

		if err := p.sendReplica(ctx, w, g, rendered, false); err != nil {
			failures = append(failures, fmt.Errorf("guild %s: %w", g.ID, err))
		}
	}

	for _, failure := range failures {
		logger.Error(fmt.Sprintf("Fallo replicando advertencia #%d: %v", w.ID, failure), "Warnings")
		if p.reporter != nil {
			p.reporter.Report(fmt.Errorf("warning #%d replication: %w", w.ID, failure), w.GuildID)
		}
	}

	// Failures were reported above; the published warning stands.
	return w, nil
}

// sendReplica delivers one rendered copy and registers its reference
func (p *Pipeline) sendReplica(ctx context.Context, w *models.Warning, guild *models.GuildConfig, rendered RenderedLog, main bool) error {
	messageID, err := p.platform.SendMessage(guild.WarnLogsChannel, &discordgo.MessageSend{
		Embeds:     rendered.Embeds,
		Components: rendered.Components,
	})
	if err != nil {
		return err
	}

	lm := models.LogMessage{
		GuildID:   guild.ID,
		ChannelID: guild.WarnLogsChannel,
		MessageID: messageID,
		Main:      main,
	}
	if err := p.store.AddLogMessage(ctx, w.ID, lm); err != nil {
		return err
	}

	w.LogMessages = append(w.LogMessages, lm)
	return nil
}

// renderContext resolves the display names a rendering needs
func (p *Pipeline) renderContext(w *models.Warning) (RenderContext, error) {
	moderatorName := w.CreatedBy
	if moderator, err := p.platform.User(w.CreatedBy); err == nil && moderator != nil {
		moderatorName = moderator.Username
	}

	target, err := p.platform.User(w.UserID)
	if err != nil {
		return RenderContext{}, fmt.Errorf("failed to resolve target %s: %w", w.UserID, err)
	}

	return RenderContext{
		ModeratorName: moderatorName,
		TargetName:    target.Username,
		GuildName:     p.platform.GuildName(w.GuildID),
	}, nil
}
