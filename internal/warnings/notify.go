package warnings

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/discord"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/logger"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// DismissButtonName is the registration name of the fallback channel's
// dismiss button handler.
const DismissButtonName = "dismiss"

// Notify resolves the notification outcome for a warning and records it.
//
// Terminal states: SILENT (moderator opted out), NOT_IN_SERVER, DM,
// DMS_DISABLED (only when the penalty is a ban), CHANNEL. Any unexpected DM
// failure is fatal: the warning record is deleted and the error returned, so
// no unnotified, unexplained record is left behind.
func (p *Pipeline) Notify(ctx context.Context, w *models.Warning, target *discordgo.User, guild *models.GuildConfig) (models.NotifiedState, error) {
	state, err := p.resolveNotify(ctx, w, target, guild)
	if err != nil {
		if deleteErr := p.store.DeleteWarning(ctx, w.ID); deleteErr != nil {
			logger.Error(fmt.Sprintf("No se pudo eliminar la advertencia #%d tras un fallo de notificación: %v", w.ID, deleteErr), "Warnings")
		}
		return "", fmt.Errorf("failed to notify %s for warning #%d: %w", target.ID, w.ID, err)
	}

	if err := p.store.SetNotified(ctx, w.ID, state); err != nil {
		return "", err
	}
	return state, nil
}

func (p *Pipeline) resolveNotify(ctx context.Context, w *models.Warning, target *discordgo.User, guild *models.GuildConfig) (models.NotifiedState, error) {
	if w.Silent {
		return models.NotifiedSilent, nil
	}

	isMember, err := p.platform.IsMember(guild.ID, target.ID)
	if err != nil {
		return "", err
	}
	if !isMember {
		return models.NotifiedNotInServer, nil
	}

	notice := p.renderNotice(w, guild)

	err = p.platform.SendDM(target.ID, notice)
	if err == nil {
		return models.NotifiedDM, nil
	}
	if !errors.Is(err, ErrDMsDisabled) {
		return "", err
	}

	// DMs closed. A user about to be banned gets no fallback channel: they
	// are being removed anyway.
	if w.Penalty.Ban {
		return models.NotifiedDMsDisabled, nil
	}

	channelID, err := p.platform.CreateFallbackChannel(guild, target)
	if err != nil {
		return "", err
	}

	notice.Components = []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label: "Dismiss",
					Style: discordgo.SecondaryButton,
					CustomID: discord.NewCustomID(discord.ScopeButton, DismissButtonName,
						channelID, target.ID).MustEncode(),
				},
			},
		},
	}

	if _, err := p.platform.SendMessage(channelID, notice); err != nil {
		return "", err
	}

	return models.NotifiedChannel, nil
}

// renderNotice builds the message delivered to the warned user
func (p *Pipeline) renderNotice(w *models.Warning, guild *models.GuildConfig) *discordgo.MessageSend {
	guildName := p.platform.GuildName(guild.ID)

	title := fmt.Sprintf("You have been %s in %s", w.Verb(), guildName)
	embed := &discordgo.MessageEmbed{
		Title:     title,
		Color:     0xFFC01E,
		Timestamp: w.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if w.Description != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Reason",
			Value: w.Description,
		})
	}
	if w.Penalty.Timeout > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Timeout",
			Value: w.Penalty.Timeout.String(),
		})
	}
	if len(w.Images) > 0 {
		embed.Image = &discordgo.MessageEmbedImage{URL: w.Images[0].URL}
	}

	return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}
}
