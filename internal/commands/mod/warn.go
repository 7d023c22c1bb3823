// Package mod - /warn command
package mod

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/internal/warnings"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/database"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/discord"
	boterrors "github.com/Jochem-W/lemonbot-warns-sub000/pkg/errors"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// createWarnCommand creates the /warn command
func createWarnCommand(pipeline *warnings.Pipeline, store *database.Store) *discord.Command {
	return discord.NewCommand(
		"warn",
		"Warn a user and apply the selected penalty",
		"mod",
		func(ctx *discord.CommandContext) error {
			return warnHandler(ctx, pipeline, store)
		},
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to warn",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "penalty",
			Description:  "Penalty to apply",
			Required:     true,
			Autocomplete: true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Why the user is being warned",
			Required:    false,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "silent",
			Description: "Record the warning without notifying the user",
			Required:    false,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionAttachment,
			Name:        "image",
			Description: "Image evidence to attach",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithBotPermissions(discordgo.PermissionBanMembers | discordgo.PermissionModerateMembers).
		AsGuildOnly().
		WithAutoComplete(func(ctx *discord.CommandContext) {
			penaltyAutoComplete(ctx, store)
		})
}

// warnHandler handles the /warn command
func warnHandler(ctx *discord.CommandContext, pipeline *warnings.Pipeline, store *database.Store) error {
	target := ctx.GetUserOption("user")
	if target == nil {
		return ctx.ReplyEphemeral("❌ You must specify a user.")
	}
	if target.ID == ctx.Session.State.User.ID {
		return ctx.ReplyEphemeral("❌ I cannot warn myself.")
	}
	if target.Bot {
		return ctx.ReplyEphemeral("❌ Bots cannot be warned.")
	}
	if target.ID == ctx.User().ID {
		return ctx.ReplyEphemeral("❌ You cannot warn yourself.")
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	penaltyName := ctx.GetStringOption("penalty")
	penalty, err := store.Penalties.ByName(reqCtx, penaltyName)
	if err != nil {
		return reportWarnError(ctx, err)
	}
	if penalty == nil || penalty.Hidden {
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ Unknown penalty: **%s**", penaltyName))
	}

	attachment := ctx.GetAttachmentOption("image")
	if attachment != nil && !warnings.IsImageAttachment(attachment) {
		return ctx.ReplyEphemeral("❌ The attachment must be an image.")
	}

	guild, err := store.Guild(reqCtx, ctx.Interaction.GuildID)
	if err != nil {
		return reportWarnError(ctx, err)
	}
	if guild == nil {
		return ctx.ReplyEphemeral("❌ This server is not configured for warnings.")
	}

	// Fetched before the new record exists; enriches the summary only, so a
	// query failure never blocks the warn.
	previous, err := store.Warnings.LatestForUser(reqCtx, target.ID)
	if err != nil {
		previous = nil
	}

	// Replies stay visible in configured private channels, ephemeral elsewhere
	if guild.IsPrivateChannel(ctx.Interaction.ChannelID) {
		err = ctx.Defer()
	} else {
		err = ctx.DeferEphemeral()
	}
	if err != nil {
		return err
	}

	w, err := pipeline.Execute(reqCtx, warnings.WarnInput{
		GuildID:     ctx.Interaction.GuildID,
		Target:      target,
		Moderator:   ctx.User(),
		Penalty:     *penalty,
		Description: ctx.GetStringOption("reason"),
		Silent:      ctx.GetBoolOption("silent"),
		Attachment:  attachment,
	})
	if err != nil {
		if handler := boterrors.Get(); handler != nil {
			handler.Report(err, ctx.Interaction.GuildID)
		}
		return ctx.EditReply("❌ The warning could not be processed.")
	}

	return ctx.EditReplyEmbed(warnSummary(w, target, previous))
}

// reportWarnError surfaces an internal failure before the reply is deferred
func reportWarnError(ctx *discord.CommandContext, err error) error {
	if handler := boterrors.Get(); handler != nil {
		handler.Report(err, ctx.Interaction.GuildID)
	}
	return ctx.ReplyEphemeral("❌ The warning could not be processed.")
}

// warnSummary renders the moderator-facing result of a processed warning.
// previous is the target's latest warning before this one, nil when this is
// their first.
func warnSummary(w *models.Warning, target *discordgo.User, previous *models.Warning) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("✅ %s %s", target.Username, w.Verb()),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Notification", Value: notifiedSummary(w.Notified), Inline: true},
			{Name: "Penalty", Value: penalisedSummary(w), Inline: true},
		},
		Color: 0x2ECC71,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Warning #%d", w.ID),
		},
		Timestamp: w.CreatedAt.Format(time.RFC3339),
	}
	if previous != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Previous warning",
			Value: fmt.Sprintf("#%d (%s), <t:%d:R>", previous.ID, previous.Penalty.Name, previous.CreatedAt.Unix()),
		})
	}
	return embed
}

func notifiedSummary(state models.NotifiedState) string {
	switch state {
	case models.NotifiedSilent:
		return "Skipped (silent)"
	case models.NotifiedDM:
		return "Sent by DM"
	case models.NotifiedChannel:
		return "Posted in a private channel"
	case models.NotifiedDMsDisabled:
		return "Not notified, DMs disabled"
	case models.NotifiedNotInServer:
		return "Not notified, user left"
	default:
		return string(state)
	}
}

func penalisedSummary(w *models.Warning) string {
	switch w.Penalised {
	case models.PenalisedApplied:
		return fmt.Sprintf("%s applied", w.Penalty.Name)
	case models.PenalisedNoPenalty:
		return "None"
	case models.PenalisedNotNotified:
		return "Skipped (silent)"
	case models.PenalisedNotInServer:
		return "Not applied, user left"
	case models.PenalisedError:
		return "Failed, see the error channel"
	default:
		return string(w.Penalised)
	}
}

// penaltyAutoComplete suggests visible penalty names matching the typed
// prefix
func penaltyAutoComplete(ctx *discord.CommandContext, store *database.Store) {
	reqCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	penalties, err := store.Penalties.Visible(reqCtx)
	if err != nil {
		return
	}

	typed := strings.ToLower(ctx.GetStringOption("penalty"))

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(penalties))
	for _, p := range penalties {
		if typed != "" && !strings.Contains(strings.ToLower(p.Name), typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  p.Name,
			Value: p.Name,
		})
		// Discord caps autocomplete at 25 choices
		if len(choices) == 25 {
			break
		}
	}

	_ = ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
}
