package warnings

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/discord"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// EditDescriptionButtonName is the registration name of the inline edit
// control attached to log entries without a description.
const EditDescriptionButtonName = "editDescription"

// RenderContext carries the display names the log rendering needs. It is
// resolved once per render so RenderLog itself stays pure.
type RenderContext struct {
	ModeratorName string
	TargetName    string
	GuildName     string
}

// RenderedLog is one rendered log representation. Every replica of a
// warning carries an identical copy.
type RenderedLog struct {
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
}

// RenderLog renders a warning's log entry. Pure and deterministic given the
// warning and its render context: publish and every later edit call it and
// push the result to all replicas.
func RenderLog(w *models.Warning, rc RenderContext) RenderedLog {
	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: fmt.Sprintf("%s %s %s", rc.ModeratorName, w.Verb(), rc.TargetName),
		},
		Color:     logColour(w),
		Timestamp: w.CreatedAt.UTC().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Warning #%d", w.ID),
		},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("<@%s>", w.UserID), Inline: true},
			{Name: "Server", Value: rc.GuildName, Inline: true},
		},
	}

	if w.Penalty.Timeout > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Timeout", Value: w.Penalty.Timeout.String(), Inline: true,
		})
	}

	if w.Description != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Reason", Value: w.Description,
		})
	}

	if errs := outcomeErrors(w); len(errs) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Errors",
			Value: strings.Join(errs, "\n"),
		})
	}

	embeds := []*discordgo.MessageEmbed{embed}
	if len(w.Images) > 0 {
		embed.Image = &discordgo.MessageEmbedImage{URL: w.Images[0].URL}
		for _, img := range w.Images[1:] {
			embeds = append(embeds, &discordgo.MessageEmbed{
				Image: &discordgo.MessageEmbedImage{URL: img.URL},
				Color: embed.Color,
			})
		}
	}

	var components []discordgo.MessageComponent
	if w.Description == "" {
		components = append(components, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label: "Edit description",
					Style: discordgo.PrimaryButton,
					CustomID: discord.NewCustomID(discord.ScopeButton, EditDescriptionButtonName,
						strconv.FormatInt(w.ID, 10)).MustEncode(),
				},
			},
		})
	}

	return RenderedLog{Embeds: embeds, Components: components}
}

// outcomeErrors lists every non-ideal terminal outcome in fixed phrasing
func outcomeErrors(w *models.Warning) []string {
	var errs []string

	switch w.Notified {
	case models.NotifiedNotInServer:
		errs = append(errs, "Could not notify the user: not in the server")
	case models.NotifiedDMsDisabled:
		errs = append(errs, "Could not notify the user: direct messages are disabled")
	}

	switch w.Penalised {
	case models.PenalisedNotInServer:
		errs = append(errs, "Could not apply the penalty: the user is not in the server")
	case models.PenalisedError:
		errs = append(errs, "The penalty could not be applied")
	}

	return errs
}

func logColour(w *models.Warning) int {
	switch {
	case w.Penalty.Ban:
		return 0xED4245
	case w.Penalty.Kick, w.Penalty.Timeout > 0:
		return 0xE67E22
	default:
		return 0xFFC01E
	}
}
