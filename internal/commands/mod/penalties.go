// Package mod - /penalties command
package mod

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/database"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/discord"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// createPenaltiesCommand creates the /penalties command
func createPenaltiesCommand(store *database.Store) *discord.Command {
	return discord.NewCommand(
		"penalties",
		"List the penalties available to /warn",
		"mod",
		func(ctx *discord.CommandContext) error {
			return penaltiesHandler(ctx, store)
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		AsGuildOnly()
}

// penaltiesHandler handles the /penalties command
func penaltiesHandler(ctx *discord.CommandContext, store *database.Store) error {
	reqCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	penalties, err := store.Penalties.Visible(reqCtx)
	if err != nil {
		return ctx.ReplyEphemeral("❌ Could not load the penalty list.")
	}
	if len(penalties) == 0 {
		return ctx.ReplyEphemeral("There are no penalties configured.")
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(penalties))
	for _, p := range penalties {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  p.Name,
			Value: describePenalty(p),
		})
	}

	return ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
		Title:  "⚖️ Penalties",
		Fields: fields,
		Color:  0x3498DB,
	})
}

func describePenalty(p models.Penalty) string {
	if !p.HasEnforcement() {
		return "Records the warning only"
	}

	var parts []string
	switch {
	case p.Ban:
		parts = append(parts, "Bans the user")
		if p.DeleteMessages {
			parts = append(parts, "deletes their recent messages")
		}
	case p.Kick:
		parts = append(parts, "Kicks the user")
	case p.Timeout > 0:
		parts = append(parts, fmt.Sprintf("Times the user out for %s", p.Timeout))
	}
	return strings.Join(parts, ", ")
}
