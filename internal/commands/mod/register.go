// Package mod provides the moderation command surface.
// Each command is in its own file for better organization
package mod

import (
	"github.com/Jochem-W/lemonbot-warns-sub000/internal/warnings"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/database"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/discord"
)

// RegisterModCommands registers all moderation commands
func RegisterModCommands(client *discord.ExtendedClient, pipeline *warnings.Pipeline, store *database.Store) {
	client.CommandHandler.RegisterCommand(createWarnCommand(pipeline, store))
	client.CommandHandler.RegisterCommand(createPenaltiesCommand(store))
}
