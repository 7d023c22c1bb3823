// Package commands provides a registry for organizing bot commands.
// Commands are organized in subdirectories by category.
package commands

import (
	"github.com/Jochem-W/lemonbot-warns-sub000/internal/commands/mod"
	"github.com/Jochem-W/lemonbot-warns-sub000/internal/warnings"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/database"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/discord"
)

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient, pipeline *warnings.Pipeline, store *database.Store) {
	// Moderation commands (/warn, /penalties)
	mod.RegisterModCommands(client, pipeline, store)
}
