// Package discord provides the command handler for loading and registering commands.
package discord

import (
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/config"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// CommandHandler manages command loading and registration
type CommandHandler struct {
	client           *ExtendedClient
	slashCommands    []*discordgo.ApplicationCommand
	slashCommandsDev []*discordgo.ApplicationCommand

	// Outside production every command registers against the dev guild
	// instead of globally; guild commands propagate instantly, global ones
	// take up to an hour.
	devGuildID  string
	guildScoped bool
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(client *ExtendedClient) *CommandHandler {
	cfg := config.Get()
	return &CommandHandler{
		client:           client,
		slashCommands:    make([]*discordgo.ApplicationCommand, 0),
		slashCommandsDev: make([]*discordgo.ApplicationCommand, 0),
		devGuildID:       cfg.DevGuildID,
		guildScoped:      !cfg.IsProd() && cfg.DevGuildID != "",
	}
}

// RegisterCommand adds a command to the handler
func (ch *CommandHandler) RegisterCommand(cmd *Command) {
	if ch.guildScoped {
		ch.RegisterDevCommand(cmd)
		return
	}
	ch.client.Commands.Set(cmd.Name, cmd)
	ch.slashCommands = append(ch.slashCommands, cmd.ToApplicationCommand())
	logger.Debug("Comando registrado: "+cmd.Name, "CommandHandler")
}

// RegisterDevCommand adds a dev-guild-only command to the handler
func (ch *CommandHandler) RegisterDevCommand(cmd *Command) {
	ch.client.Commands.Set(cmd.Name, cmd)
	ch.slashCommandsDev = append(ch.slashCommandsDev, cmd.ToApplicationCommand())
	logger.Debug("Comando de desarrollo registrado: "+cmd.Name, "CommandHandler")
}

// RegisterCommands registers all slash commands with Discord
func (ch *CommandHandler) RegisterCommands() {
	if len(ch.slashCommands) > 0 {
		logger.Info("🔄 Registrando comandos globales...", "CommandHandler")

		for _, cmd := range ch.slashCommands {
			_, err := ch.client.Session.ApplicationCommandCreate(
				ch.client.Session.State.User.ID,
				"",
				cmd,
			)
			if err != nil {
				logger.Error("Error registrando comando "+cmd.Name+": "+err.Error(), "CommandHandler")
			}
		}

		logger.Success("✅ Comandos globales registrados.", "CommandHandler")
	}

	if ch.devGuildID != "" && len(ch.slashCommandsDev) > 0 {
		if ch.guildScoped {
			// A previous production run may have left global registrations
			// behind; they would show as duplicates next to the guild ones.
			if err := ch.UnregisterCommands(); err != nil {
				logger.Error("Error eliminando comandos globales: "+err.Error(), "CommandHandler")
			}
		}

		logger.Info("🔄 Registrando comandos de desarrollo en el servidor "+ch.devGuildID+"...", "CommandHandler")

		for _, cmd := range ch.slashCommandsDev {
			_, err := ch.client.Session.ApplicationCommandCreate(
				ch.client.Session.State.User.ID,
				ch.devGuildID,
				cmd,
			)
			if err != nil {
				logger.Error("Error registrando comando de desarrollo "+cmd.Name+": "+err.Error(), "CommandHandler")
			}
		}

		logger.Success("✅ Comandos de desarrollo registrados.", "CommandHandler")
	}
}

// UnregisterCommands removes all globally registered commands from Discord
func (ch *CommandHandler) UnregisterCommands() error {
	commands, err := ch.client.Session.ApplicationCommands(ch.client.Session.State.User.ID, "")
	if err != nil {
		return err
	}

	for _, cmd := range commands {
		err := ch.client.Session.ApplicationCommandDelete(ch.client.Session.State.User.ID, "", cmd.ID)
		if err != nil {
			logger.Error("Error eliminando comando "+cmd.Name+": "+err.Error(), "CommandHandler")
		}
	}

	logger.Success("Comandos globales eliminados.", "CommandHandler")
	return nil
}
