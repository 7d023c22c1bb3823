package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func newTestHandler(devGuildID string, guildScoped bool) *CommandHandler {
	return &CommandHandler{
		client:           &ExtendedClient{Commands: NewCommandCollection()},
		slashCommands:    make([]*discordgo.ApplicationCommand, 0),
		slashCommandsDev: make([]*discordgo.ApplicationCommand, 0),
		devGuildID:       devGuildID,
		guildScoped:      guildScoped,
	}
}

func TestRegisterCommandGlobal(t *testing.T) {
	ch := newTestHandler("", false)

	ch.RegisterCommand(NewCommand("warn", "Warn a user", "mod", nil))

	if len(ch.slashCommands) != 1 {
		t.Errorf("global commands = %d, want 1", len(ch.slashCommands))
	}
	if len(ch.slashCommandsDev) != 0 {
		t.Errorf("dev commands = %d, want 0", len(ch.slashCommandsDev))
	}
	if _, ok := ch.client.Commands.Get("warn"); !ok {
		t.Error("Expected the command to be routable by name")
	}
}

func TestRegisterCommandGuildScopedOutsideProduction(t *testing.T) {
	ch := newTestHandler("guild-dev", true)

	ch.RegisterCommand(NewCommand("warn", "Warn a user", "mod", nil))
	ch.RegisterCommand(NewCommand("penalties", "List penalties", "mod", nil))

	if len(ch.slashCommands) != 0 {
		t.Errorf("global commands = %d, want 0", len(ch.slashCommands))
	}
	if len(ch.slashCommandsDev) != 2 {
		t.Errorf("dev commands = %d, want 2", len(ch.slashCommandsDev))
	}
	if _, ok := ch.client.Commands.Get("penalties"); !ok {
		t.Error("Expected guild-scoped commands to stay routable by name")
	}
}

func TestRegisterDevCommand(t *testing.T) {
	ch := newTestHandler("guild-dev", false)

	ch.RegisterDevCommand(NewCommand("warn", "Warn a user", "mod", nil))

	if len(ch.slashCommandsDev) != 1 {
		t.Errorf("dev commands = %d, want 1", len(ch.slashCommandsDev))
	}
	if len(ch.slashCommands) != 0 {
		t.Errorf("global commands = %d, want 0", len(ch.slashCommands))
	}
}
