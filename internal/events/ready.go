package events

import (
	"context"
	"fmt"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/database"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/discord"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterReadyEvent registers the ready event handler
func RegisterReadyEvent(client *discord.ExtendedClient, store *database.Store) {
	client.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		onReady(s, r, store)
	})
}

// onReady is called when the bot successfully connects to Discord
func onReady(s *discordgo.Session, r *discordgo.Ready, store *database.Store) {
	logger.Success(fmt.Sprintf("✅ Bot conectado: %s#%s", r.User.Username, r.User.Discriminator), "Ready")
	logger.Info(fmt.Sprintf("📊 Conectado a %d servidores", len(r.Guilds)), "Ready")

	if err := s.UpdateGameStatus(0, "/warn"); err != nil {
		logger.Error(fmt.Sprintf("Error estableciendo estado: %v", err), "Ready")
	}

	sendRestartNotices(s, store)
}

// sendRestartNotices tells each watched guild's restart channel that the bot
// came back up. Misconfigured or missing channels are skipped.
func sendRestartNotices(s *discordgo.Session, store *database.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	guilds, err := store.Guilds(ctx)
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudieron cargar las configuraciones de servidores: %v", err), "Ready")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:     "🔄 Bot restarted",
		Color:     0x3498db,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	for _, guild := range guilds {
		if guild.RestartChannel == "" {
			continue
		}
		if _, err := s.ChannelMessageSendEmbed(guild.RestartChannel, embed); err != nil {
			logger.Warn(fmt.Sprintf("No se pudo enviar aviso de reinicio a %s: %v", guild.ID, err), "Ready")
		}
	}
}
