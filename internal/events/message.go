package events

import (
	"context"
	"fmt"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/internal/warnings"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/database"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/discord"
	boterrors "github.com/Jochem-W/lemonbot-warns-sub000/pkg/errors"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/logger"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// How long the append confirmation stays before deleting itself.
const confirmationLifetime = 2500 * time.Millisecond

// RegisterMessageEvents registers all message-related event handlers
func RegisterMessageEvents(client *discord.ExtendedClient, pipeline *warnings.Pipeline, store *database.Store) {
	client.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		onMessageCreate(s, m, pipeline, store)
	})
}

// onMessageCreate appends images to a warning when someone replies to one of
// its log messages with image attachments. Replies to anything else are
// ignored.
func onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate, pipeline *warnings.Pipeline, store *database.Store) {
	defer boterrors.RecoverMiddleware()()

	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.MessageReference == nil || m.MessageReference.MessageID == "" {
		return
	}

	images := imageAttachments(m.Attachments)
	if len(images) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	w, err := store.WarningByLogMessage(ctx, m.MessageReference.MessageID)
	if err != nil {
		reportMessageError(err, m.GuildID)
		return
	}
	if w == nil {
		// Not a reply to one of our log messages
		return
	}

	overflow, err := pipeline.AppendImages(ctx, w, images)
	if overflow > 0 {
		reply := fmt.Sprintf("❌ That's %d image(s) too many. A warning can hold at most %d extra images.",
			overflow, models.MaxExtraImages)
		if _, sendErr := s.ChannelMessageSendReply(m.ChannelID, reply, m.Reference()); sendErr != nil {
			logger.Warn(fmt.Sprintf("No se pudo responder al límite de imágenes: %v", sendErr), "Message")
		}
		return
	}
	if err != nil {
		reportMessageError(err, m.GuildID)
		return
	}

	sendTransientConfirmation(s, m, fmt.Sprintf("📷 Added %d image(s) to warning #%d.", len(images), w.ID))
}

// sendTransientConfirmation posts a short reply that deletes itself. Purely
// a courtesy, so failures only get logged.
func sendTransientConfirmation(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	sent, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference())
	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudo enviar la confirmación: %v", err), "Message")
		return
	}

	time.AfterFunc(confirmationLifetime, func() {
		if err := s.ChannelMessageDelete(sent.ChannelID, sent.ID); err != nil {
			logger.Debug(fmt.Sprintf("No se pudo borrar la confirmación: %v", err), "Message")
		}
	})
}

func imageAttachments(attachments []*discordgo.MessageAttachment) []*discordgo.MessageAttachment {
	var images []*discordgo.MessageAttachment
	for _, att := range attachments {
		if warnings.IsImageAttachment(att) {
			images = append(images, att)
		}
	}
	return images
}

func reportMessageError(err error, guildID string) {
	if handler := boterrors.Get(); handler != nil {
		handler.Report(err, guildID)
	}
	logger.Error(fmt.Sprintf("Error procesando imágenes adjuntas: %v", err), "Message")
}
