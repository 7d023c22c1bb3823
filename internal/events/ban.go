package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/internal/warnings"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/discord"
	boterrors "github.com/Jochem-W/lemonbot-warns-sub000/pkg/errors"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterModerationEvents registers guild moderation event handlers
func RegisterModerationEvents(client *discord.ExtendedClient, pipeline *warnings.Pipeline) {
	client.Session.AddHandler(func(s *discordgo.Session, b *discordgo.GuildBanAdd) {
		onGuildBanAdd(pipeline, b)
	})
}

// onGuildBanAdd reconciles bans issued outside the bot into warning records.
// Reconciliation waits for the audit log to settle, so it runs off the
// gateway dispatch path.
func onGuildBanAdd(pipeline *warnings.Pipeline, b *discordgo.GuildBanAdd) {
	if b.User == nil {
		return
	}

	go func() {
		defer boterrors.RecoverMiddleware()()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		err := pipeline.ReconcileExternalBan(ctx, b.GuildID, b.User)
		if err != nil && !errors.Is(err, warnings.ErrAuditLogNotFound) {
			logger.Error(fmt.Sprintf("Error reconciliando ban externo de %s en %s: %v", b.User.ID, b.GuildID, err), "Moderation")
		}
	}()
}
