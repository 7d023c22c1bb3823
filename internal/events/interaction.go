package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/internal/warnings"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/database"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/discord"
	boterrors "github.com/Jochem-W/lemonbot-warns-sub000/pkg/errors"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterInteractionEvents registers the component handlers and the gateway
// listener that routes clicks and modal submits to them.
func RegisterInteractionEvents(client *discord.ExtendedClient, pipeline *warnings.Pipeline, store *database.Store) {
	registerDismissHandler(client)
	registerEditDescriptionHandlers(client, pipeline)

	client.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		onComponentInteraction(client, s, i)
	})
}

// onComponentInteraction routes buttons and modal submits through the
// component registry. A raw id that does not parse belongs to someone else's
// component and is dropped; a parsed id without a handler is an internal
// inconsistency and gets reported.
func onComponentInteraction(client *discord.ExtendedClient, s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer boterrors.RecoverMiddleware()()

	var raw string
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		raw = i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		raw = i.ModalSubmitData().CustomID
	default:
		return
	}

	err := client.Components.Dispatch(s, i, raw)
	if err == nil {
		return
	}

	if errors.Is(err, discord.ErrInvalidCustomID) {
		logger.Debug(fmt.Sprintf("Componente ignorado: %s", raw), "Interaction")
		return
	}

	if handler := boterrors.Get(); handler != nil {
		handler.Report(err, i.GuildID)
	}
	logger.Error(fmt.Sprintf("Error manejando componente %s: %v", raw, err), "Interaction")

	respErr := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "❌ Something went wrong while handling this interaction.",
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if respErr != nil {
		logger.Debug(fmt.Sprintf("No se pudo responder al componente fallido: %v", respErr), "Interaction")
	}
}

// registerDismissHandler handles the Dismiss button on fallback notice
// channels. The channel id and the warned user's id travel in the token, so
// a click keeps working after a restart.
func registerDismissHandler(client *discord.ExtendedClient) {
	client.Components.Register(discord.ScopeButton, warnings.DismissButtonName, func(ctx *discord.ComponentContext) error {
		channelID := ctx.ID.Secondary
		if len(ctx.ID.Tertiary) == 0 {
			return fmt.Errorf("%w: dismiss token is missing the target user", discord.ErrInvalidCustomID)
		}
		targetID := ctx.ID.Tertiary[0]

		if ctx.User().ID != targetID {
			return ctx.ReplyEphemeral("❌ Only the warned user can dismiss this notice.")
		}

		if err := ctx.Respond(&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		}); err != nil {
			return err
		}

		_, err := ctx.Session.ChannelDelete(channelID)
		return err
	})
}

// registerEditDescriptionHandlers handles the Edit description button on log
// messages and the modal it opens. The warning id travels in both tokens.
func registerEditDescriptionHandlers(client *discord.ExtendedClient, pipeline *warnings.Pipeline) {
	client.Components.Register(discord.ScopeButton, warnings.EditDescriptionButtonName, func(ctx *discord.ComponentContext) error {
		modalID, err := discord.NewCustomID(discord.ScopeModal, warnings.EditDescriptionButtonName, ctx.ID.Secondary).Encode()
		if err != nil {
			return err
		}

		return ctx.Respond(&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: &discordgo.InteractionResponseData{
				CustomID: modalID,
				Title:    "Edit description",
				Components: []discordgo.MessageComponent{
					discordgo.ActionsRow{
						Components: []discordgo.MessageComponent{
							discordgo.TextInput{
								CustomID:    "description",
								Label:       "Description",
								Style:       discordgo.TextInputParagraph,
								Placeholder: "Why was this user warned?",
								Required:    true,
								MaxLength:   1000,
							},
						},
					},
				},
			},
		})
	})

	client.Components.Register(discord.ScopeModal, warnings.EditDescriptionButtonName, func(ctx *discord.ComponentContext) error {
		warningID, err := strconv.ParseInt(ctx.ID.Secondary, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: warning id %q", discord.ErrInvalidCustomID, ctx.ID.Secondary)
		}

		description := modalInputValue(ctx.Interaction.ModalSubmitData(), "description")
		if description == "" {
			return ctx.ReplyEphemeral("❌ The description cannot be empty.")
		}

		// Editing fans out to every replica, which can outlive the 3s
		// interaction window. Acknowledge first, then edit the response.
		if err := ctx.Respond(&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
		}); err != nil {
			return err
		}

		reqCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		if err := pipeline.SetDescription(reqCtx, warningID, description); err != nil {
			return err
		}

		content := "✅ Description updated."
		_, err = ctx.Session.InteractionResponseEdit(ctx.Interaction.Interaction, &discordgo.WebhookEdit{
			Content: &content,
		})
		return err
	})
}

// modalInputValue digs the named text input's value out of a modal submit
func modalInputValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			input, ok := component.(*discordgo.TextInput)
			if !ok {
				continue
			}
			if input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}
