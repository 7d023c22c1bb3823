// Package events wires the gateway event handlers. Events are organized by
// category (ready, interactions, messages, moderation).
package events

import (
	"github.com/Jochem-W/lemonbot-warns-sub000/internal/warnings"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/database"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/discord"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/logger"
)

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, pipeline *warnings.Pipeline, store *database.Store) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	// Ready event (bot startup and restart notices)
	RegisterReadyEvent(client, store)

	// Component and modal interactions
	RegisterInteractionEvents(client, pipeline, store)

	// Message events (image appends via replies to log messages)
	RegisterMessageEvents(client, pipeline, store)

	// Moderation events (external ban reconciliation)
	RegisterModerationEvents(client, pipeline)

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
}
