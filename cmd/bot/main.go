// Package main is the entry point for the Lemonbot Warns application.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/internal/commands"
	"github.com/Jochem-W/lemonbot-warns-sub000/internal/events"
	"github.com/Jochem-W/lemonbot-warns-sub000/internal/warnings"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/config"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/database"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/discord"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/errors"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/logger"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/mqtt"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/storage"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Iniciando Lemonbot Warns...", "Main")

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	errorHandler := errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			if err := discordClient.Stop(); err != nil {
				return
			}
		}
	})

	// Initialize database
	db, err := database.Init(cfg.MongoDBURL, cfg.DBName)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error connecting to database: %v", err), "Main")
		os.Exit(1)
	}
	defer func() {
		if err := db.Disconnect(); err != nil {
			logger.Warn(fmt.Sprintf("Error closing database: %v", err), "Main")
		}
	}()

	store := database.NewStore(db)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.Penalties.EnsureDefaults(seedCtx); err != nil {
		logger.Warn(fmt.Sprintf("Error sembrando penalizaciones por defecto: %v", err), "Main")
	}
	cancelSeed()

	// Initialize blob storage
	blobStore, err := storage.New(cfg)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error connecting to blob storage: %v", err), "Main")
		os.Exit(1)
	}

	// Initialize MQTT
	mqttClientID := "lemonbot"
	if !cfg.IsProd() {
		mqttClientID = "lemonbot_canary"
	}

	mqttClient := mqtt.Init(
		cfg.MQTTHost,
		cfg.MQTTPort,
		cfg.MQTTUser,
		cfg.MQTTPassword,
		mqttClientID,
	)
	defer mqttClient.Destroy()

	// Initialize web server
	webServer := web.Init()
	web.SetupAPIRoutes(webServer, store)
	webServer.StartAsync(cfg.Port)

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	// Route pipeline errors to each guild's configured error channel
	errorHandler.AttachSession(discordClient.Session, func(guildID string) string {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		guild, err := store.Guild(ctx, guildID)
		if err != nil || guild == nil {
			return ""
		}
		return guild.ErrorChannel
	})

	// Build the warn pipeline
	platform := warnings.NewSessionPlatform(discordClient.Session)
	pipeline := warnings.NewPipeline(
		store,
		platform,
		blobStore,
		errorHandler,
		mqttClient,
		cfg.ExemptBanReasonPrefix,
	)

	// Register commands and events
	commands.RegisterAll(discordClient, pipeline, store)
	events.RegisterAll(discordClient, pipeline, store)
	discordClient.Components.Freeze()

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}
	defer func() {
		if err := discordClient.Stop(); err != nil {
			logger.Warn(fmt.Sprintf("Error stopping Discord client: %v", err), "Main")
		}
	}()

	logger.Success("Lemonbot Warns iniciado correctamente!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando Lemonbot Warns...", "Main")
}
