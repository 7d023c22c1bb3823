// Package web provides API routes for the web server.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/database"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/discord"
	"github.com/gin-gonic/gin"
)

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server, store *database.Store) {
	api := s.Group("/api")
	{
		api.GET("/status", statusHandler)
		api.GET("/health", healthHandler)
		api.GET("/stats", func(c *gin.Context) {
			statsHandler(c, store)
		})
	}
}

// statusHandler returns the bot and database status
func statusHandler(c *gin.Context) {
	db := database.Get()
	client := discord.Get()

	dbStatus, dbOnline := db.GetStatus()

	botOnline := false
	if client != nil {
		botOnline = client.IsReady()
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"database": gin.H{
			"status":   dbStatus,
			"isOnline": dbOnline,
		},
		"bot": gin.H{
			"isOnline": botOnline,
		},
	})
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Lemonbot Warns is running",
	})
}

// statsHandler returns moderation counters
func statsHandler(c *gin.Context, store *database.Store) {
	client := discord.Get()
	if client == nil || !client.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Bot Offline",
			"message": "El bot no está disponible en este momento.",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	warningCount, err := store.Warnings.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "database unavailable",
		})
		return
	}

	guilds, err := store.Guilds(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"warnings":      warningCount,
		"watchedGuilds": len(guilds),
		"connectedTo":   client.GuildCount(),
		"uptimeSeconds": int64(time.Since(client.StartTime).Seconds()),
	})
}
