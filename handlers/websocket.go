package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"solar-prediction-api/logger"
	"solar-prediction-api/middleware"
	"solar-prediction-api/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LivePredictions streams the authenticated user's prediction events.
// It must run behind RequireAuth, which accepts ?token= for browser clients.
func LivePredictions(cache *services.CacheService, log *logger.Logger) gin.HandlerFunc {
	log = log.With("handler", "live")
	return func(c *gin.Context) {
		if !cache.Available() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live updates unavailable"})
			return
		}
		userID := middleware.CurrentUserID(c)

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		// Read pump: detect client disconnect
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		pubsub := cache.Subscribe(ctx, services.PredictionChannel(userID))
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, json.RawMessage(msg.Payload)); err != nil {
					log.Warn("ws write error", "user_id", userID, "error", err)
					return
				}
			}
		}
	}
}
