package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vnkhanh/sports-center-backend/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // app mobile không gửi Origin cố định
	},
}

// HandleNotificationWebSocket: /ws/notifications?token=<jwt>
func HandleNotificationWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired"})
		return
	}

	userID := claims.UserID
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade thất bại:", err)
		return
	}
	log.Printf("Notification WS connected: userID=%s\n", userID)

	client := H.RegisterUser(userID, conn)
	defer H.UnregisterUser(userID, conn)

	if msg, err := json.Marshal(gin.H{"type": "connected", "message": "Connected to notification WebSocket"}); err == nil {
		client.Send <- msg
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	log.Printf("Notification WS disconnected: userID=%s\n", userID)
}
