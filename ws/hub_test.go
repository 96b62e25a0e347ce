package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/sports-center-backend/utils"
)

func readJSON(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(msg, &out))
	return out
}

func TestNotificationSocketReceivesBadge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	utils.ConfigureJWT("ws-test-secret", time.Hour)

	r := gin.New()
	r.GET("/ws/notifications", HandleNotificationWebSocket)
	srv := httptest.NewServer(r)
	defer srv.Close()

	token, err := utils.GenerateToken("user-1", "member")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "connected", readJSON(t, conn)["type"])
	assert.Equal(t, 1, H.GetStats()["users"])

	SendBadgeUpdate("user-1", 3)
	msg := readJSON(t, conn)
	assert.Equal(t, "badge_update", msg["type"])
	assert.EqualValues(t, 3, msg["unread_count"])

	SendNotification("user-1", map[string]string{"message": "Lớp Yoga dời sang 7h"})
	msg = readJSON(t, conn)
	assert.Equal(t, "notification", msg["type"])
}

func TestNotificationSocketRejectsBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/notifications", HandleNotificationWebSocket)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ws/notifications", nil))
	assert.Equal(t, 401, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ws/notifications?token=abc", nil))
	assert.Equal(t, 401, w.Code)
}

func TestHubUnregisterDropsEmptyUser(t *testing.T) {
	h := NewHub()
	h.Clients["u"] = map[*websocket.Conn]*Client{}
	h.UnregisterUser("u", nil)
	assert.Empty(t, h.Clients)
	// không có kết nối thì broadcast là no-op
	h.BroadcastToUser("u", []byte("x"))
}
