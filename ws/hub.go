package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub giữ các kết nối theo userID; một user có thể mở nhiều tab/thiết bị.
type Hub struct {
	Clients map[string]map[*websocket.Conn]*Client
	Mutex   sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{Clients: make(map[string]map[*websocket.Conn]*Client)}
}

var H = NewHub()

type BadgeUpdate struct {
	Type        string `json:"type"`
	UnreadCount int64  `json:"unread_count"`
}

type NotificationPush struct {
	Type         string      `json:"type"`
	Notification interface{} `json:"notification"`
}

// RegisterUser thêm kết nối và chạy write pump; caller tự đọc conn rồi gọi UnregisterUser.
func (h *Hub) RegisterUser(userID string, conn *websocket.Conn) *Client {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.Clients[userID]; !ok {
		h.Clients[userID] = make(map[*websocket.Conn]*Client)
	}
	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	h.Clients[userID][conn] = client

	go client.writePump()
	return client
}

func (h *Hub) UnregisterUser(userID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Clients[userID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Clients, userID)
		}
	}
}

// BroadcastToUser gửi tới mọi kết nối của user; client chậm (buffer đầy) bị bỏ qua.
func (h *Hub) BroadcastToUser(userID string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	for _, client := range h.Clients[userID] {
		select {
		case client.Send <- data:
		default:
		}
	}
}

func (h *Hub) sendJSON(userID string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	h.BroadcastToUser(userID, data)
}

// GetStats dùng cho /health.
func (h *Hub) GetStats() map[string]int {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	conns := 0
	for _, clients := range h.Clients {
		conns += len(clients)
	}
	return map[string]int{
		"users":       len(h.Clients),
		"connections": conns,
	}
}

func (c *Client) writePump() {
	defer func() {
		c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
		c.Conn.Close()
	}()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// Public function gửi số thông báo chưa đọc
func SendBadgeUpdate(userID string, count int64) {
	H.sendJSON(userID, BadgeUpdate{Type: "badge_update", UnreadCount: count})
}

// Public function đẩy thông báo mới tới hội viên
func SendNotification(userID string, notification interface{}) {
	H.sendJSON(userID, NotificationPush{Type: "notification", Notification: notification})
}
