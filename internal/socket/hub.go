// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"sync"
	"time"

	"meat-export-api-server/internal/events"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Thời gian tối đa cho một lần ghi xuống client.
const writeWait = 10 * time.Second

// Hub quản lý tất cả các client WebSocket đang theo dõi sự kiện entity.
type Hub struct {
	// clients là một map để lưu trữ các kết nối, key là id của user.
	clients map[string]*websocket.Conn
	// mu đảm bảo an toàn khi truy cập map clients từ nhiều goroutine.
	mu sync.RWMutex
}

// NewHub tạo một Hub mới.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

// Register thêm một client mới vào Hub.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = conn
	logrus.WithField("user_id", userID).Info("WebSocket client registered")
}

// Unregister xóa một client khỏi Hub.
func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; ok {
		delete(h.clients, userID)
		logrus.WithField("user_id", userID).Info("WebSocket client unregistered")
	}
}

// Broadcast gửi một sự kiện entity tới tất cả client đang kết nối.
// Lỗi gửi trên một kết nối không làm ảnh hưởng các kết nối khác.
func (h *Hub) Broadcast(ev events.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logrus.WithError(err).Warn("Could not marshal event for broadcast")
		return
	}

	// Lock ghi: gorilla không cho phép nhiều goroutine cùng ghi một kết nối.
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, conn := range h.clients {
		// Deadline để một client nghẽn không giữ lock và chặn các client khác
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("WebSocket write failed")
		}
	}
}
