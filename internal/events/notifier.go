// server/internal/events/notifier.go
package events

import (
	"sync"
)

// Op là loại sự kiện phát ra sau khi một document được ghi hoặc xóa.
type Op string

const (
	OpSave   Op = "save"
	OpRemove Op = "remove"
)

// Event mang document bị ảnh hưởng cùng topic đã phát.
type Event struct {
	Topic  string `json:"topic"`
	Entity string `json:"entity"`
	Op     Op     `json:"op"`
	Doc    any    `json:"doc"`
}

// Handler nhận một Event. Handler chạy trên goroutine riêng nên không
// được phép làm chậm request; lỗi bên trong handler tự xử lý.
type Handler func(Event)

// Notifier là điểm publish in-process cho các sự kiện entity. Mỗi sự kiện
// được phát dưới 2 topic: "<entity>:<op>" và "<entity>:<op>:<id>".
// Subscriber đăng ký tường minh, không dùng emitter toàn cục.
type Notifier struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	all      []Handler
}

func NewNotifier() *Notifier {
	return &Notifier{handlers: make(map[string][]Handler)}
}

// Subscribe đăng ký handler cho một topic cụ thể.
func (n *Notifier) Subscribe(topic string, h Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[topic] = append(n.handlers[topic], h)
}

// SubscribeAll đăng ký handler nhận mọi sự kiện.
func (n *Notifier) SubscribeAll(h Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.all = append(n.all, h)
}

// Publish phát sự kiện dưới topic chung và topic theo id. Fire-and-forget:
// handler chạy async, không bao giờ block hay làm fail request chính.
func (n *Notifier) Publish(entity string, op Op, id string, doc any) {
	if n == nil {
		return
	}
	base := entity + ":" + string(op)
	for _, topic := range []string{base, base + ":" + id} {
		ev := Event{Topic: topic, Entity: entity, Op: op, Doc: doc}
		n.mu.RLock()
		hs := append([]Handler(nil), n.handlers[topic]...)
		hs = append(hs, n.all...)
		n.mu.RUnlock()
		for _, h := range hs {
			go h(ev)
		}
	}
}
