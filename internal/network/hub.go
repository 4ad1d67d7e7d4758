package network

import (
	"sync"

	"github.com/ranihwanifactory/stairpang/pkg/api"
)

// Broadcaster занимается только рассылкой сообщений подписчикам.
// Подписчик - это живая клиентская сессия (игрок или бот), ключ - ID игрока.
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: PlayerID -> Личный канал
	subscribers map[string]chan api.ServerResponse
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan api.ServerResponse),
	}
}

// Register создает личный канал для игрока. Повторная регистрация того же
// ID закрывает старый канал: новая сессия вытесняет старую.
func (b *Broadcaster) Register(playerID string) chan api.ServerResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.subscribers[playerID]; ok {
		close(old)
	}

	ch := make(chan api.ServerResponse, 100)
	b.subscribers[playerID] = ch
	return ch
}

// Unregister удаляет подписчика
func (b *Broadcaster) Unregister(playerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[playerID]; ok {
		close(ch)
		delete(b.subscribers, playerID)
	}
}

// SendTo отправляет сообщение конкретному игроку (Unicast)
func (b *Broadcaster) SendTo(playerID string, msg api.ServerResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if ch, ok := b.subscribers[playerID]; ok {
		select {
		case ch <- msg:
		default:
			// Отставший клиент теряет промежуточный снимок, не блокируя
			// остальных: следующее сообщение все равно несет полное состояние
		}
	}
}

// Broadcast отправляет всем подключенным
func (b *Broadcaster) Broadcast(msg api.ServerResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// HasSubscriber проверяет, онлайн ли игрок
func (b *Broadcaster) HasSubscriber(playerID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[playerID]
	return ok
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
