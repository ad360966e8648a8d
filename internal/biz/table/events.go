package table

import (
	"sync"

	"github.com/yola1107/kratos/v2/log"
	"github.com/yola1107/switch/internal/model"
)

type EventType string

const (
	EventGameCreated  EventType = "game-created"
	EventGameStarted  EventType = "game-started"
	EventGameFinished EventType = "game-finished"
	EventCardPlayed   EventType = "card-played"
	EventCardsDrawn   EventType = "cards-drawn"
	EventTurnChanged  EventType = "turn-changed"
	EventError        EventType = "error"
)

// Event 对局广播事件，订阅者按局接收
type Event struct {
	Type      EventType        `json:"type"`
	GameID    string           `json:"gameId"`
	SeatID    string           `json:"seatId,omitempty"`
	Cards     []model.Card     `json:"cards,omitempty"`
	Count     int32            `json:"count,omitempty"`
	Reason    model.DrawReason `json:"reason,omitempty"`
	Nominated model.Suit       `json:"nominated,omitempty"`
	Current   int32            `json:"current,omitempty"`
	Winners   []string         `json:"winners,omitempty"`
	Detail    string           `json:"detail,omitempty"`
}

const subscriberBuf = 32

// Broker 按局分发事件。订阅通道带缓冲，消费慢的订阅者丢事件不阻塞牌局
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{} // gameID -> subscribers
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan Event]struct{})}
}

func (b *Broker) Subscribe(gameID string) chan Event {
	ch := make(chan Event, subscriberBuf)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[gameID] == nil {
		b.subs[gameID] = make(map[chan Event]struct{})
	}
	b.subs[gameID][ch] = struct{}{}
	return ch
}

func (b *Broker) Unsubscribe(gameID string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[gameID]
	if !ok {
		return
	}
	if _, ok = set[ch]; !ok {
		return
	}
	delete(set, ch)
	close(ch)
	if len(set) == 0 {
		delete(b.subs, gameID)
	}
}

func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[ev.GameID] {
		select {
		case ch <- ev:
		default:
			log.Warnf("broker: slow subscriber, drop event. game=%s type=%s", ev.GameID, ev.Type)
		}
	}
}

// CloseGame 关闭并移除某局的全部订阅
func (b *Broker) CloseGame(gameID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[gameID] {
		close(ch)
	}
	delete(b.subs, gameID)
}
