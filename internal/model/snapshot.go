package model

import "time"

/*
	Snapshot 牌局快照：落地持久化与对外查询共用的纯数据形态
*/

type SeatSnapshot struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Robot     bool       `json:"robot"`
	Level     Difficulty `json:"level"`
	Hand      []Card     `json:"hand,omitempty"` // 对非本座位脱敏时置空
	HandCount int32      `json:"handCount"`
	Won       bool       `json:"won"`
}

type Snapshot struct {
	ID          string          `json:"id"`
	Seats       []*SeatSnapshot `json:"seats"`
	Current     int32           `json:"current"`
	Direction   Direction       `json:"direction"`
	DeckCards   []Card          `json:"deckCards,omitempty"` // 脱敏时置空
	DeckLeft    int32           `json:"deckLeft"`
	Discard     []Card          `json:"discard"`
	DeckCount   int             `json:"deckCount"`
	Nominated   Suit            `json:"nominated"`
	NominatedBy int32           `json:"nominatedBy"`
	Attack      *Pending        `json:"attack,omitempty"`
	Skips       int32           `json:"skips"`
	Turn        int32           `json:"turn"`
	Winners     []string        `json:"winners,omitempty"`
	Status      Status          `json:"status"`
	LastAction  time.Time       `json:"lastAction"`
}

// Snapshot 生成完整快照（含牌堆与全部手牌，仅用于持久化和管理查询）
func (s *Session) Snapshot() *Snapshot {
	seats := make([]*SeatSnapshot, 0, len(s.Players))
	for _, p := range s.Players {
		hand := make([]Card, len(p.Hand))
		copy(hand, p.Hand)
		seats = append(seats, &SeatSnapshot{
			ID:        p.ID,
			Name:      p.Name,
			Robot:     p.Robot,
			Level:     p.Level,
			Hand:      hand,
			HandCount: int32(len(p.Hand)),
			Won:       p.Won,
		})
	}
	discard := make([]Card, len(s.Discard))
	copy(discard, s.Discard)
	return &Snapshot{
		ID:          s.ID,
		Seats:       seats,
		Current:     s.Current,
		Direction:   s.Direction,
		DeckCards:   s.Deck.Cards(),
		DeckLeft:    int32(s.Deck.Size()),
		Discard:     discard,
		DeckCount:   s.DeckCount,
		Nominated:   s.Nominated,
		NominatedBy: s.NominatedBy,
		Attack:      s.Attack,
		Skips:       s.Skips,
		Turn:        s.Turn,
		Winners:     append([]string(nil), s.Winners...),
		Status:      s.Status,
		LastAction:  s.LastAction,
	}
}

// Redacted 按座位脱敏：只保留本座位手牌，其他座位只给张数，不暴露牌堆
func (snap *Snapshot) Redacted(seatID string) *Snapshot {
	out := *snap
	out.DeckCards = nil
	out.Seats = make([]*SeatSnapshot, 0, len(snap.Seats))
	for _, seat := range snap.Seats {
		cp := *seat
		if seat.ID != seatID {
			cp.Hand = nil
		}
		out.Seats = append(out.Seats, &cp)
	}
	return &out
}

// Restore 从快照恢复牌局（Actor 崩溃重启时使用）；随机源重新播种
func Restore(snap *Snapshot) *Session {
	s := NewSession(snap.ID, snap.DeckCount, 0)
	s.Deck.cards = append(s.Deck.cards[:0], snap.DeckCards...)
	for _, seat := range snap.Seats {
		s.Players = append(s.Players, &Player{
			ID:    seat.ID,
			Name:  seat.Name,
			Robot: seat.Robot,
			Level: seat.Level,
			Hand:  append([]Card(nil), seat.Hand...),
			Won:   seat.Won,
		})
	}
	s.Current = snap.Current
	s.Direction = snap.Direction
	s.Discard = append([]Card(nil), snap.Discard...)
	s.Nominated = snap.Nominated
	s.NominatedBy = snap.NominatedBy
	s.Attack = snap.Attack
	s.Skips = snap.Skips
	s.Turn = snap.Turn
	s.Winners = append([]string(nil), snap.Winners...)
	s.Status = snap.Status
	s.LastAction = snap.LastAction
	return s
}
