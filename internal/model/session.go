package model

import (
	"fmt"
	"strings"
	"time"
)

/*
	Session 一局游戏的全部状态，只能被所属 Actor 串行修改
*/

// Status 游戏状态
type Status int32

const (
	StWaiting  Status = iota // 等待开局（大厅，可进人）
	StPlaying                // 游戏中
	StFinished               // 已结束
)

func (s Status) String() string {
	switch s {
	case StWaiting:
		return "Waiting"
	case StPlaying:
		return "Playing"
	case StFinished:
		return "Finished"
	default:
		return fmt.Sprintf("Status(%d)", s)
	}
}

// Direction 出牌方向
type Direction int32

const (
	Clockwise        Direction = 1
	CounterClockwise Direction = -1
)

// Difficulty 机器人难度
type Difficulty int32

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	default:
		return fmt.Sprintf("Difficulty(%d)", d)
	}
}

// AttackKind 攻击类型
type AttackKind int32

const (
	AttackTwos      AttackKind = iota + 1 // 2 攻击，每张 +2
	AttackBlackJack                       // 黑J攻击，每张 +5
)

// Pending 未解决的攻击；同一时刻只会有一种攻击在累积
type Pending struct {
	Kind AttackKind `json:"kind"`
	Draw int32      `json:"draw"` // 累积的罚摸张数
}

// DrawReason 摸牌原因
type DrawReason int32

const (
	ReasonCannotPlay DrawReason = iota
	ReasonAttackPenalty
	ReasonVoluntary
)

// PlayerSpec 建桌/进桌时的玩家描述
type PlayerSpec struct {
	Name  string
	Robot bool
	Level Difficulty
}

// Player 座位上的玩家
type Player struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Robot bool       `json:"robot"`
	Level Difficulty `json:"level"`
	Hand  []Card     `json:"hand"`
	Won   bool       `json:"won"`
}

func (p *Player) Desc() string {
	return fmt.Sprintf("(%s %q ai:%v hand:%d won:%v)", p.ID, p.Name, p.Robot, len(p.Hand), p.Won)
}

// HandCount 手牌中等于 card 的张数
func (p *Player) HandCount(card Card) int32 {
	n := int32(0)
	for _, c := range p.Hand {
		if c == card {
			n++
		}
	}
	return n
}

// RemoveCards 按位置删除第一张匹配的牌，全部删除成功才生效
func (p *Player) RemoveCards(cards []Card) bool {
	hand := make([]Card, len(p.Hand))
	copy(hand, p.Hand)
	for _, c := range cards {
		found := -1
		for i, h := range hand {
			if h == c {
				found = i
				break
			}
		}
		if found < 0 {
			return false
		}
		hand = append(hand[:found], hand[found+1:]...)
	}
	p.Hand = hand
	return true
}

// Session 牌局
type Session struct {
	ID        string
	Players   []*Player
	Current   int32 // 当前操作座位
	Direction Direction
	Deck      *Deck
	Discard   []Card // 弃牌堆，末尾为顶牌
	DeckCount int

	Nominated   Suit  // A 指定的花色，SuitNone 表示未指定
	NominatedBy int32 // 指定花色的座位，-1 表示无
	Attack      *Pending
	Skips       int32 // 未解决的跳过次数（7）
	Turn        int32 // 回合序号
	Winners     []string
	Status      Status
	LastAction  time.Time
}

// NewSession 创建牌局
func NewSession(id string, deckCount int, seed int64) *Session {
	return &Session{
		ID:          id,
		Current:     -1,
		Direction:   Clockwise,
		Deck:        NewDeck(deckCount, seed),
		DeckCount:   deckCount,
		Nominated:   SuitNone,
		NominatedBy: -1,
		Status:      StWaiting,
		LastAction:  time.Now(),
	}
}

// Top 弃牌堆顶牌
func (s *Session) Top() Card {
	if len(s.Discard) == 0 {
		return 0
	}
	return s.Discard[len(s.Discard)-1]
}

// PlayerIndex 根据座位ID找座位号，找不到返回 -1
func (s *Session) PlayerIndex(seatID string) int32 {
	for i, p := range s.Players {
		if p.ID == seatID {
			return int32(i)
		}
	}
	return -1
}

func (s *Session) GetPlayer(seatID string) *Player {
	if i := s.PlayerIndex(seatID); i >= 0 {
		return s.Players[i]
	}
	return nil
}

// CurrentPlayer 当前操作玩家
func (s *Session) CurrentPlayer() *Player {
	if s.Current < 0 || int(s.Current) >= len(s.Players) {
		return nil
	}
	return s.Players[s.Current]
}

// ActiveCount 仍未出完牌的玩家数
func (s *Session) ActiveCount() int32 {
	n := int32(0)
	for _, p := range s.Players {
		if !p.Won {
			n++
		}
	}
	return n
}

// CardTotal 牌堆+弃牌堆+所有手牌的总张数（守恒检查）
func (s *Session) CardTotal() int {
	total := s.Deck.Size() + len(s.Discard)
	for _, p := range s.Players {
		total += len(p.Hand)
	}
	return total
}

func (s *Session) Touch() {
	s.LastAction = time.Now()
}

func (s *Session) Desc() string {
	attack := ""
	if s.Attack != nil {
		attack = fmt.Sprintf(" attack={%d,%d}", s.Attack.Kind, s.Attack.Draw)
	}
	hands := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		hands = append(hands, fmt.Sprintf("%d", len(p.Hand)))
	}
	return fmt.Sprintf("(Game:%s St:%v turn:%d active:%d dir:%d top:%v skips:%d%s hands:[%s])",
		s.ID, s.Status, s.Turn, s.Current, s.Direction, s.Top(), s.Skips, attack, strings.Join(hands, " "))
}
