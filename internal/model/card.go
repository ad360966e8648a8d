package model

import "fmt"

const (
	SuitMask = 100

	RankJack  = 11
	RankQueen = 12
	RankKing  = 13
	RankAce   = 14

	DeckSize = 52 // 单副牌张数
)

// Suit 花色
type Suit int32

const (
	SuitNone Suit = iota
	SuitHearts
	SuitDiamonds
	SuitClubs
	SuitSpades
)

var suitNames = map[Suit]string{
	SuitHearts:   "Hearts",
	SuitDiamonds: "Diamonds",
	SuitClubs:    "Clubs",
	SuitSpades:   "Spades",
}

func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Suit(%d)", s)
}

func (s Suit) Valid() bool {
	return s >= SuitHearts && s <= SuitSpades
}

// Card 牌，编码格式：花色*100 + 点数（2~14，11=J 12=Q 13=K 14=A）
// 值相等即牌相等；多副牌允许重复，手牌删除按位置取第一张匹配的
type Card int32

// NewCard 创建牌
func NewCard(suit Suit, rank int32) Card {
	return Card(int32(suit)*SuitMask + rank)
}

// Suit 返回花色
func (c Card) Suit() Suit {
	return Suit(int32(c) / SuitMask)
}

// Rank 返回点数
func (c Card) Rank() int32 {
	return int32(c) % SuitMask
}

func (c Card) Valid() bool {
	return c.Suit().Valid() && c.Rank() >= 2 && c.Rank() <= RankAce
}

// IsBlackJack 黑J（黑桃J/梅花J）发起攻击
func (c Card) IsBlackJack() bool {
	return c.Rank() == RankJack && (c.Suit() == SuitClubs || c.Suit() == SuitSpades)
}

// IsRedJack 红J（红桃J/方块J）可抵消黑J攻击
func (c Card) IsRedJack() bool {
	return c.Rank() == RankJack && (c.Suit() == SuitHearts || c.Suit() == SuitDiamonds)
}

// IsSpecial 功能牌：2 攻击、7 跳过、J 攻击/抵消、Q 转向、A 指定花色
func (c Card) IsSpecial() bool {
	switch c.Rank() {
	case 2, 7, RankJack, RankQueen, RankAce:
		return true
	default:
		return false
	}
}

var rankLabels = map[int32]string{
	RankJack:  "J",
	RankQueen: "Q",
	RankKing:  "K",
	RankAce:   "A",
}

func (c Card) String() string {
	label, ok := rankLabels[c.Rank()]
	if !ok {
		label = fmt.Sprintf("%d", c.Rank())
	}
	return fmt.Sprintf("%s%s", c.Suit().String()[:1], label)
}

// oneDeck 生成一副牌 52张
func oneDeck() []Card {
	cards := make([]Card, 0, DeckSize)
	for suit := SuitHearts; suit <= SuitSpades; suit++ {
		for rank := int32(2); rank <= RankAce; rank++ {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return cards
}
