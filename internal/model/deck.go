package model

import (
	"math/rand"
	"time"
)

/*
	Deck 管理牌堆：从头部摸牌，摸空后由弃牌堆（去掉顶牌）回填重洗
*/

type Deck struct {
	rng   *rand.Rand
	cards []Card
}

// NewDeck 初始化 deckCount 副牌的牌堆；seed=0 时按时间随机
func NewDeck(deckCount int, seed int64) *Deck {
	if deckCount <= 0 {
		deckCount = 1
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cards := make([]Card, 0, deckCount*DeckSize)
	for i := 0; i < deckCount; i++ {
		cards = append(cards, oneDeck()...)
	}
	return &Deck{
		rng:   rand.New(rand.NewSource(seed)),
		cards: cards,
	}
}

// Shuffle 洗牌
func (d *Deck) Shuffle() {
	for i := 0; i < 3; i++ {
		d.rng.Shuffle(len(d.cards), func(i, j int) {
			d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
		})
	}
}

// Draw 从牌堆头部摸 n 张，不足时返回剩余全部
func (d *Deck) Draw(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	if n <= 0 {
		return nil
	}
	drawn := make([]Card, n)
	copy(drawn, d.cards[:n])
	d.cards = d.cards[n:]
	return drawn
}

// DrawFirst 摸出第一张满足条件的牌；找不到时退回摸顶牌
func (d *Deck) DrawFirst(match func(Card) bool) Card {
	for i, c := range d.cards {
		if match(c) {
			d.cards[0], d.cards[i] = d.cards[i], d.cards[0]
			break
		}
	}
	cs := d.Draw(1)
	if len(cs) == 0 {
		return 0
	}
	return cs[0]
}

// Refill 弃牌堆回填并重洗
func (d *Deck) Refill(cards []Card) {
	d.cards = append(d.cards, cards...)
	d.Shuffle()
}

func (d *Deck) Size() int {
	return len(d.cards)
}

func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards 返回剩余牌堆快照
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// RandInt 基于牌堆随机源取 [min,max) 的随机数，保证可用种子复现
func (d *Deck) RandInt(min, max int) int {
	if max <= min {
		return min
	}
	return d.rng.Intn(max-min) + min
}
