package rules

import (
	"github.com/yola1107/switch/internal/model"
	"github.com/yola1107/switch/internal/pkg/codes"
)

/*
	状态迁移：StartGame / ResolvePlay / ResolveDraw
	全部在所属 Actor 内串行调用，直接原地修改 Session
*/

// StartGame 开局：洗牌、发牌、翻底牌、随机首家
func StartGame(s *model.Session, handSize int) error {
	if s.Status == model.StPlaying {
		return codes.ErrGameStarted
	}
	if s.Status == model.StFinished {
		return codes.ErrGameFinished
	}
	if len(s.Players) < 2 {
		return codes.ErrNotEnoughPlayers
	}
	if handSize <= 0 {
		handSize = 5
	}

	s.Deck.Shuffle()
	for _, p := range s.Players {
		p.Hand = s.Deck.Draw(handSize)
		p.Won = false
	}

	// 底牌取第一张非功能牌，避免开局即带攻击/转向
	bottom := s.Deck.DrawFirst(func(c model.Card) bool { return !c.IsSpecial() })
	s.Discard = []model.Card{bottom}

	s.Current = int32(s.Deck.RandInt(0, len(s.Players)))
	s.Direction = model.Clockwise
	s.Turn = 1
	s.Status = model.StPlaying
	s.Touch()
	return nil
}

// ResolvePlay 处理一次出牌（单张或同点数叠打）
func ResolvePlay(s *model.Session, seatID string, cards []model.Card, nominated model.Suit) error {
	if s.Status != model.StPlaying {
		if s.Status == model.StFinished {
			return codes.ErrGameFinished
		}
		return codes.ErrGameNotPlaying
	}

	idx := s.PlayerIndex(seatID)
	if idx < 0 {
		return codes.ErrPlayerNotFound
	}
	if idx != s.Current {
		return codes.ErrNotYourTurn
	}
	if len(cards) == 0 {
		return codes.ErrInvalidPlay
	}

	// 叠打必须同点数
	rank := cards[0].Rank()
	for _, c := range cards[1:] {
		if c.Rank() != rank {
			return codes.ErrInvalidStack
		}
	}

	// 多副牌允许同值重复，按张数校验；超出持有数视为同一张牌被用了两次
	p := s.Players[idx]
	reqCount := map[model.Card]int32{}
	for _, c := range cards {
		reqCount[c]++
	}
	for c, n := range reqCount {
		held := p.HandCount(c)
		if held == 0 {
			return codes.ErrCardsNotInHand
		}
		if n > held {
			return codes.ErrDuplicateCardsInPlay
		}
	}

	// 首张合法性：有未解决的攻击/跳过时只接受反制牌
	lead := cards[0]
	switch {
	case s.Attack != nil:
		if !CanCounterAttack(lead, s.Attack.Kind) {
			return codes.ErrInvalidCounter
		}
	case s.Skips > 0:
		if !CanCounterSkip(lead) {
			return codes.ErrInvalidCounter
		}
	default:
		if !CanPlay(lead, s.Top(), s.Nominated) {
			return codes.ErrInvalidPlay
		}
	}

	// 打出 A 必须带指定花色
	if rank == model.RankAce && !nominated.Valid() {
		return codes.ErrInvalidPlay
	}

	if !p.RemoveCards(cards) {
		return codes.ErrCardsNotInHand
	}

	// 逐张压入弃牌堆并结算功能效果
	for _, c := range cards {
		s.Discard = append(s.Discard, c)
		applyEffect(s, idx, c, nominated)
	}

	if len(p.Hand) == 0 {
		p.Won = true
		s.Winners = append(s.Winners, p.ID)
	}
	if s.ActiveCount() <= 1 {
		s.Status = model.StFinished
		s.Touch()
		return nil
	}

	advance(s, 1)
	s.Touch()
	return nil
}

// applyEffect 单张功能牌效果，按打出顺序依次结算
func applyEffect(s *model.Session, seat int32, c model.Card, nominated model.Suit) {
	// 非 A 压顶即清除旧的指定花色
	if c.Rank() != model.RankAce {
		s.Nominated = model.SuitNone
		s.NominatedBy = -1
	}

	switch {
	case c.Rank() == 2:
		if s.Attack == nil {
			s.Attack = &model.Pending{Kind: model.AttackTwos}
		}
		s.Attack.Draw += 2

	case c.Rank() == 7:
		s.Skips++

	case c.IsBlackJack():
		if s.Attack == nil {
			s.Attack = &model.Pending{Kind: model.AttackBlackJack}
		}
		s.Attack.Draw += 5

	case c.IsRedJack():
		// 红J仅用于抵消黑J攻击，其余场合无效果
		if s.Attack != nil && s.Attack.Kind == model.AttackBlackJack {
			s.Attack.Draw -= 5
			if s.Attack.Draw <= 0 {
				s.Attack = nil
			}
		}

	case c.Rank() == model.RankQueen:
		s.Direction = -s.Direction

	case c.Rank() == model.RankAce:
		s.Nominated = nominated
		s.NominatedBy = seat
	}
}

// ResolveDraw 处理摸牌/认罚：
//   - 有未解决的攻击：摸满累积张数，清除攻击并过牌
//   - 有未解决的跳过：不摸牌，按累积次数连续过牌
//   - 否则摸一张过牌
func ResolveDraw(s *model.Session, seatID string, _ model.DrawReason) ([]model.Card, error) {
	if s.Status != model.StPlaying {
		if s.Status == model.StFinished {
			return nil, codes.ErrGameFinished
		}
		return nil, codes.ErrGameNotPlaying
	}

	idx := s.PlayerIndex(seatID)
	if idx < 0 {
		return nil, codes.ErrPlayerNotFound
	}
	if idx != s.Current {
		return nil, codes.ErrNotYourTurn
	}

	p := s.Players[idx]
	switch {
	case s.Attack != nil:
		drawn := drawFromPile(s, s.Attack.Draw)
		p.Hand = append(p.Hand, drawn...)
		s.Attack = nil
		advance(s, 1)
		s.Touch()
		return drawn, nil

	case s.Skips > 0:
		steps := s.Skips
		s.Skips = 0
		advance(s, steps)
		s.Touch()
		return nil, nil

	default:
		drawn := drawFromPile(s, 1)
		p.Hand = append(p.Hand, drawn...)
		advance(s, 1)
		s.Touch()
		return drawn, nil
	}
}

// drawFromPile 从牌堆摸 n 张；牌堆不足时把弃牌堆（留顶牌）回填重洗继续摸，
// 可重复回填。只有所有余牌都在手上时才会少摸。
func drawFromPile(s *model.Session, n int32) []model.Card {
	drawn := make([]model.Card, 0, n)
	for int32(len(drawn)) < n {
		drawn = append(drawn, s.Deck.Draw(int(n-int32(len(drawn))))...)
		if int32(len(drawn)) >= n {
			break
		}
		if len(s.Discard) <= 1 {
			break
		}
		top := s.Top()
		s.Deck.Refill(s.Discard[:len(s.Discard)-1])
		s.Discard = []model.Card{top}
	}
	return drawn
}
