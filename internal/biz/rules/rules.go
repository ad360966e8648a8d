package rules

import (
	"github.com/yola1107/switch/internal/model"
)

/*
	出牌合法性判定：纯函数，不修改任何状态
*/

// CanPlay 普通出牌：花色匹配（顶牌为 A 且指定了花色时按指定花色）或点数匹配。
// A 不是万能牌，打出 A 本身也要满足同样的匹配。
func CanPlay(card, top model.Card, nominated model.Suit) bool {
	suit := top.Suit()
	if top.Rank() == model.RankAce && nominated.Valid() {
		suit = nominated
	}
	return card.Suit() == suit || card.Rank() == top.Rank()
}

// CanCounterAttack 是否能响应当前攻击：
// 2 攻击只认 2；黑J攻击认任意 J（黑J续攻，红J抵消）
func CanCounterAttack(card model.Card, kind model.AttackKind) bool {
	switch kind {
	case model.AttackTwos:
		return card.Rank() == 2
	case model.AttackBlackJack:
		return card.Rank() == model.RankJack
	default:
		return false
	}
}

// CanCounterSkip 是否能响应跳过（7）
func CanCounterSkip(card model.Card) bool {
	return card.Rank() == 7
}

// Playable 当前状态下 card 是否可作为首张打出。
// 有未解决的攻击/跳过时只允许对应的反制牌（强制响应规则）。
func Playable(s *model.Session, card model.Card) bool {
	switch {
	case s.Attack != nil:
		return CanCounterAttack(card, s.Attack.Kind)
	case s.Skips > 0:
		return CanCounterSkip(card)
	default:
		return CanPlay(card, s.Top(), s.Nominated)
	}
}

// NextIndex 轮转座位：真数学取模，逆时针从 0 回绕必须落在 n-1
func NextIndex(curr, step, n int32) int32 {
	if n <= 0 {
		return 0
	}
	return ((curr+step)%n + n) % n
}

// advance 推进 steps 个回合，跳过已出完牌的座位；
// 回合回到指定花色的座位且期间无新的 A 时，清除指定花色
func advance(s *model.Session, steps int32) {
	n := int32(len(s.Players))
	if n == 0 {
		return
	}
	for i := int32(0); i < steps; i++ {
		next := NextIndex(s.Current, int32(s.Direction), n)
		for j := int32(0); j < n; j++ {
			if !s.Players[next].Won {
				break
			}
			next = NextIndex(next, int32(s.Direction), n)
		}
		s.Current = next
		s.Turn++
	}
	if s.Nominated != model.SuitNone && s.Current == s.NominatedBy {
		s.Nominated = model.SuitNone
		s.NominatedBy = -1
	}
}
