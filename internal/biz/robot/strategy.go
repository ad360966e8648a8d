package robot

import (
	"sort"
	"time"

	"github.com/samber/lo"
	ext "github.com/yola1107/kratos/v2/library/xgo"
	"github.com/yola1107/switch/internal/biz/rules"
	"github.com/yola1107/switch/internal/model"
)

/*
	机器人决策：按难度分档的策略表
*/

// Action 机器人选定的动作
type Action struct {
	Play      bool
	Cards     []model.Card
	Nominated model.Suit
	Reason    model.DrawReason
}

// Strategy 难度策略接口
type Strategy interface {
	Level() model.Difficulty
	Choose(s *model.Session, p *model.Player) Action
}

var strategies = map[model.Difficulty]Strategy{
	model.DifficultyEasy:   &easyStrategy{},
	model.DifficultyMedium: &scoredStrategy{level: model.DifficultyMedium, tune: mediumTuning},
	model.DifficultyHard:   &scoredStrategy{level: model.DifficultyHard, tune: hardTuning},
}

// For 按难度取策略，未知难度按 medium 处理
func For(level model.Difficulty) Strategy {
	if st, ok := strategies[level]; ok {
		return st
	}
	return strategies[model.DifficultyMedium]
}

// ThinkDelay 模拟思考时长，只影响动作下发节奏，不影响牌局状态
func ThinkDelay(level model.Difficulty, minMs, maxMs int32) time.Duration {
	if maxMs <= minMs {
		return time.Duration(minMs) * time.Millisecond
	}
	base := ext.RandInt(minMs, maxMs)
	factor := 1.0
	switch level {
	case model.DifficultyMedium:
		factor = 0.8
	case model.DifficultyHard:
		factor = 0.6
	}
	return time.Duration(float64(base)*factor) * time.Millisecond
}

/*
	候选动作枚举
*/

// candidateStacks 枚举全部合法叠打：按点数分组，组内选出可作首张的牌，
// 再生成每种长度的组合（同值重复按实例区分）
func candidateStacks(s *model.Session, p *model.Player) [][]model.Card {
	groups := lo.GroupBy(p.Hand, func(c model.Card) int32 { return c.Rank() })
	ranks := lo.Keys(groups)
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })

	var out [][]model.Card
	for _, rank := range ranks {
		group := groups[rank]
		leadIdx := -1
		for i, c := range group {
			if rules.Playable(s, c) {
				leadIdx = i
				break
			}
		}
		if leadIdx < 0 {
			continue
		}
		ordered := make([]model.Card, 0, len(group))
		ordered = append(ordered, group[leadIdx])
		ordered = append(ordered, group[:leadIdx]...)
		ordered = append(ordered, group[leadIdx+1:]...)
		for l := 1; l <= len(ordered); l++ {
			out = append(out, append([]model.Card(nil), ordered[:l]...))
		}
	}
	return out
}

// counterCards 手上全部可响应当前攻击/跳过的牌
func counterCards(s *model.Session, p *model.Player) []model.Card {
	return lo.Filter(p.Hand, func(c model.Card, _ int) bool {
		if s.Attack != nil {
			return rules.CanCounterAttack(c, s.Attack.Kind)
		}
		return rules.CanCounterSkip(c)
	})
}

// nominateSuit A 指定花色：选出牌后剩余手牌中最多的花色，最大化后续可出性
func nominateSuit(hand, played []model.Card) model.Suit {
	remaining := append([]model.Card(nil), hand...)
	for _, c := range played {
		for i, h := range remaining {
			if h == c {
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}
	counts := lo.CountValuesBy(remaining, func(c model.Card) model.Suit { return c.Suit() })
	best, bestCnt := model.SuitHearts, -1
	for suit := model.SuitHearts; suit <= model.SuitSpades; suit++ {
		if counts[suit] > bestCnt {
			best, bestCnt = suit, counts[suit]
		}
	}
	return best
}

func playAction(p *model.Player, cards []model.Card) Action {
	act := Action{Play: true, Cards: cards}
	if cards[0].Rank() == model.RankAce {
		act.Nominated = nominateSuit(p.Hand, cards)
	}
	return act
}

/*
	easy：随机挑一手合法牌
*/

type easyStrategy struct{}

func (e *easyStrategy) Level() model.Difficulty { return model.DifficultyEasy }

func (e *easyStrategy) Choose(s *model.Session, p *model.Player) Action {
	if s.Attack != nil {
		counters := counterCards(s, p)
		if len(counters) == 0 {
			return Action{Reason: model.ReasonAttackPenalty}
		}
		return playAction(p, []model.Card{counters[ext.RandInt(0, len(counters))]})
	}
	if s.Skips > 0 {
		counters := counterCards(s, p)
		if len(counters) == 0 {
			return Action{Reason: model.ReasonCannotPlay}
		}
		return playAction(p, counters)
	}

	stacks := candidateStacks(s, p)
	if len(stacks) == 0 {
		return Action{Reason: model.ReasonCannotPlay}
	}
	return playAction(p, stacks[ext.RandInt(0, len(stacks))])
}

/*
	medium/hard：启发式打分，优先清掉危险牌和长叠打
*/

type tuning struct {
	StackWeight float64           // 每多叠一张的收益
	Danger      map[int32]float64 // 按点数的出清收益
}

var mediumTuning = tuning{
	StackWeight: 15,
	Danger: map[int32]float64{
		2:              25,
		7:              15,
		model.RankJack: 25,
		model.RankAce:  30,
	},
}

var hardTuning = tuning{
	StackWeight: 25,
	Danger: map[int32]float64{
		2:               30,
		7:               20,
		model.RankJack:  35,
		model.RankQueen: 10,
		model.RankAce:   40,
	},
}

type scoredStrategy struct {
	level model.Difficulty
	tune  tuning
}

func (g *scoredStrategy) Level() model.Difficulty { return g.level }

func (g *scoredStrategy) Choose(s *model.Session, p *model.Player) Action {
	if s.Attack != nil {
		return g.counterAttack(s, p)
	}
	if s.Skips > 0 {
		counters := counterCards(s, p)
		if len(counters) == 0 {
			return Action{Reason: model.ReasonCannotPlay}
		}
		// 跳过反制：7 全部打出去，转嫁最多的跳过
		return playAction(p, counters)
	}

	stacks := candidateStacks(s, p)
	if len(stacks) == 0 {
		return Action{Reason: model.ReasonCannotPlay}
	}
	best, bestScore := stacks[0], g.score(stacks[0])
	for _, stack := range stacks[1:] {
		if sc := g.score(stack); sc > bestScore {
			best, bestScore = stack, sc
		}
	}
	return playAction(p, best)
}

func (g *scoredStrategy) score(stack []model.Card) float64 {
	score := float64(len(stack)) * g.tune.StackWeight
	for _, c := range stack {
		score += g.tune.Danger[c.Rank()]
	}
	return score
}

// counterAttack 攻击反制：红J全部用于抵消；没有红J时黑J续攻转嫁；
// 2 攻击时把 2 全部叠出去
func (g *scoredStrategy) counterAttack(s *model.Session, p *model.Player) Action {
	counters := counterCards(s, p)
	if len(counters) == 0 {
		return Action{Reason: model.ReasonAttackPenalty}
	}
	if s.Attack.Kind == model.AttackTwos {
		return playAction(p, counters)
	}

	reds := lo.Filter(counters, func(c model.Card, _ int) bool { return c.IsRedJack() })
	if len(reds) > 0 {
		return playAction(p, reds)
	}
	return playAction(p, counters)
}
