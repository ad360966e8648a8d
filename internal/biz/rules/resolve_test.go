package rules

import (
	"errors"
	"testing"

	"github.com/yola1107/switch/internal/model"
	"github.com/yola1107/switch/internal/pkg/codes"
)

// 固定牌面的两人局：弃牌顶为红桃9，牌堆和手牌由用例自行摆放
func twoPlayerGame(handA, handB []model.Card) *model.Session {
	s := model.NewSession("g", 1, 1)
	s.Players = []*model.Player{
		{ID: "a", Name: "alice", Hand: handA},
		{ID: "b", Name: "bob", Hand: handB},
	}
	s.Status = model.StPlaying
	s.Current = 0
	s.Turn = 1
	s.Discard = []model.Card{card(model.SuitHearts, 9)}
	return s
}

func TestStartGame(t *testing.T) {
	s := model.NewSession("g", 1, 42)
	s.Players = []*model.Player{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	if err := StartGame(s, 5); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if s.Status != model.StPlaying || s.Turn != 1 {
		t.Fatalf("status=%v turn=%d", s.Status, s.Turn)
	}
	for _, p := range s.Players {
		if len(p.Hand) != 5 {
			t.Fatalf("seat %s got %d cards", p.ID, len(p.Hand))
		}
	}
	if len(s.Discard) != 1 || s.Top().IsSpecial() {
		t.Fatalf("bottom card %v must not be special", s.Top())
	}
	if s.Current < 0 || s.Current >= 3 {
		t.Fatalf("banker out of range: %d", s.Current)
	}
	if got := s.CardTotal(); got != 52 {
		t.Fatalf("card total %d, want 52", got)
	}

	if err := StartGame(s, 5); !errors.Is(err, codes.ErrGameStarted) {
		t.Fatalf("restart should fail with GameStarted, got %v", err)
	}
}

func TestStartGameNotEnoughPlayers(t *testing.T) {
	s := model.NewSession("g", 1, 1)
	s.Players = []*model.Player{{ID: "a"}}
	if err := StartGame(s, 5); !errors.Is(err, codes.ErrNotEnoughPlayers) {
		t.Fatalf("got %v", err)
	}
}

func TestResolvePlayValidation(t *testing.T) {
	h5 := card(model.SuitHearts, 5)
	c5 := card(model.SuitClubs, 5)
	c3 := card(model.SuitClubs, 3)

	tests := []struct {
		name      string
		seat      string
		cards     []model.Card
		nominated model.Suit
		want      error
	}{
		{"非本座位", "b", []model.Card{h5}, model.SuitNone, codes.ErrNotYourTurn},
		{"未知座位", "x", []model.Card{h5}, model.SuitNone, codes.ErrPlayerNotFound},
		{"空出牌", "a", nil, model.SuitNone, codes.ErrInvalidPlay},
		{"异点数叠打", "a", []model.Card{h5, c3}, model.SuitNone, codes.ErrInvalidStack},
		{"未持有", "a", []model.Card{c3}, model.SuitNone, codes.ErrCardsNotInHand},
		{"同一张用两次", "a", []model.Card{h5, h5}, model.SuitNone, codes.ErrDuplicateCardsInPlay},
		{"不匹配", "a", []model.Card{c5}, model.SuitNone, codes.ErrInvalidPlay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := twoPlayerGame(
				[]model.Card{h5, c5, c3},
				[]model.Card{card(model.SuitSpades, 4)},
			)
			if tt.name == "未持有" {
				s.Players[0].Hand = []model.Card{h5}
			}
			if tt.name == "不匹配" {
				s.Players[0].Hand = []model.Card{c5}
			}
			if tt.name == "同一张用两次" {
				s.Players[0].Hand = []model.Card{h5, c5}
			}
			err := ResolvePlay(s, tt.seat, tt.cards, tt.nominated)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

// 同一出牌命令提交两次：第一次成功推进回合后，第二次必须被拒绝
func TestResolvePlayNotIdempotent(t *testing.T) {
	h5 := card(model.SuitHearts, 5)
	s := twoPlayerGame(
		[]model.Card{h5, card(model.SuitClubs, 4)},
		[]model.Card{card(model.SuitSpades, 4)},
	)
	if err := ResolvePlay(s, "a", []model.Card{h5}, model.SuitNone); err != nil {
		t.Fatalf("first play: %v", err)
	}
	err := ResolvePlay(s, "a", []model.Card{h5}, model.SuitNone)
	if !errors.Is(err, codes.ErrNotYourTurn) && !errors.Is(err, codes.ErrCardsNotInHand) {
		t.Fatalf("replay must be rejected, got %v", err)
	}
}

// 摸到能压顶牌的牌后立即打出必须成功
func TestDrawThenPlayRoundTrip(t *testing.T) {
	s := twoPlayerGame(
		[]model.Card{card(model.SuitClubs, 4)},
		[]model.Card{card(model.SuitSpades, 4)},
	)
	// 摆一个只含目标牌的牌堆
	playable := card(model.SuitHearts, 3)
	s.Deck.Draw(s.Deck.Size())
	s.Deck.Refill([]model.Card{playable})

	drawn, err := ResolveDraw(s, "a", model.ReasonCannotPlay)
	if err != nil || len(drawn) != 1 || drawn[0] != playable {
		t.Fatalf("draw: %v %v", drawn, err)
	}

	// 轮回到 a（两人局 b 摸牌过）
	if _, err = ResolveDraw(s, "b", model.ReasonCannotPlay); err != nil {
		t.Fatalf("pass b: %v", err)
	}
	if err = ResolvePlay(s, "a", []model.Card{playable}, model.SuitNone); err != nil {
		t.Fatalf("play drawn card: %v", err)
	}
}

// Scenario: 两人局，a 出红桃2 攻击+2，b 叠一张2 攻击+4，a 无2 认罚摸4
func TestTwosAttackStacking(t *testing.T) {
	h2 := card(model.SuitHearts, 2)
	s2 := card(model.SuitSpades, 2)
	s := twoPlayerGame(
		[]model.Card{h2, card(model.SuitClubs, 4), card(model.SuitClubs, 5)},
		[]model.Card{s2, card(model.SuitSpades, 4)},
	)

	if err := ResolvePlay(s, "a", []model.Card{h2}, model.SuitNone); err != nil {
		t.Fatalf("play 2: %v", err)
	}
	if s.Attack == nil || s.Attack.Kind != model.AttackTwos || s.Attack.Draw != 2 {
		t.Fatalf("attack after first 2: %+v", s.Attack)
	}

	// 攻击挂起时普通牌被拒
	if err := ResolvePlay(s, "b", []model.Card{card(model.SuitSpades, 4)}, model.SuitNone); !errors.Is(err, codes.ErrInvalidCounter) {
		t.Fatalf("non-counter should fail with InvalidCounter, got %v", err)
	}

	if err := ResolvePlay(s, "b", []model.Card{s2}, model.SuitNone); err != nil {
		t.Fatalf("stack 2: %v", err)
	}
	if s.Attack.Draw != 4 {
		t.Fatalf("attack should stack to 4, got %d", s.Attack.Draw)
	}

	before := len(s.Players[0].Hand)
	drawn, err := ResolveDraw(s, "a", model.ReasonAttackPenalty)
	if err != nil || len(drawn) != 4 {
		t.Fatalf("penalty draw: %v %v", drawn, err)
	}
	if s.Attack != nil {
		t.Fatal("attack should clear after the penalty draw")
	}
	if len(s.Players[0].Hand) != before+4 {
		t.Fatal("penalty cards should land in the victim's hand")
	}
	if s.Current != 1 {
		t.Fatalf("turn should pass to b, current=%d", s.Current)
	}
}

// Scenario: 黑J攻击+5，红J抵消归零，无人摸牌，正常过牌
func TestBlackJackCounteredByRedJack(t *testing.T) {
	cj := card(model.SuitClubs, model.RankJack)
	hj := card(model.SuitHearts, model.RankJack)
	s := twoPlayerGame(
		[]model.Card{cj, card(model.SuitClubs, 4)},
		[]model.Card{hj, card(model.SuitSpades, 4)},
	)
	s.Discard = []model.Card{card(model.SuitClubs, 9)}

	if err := ResolvePlay(s, "a", []model.Card{cj}, model.SuitNone); err != nil {
		t.Fatalf("play black jack: %v", err)
	}
	if s.Attack == nil || s.Attack.Kind != model.AttackBlackJack || s.Attack.Draw != 5 {
		t.Fatalf("attack after black jack: %+v", s.Attack)
	}

	before := len(s.Players[0].Hand)
	if err := ResolvePlay(s, "b", []model.Card{hj}, model.SuitNone); err != nil {
		t.Fatalf("counter with red jack: %v", err)
	}
	if s.Attack != nil {
		t.Fatal("red jack should clear the attack")
	}
	if len(s.Players[0].Hand) != before {
		t.Fatal("no draw should occur after a clean counter")
	}
	if s.Current != 0 {
		t.Fatalf("turn should advance normally, current=%d", s.Current)
	}
}

// Scenario: A 指定花色，持续到回合回到指定者；期间无方块无A只能摸牌
func TestAceNomination(t *testing.T) {
	sa := card(model.SuitSpades, model.RankAce)
	s := twoPlayerGame(
		[]model.Card{sa, card(model.SuitClubs, 4)},
		[]model.Card{card(model.SuitClubs, 9), card(model.SuitSpades, 9)},
	)
	s.Discard = []model.Card{card(model.SuitSpades, 9)}

	// 不带花色打A被拒
	if err := ResolvePlay(s, "a", []model.Card{sa}, model.SuitNone); !errors.Is(err, codes.ErrInvalidPlay) {
		t.Fatalf("ace without nomination must fail, got %v", err)
	}

	if err := ResolvePlay(s, "a", []model.Card{sa}, model.SuitDiamonds); err != nil {
		t.Fatalf("play ace: %v", err)
	}
	if s.Nominated != model.SuitDiamonds || s.NominatedBy != 0 {
		t.Fatalf("nomination: %v by %d", s.Nominated, s.NominatedBy)
	}

	// b 手上黑桃9与顶牌同花色，但指定花色生效后不可出
	if err := ResolvePlay(s, "b", []model.Card{card(model.SuitSpades, 9)}, model.SuitNone); !errors.Is(err, codes.ErrInvalidPlay) {
		t.Fatalf("non-diamond must fail under nomination, got %v", err)
	}
	if _, err := ResolveDraw(s, "b", model.ReasonCannotPlay); err != nil {
		t.Fatalf("forced draw: %v", err)
	}

	// 回合回到指定者，指定花色随之失效
	if s.Current != 0 {
		t.Fatalf("current=%d", s.Current)
	}
	if s.Nominated != model.SuitNone {
		t.Fatal("nomination should lapse after a full turn without another ace")
	}
}

// Scenario: 牌堆只剩3张，被罚摸6：弃牌堆留顶回填重洗后足额摸6
func TestPenaltyDrawReshufflesDiscard(t *testing.T) {
	s := twoPlayerGame(
		[]model.Card{card(model.SuitClubs, 4)},
		[]model.Card{card(model.SuitSpades, 4)},
	)
	s.Deck.Draw(s.Deck.Size())
	s.Deck.Refill([]model.Card{
		card(model.SuitHearts, 3), card(model.SuitHearts, 4), card(model.SuitHearts, 5),
	})
	s.Discard = []model.Card{
		card(model.SuitDiamonds, 3), card(model.SuitDiamonds, 4),
		card(model.SuitDiamonds, 5), card(model.SuitDiamonds, 6),
		card(model.SuitSpades, 9), // 顶牌
	}
	s.Attack = &model.Pending{Kind: model.AttackTwos, Draw: 6}

	drawn, err := ResolveDraw(s, "a", model.ReasonAttackPenalty)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(drawn) != 6 {
		t.Fatalf("got %d cards, want exactly 6", len(drawn))
	}
	if len(s.Discard) != 1 || s.Top() != card(model.SuitSpades, 9) {
		t.Fatalf("discard should keep only the top card, got %v", s.Discard)
	}
	if s.Deck.Size() != 1 {
		t.Fatalf("deck should keep the single leftover, size=%d", s.Deck.Size())
	}
}

// 7 跳过：叠打按张数连续跳，无7的受害者空过不摸牌
func TestSevenSkips(t *testing.T) {
	h7 := card(model.SuitHearts, 7)
	s7 := card(model.SuitSpades, 7)
	s := twoPlayerGame(
		[]model.Card{h7, card(model.SuitClubs, 4)},
		[]model.Card{s7, card(model.SuitSpades, 4)},
	)

	if err := ResolvePlay(s, "a", []model.Card{h7}, model.SuitNone); err != nil {
		t.Fatalf("play 7: %v", err)
	}
	if s.Skips != 1 {
		t.Fatalf("skips=%d", s.Skips)
	}

	// b 用自己的7反制，跳过叠加转嫁回 a
	if err := ResolvePlay(s, "b", []model.Card{s7}, model.SuitNone); err != nil {
		t.Fatalf("counter 7: %v", err)
	}
	if s.Skips != 2 || s.Current != 0 {
		t.Fatalf("skips=%d current=%d", s.Skips, s.Current)
	}

	// a 无7认跳：不摸牌，连续过2个回合
	before := len(s.Players[0].Hand)
	drawn, err := ResolveDraw(s, "a", model.ReasonCannotPlay)
	if err != nil || drawn != nil {
		t.Fatalf("skip resolution must not draw, got %v %v", drawn, err)
	}
	if len(s.Players[0].Hand) != before || s.Skips != 0 {
		t.Fatal("skip resolution must leave hand unchanged and clear skips")
	}
}

// Q 转向：三人局打出Q后逆时针行进
func TestQueenReversesDirection(t *testing.T) {
	hq := card(model.SuitHearts, model.RankQueen)
	s := model.NewSession("g", 1, 1)
	s.Players = []*model.Player{
		{ID: "a", Hand: []model.Card{hq, card(model.SuitClubs, 4)}},
		{ID: "b", Hand: []model.Card{card(model.SuitSpades, 4)}},
		{ID: "c", Hand: []model.Card{card(model.SuitSpades, 5)}},
	}
	s.Status = model.StPlaying
	s.Current = 0
	s.Turn = 1
	s.Discard = []model.Card{card(model.SuitHearts, 9)}

	if err := ResolvePlay(s, "a", []model.Card{hq}, model.SuitNone); err != nil {
		t.Fatalf("play queen: %v", err)
	}
	if s.Direction != model.CounterClockwise {
		t.Fatal("queen should reverse direction")
	}
	if s.Current != 2 {
		t.Fatalf("turn should pass counter-clockwise to c, current=%d", s.Current)
	}
}

// 出完即胜：两人局剩一人直接终局
func TestWinAndFinish(t *testing.T) {
	h5 := card(model.SuitHearts, 5)
	s := twoPlayerGame(
		[]model.Card{h5},
		[]model.Card{card(model.SuitSpades, 4)},
	)
	if err := ResolvePlay(s, "a", []model.Card{h5}, model.SuitNone); err != nil {
		t.Fatalf("final play: %v", err)
	}
	if !s.Players[0].Won || len(s.Winners) != 1 || s.Winners[0] != "a" {
		t.Fatalf("winners=%v", s.Winners)
	}
	if s.Status != model.StFinished {
		t.Fatalf("status=%v", s.Status)
	}
	if err := ResolvePlay(s, "b", []model.Card{card(model.SuitSpades, 4)}, model.SuitNone); !errors.Is(err, codes.ErrGameFinished) {
		t.Fatalf("play after finish must fail, got %v", err)
	}
}

// 全程不变量：deck+discard+hands 总张数恒为 52×副数
func TestCardTotalInvariant(t *testing.T) {
	s := model.NewSession("g", 1, 7)
	s.Players = []*model.Player{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	if err := StartGame(s, 5); err != nil {
		t.Fatal(err)
	}
	want := 52
	if got := s.CardTotal(); got != want {
		t.Fatalf("after start: %d", got)
	}
	for i := 0; i < 20 && s.Status == model.StPlaying; i++ {
		p := s.CurrentPlayer()
		if _, err := ResolveDraw(s, p.ID, model.ReasonCannotPlay); err != nil {
			t.Fatal(err)
		}
		if got := s.CardTotal(); got != want {
			t.Fatalf("after draw %d: total %d, want %d", i, got, want)
		}
	}
}
