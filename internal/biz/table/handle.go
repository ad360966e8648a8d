package table

import (
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	kerrors "github.com/yola1107/kratos/v2/errors"
	"github.com/yola1107/kratos/v2/log"
	"github.com/yola1107/switch/internal/biz/robot"
	"github.com/yola1107/switch/internal/biz/rules"
	"github.com/yola1107/switch/internal/model"
	"github.com/yola1107/switch/internal/pkg/codes"
)

func newSeat(spec model.PlayerSpec) *model.Player {
	name := spec.Name
	if name == "" && spec.Robot {
		name = "bot-" + uuid.NewString()[:8]
	}
	return &model.Player{
		ID:    gonanoid.Must(12),
		Name:  name,
		Robot: spec.Robot,
		Level: spec.Level,
	}
}

// Join 入座，仅限未开局，返回座位ID
func (a *Actor) Join(spec model.PlayerSpec) (string, error) {
	var (
		seatID string
		ierr   error
	)
	err := a.invoke(func() {
		if a.game.Status != model.StWaiting {
			ierr = codes.ErrGameStarted
			return
		}
		max := a.repo.GetRoomConfig().Game.MaxPlayers
		if int32(len(a.game.Players)) >= max {
			ierr = codes.ErrTableFull
			return
		}
		p := newSeat(spec)
		a.game.Players = append(a.game.Players, p)
		a.game.Touch()
		seatID = p.ID
		a.mLog.write("[入座] %s", p.Desc())
		a.save()
	})
	if err != nil {
		return "", err
	}
	return seatID, ierr
}

// Start 开局：洗牌、发牌、定底牌与庄家
func (a *Actor) Start() error {
	var ierr error
	err := a.invoke(func() { ierr = a.fail("", a.startLocked()) })
	if err != nil {
		return err
	}
	return ierr
}

func (a *Actor) startLocked() error {
	c := a.repo.GetRoomConfig().Game
	if int32(len(a.game.Players)) < c.MinPlayers {
		return codes.ErrNotEnoughPlayers
	}
	if err := rules.StartGame(a.game, int(c.HandCards)); err != nil {
		return err
	}
	a.mLog.write("[开局] %s", a.game.Desc())
	for _, p := range a.game.Players {
		a.mLog.write("[发牌] %s => %v", p.ID, p.Hand)
	}
	a.repo.Publish(Event{
		Type:    EventGameStarted,
		GameID:  a.id,
		Current: a.game.Current,
	})
	a.afterChange()
	return nil
}

// Play 出牌。cards 为同点数叠打，首张为 A 时须携带指定花色
func (a *Actor) Play(seatID string, cards []model.Card, nominated model.Suit) error {
	var ierr error
	err := a.invoke(func() { ierr = a.fail(seatID, a.playLocked(seatID, cards, nominated)) })
	if err != nil {
		return err
	}
	return ierr
}

// fail 被拒绝的命令除了回给调用方，同时按错误类别广播给订阅者
func (a *Actor) fail(seatID string, err error) error {
	if err == nil {
		return nil
	}
	a.repo.Publish(Event{
		Type:   EventError,
		GameID: a.id,
		SeatID: seatID,
		Detail: kerrors.FromError(err).Reason,
	})
	return err
}

func (a *Actor) playLocked(seatID string, cards []model.Card, nominated model.Suit) error {
	if err := rules.ResolvePlay(a.game, seatID, cards, nominated); err != nil {
		return err
	}
	a.mLog.write("[出牌] seat=%s cards=%v nominated=%v => %s", seatID, cards, nominated, a.game.Desc())
	a.repo.Publish(Event{
		Type:      EventCardPlayed,
		GameID:    a.id,
		SeatID:    seatID,
		Cards:     cards,
		Count:     int32(len(cards)),
		Nominated: a.game.Nominated,
		Current:   a.game.Current,
	})
	a.afterChange()
	return nil
}

// Draw 摸牌/承受惩罚。有攻击未解时被罚摸，有跳过未解时空过不摸牌
func (a *Actor) Draw(seatID string, reason model.DrawReason) (int32, error) {
	var (
		n    int32
		ierr error
	)
	err := a.invoke(func() {
		n, ierr = a.drawLocked(seatID, reason)
		ierr = a.fail(seatID, ierr)
	})
	if err != nil {
		return 0, err
	}
	return n, ierr
}

func (a *Actor) drawLocked(seatID string, reason model.DrawReason) (int32, error) {
	drawn, err := rules.ResolveDraw(a.game, seatID, reason)
	if err != nil {
		return 0, err
	}
	a.mLog.write("[摸牌] seat=%s reason=%d n=%d => %s", seatID, reason, len(drawn), a.game.Desc())
	a.repo.Publish(Event{
		Type:    EventCardsDrawn,
		GameID:  a.id,
		SeatID:  seatID,
		Count:   int32(len(drawn)),
		Reason:  reason,
		Current: a.game.Current,
	})
	a.afterChange()
	return int32(len(drawn)), nil
}

// Terminate 结束并废弃牌局（闲置清扫等），落地终局快照后停止
func (a *Actor) Terminate(detail string) error {
	return a.invoke(func() {
		if a.game.Status != model.StFinished {
			a.game.Status = model.StFinished
			a.game.Touch()
		}
		a.mLog.write("[终止] detail=%s %s", detail, a.game.Desc())
		a.save()
		a.repo.Publish(Event{
			Type:    EventGameFinished,
			GameID:  a.id,
			Winners: a.game.Winners,
			Detail:  detail,
		})
		a.Stop()
	})
}

// afterChange 每次状态变更后的统一收尾：落地、终局广播、
// 轮转广播、武装超时定时器与机器人出牌
func (a *Actor) afterChange() {
	a.save()

	if a.game.Status == model.StFinished {
		a.cancelTurnTimer()
		a.mLog.write("[结束] winners=%v", a.game.Winners)
		a.repo.Publish(Event{
			Type:    EventGameFinished,
			GameID:  a.id,
			Winners: a.game.Winners,
		})
		return
	}
	if a.game.Status != model.StPlaying {
		return
	}

	a.repo.Publish(Event{
		Type:    EventTurnChanged,
		GameID:  a.id,
		Current: a.game.Current,
	})
	a.armTurnTimer()
	a.scheduleRobot()
}

func (a *Actor) save() {
	a.repo.SaveSnapshot(a.game.Snapshot())
}

// kick 重启/恢复后重新武装定时器与机器人，不改牌局状态
func (a *Actor) kick() {
	a.post(func() {
		if a.game.Status != model.StPlaying {
			return
		}
		a.armTurnTimer()
		a.scheduleRobot()
	})
}

/*
	回合超时与机器人
*/

func (a *Actor) armTurnTimer() {
	a.cancelTurnTimer()
	sec := a.repo.GetRoomConfig().Game.TurnTimeoutSec
	if sec <= 0 {
		return
	}
	turn := a.game.Turn
	a.turnTimerID = a.repo.GetTimer().Once(time.Duration(sec)*time.Second, func() {
		a.post(func() { a.onTurnTimeout(turn) })
	})
}

func (a *Actor) cancelTurnTimer() {
	if a.turnTimerID > 0 {
		a.repo.GetTimer().Cancel(a.turnTimerID)
		a.turnTimerID = 0
	}
}

// onTurnTimeout 超时自动按摸牌处理；回合已变化说明是过期定时器，忽略
func (a *Actor) onTurnTimeout(turn int32) {
	if a.game.Status != model.StPlaying || a.game.Turn != turn {
		return
	}
	p := a.game.CurrentPlayer()
	if p == nil {
		return
	}
	log.Infof("turn timeout, auto draw. game=%s seat=%s turn=%d", a.id, p.ID, turn)
	if _, err := a.drawLocked(p.ID, model.ReasonCannotPlay); err != nil {
		log.Errorf("timeout auto draw failed. game=%s seat=%s err=%v", a.id, p.ID, err)
	}
}

func (a *Actor) scheduleRobot() {
	c := a.repo.GetRoomConfig().Robot
	if c == nil || !c.Open {
		return
	}
	p := a.game.CurrentPlayer()
	if p == nil || !p.Robot {
		return
	}
	delay := robot.ThinkDelay(p.Level, c.MinThinkMs, c.MaxThinkMs)
	turn := a.game.Turn
	a.repo.GetTimer().Once(delay, func() {
		a.post(func() { a.robotAct(turn) })
	})
}

// robotAct 机器人行动；回合与调度时不一致说明是过期动作，直接丢弃
func (a *Actor) robotAct(turn int32) {
	if a.game.Status != model.StPlaying || a.game.Turn != turn {
		return
	}
	p := a.game.CurrentPlayer()
	if p == nil || !p.Robot {
		return
	}
	act := robot.For(p.Level).Choose(a.game, p)
	var err error
	if act.Play {
		err = a.playLocked(p.ID, act.Cards, act.Nominated)
	} else {
		_, err = a.drawLocked(p.ID, act.Reason)
	}
	if err != nil {
		// 策略给出了非法动作，按摸牌兜底，避免卡死牌局
		log.Errorf("robot action rejected, fallback draw. game=%s seat=%s act=%+v err=%v", a.id, p.ID, act, err)
		if _, err = a.drawLocked(p.ID, model.ReasonCannotPlay); err != nil {
			log.Errorf("robot fallback draw failed. game=%s seat=%s err=%v", a.id, p.ID, err)
		}
	}
}
