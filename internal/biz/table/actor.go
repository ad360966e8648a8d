package table

import (
	"runtime/debug"
	"sync"
	"time"

	"github.com/yola1107/kratos/v2/log"
	"github.com/yola1107/switch/internal/conf"
	"github.com/yola1107/switch/internal/model"
	"github.com/yola1107/switch/internal/pkg/codes"
)

// Scheduler 定时任务的窄接口，由上层工作池实现
type Scheduler interface {
	Once(delay time.Duration, f func()) int64
	Forever(interval time.Duration, f func()) int64
	Cancel(taskID int64)
}

// Repo 牌桌依赖的外部能力
type Repo interface {
	GetTimer() Scheduler
	GetRoomConfig() *conf.Room
	SaveSnapshot(snap *model.Snapshot)
	LoadSnapshot(gameID string) (*model.Snapshot, error)
	Publish(ev Event)
}

type task struct {
	fn   func()
	done chan struct{}
}

// Actor 一局一协程，所有命令经收件箱串行执行，内部状态无锁
type Actor struct {
	id   string
	repo Repo
	game *model.Session
	mLog *Log

	inbox   chan *task
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once

	onExit      func(id string, cause any)
	turnTimerID int64
}

func NewActor(game *model.Session, repo Repo, onExit func(id string, cause any)) *Actor {
	size := int32(128)
	if c := repo.GetRoomConfig().Session; c != nil && c.InboxSize > 0 {
		size = c.InboxSize
	}
	return &Actor{
		id:      game.ID,
		repo:    repo,
		game:    game,
		mLog:    newTableLog(game.ID, repo.GetRoomConfig().LogCache),
		inbox:   make(chan *task, size),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
		onExit:  onExit,
	}
}

func (a *Actor) ID() string { return a.id }

// start 启动牌桌协程，仅由 Manager.spawn 调用
func (a *Actor) start() {
	go a.run()
}

// Stop 请求正常退出，幂等
func (a *Actor) Stop() {
	a.once.Do(func() { close(a.quit) })
}

func (a *Actor) run() {
	var cause any
	defer func() {
		if e := recover(); e != nil {
			cause = e
			log.Errorf("actor panic. game=%s err=%v\n%s", a.id, e, debug.Stack())
		}
		close(a.stopped)
		if err := a.mLog.Close(); err != nil {
			log.Warnf("close table log failed. game=%s err=%v", a.id, err)
		}
		if a.onExit != nil {
			a.onExit(a.id, cause)
		}
	}()

	for {
		select {
		case <-a.quit:
			return
		case t := <-a.inbox:
			t.fn()
			close(t.done)
		}
	}
}

// invoke 投递命令并等待执行完成。牌桌已停止时返回 GameNotFound，
// 若正在崩溃重启，调用方重试即可命中新实例
func (a *Actor) invoke(fn func()) error {
	t := &task{fn: fn, done: make(chan struct{})}
	select {
	case a.inbox <- t:
	case <-a.stopped:
		return codes.ErrGameNotFound
	}
	select {
	case <-t.done:
		return nil
	case <-a.stopped:
		return codes.ErrGameNotFound
	}
}

// post 定时器/机器人回调用，不等待，收件箱满或已停止则丢弃
func (a *Actor) post(fn func()) {
	t := &task{fn: fn, done: make(chan struct{})}
	select {
	case a.inbox <- t:
	case <-a.stopped:
	default:
		log.Warnf("actor inbox full, drop task. game=%s", a.id)
	}
}

// Snapshot 完整快照（含牌堆与全部手牌），落地与监管用
func (a *Actor) Snapshot() (*model.Snapshot, error) {
	var snap *model.Snapshot
	err := a.invoke(func() { snap = a.game.Snapshot() })
	return snap, err
}

// SnapshotFor 指定座位视角的快照，他人手牌与牌堆内容已脱敏
func (a *Actor) SnapshotFor(seatID string) (*model.Snapshot, error) {
	var (
		snap *model.Snapshot
		ierr error
	)
	err := a.invoke(func() {
		if seatID != "" && a.game.GetPlayer(seatID) == nil {
			ierr = codes.ErrPlayerNotFound
			return
		}
		snap = a.game.Snapshot().Redacted(seatID)
	})
	if err != nil {
		return nil, err
	}
	return snap, ierr
}

// LastAction 最近一次有效操作时间，闲置清扫用
func (a *Actor) LastAction() (time.Time, error) {
	var at time.Time
	err := a.invoke(func() { at = a.game.LastAction })
	return at, err
}

func (a *Actor) Status() (model.Status, error) {
	var st model.Status
	err := a.invoke(func() { st = a.game.Status })
	return st, err
}
