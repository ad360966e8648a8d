package biz

import (
	"context"
	"errors"
	"time"

	"github.com/yola1107/kratos/v2/library/work"
	"github.com/yola1107/kratos/v2/log"
	"github.com/yola1107/switch/internal/biz/table"
	"github.com/yola1107/switch/internal/conf"
	"github.com/yola1107/switch/internal/model"
	"github.com/yola1107/switch/internal/pkg/codes"
)

const defaultPendingNum = 10000

// Store 快照持久层
type Store interface {
	Save(ctx context.Context, snap *model.Snapshot) error
	Load(ctx context.Context, gameID string) (*model.Snapshot, error)
	Delete(ctx context.Context, gameID string) error
	LoadAll(ctx context.Context) ([]*model.Snapshot, error)
}

// 牌桌依赖由 Room 提供
var _ table.Repo = (*Room)(nil)

// Room 房间门面：对外命令/查询入口，聚合牌桌目录、
// 任务池定时器、重连令牌与闲置清扫
type Room struct {
	c     *conf.Room
	store Store
	log   *log.Helper

	ws     work.IWorkStore
	mgr    *table.Manager
	broker *table.Broker
	tokens *tokenStore

	sweepID int64
}

func NewRoom(store Store, logger log.Logger, bc *conf.Bootstrap) (*Room, func(), error) {
	r := &Room{
		c:      bc.Room,
		store:  store,
		log:    log.NewHelper(logger),
		broker: table.NewBroker(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.ws = work.NewWorkStore(ctx, defaultPendingNum)
	r.mgr = table.NewManager(r)
	r.tokens = newTokenStore(time.Duration(r.c.Session.TokenTTLSec) * time.Second)

	cleanup := func() {
		log.NewHelper(logger).Info("closing the Room resources")
		cancel()
		r.mgr.StopAll()
		r.ws.Stop()
	}
	if err := r.ws.Start(); err != nil {
		cleanup()
		return nil, nil, err
	}

	r.restore(ctx)
	r.sweepID = r.ws.Forever(time.Duration(r.c.Session.SweepIntervalSec)*time.Second, r.sweep)

	return r, cleanup, nil
}

// restore 启动时从持久层恢复未结束的牌局
func (r *Room) restore(ctx context.Context) {
	snaps, err := r.store.LoadAll(ctx)
	if err != nil {
		r.log.Errorf("restore games failed: %v", err)
		return
	}
	r.mgr.RestoreAll(snaps)
	r.log.Infof("restore done. games=%d", r.mgr.Count())
}

/*
	table.Repo
*/

func (r *Room) GetTimer() table.Scheduler { return r.ws }

func (r *Room) GetRoomConfig() *conf.Room { return r.c }

// SaveSnapshot 牌桌协程内同步落地。写入顺序必须跟随牌局命令顺序，
// 转投共享任务池会让同局的新旧快照乱序，崩溃恢复时回档
func (r *Room) SaveSnapshot(snap *model.Snapshot) {
	if err := r.store.Save(context.Background(), snap); err != nil {
		r.log.Errorf("save snapshot failed. game=%s err=%v", snap.ID, err)
	}
}

func (r *Room) LoadSnapshot(gameID string) (*model.Snapshot, error) {
	return r.store.Load(context.Background(), gameID)
}

func (r *Room) Publish(ev table.Event) { r.broker.Publish(ev) }

/*
	命令面
*/

// CreateGame 建局。全机器人牌局直接开局
func (r *Room) CreateGame(specs []model.PlayerSpec) (string, error) {
	a, err := r.mgr.Create(specs)
	if err != nil {
		return "", err
	}
	if allRobots(specs) && int32(len(specs)) >= r.c.Game.MinPlayers {
		if err = a.Start(); err != nil {
			r.log.Warnf("auto start failed. game=%s err=%v", a.ID(), err)
		}
	}
	return a.ID(), nil
}

func allRobots(specs []model.PlayerSpec) bool {
	if len(specs) == 0 {
		return false
	}
	for _, s := range specs {
		if !s.Robot {
			return false
		}
	}
	return true
}

// JoinGame 入座，返回座位ID与重连令牌
func (r *Room) JoinGame(gameID string, spec model.PlayerSpec) (seatID, token string, err error) {
	a := r.mgr.Get(gameID)
	if a == nil {
		return "", "", codes.ErrGameNotFound
	}
	seatID, err = a.Join(spec)
	if err != nil {
		return "", "", err
	}
	if !spec.Robot {
		token = r.tokens.issue(gameID, seatID)
	}
	return seatID, token, nil
}

func (r *Room) StartGame(gameID string) error {
	a := r.mgr.Get(gameID)
	if a == nil {
		return codes.ErrGameNotFound
	}
	return a.Start()
}

func (r *Room) PlayCards(gameID, seatID string, cards []model.Card, nominated model.Suit) error {
	a := r.mgr.Get(gameID)
	if a == nil {
		return codes.ErrGameNotFound
	}
	return a.Play(seatID, cards, nominated)
}

func (r *Room) DrawCards(gameID, seatID string, reason model.DrawReason) (int32, error) {
	a := r.mgr.Get(gameID)
	if a == nil {
		return 0, codes.ErrGameNotFound
	}
	return a.Draw(seatID, reason)
}

/*
	查询面
*/

// GetSnapshot 指定座位视角的牌局快照；seatID 为空返回旁观视角（全部脱敏）
func (r *Room) GetSnapshot(gameID, seatID string) (*model.Snapshot, error) {
	a := r.mgr.Get(gameID)
	if a == nil {
		return nil, codes.ErrGameNotFound
	}
	return a.SnapshotFor(seatID)
}

// Resume 凭令牌重连：返回绑定座位与该视角快照，并刷新令牌活跃时间
func (r *Room) Resume(token string) (gameID, seatID string, snap *model.Snapshot, err error) {
	gameID, seatID, err = r.tokens.resolve(token)
	if err != nil {
		return "", "", nil, err
	}
	snap, err = r.GetSnapshot(gameID, seatID)
	if err != nil {
		return "", "", nil, err
	}
	return gameID, seatID, snap, nil
}

// ListGames 全部在册牌局的管理视角快照
func (r *Room) ListGames() []*model.Snapshot {
	var out []*model.Snapshot
	for _, a := range r.mgr.List() {
		snap, err := a.Snapshot()
		if err != nil {
			continue // 正在关停的牌桌
		}
		out = append(out, snap)
	}
	return out
}

func (r *Room) Subscribe(gameID string) (chan table.Event, error) {
	if r.mgr.Get(gameID) == nil {
		return nil, codes.ErrGameNotFound
	}
	return r.broker.Subscribe(gameID), nil
}

func (r *Room) Unsubscribe(gameID string, ch chan table.Event) {
	r.broker.Unsubscribe(gameID, ch)
}

/*
	闲置清扫
*/

// sweep 周期扫描：过期令牌回收；超过闲置阈值的牌局按废弃终结
func (r *Room) sweep() {
	r.tokens.sweep()

	idle := time.Duration(r.c.Session.IdleTimeoutSec) * time.Second
	if idle <= 0 {
		return
	}
	now := time.Now()
	for _, a := range r.mgr.List() {
		at, err := a.LastAction()
		if err != nil {
			continue
		}
		if now.Sub(at) < idle {
			continue
		}
		gameID := a.ID()
		r.log.Infof("sweep idle game. game=%s idle=%v", gameID, now.Sub(at))
		if err = a.Terminate("idle"); err != nil && !errors.Is(err, codes.ErrGameNotFound) {
			r.log.Errorf("terminate idle game failed. game=%s err=%v", gameID, err)
		}
		r.tokens.dropGame(gameID)
		r.broker.CloseGame(gameID)
	}

	r.pruneFinished(now, idle)
}

// pruneFinished 终局快照保留一个闲置窗口供查询/审计，过后从持久层清掉
func (r *Room) pruneFinished(now time.Time, keep time.Duration) {
	snaps, err := r.store.LoadAll(context.Background())
	if err != nil {
		r.log.Errorf("prune finished games failed: %v", err)
		return
	}
	for _, snap := range snaps {
		if snap.Status != model.StFinished {
			continue
		}
		if r.mgr.Get(snap.ID) != nil {
			continue
		}
		if now.Sub(snap.LastAction) < keep {
			continue
		}
		if err = r.store.Delete(context.Background(), snap.ID); err != nil {
			r.log.Errorf("delete finished snapshot failed. game=%s err=%v", snap.ID, err)
			continue
		}
		r.log.Infof("pruned finished game. game=%s", snap.ID)
	}
}
