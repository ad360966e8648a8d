package table

import (
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/yola1107/kratos/v2/log"
	"github.com/yola1107/switch/internal/model"
	"github.com/yola1107/switch/internal/pkg/codes"
)

const gameIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Manager 牌桌目录与监管：维护 gameID -> Actor 映射，
// 崩溃的牌桌从最近一次落地的快照重启
type Manager struct {
	repo   Repo
	actors sync.Map // gameID -> *Actor
}

func NewManager(repo Repo) *Manager {
	return &Manager{repo: repo}
}

// Create 建桌并注册初始座位
func (m *Manager) Create(specs []model.PlayerSpec) (*Actor, error) {
	c := m.repo.GetRoomConfig().Game
	if int32(len(specs)) > c.MaxPlayers {
		return nil, codes.ErrTableFull
	}
	id := gonanoid.MustGenerate(gameIDAlphabet, 8)
	game := model.NewSession(id, int(c.DeckCount), c.Seed)
	for _, spec := range specs {
		game.Players = append(game.Players, newSeat(spec))
	}
	a := m.spawn(game)
	log.Infof("game created. game=%s seats=%d", id, len(specs))
	m.repo.Publish(Event{Type: EventGameCreated, GameID: id})
	return a, nil
}

func (m *Manager) spawn(game *model.Session) *Actor {
	a := NewActor(game, m.repo, m.onActorExit)
	m.actors.Store(game.ID, a)
	a.start()
	return a
}

// Get 按局查桌，不存在返回 nil
func (m *Manager) Get(gameID string) *Actor {
	v, ok := m.actors.Load(gameID)
	if !ok {
		return nil
	}
	return v.(*Actor)
}

// List 当前注册的全部牌桌
func (m *Manager) List() []*Actor {
	var out []*Actor
	m.actors.Range(func(_, v any) bool {
		out = append(out, v.(*Actor))
		return true
	})
	return out
}

func (m *Manager) Count() int {
	n := 0
	m.actors.Range(func(_, _ any) bool { n++; return true })
	return n
}

// Remove 主动下桌，触发正常退出
func (m *Manager) Remove(gameID string) {
	if a := m.Get(gameID); a != nil {
		a.Stop()
	}
}

// RestoreAll 启动时从落地快照恢复未结束的牌局
func (m *Manager) RestoreAll(snaps []*model.Snapshot) {
	for _, snap := range snaps {
		if snap.Status == model.StFinished {
			continue
		}
		a := m.spawn(model.Restore(snap))
		a.kick()
		log.Infof("game restored. game=%s status=%v", snap.ID, snap.Status)
	}
}

// StopAll 关停全部牌桌（进程退出）
func (m *Manager) StopAll() {
	m.actors.Range(func(_, v any) bool {
		v.(*Actor).Stop()
		return true
	})
}

// onActorExit 牌桌协程退出回调。cause 非空说明崩溃，
// 从快照重建并顶替目录里的旧实例；正常退出则注销
func (m *Manager) onActorExit(gameID string, cause any) {
	if cause == nil {
		m.actors.Delete(gameID)
		log.Infof("game closed. game=%s", gameID)
		return
	}

	snap, err := m.repo.LoadSnapshot(gameID)
	if err != nil {
		log.Errorf("game crashed and snapshot missing, drop. game=%s cause=%v err=%v", gameID, cause, err)
		m.actors.Delete(gameID)
		return
	}
	m.spawn(model.Restore(snap)).kick()
	log.Errorf("game crashed, restarted from snapshot. game=%s cause=%v turn=%d", gameID, cause, snap.Turn)
}
