package biz

import (
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/yola1107/switch/internal/pkg/codes"
)

const tokenLen = 24

type seatBinding struct {
	gameID   string
	seatID   string
	activeAt time.Time
}

// tokenStore 重连令牌：token -> (牌局,座位)。令牌不透明，
// 不活跃超过 ttl 即过期，由房间清扫周期回收
type tokenStore struct {
	ttl time.Duration

	mu       sync.Mutex
	bindings map[string]*seatBinding
}

func newTokenStore(ttl time.Duration) *tokenStore {
	return &tokenStore{
		ttl:      ttl,
		bindings: make(map[string]*seatBinding),
	}
}

func (ts *tokenStore) issue(gameID, seatID string) string {
	token := gonanoid.Must(tokenLen)
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.bindings[token] = &seatBinding{
		gameID:   gameID,
		seatID:   seatID,
		activeAt: time.Now(),
	}
	return token
}

// resolve 查询令牌绑定并刷新活跃时间
func (ts *tokenStore) resolve(token string) (gameID, seatID string, err error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	b, ok := ts.bindings[token]
	if !ok {
		return "", "", codes.ErrTokenNotFound
	}
	if ts.ttl > 0 && time.Since(b.activeAt) > ts.ttl {
		delete(ts.bindings, token)
		return "", "", codes.ErrTokenExpired
	}
	b.activeAt = time.Now()
	return b.gameID, b.seatID, nil
}

// sweep 回收过期令牌
func (ts *tokenStore) sweep() {
	if ts.ttl <= 0 {
		return
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	now := time.Now()
	for token, b := range ts.bindings {
		if now.Sub(b.activeAt) > ts.ttl {
			delete(ts.bindings, token)
		}
	}
}

// dropGame 牌局终结后作废其全部令牌
func (ts *tokenStore) dropGame(gameID string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for token, b := range ts.bindings {
		if b.gameID == gameID {
			delete(ts.bindings, token)
		}
	}
}
