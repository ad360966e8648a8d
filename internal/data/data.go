package data

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kredis "github.com/yola1107/kratos/v2/library/db/redis"
	"github.com/yola1107/kratos/v2/log"
	"github.com/yola1107/switch/internal/biz"
	"github.com/yola1107/switch/internal/conf"
	"github.com/yola1107/switch/internal/model"
)

// 全部牌局快照放同一个 hash，field 为 gameID
const snapshotKey = "switch:game:snapshot"

// Data .
type Data struct {
	redis *redis.Client
}

// NewData .
func NewData(c *conf.Data, logger log.Logger, rdb *redis.Client) (*Data, func(), error) {
	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
		if rdb != nil {
			_ = rdb.Close()
		}
	}
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, cleanup, fmt.Errorf("connect redis %s: %w", c.Redis.Addr, err)
	}
	return &Data{redis: rdb}, cleanup, nil
}

func NewRedis(c *conf.Data) *redis.Client {
	return kredis.NewClient(
		kredis.WithAddress(c.Redis.Addr),
		kredis.WithPassword(c.Redis.Password),
		kredis.WithDB(c.Redis.DB),
	)
}

var _ biz.Store = (*gameRepo)(nil)

type gameRepo struct {
	data *Data
	log  *log.Helper
}

// NewGameRepo .
func NewGameRepo(data *Data, logger log.Logger) biz.Store {
	return &gameRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *gameRepo) Save(ctx context.Context, snap *model.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", snap.ID, err)
	}
	return r.data.redis.HSet(ctx, snapshotKey, snap.ID, raw).Err()
}

func (r *gameRepo) Load(ctx context.Context, gameID string) (*model.Snapshot, error) {
	raw, err := r.data.redis.HGet(ctx, snapshotKey, gameID).Bytes()
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", gameID, err)
	}
	snap := &model.Snapshot{}
	if err = json.Unmarshal(raw, snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", gameID, err)
	}
	return snap, nil
}

func (r *gameRepo) Delete(ctx context.Context, gameID string) error {
	return r.data.redis.HDel(ctx, snapshotKey, gameID).Err()
}

func (r *gameRepo) LoadAll(ctx context.Context) ([]*model.Snapshot, error) {
	all, err := r.data.redis.HGetAll(ctx, snapshotKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	out := make([]*model.Snapshot, 0, len(all))
	for gameID, raw := range all {
		snap := &model.Snapshot{}
		if err = json.Unmarshal([]byte(raw), snap); err != nil {
			r.log.Errorf("skip broken snapshot. game=%s err=%v", gameID, err)
			continue
		}
		out = append(out, snap)
	}
	return out, nil
}
