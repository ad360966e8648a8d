package conf

import (
	"fmt"

	"github.com/yola1107/kratos/v2/config"
	"github.com/yola1107/kratos/v2/config/file"
)

const Name = "switch"
const Version = "v0.0.1"

type Bootstrap struct {
	Data *Data `json:"data"`
	Room *Room `json:"room"`
}

type Data struct {
	Redis *Redis `json:"redis"`
}

type Redis struct {
	Addr         string `json:"addr"`
	Password     string `json:"password"`
	DB           int    `json:"db"`
	DialTimeout  int32  `json:"dialTimeout"`  // 秒
	ReadTimeout  int32  `json:"readTimeout"`  // 秒
	WriteTimeout int32  `json:"writeTimeout"` // 秒
}

type Room struct {
	Game     *Game     `json:"game"`
	Robot    *Robot    `json:"robot"`
	Session  *Session  `json:"session"`
	LogCache *LogCache `json:"logCache"`
}

type Game struct {
	MinPlayers     int32 `json:"minPlayers"`     // 最小开局人数
	MaxPlayers     int32 `json:"maxPlayers"`     // 单桌上限
	HandCards      int32 `json:"handCards"`      // 起手牌数
	DeckCount      int32 `json:"deckCount"`      // 用几副牌
	TurnTimeoutSec int32 `json:"turnTimeoutSec"` // 超时自动摸牌
	Seed           int64 `json:"seed"`           // 洗牌种子，0为随机（调试/复盘用）
}

type Robot struct {
	Open       bool  `json:"open"`
	MinThinkMs int32 `json:"minThinkMs"`
	MaxThinkMs int32 `json:"maxThinkMs"`
}

type Session struct {
	InboxSize        int32 `json:"inboxSize"`        // 单局命令队列长度
	IdleTimeoutSec   int32 `json:"idleTimeoutSec"`   // 无操作判定废弃
	SweepIntervalSec int32 `json:"sweepIntervalSec"` // 清扫周期
	TokenTTLSec      int32 `json:"tokenTtlSec"`      // 重连令牌不活跃过期
}

type LogCache struct {
	Open bool   `json:"open"`
	Dir  string `json:"dir"`
}

// Default 默认配置，配置文件缺省项以此为底
func Default() *Bootstrap {
	return &Bootstrap{
		Data: &Data{
			Redis: &Redis{
				Addr:         "127.0.0.1:6379",
				DB:           0,
				DialTimeout:  3,
				ReadTimeout:  2,
				WriteTimeout: 2,
			},
		},
		Room: &Room{
			Game: &Game{
				MinPlayers:     2,
				MaxPlayers:     8,
				HandCards:      5,
				DeckCount:      1,
				TurnTimeoutSec: 20,
			},
			Robot: &Robot{
				Open:       true,
				MinThinkMs: 800,
				MaxThinkMs: 2500,
			},
			Session: &Session{
				InboxSize:        128,
				IdleTimeoutSec:   600,
				SweepIntervalSec: 60,
				TokenTTLSec:      1800,
			},
			LogCache: &LogCache{
				Open: false,
				Dir:  "./logs/log_cache",
			},
		},
	}
}

// Load 加载配置文件并覆盖默认值
func Load(flagconf string) (*Bootstrap, error) {
	bc := Default()
	if flagconf == "" {
		return bc, nil
	}

	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := c.Scan(bc); err != nil {
		return nil, fmt.Errorf("scan config: %w", err)
	}
	return bc, nil
}
