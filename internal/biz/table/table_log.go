package table

import (
	"fmt"
	"path/filepath"

	"github.com/yola1107/kratos/v2/library/log/file"
	"github.com/yola1107/switch/internal/conf"
)

const defaultLogDir = "./logs/log_cache"

// Log 牌桌复盘日志，按局落文件，线上排查用
type Log struct {
	c      *conf.LogCache
	logger *file.Log
}

func newTableLog(gameID string, c *conf.LogCache) *Log {
	if c == nil {
		c = &conf.LogCache{}
	}
	l := &Log{c: c}
	if c.Open {
		dir := c.Dir
		if dir == "" {
			dir = defaultLogDir
		}
		l.logger = file.NewFileLog(filepath.Join(dir, conf.Name, fmt.Sprintf("table_%s.log", gameID)))
	}
	return l
}

func (l *Log) Close() error {
	if l.logger == nil {
		return nil
	}
	return l.logger.Sync()
}

func (l *Log) write(msg string, args ...interface{}) {
	if !l.c.Open || l.logger == nil {
		return
	}
	l.logger.WriteLog(msg, args...)
}
