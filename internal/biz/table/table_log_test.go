package table

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yola1107/switch/internal/conf"
)

// 复盘日志按配置目录落盘；未开启/未配置时一切写入都是空操作
func TestTableLogDir(t *testing.T) {
	dir := t.TempDir()
	l := newTableLog("g1", &conf.LogCache{Open: true, Dir: dir})
	l.write("[入座] seat=%s", "a")
	require.NoError(t, l.Close())

	_, err := os.Stat(filepath.Join(dir, conf.Name, "table_g1.log"))
	require.NoError(t, err)
}

func TestTableLogClosed(t *testing.T) {
	l := newTableLog("g2", nil)
	l.write("[入座] seat=%s", "a")
	require.NoError(t, l.Close())

	l = newTableLog("g3", &conf.LogCache{Open: false, Dir: t.TempDir()})
	l.write("[摸牌] seat=%s", "b")
	require.NoError(t, l.Close())
}
