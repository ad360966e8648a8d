package main

import (
	"flag"
	"os"

	"github.com/yola1107/kratos/v2"
	"github.com/yola1107/kratos/v2/library/log/zap"
	"github.com/yola1107/kratos/v2/log"
	"github.com/yola1107/switch/internal/biz"
	"github.com/yola1107/switch/internal/conf"
	"github.com/yola1107/switch/internal/data"
)

var (
	Name     = conf.Name
	Version  = conf.Version
	flagconf string // -conf path
	id, _    = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "../../configs/config.yaml", "config path, e.g. -conf config.yaml")
}

func newApp(logger log.Logger) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
	)
}

func main() {
	flag.Parse()

	bc, err := conf.Load(flagconf)
	if err != nil {
		panic(err)
	}

	logger := zap.NewLogger(nil)
	log.SetLogger(logger)
	defer logger.Close()

	rdb := data.NewRedis(bc.Data)
	d, dataCleanup, err := data.NewData(bc.Data, logger, rdb)
	if err != nil {
		dataCleanup()
		panic(err)
	}
	defer dataCleanup()

	room, roomCleanup, err := biz.NewRoom(data.NewGameRepo(d, logger), logger, bc)
	if err != nil {
		panic(err)
	}
	defer roomCleanup()
	log.Infof("room ready. games=%d", len(room.ListGames()))

	// start and wait for stop signal
	if err := newApp(logger).Run(); err != nil {
		panic(err)
	}
}
