package cmd

import (
	"context"

	"go.uber.org/zap"

	"github.com/brewhouse/tapkeeper/configs"
)

type InitTapsCmd struct {
	ConfigFile string `default:".tapkeeper.toml" help:"Path to config file" short:"c"`
}

func (i *InitTapsCmd) Run(cmdCtx *Context) error {
	logger, err := newLogger(cmdCtx.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // we don't care about logger sync errors

	conf, err := configs.GetConfig(i.ConfigFile, logger)
	if err != nil {
		logger.Error("error loading config", zap.Error(err))

		return err
	}

	ctx := context.Background()

	room, closeStores, err := openTaproom(ctx, conf, logger)
	if err != nil {
		logger.Error("error connecting to store", zap.Error(err))

		return err
	}
	defer closeStores()

	if err := room.InitializeTaps(ctx, conf.Taproom.TapCount); err != nil {
		logger.Error("error initializing taps", zap.Error(err))

		return err
	}

	logger.Info("taps initialized", zap.Int("count", conf.Taproom.TapCount))

	return nil
}
