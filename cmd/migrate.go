package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/brewhouse/tapkeeper/configs"
	"github.com/brewhouse/tapkeeper/pkg/repository"
)

type MigrateCmd struct {
	ConfigFile string `default:".tapkeeper.toml" help:"Path to config file" short:"c"`
}

func (m *MigrateCmd) Run(_ *Context) error {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.DisableStacktrace = true

	logger, _ := logConfig.Build()
	defer logger.Sync() //nolint:errcheck // we don't care about logger sync errors

	conf, err := configs.GetConfig(m.ConfigFile, logger)
	if err != nil {
		logger.Error("error loading config", zap.Error(err))

		return err
	}

	if conf.Store.Driver == configs.DriverMongo {
		return fmt.Errorf("%w: the mongo store needs no migration", configs.ErrConfiguration)
	}

	repo, err := repository.Open(conf, logger)
	if err != nil {
		logger.Error("error connecting to database", zap.Error(err))

		return err
	}
	defer repo.Close() //nolint:errcheck // nothing left to do with a close error

	return repo.Migrate()
}
