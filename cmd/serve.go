package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/brewhouse/tapkeeper/configs"
	"github.com/brewhouse/tapkeeper/pkg/repository"
	"github.com/brewhouse/tapkeeper/pkg/repository/mongostore"
	"github.com/brewhouse/tapkeeper/pkg/server"
	"github.com/brewhouse/tapkeeper/pkg/taproom"
)

const timeout = 5 * time.Second

type ServeCmd struct {
	ConfigFile string `default:".tapkeeper.toml" help:"Path to config file" short:"c"`
}

func (s *ServeCmd) Run(cmdCtx *Context) error {
	logger, err := newLogger(cmdCtx.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // we don't care about logger sync errors

	conf, err := configs.GetConfig(s.ConfigFile, logger)
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

	if err := room.Load(ctx); err != nil {
		logger.Error("error loading projection", zap.Error(err))

		return err
	}

	handler := server.New(room, logger).Routes()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"accept", "content-type"},
	}).Handler(handler)

	address := fmt.Sprintf(":%d", conf.Server.Port)
	logger.Info("serving", zap.String("address", address), zap.String("store", conf.Store.Driver))

	svr := &http.Server{
		Addr:              address,
		ReadHeaderTimeout: timeout,
		Handler:           corsHandler,
	}

	err = svr.ListenAndServe()
	if err != nil {
		logger.Error("failed to start server", zap.Error(err))

		return err
	}

	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		logConfig := zap.NewDevelopmentConfig()
		logConfig.DisableStacktrace = true

		return logConfig.Build()
	}

	return zap.NewProductionConfig().Build()
}

func openTaproom(ctx context.Context, conf *configs.Config, logger *zap.Logger) (*taproom.Taproom, func(), error) {
	if conf.Store.Driver == configs.DriverMongo {
		store, err := mongostore.Open(ctx, conf.Mongo.URI, conf.Mongo.Database, logger)
		if err != nil {
			return nil, nil, err
		}

		closer := func() {
			if err := store.Close(context.Background()); err != nil {
				logger.Warn("error closing mongo store", zap.Error(err))
			}
		}

		return taproom.New(store, store, conf.Taproom.TapCount, logger), closer, nil
	}

	repo, err := repository.Open(conf, logger)
	if err != nil {
		return nil, nil, err
	}

	closer := func() {
		if err := repo.Close(); err != nil {
			logger.Warn("error closing database", zap.Error(err))
		}
	}

	return taproom.New(repo, repo, conf.Taproom.TapCount, logger), closer, nil
}
