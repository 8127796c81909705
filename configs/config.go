package configs

import (
	"errors"
	"os"
	"strings"

	"github.com/kkyr/fig"
	"go.uber.org/zap"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

type DB struct {
	Host               string `default:"localhost"`
	Port               int    `default:"5432"`
	User               string `default:"postgres"`
	Password           string
	Database           string `default:"tapkeeper"`
	File               string `default:"tapkeeper.db"`
	MaxIdleConnections int    `default:"10"`
	MaxOpenConnections int    `default:"10"`
}

type Mongo struct {
	URI      string `default:"mongodb://localhost:27017"`
	Database string `default:"tapkeeper"`
}

type Store struct {
	Driver string `default:"sqlite"`
}

type Server struct {
	Port int `default:"8080"`
}

type Taproom struct {
	TapCount int `default:"12"`
}

type Config struct {
	DB      DB
	Mongo   Mongo
	Store   Store
	Server  Server
	Taproom Taproom
}

const envPrefix = "TAPKEEPER" // env prefix for env vars

var ErrConfiguration = errors.New("configuration error")

func (s Store) ValidDriver() bool {
	switch s.Driver {
	case DriverPostgres, DriverSQLite, DriverMongo:
		return true
	}

	return false
}

func GetConfig(configFileName string, logger *zap.Logger) (*Config, error) {
	config := Config{}
	homeDir, _ := os.UserHomeDir()

	logger.Info("Loading config", zap.String("file", configFileName))

	err := fig.Load(&config, fig.File(configFileName), fig.Dirs(".", homeDir), fig.UseEnv(envPrefix))
	if err != nil {
		if strings.Contains(err.Error(), "file not found") {
			logger.Warn("Could not find config file", zap.String("file", configFileName))

			err = fig.Load(&config, fig.IgnoreFile(), fig.UseEnv(envPrefix))
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}

	if !config.Store.ValidDriver() {
		return nil, ErrConfiguration
	}

	return &config, nil
}
