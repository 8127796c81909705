package configs_test

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/brewhouse/tapkeeper/configs"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestGetConfig_GetsNamedFile() {
	logger := zaptest.NewLogger(suite.T())

	config, err := configs.GetConfig("testdata/config.toml", logger)

	suite.Require().NoError(err)
	suite.Equal("test.local", config.DB.Host)
	suite.Equal(1234, config.DB.Port)
	suite.Equal("testuser", config.DB.User)
	suite.Equal("test123", config.DB.Password)
	suite.Equal("testdb", config.DB.Database)
	suite.Equal("test.db", config.DB.File)
	suite.Equal(5, config.DB.MaxIdleConnections)
	suite.Equal(7, config.DB.MaxOpenConnections)
	suite.Equal("mongodb://test.local:27017", config.Mongo.URI)
	suite.Equal("testmongo", config.Mongo.Database)
	suite.Equal(configs.DriverPostgres, config.Store.Driver)
	suite.Equal(666, config.Server.Port)
	suite.Equal(8, config.Taproom.TapCount)
}

func (suite *ConfigTestSuite) TestGetConfig_GetsEnv() {
	logger := zaptest.NewLogger(suite.T())

	suite.T().Setenv("TAPKEEPER_DB_HOST", "env.local")
	suite.T().Setenv("TAPKEEPER_DB_PASSWORD", "env123")
	suite.T().Setenv("TAPKEEPER_STORE_DRIVER", "mongo")
	suite.T().Setenv("TAPKEEPER_SERVER_PORT", "9999")
	suite.T().Setenv("TAPKEEPER_TAPROOM_TAPCOUNT", "4")

	config, err := configs.GetConfig("", logger)

	suite.Require().NoError(err)
	suite.Equal("env.local", config.DB.Host)
	suite.Equal("env123", config.DB.Password)
	suite.Equal(configs.DriverMongo, config.Store.Driver)
	suite.Equal(9999, config.Server.Port)
	suite.Equal(4, config.Taproom.TapCount)
}

func (suite *ConfigTestSuite) TestGetConfig_Defaults() {
	logger := zaptest.NewLogger(suite.T())

	config, err := configs.GetConfig("does-not-exist.toml", logger)

	suite.Require().NoError(err)
	suite.Equal("localhost", config.DB.Host)
	suite.Equal(5432, config.DB.Port)
	suite.Equal(configs.DriverSQLite, config.Store.Driver)
	suite.Equal(8080, config.Server.Port)
	suite.Equal(12, config.Taproom.TapCount)
}

func (suite *ConfigTestSuite) TestGetConfig_RejectsUnknownDriver() {
	logger := zaptest.NewLogger(suite.T())

	suite.T().Setenv("TAPKEEPER_STORE_DRIVER", "cassandra")

	config, err := configs.GetConfig("", logger)

	suite.Require().ErrorIs(err, configs.ErrConfiguration)
	suite.Nil(config)
}
