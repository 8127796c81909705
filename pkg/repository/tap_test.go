package repository_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/brewhouse/tapkeeper/pkg/model"
)

type TapTestSuite struct {
	RepositorySuite
}

func TestTapTestSuite(t *testing.T) {
	suite.Run(t, new(TapTestSuite))
}

func (suite *TapTestSuite) TearDownTest() {
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func (suite *TapTestSuite) TestListTaps_MapsRecords() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "tap_records"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "number", "assigned_keg_id", "is_last_keg"}).
			AddRow(1, 1, "keg-a", true).
			AddRow(2, 2, nil, false))

	taps, err := suite.repository.ListTaps(context.Background())

	suite.Require().NoError(err)
	suite.Require().Len(taps, 2)

	suite.Equal(1, taps[0].Number)
	suite.Require().NotNil(taps[0].AssignedKegID)
	suite.Equal("keg-a", *taps[0].AssignedKegID)
	suite.True(taps[0].IsLastKeg)

	suite.Equal(2, taps[1].Number)
	suite.Nil(taps[1].AssignedKegID)
	suite.False(taps[1].IsLastKeg)
}

func (suite *TapTestSuite) TestUpsertTap_EmptyFieldsOnlyEnsuresRow() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "tap_records"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	suite.mock.ExpectCommit()

	err := suite.repository.UpsertTap(context.Background(), 3, nil)

	suite.Require().NoError(err)
}

func (suite *TapTestSuite) TestUpsertTap_MergesGivenFields() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT ("number") DO UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("3"))
	suite.mock.ExpectCommit()

	err := suite.repository.UpsertTap(context.Background(), 3, map[string]any{
		model.FieldAssignedKegID: "keg-a",
		model.FieldIsLastKeg:     true,
	})

	suite.Require().NoError(err)
}

func (suite *TapTestSuite) TestUpsertTap_ReturnsError() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery("^INSERT INTO (.+)").WillReturnError(gorm.ErrInvalidDB)
	suite.mock.ExpectRollback()

	err := suite.repository.UpsertTap(context.Background(), 3, nil)

	suite.Require().Error(err)
}
