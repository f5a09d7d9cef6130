package sections

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/y2k2/globa/internal/server/models"
)

const (
	findAllQuery = `(?s)^SELECT\s+section_id,\s*record_id,\s*title,\s*start_time,\s*end_time\s+FROM\s+sections\s+WHERE\s+record_id\s*=\s*\$1\s+ORDER\s+BY\s+start_time,\s*section_id$`
	deleteQuery  = `^DELETE\s+FROM\s+sections\s+WHERE\s+record_id\s*=\s*\$1$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestFindAllByRecordID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows([]string{"section_id", "record_id", "title", "start_time", "end_time"}).
		AddRow(int64(1), int64(42), "Intro", int64(0), int64(60)).
		AddRow(int64(2), int64(42), "Body", int64(60), int64(300))
	mock.ExpectQuery(findAllQuery).WithArgs(int64(42)).WillReturnRows(rows)

	got, err := repo.FindAllByRecordID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []models.Section{
		{ID: 1, RecordID: 42, Title: "Intro", StartTime: 0, EndTime: 60},
		{ID: 2, RecordID: 42, Title: "Body", StartTime: 60, EndTime: 300},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAllByRecordID_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(findAllQuery).WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"section_id", "record_id", "title", "start_time", "end_time"}))

	got, err := repo.FindAllByRecordID(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindAllByRecordID_ScanError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	rows := sqlmock.NewRows([]string{"section_id", "record_id", "title", "start_time", "end_time"}).
		AddRow("not-a-number", int64(42), "Intro", int64(0), int64(60))
	mock.ExpectQuery(findAllQuery).WithArgs(int64(42)).WillReturnRows(rows)

	_, err := repo.FindAllByRecordID(context.Background(), 42)
	assert.Error(t, err)
}

func TestFindAllByRecordID_QueryError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(findAllQuery).WithArgs(int64(42)).WillReturnError(errors.New("boom"))

	_, err := repo.FindAllByRecordID(context.Background(), 42)
	assert.ErrorContains(t, err, "boom")
}

func TestDeleteByRecordID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(deleteQuery).WithArgs(int64(42)).WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.DeleteByRecordID(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}
