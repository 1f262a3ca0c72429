package manager

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestRepository_DeleteSnapshotsName(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT name_manager FROM managers WHERE id_manager = \$1 FOR UPDATE`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"name_manager"}).AddRow("Laura"))
	mock.ExpectExec(`UPDATE memberships SET manager_name_snapshot = \$1, id_manager = NULL WHERE id_manager = \$2`).
		WithArgs("Laura", 3).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec(`DELETE FROM managers WHERE id_manager = \$1`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleted, err := repo.Delete(context.Background(), 3)

	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT name_manager FROM managers`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"name_manager"}))
	mock.ExpectCommit()

	deleted, err := repo.Delete(context.Background(), 9)

	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteRollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT name_manager FROM managers`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"name_manager"}).AddRow("Laura"))
	mock.ExpectExec(`UPDATE memberships SET manager_name_snapshot`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.Delete(context.Background(), 3)

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`FROM managers WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("Laura@Biofitness.co").
		WillReturnRows(sqlmock.NewRows([]string{"id_manager", "name_manager", "phone", "email", "password", "status", "created_at", "updated_at"}).
			AddRow(3, "Laura", "3001234567", "laura@biofitness.co", "hash", true, now, now))

	m, err := repo.GetByEmail(context.Background(), "Laura@Biofitness.co")

	require.NoError(t, err)
	assert.Equal(t, 3, m.ID)
	assert.True(t, m.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateRefreshesTimestamp(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	phone := "3110000000"

	mock.ExpectQuery(`UPDATE managers SET .* updated_at = NOW\(\) WHERE id_manager = \$6`).
		WithArgs(nil, phone, nil, nil, nil, 3).
		WillReturnRows(sqlmock.NewRows([]string{"id_manager", "name_manager", "phone", "email", "password", "status", "created_at", "updated_at"}).
			AddRow(3, "Laura", phone, "laura@biofitness.co", "hash", true, now, now))

	m, err := repo.Update(context.Background(), 3, Changes{Phone: &phone})

	require.NoError(t, err)
	assert.Equal(t, phone, m.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}
