package user

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*sqlx.DB, Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	conn := sqlx.NewDb(db, "sqlmock")
	return conn, NewRepository(conn), mock
}

func TestRepository_List(t *testing.T) {
	_, repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT id_user, name_user, phone, created_at, updated_at FROM users ORDER BY id_user DESC`).
		WillReturnRows(sqlmock.NewRows(userRow).
			AddRow(2, "Luis", "3007654321", now, now).
			AddRow(1, "Ana", "3001234567", now, now))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Luis", users[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListEmpty(t *testing.T) {
	_, repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM users`).WillReturnRows(sqlmock.NewRows(userRow))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	_, repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM users WHERE id_user = \$1`).
		WithArgs(9).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_PhoneExists(t *testing.T) {
	_, repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM users WHERE phone = $1 AND id_user <> $2)`)).
		WithArgs("3001234567", 4).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.PhoneExists(context.Background(), "3001234567", 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create(t *testing.T) {
	_, repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users \(name_user, phone\)`).
		WithArgs("Ana", "3001234567").
		WillReturnRows(sqlmock.NewRows(userRow).AddRow(1, "Ana", "3001234567", now, now))

	u, err := repo.Create(context.Background(), "Ana", "3001234567")
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdatePartial(t *testing.T) {
	_, repo, mock := newMockRepo(t)
	now := time.Now()
	phone := "3110000000"

	mock.ExpectQuery(`UPDATE users\s+SET name_user = COALESCE\(\$1, name_user\)`).
		WithArgs(nil, phone, 5).
		WillReturnRows(sqlmock.NewRows(userRow).AddRow(5, "Ana", phone, now, now))

	u, err := repo.Update(context.Background(), 5, nil, &phone)
	require.NoError(t, err)
	assert.Equal(t, phone, u.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	_, repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM users WHERE id_user = \$1`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM users WHERE id_user = \$1`).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), 4)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_WithTx(t *testing.T) {
	conn, repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Eva", "3200000000").
		WillReturnRows(sqlmock.NewRows(userRow).AddRow(8, "Eva", "3200000000", now, now))
	mock.ExpectRollback()

	tx, err := conn.Beginx()
	require.NoError(t, err)

	u, err := repo.WithTx(tx).Create(context.Background(), "Eva", "3200000000")
	require.NoError(t, err)
	assert.Equal(t, 8, u.ID)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
