package user

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"testing"
	"time"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/apperr"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/membership"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/state"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var enrollToday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

type fakeResolver map[string]int

func (f fakeResolver) ID(ctx context.Context, name string) (int, error) {
	id, ok := f[name]
	if !ok {
		return 0, apperr.Configuration(fmt.Sprintf("State '%s' not found in database", name), sql.ErrNoRows)
	}
	return id, nil
}

func newEnrollmentService(t *testing.T) (Service, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	dbx := sqlx.NewDb(conn, "sqlmock")
	memberships := membership.NewRepository(dbx)
	sync := membership.NewSynchronizer(memberships, fakeResolver{state.Vigente: 1, state.PorVencer: 2, state.Vencido: 3}, time.UTC).
		WithClock(func() time.Time { return enrollToday.Add(9 * time.Hour) })

	return NewService(dbx, NewRepository(dbx), memberships, nil, sync), mock
}

var userRow = []string{"id_user", "name_user", "phone", "created_at", "updated_at"}

func expectExists(mock sqlmock.Sqlmock, pattern string, exists bool, args ...driver.Value) {
	mock.ExpectQuery(pattern).
		WithArgs(args...).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))
}

// expectReferences mirrors membership.CheckReferences for a request
// without a user id.
func expectReferences(mock sqlmock.Sqlmock, planID, days, methodID, managerID int) {
	mock.ExpectQuery(`SELECT days_duration FROM plans WHERE id_plan = \$1`).
		WithArgs(planID).
		WillReturnRows(sqlmock.NewRows([]string{"days_duration"}).AddRow(days))
	expectExists(mock, `FROM payment_methods WHERE id_method = \$1`, true, methodID)
	if managerID != 0 {
		expectExists(mock, `FROM managers WHERE id_manager = \$1`, true, managerID)
	}
}

func expectEnrollPrechecks(mock sqlmock.Sqlmock) {
	expectExists(mock, `FROM users WHERE phone = \$1`, false, "3001234567", 0)
	expectExists(mock, `FROM memberships WHERE receipt_number = \$1`, false, "OG-0000100", 0)
	expectReferences(mock, 2, 30, 1, 9)
}

var enrollReq = EnrollRequest{
	Name:          "Ana",
	Phone:         "3001234567",
	PlanID:        2,
	MethodID:      1,
	ReceiptNumber: "OG-0000100",
}

func TestCreateWithMembership_Commits(t *testing.T) {
	svc, mock := newEnrollmentService(t)
	now := time.Now()

	expectEnrollPrechecks(mock)
	mock.ExpectBegin()
	expectExists(mock, `FROM users WHERE phone = \$1`, false, "3001234567", 0)
	expectReferences(mock, 2, 30, 1, 9)
	mock.ExpectQuery(`INSERT INTO users \(name_user, phone\)`).
		WithArgs("Ana", "3001234567").
		WillReturnRows(sqlmock.NewRows(userRow).AddRow(40, "Ana", "3001234567", now, now))
	expectExists(mock, `FROM memberships WHERE receipt_number = \$1`, false, "OG-0000100", 0)
	mock.ExpectQuery(`INSERT INTO memberships`).
		WithArgs(enrollToday, enrollToday.AddDate(0, 0, 29), "OG-0000100", 0, 40, 2, 1, 1, 9).
		WillReturnRows(sqlmock.NewRows([]string{"id_membership"}).AddRow(77))
	mock.ExpectCommit()
	mock.ExpectQuery(`FROM memberships m .* WHERE m.id_membership = \$1`).
		WithArgs(77).
		WillReturnRows(sqlmock.NewRows([]string{"id_membership", "receipt_number", "name_state", "name_manager"}).
			AddRow(77, "OG-0000100", state.Vigente, "Laura"))

	out, err := svc.CreateWithMembership(context.Background(), enrollReq, 9)

	require.NoError(t, err)
	assert.Equal(t, 40, out.ID)
	require.NotNil(t, out.ActiveMembership)
	assert.Equal(t, 77, out.ActiveMembership.ID)
	assert.Equal(t, state.Vigente, out.ActiveMembership.StateName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithMembership_RollsBackUserOnReceiptRace(t *testing.T) {
	svc, mock := newEnrollmentService(t)
	now := time.Now()

	expectEnrollPrechecks(mock)
	mock.ExpectBegin()
	expectExists(mock, `FROM users WHERE phone = \$1`, false, "3001234567", 0)
	expectReferences(mock, 2, 30, 1, 9)
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(sqlmock.NewRows(userRow).AddRow(41, "Ana", "3001234567", now, now))
	expectExists(mock, `FROM memberships WHERE receipt_number = \$1`, true, "OG-0000100", 0)
	mock.ExpectRollback()

	_, err := svc.CreateWithMembership(context.Background(), enrollReq, 9)
	assert.ErrorIs(t, err, membership.ErrReceiptTaken)

	// The rolled back user is not visible afterwards.
	mock.ExpectQuery(`SELECT id_user, name_user, phone, created_at, updated_at FROM users WHERE id_user = \$1`).
		WithArgs(41).
		WillReturnRows(sqlmock.NewRows(userRow))

	_, err = svc.Get(context.Background(), 41)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithMembership_PhoneRaceInsideTransaction(t *testing.T) {
	svc, mock := newEnrollmentService(t)

	expectEnrollPrechecks(mock)
	mock.ExpectBegin()
	expectExists(mock, `FROM users WHERE phone = \$1`, true, "3001234567", 0)
	mock.ExpectRollback()

	_, err := svc.CreateWithMembership(context.Background(), enrollReq, 9)

	assert.ErrorIs(t, err, ErrPhoneTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithMembership_MissingPlanNeverOpensTransaction(t *testing.T) {
	svc, mock := newEnrollmentService(t)

	expectExists(mock, `FROM users WHERE phone = \$1`, false, "3001234567", 0)
	expectExists(mock, `FROM memberships WHERE receipt_number = \$1`, false, "OG-0000100", 0)
	mock.ExpectQuery(`SELECT days_duration FROM plans`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"days_duration"}))

	_, err := svc.CreateWithMembership(context.Background(), enrollReq, 9)

	assert.ErrorIs(t, err, membership.ErrPlanNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithMembership_PlanRemovedBeforeTransaction(t *testing.T) {
	svc, mock := newEnrollmentService(t)

	expectEnrollPrechecks(mock)
	mock.ExpectBegin()
	expectExists(mock, `FROM users WHERE phone = \$1`, false, "3001234567", 0)
	mock.ExpectQuery(`SELECT days_duration FROM plans WHERE id_plan = \$1`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"days_duration"}))
	mock.ExpectRollback()

	_, err := svc.CreateWithMembership(context.Background(), enrollReq, 9)

	assert.ErrorIs(t, err, membership.ErrPlanNotFound)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithMembership_ForeignKeyRaceIsNotFound(t *testing.T) {
	svc, mock := newEnrollmentService(t)
	now := time.Now()

	expectEnrollPrechecks(mock)
	mock.ExpectBegin()
	expectExists(mock, `FROM users WHERE phone = \$1`, false, "3001234567", 0)
	expectReferences(mock, 2, 30, 1, 9)
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(sqlmock.NewRows(userRow).AddRow(42, "Ana", "3001234567", now, now))
	expectExists(mock, `FROM memberships WHERE receipt_number = \$1`, false, "OG-0000100", 0)
	mock.ExpectQuery(`INSERT INTO memberships`).
		WillReturnError(&pq.Error{Code: "23503", Constraint: membership.MethodConstraint})
	mock.ExpectRollback()

	_, err := svc.CreateWithMembership(context.Background(), enrollReq, 9)

	assert.ErrorIs(t, err, membership.ErrMethodNotFound)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

var membershipRow = []string{
	"id_membership", "last_payment", "expiration_date", "receipt_number", "days_arrears",
	"id_user", "id_plan", "id_method", "id_state", "id_manager", "manager_name_snapshot",
}

func expectRenewPrechecks(mock sqlmock.Sqlmock, now time.Time) {
	mock.ExpectQuery(`FROM users WHERE id_user = \$1`).
		WithArgs(40).
		WillReturnRows(sqlmock.NewRows(userRow).AddRow(40, "Ana", "3001234567", now, now))
	expectExists(mock, `FROM users WHERE phone = \$1`, false, "3001234567", 40)
	expectReferences(mock, 3, 1, 1, 0)
}

var renewReq = RenewRequest{
	Name:          "Ana María",
	Phone:         "3001234567",
	PlanID:        3,
	MethodID:      1,
	ReceiptNumber: "OG-0000200",
}

func TestUpdateWithMembership_RenewsLatestKeepingManager(t *testing.T) {
	svc, mock := newEnrollmentService(t)
	now := time.Now()

	expectRenewPrechecks(mock, now)
	mock.ExpectBegin()
	expectExists(mock, `FROM users WHERE phone = \$1`, false, "3001234567", 40)
	mock.ExpectQuery(`UPDATE users SET name_user = COALESCE\(\$1, name_user\)`).
		WithArgs("Ana María", "3001234567", 40).
		WillReturnRows(sqlmock.NewRows(userRow).AddRow(40, "Ana María", "3001234567", now, now))
	mock.ExpectQuery(`FROM memberships WHERE id_user = \$1 ORDER BY id_membership DESC LIMIT 1`).
		WithArgs(40).
		WillReturnRows(sqlmock.NewRows(membershipRow).
			AddRow(15, enrollToday.AddDate(0, 0, -60), enrollToday.AddDate(0, 0, -31), "OG-0000100", 31, 40, 2, 1, 3, 4, nil))
	expectExists(mock, `FROM memberships WHERE receipt_number = \$1`, false, "OG-0000200", 15)
	expectReferences(mock, 3, 1, 1, 4)
	// A one-day plan renewed today expires today and is already Por vencer.
	mock.ExpectExec(`UPDATE memberships SET last_payment = \$1, expiration_date = \$2`).
		WithArgs(enrollToday, enrollToday, "OG-0000200", 3, 1, 4, 2, 0, 15).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u, err := svc.UpdateWithMembership(context.Background(), 40, renewReq, 9)

	require.NoError(t, err)
	assert.Equal(t, "Ana María", u.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithMembership_FallsBackToCaller(t *testing.T) {
	svc, mock := newEnrollmentService(t)
	now := time.Now()

	expectRenewPrechecks(mock, now)
	mock.ExpectBegin()
	expectExists(mock, `FROM users WHERE phone = \$1`, false, "3001234567", 40)
	mock.ExpectQuery(`UPDATE users`).
		WillReturnRows(sqlmock.NewRows(userRow).AddRow(40, "Ana María", "3001234567", now, now))
	mock.ExpectQuery(`FROM memberships WHERE id_user = \$1`).
		WithArgs(40).
		WillReturnRows(sqlmock.NewRows(membershipRow).
			AddRow(15, enrollToday, enrollToday, "OG-0000100", 0, 40, 2, 1, 2, nil, "Pedro"))
	expectExists(mock, `FROM memberships WHERE receipt_number = \$1`, false, "OG-0000200", 15)
	expectReferences(mock, 3, 1, 1, 9)
	mock.ExpectExec(`UPDATE memberships SET last_payment`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "OG-0000200", 3, 1, 9, 2, 0, 15).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := svc.UpdateWithMembership(context.Background(), 40, renewReq, 9)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithMembership_NoMembershipRollsBack(t *testing.T) {
	svc, mock := newEnrollmentService(t)
	now := time.Now()

	expectRenewPrechecks(mock, now)
	mock.ExpectBegin()
	expectExists(mock, `FROM users WHERE phone = \$1`, false, "3001234567", 40)
	mock.ExpectQuery(`UPDATE users`).
		WillReturnRows(sqlmock.NewRows(userRow).AddRow(40, "Ana María", "3001234567", now, now))
	mock.ExpectQuery(`FROM memberships WHERE id_user = \$1`).
		WithArgs(40).
		WillReturnRows(sqlmock.NewRows(membershipRow))
	mock.ExpectRollback()

	_, err := svc.UpdateWithMembership(context.Background(), 40, renewReq, 9)

	assert.ErrorIs(t, err, ErrNoMembership)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithMembership_UnknownUser(t *testing.T) {
	svc, mock := newEnrollmentService(t)

	mock.ExpectQuery(`FROM users WHERE id_user = \$1`).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(userRow))

	_, err := svc.UpdateWithMembership(context.Background(), 99, renewReq, 9)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithMembership_ManagerRemovedInsideTransaction(t *testing.T) {
	svc, mock := newEnrollmentService(t)
	now := time.Now()

	expectRenewPrechecks(mock, now)
	mock.ExpectBegin()
	expectExists(mock, `FROM users WHERE phone = \$1`, false, "3001234567", 40)
	mock.ExpectQuery(`UPDATE users`).
		WillReturnRows(sqlmock.NewRows(userRow).AddRow(40, "Ana María", "3001234567", now, now))
	mock.ExpectQuery(`FROM memberships WHERE id_user = \$1`).
		WithArgs(40).
		WillReturnRows(sqlmock.NewRows(membershipRow).
			AddRow(15, enrollToday, enrollToday, "OG-0000100", 0, 40, 2, 1, 2, 4, nil))
	expectExists(mock, `FROM memberships WHERE receipt_number = \$1`, false, "OG-0000200", 15)
	mock.ExpectQuery(`SELECT days_duration FROM plans WHERE id_plan = \$1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"days_duration"}).AddRow(1))
	expectExists(mock, `FROM payment_methods WHERE id_method = \$1`, true, 1)
	expectExists(mock, `FROM managers WHERE id_manager = \$1`, false, 4)
	mock.ExpectRollback()

	_, err := svc.UpdateWithMembership(context.Background(), 40, renewReq, 9)

	assert.ErrorIs(t, err, membership.ErrManagerNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
