package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enrollBody(name, phone string, planID, methodID int, receipt string) string {
	return fmt.Sprintf(`{"name_user":%q,"phone":%q,"id_plan":%d,"id_method":%d,"receipt_number":%q}`,
		name, phone, planID, methodID, receipt)
}

func TestEnrollment_Integration(t *testing.T) {
	f := setup(t)

	t.Run("creates user and membership together", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/users/with-membership", enrollBody("Ana", "3001234567", f.monthPlan, f.method, "OG-0000100"))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var got user.UserWithMembership
		decode(t, w, &got)
		require.NotNil(t, got.ActiveMembership)
		assert.Equal(t, "Vigente", got.ActiveMembership.StateName)
		assert.Equal(t, today().AddDate(0, 0, 29).Format("2006-01-02"), got.ActiveMembership.ExpirationDate)
		assert.Equal(t, 0, got.ActiveMembership.DaysArrears)
		require.NotNil(t, got.ActiveMembership.ManagerName)
		assert.Equal(t, "Laura", *got.ActiveMembership.ManagerName)
	})

	t.Run("duplicate phone leaves nothing behind", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/users/with-membership", enrollBody("Otra", "3001234567", f.monthPlan, f.method, "OG-0000101"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Phone number already exists")
		assert.Equal(t, 1, f.count(t, "users"))
		assert.Equal(t, 1, f.count(t, "memberships"))
	})

	t.Run("duplicate receipt rolls back the user", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/users/with-membership", enrollBody("Luis", "3009999999", f.monthPlan, f.method, "OG-0000100"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Receipt number already exists")
		assert.Equal(t, 1, f.count(t, "users"))
	})

	t.Run("unknown plan", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/users/with-membership", enrollBody("Luis", "3009999999", 999, f.method, "OG-0000102"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, 1, f.count(t, "users"))
	})

	t.Run("renewal restarts the latest membership today", func(t *testing.T) {
		_, err := f.db.Exec(`UPDATE memberships SET last_payment = $1, expiration_date = $2`,
			today().AddDate(0, 0, -40), today().AddDate(0, 0, -11))
		require.NoError(t, err)

		var userID int
		require.NoError(t, f.db.Get(&userID, `SELECT id_user FROM users WHERE phone = '3001234567'`))

		w := f.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d/with-membership", userID),
			enrollBody("Ana María", "3001234567", f.dayPlan, f.method, "OG-0000103"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "User updated successfully")

		var row struct {
			Expiration string `db:"expiration"`
			State      string `db:"name_state"`
			Arrears    int    `db:"days_arrears"`
			Receipt    string `db:"receipt_number"`
		}
		require.NoError(t, f.db.Get(&row, `
			SELECT TO_CHAR(m.expiration_date, 'YYYY-MM-DD') AS expiration, s.name_state, m.days_arrears, m.receipt_number
			FROM memberships m JOIN states s ON s.id_state = m.id_state`))
		assert.Equal(t, today().Format("2006-01-02"), row.Expiration)
		assert.Equal(t, "Por vencer", row.State)
		assert.Equal(t, 0, row.Arrears)
		assert.Equal(t, "OG-0000103", row.Receipt)
	})

	t.Run("requires an authenticated manager", func(t *testing.T) {
		token := f.token
		f.token = ""
		defer func() { f.token = token }()

		w := f.do(t, http.MethodPost, "/api/users/with-membership", enrollBody("Eva", "3005555555", f.monthPlan, f.method, "OG-0000104"))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUserDeleteCascades_Integration(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/users/with-membership", enrollBody("Ana", "3001234567", f.monthPlan, f.method, "OG-0000001"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var got user.UserWithMembership
	decode(t, w, &got)

	w = f.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", got.ID), "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, f.count(t, "memberships"))
}
