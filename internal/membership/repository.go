package membership

import (
	"context"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ReceiptConstraint is the unique constraint backing receipt numbers.
const ReceiptConstraint = "memberships_receipt_number_key"

// Foreign keys from memberships to the rows they reference.
const (
	UserConstraint    = "memberships_id_user_fkey"
	PlanConstraint    = "memberships_id_plan_fkey"
	MethodConstraint  = "memberships_id_method_fkey"
	StateConstraint   = "memberships_id_state_fkey"
	ManagerConstraint = "memberships_id_manager_fkey"
)

const detailSelect = `
	SELECT
		m.id_membership,
		TO_CHAR(m.last_payment, 'YYYY-MM-DD') AS last_payment,
		TO_CHAR(m.expiration_date, 'YYYY-MM-DD') AS expiration_date,
		m.receipt_number,
		m.days_arrears,
		u.id_user,
		u.name_user,
		u.phone,
		TO_CHAR(u.created_at, 'YYYY-MM-DD') AS enrolled_at,
		p.id_plan,
		p.days_duration,
		p.price,
		p.plan_description,
		pm.id_method,
		pm.name_method,
		s.id_state,
		s.name_state,
		m.id_manager,
		COALESCE(man.name_manager, m.manager_name_snapshot) AS name_manager
	FROM memberships m
	JOIN users u ON m.id_user = u.id_user
	JOIN plans p ON m.id_plan = p.id_plan
	JOIN payment_methods pm ON m.id_method = pm.id_method
	JOIN states s ON m.id_state = s.id_state
	LEFT JOIN managers man ON m.id_manager = man.id_manager
`

const membershipColumns = `
	id_membership, last_payment, expiration_date, receipt_number, days_arrears,
	id_user, id_plan, id_method, id_state, id_manager, manager_name_snapshot
`

type repository struct {
	db   *sqlx.DB
	exec db.Querier
}

func NewRepository(conn *sqlx.DB) Repository {
	return &repository{db: conn, exec: conn}
}

func (r *repository) WithTx(tx *sqlx.Tx) Repository {
	return &repository{db: r.db, exec: tx}
}

// Create inserts m in its own transaction. When m has no receipt number the
// next one for receiptPrefix is allocated under a transaction-scoped
// advisory lock, so concurrent creates never draw the same number.
func (r *repository) Create(ctx context.Context, m *Membership, receiptPrefix string) (int, error) {
	var id int
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		txRepo := r.WithTx(tx)

		if m.ReceiptNumber == "" {
			receipt, err := txRepo.NextReceipt(ctx, receiptPrefix)
			if err != nil {
				return err
			}
			m.ReceiptNumber = receipt
		}

		var err error
		id, err = txRepo.Insert(ctx, m)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Insert(ctx context.Context, m *Membership) (int, error) {
	query := `
		INSERT INTO memberships (
			last_payment, expiration_date, receipt_number, days_arrears,
			id_user, id_plan, id_method, id_state, id_manager
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id_membership
	`

	var id int
	err := r.exec.QueryRowxContext(ctx, query,
		m.LastPayment, m.ExpirationDate, m.ReceiptNumber, m.DaysArrears,
		m.UserID, m.PlanID, m.MethodID, m.StateID, m.ManagerID,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	m.ID = id
	return id, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE id_membership = $1`

	var m Membership
	if err := r.exec.GetContext(ctx, &m, query, id); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) GetDetail(ctx context.Context, id int) (*Detail, error) {
	var d Detail
	if err := r.exec.GetContext(ctx, &d, detailSelect+` WHERE m.id_membership = $1`, id); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDetails returns joined memberships, newest first. Every filter is a
// fixed predicate that is disabled by its zero value.
func (r *repository) ListDetails(ctx context.Context, f ListFilter) ([]Detail, error) {
	query := detailSelect + `
		WHERE ($1 = 0 OR m.id_user = $1)
		  AND ($2 = 0 OR m.id_plan = $2)
		  AND ($3 = 0 OR m.id_method = $3)
		  AND ($4 = 0 OR m.id_manager = $4)
		  AND (cardinality($5::text[]) = 0 OR s.name_state = ANY($5::text[]))
		  AND ($6 = '' OR u.name_user ILIKE '%' || $6 || '%' OR u.phone ILIKE '%' || $6 || '%')
		  AND ($7 = 0 OR p.days_duration = $7)
		ORDER BY m.id_membership DESC
	`

	states := f.States
	if states == nil {
		states = []string{}
	}

	details := []Detail{}
	err := r.exec.SelectContext(ctx, &details, query,
		f.UserID, f.PlanID, f.MethodID, f.ManagerID, pq.Array(states), f.Search, f.PlanDays)
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (r *repository) LatestByUser(ctx context.Context, userID int) (*Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE id_user = $1
		ORDER BY id_membership DESC
		LIMIT 1
	`

	var m Membership
	if err := r.exec.GetContext(ctx, &m, query, userID); err != nil {
		return nil, err
	}
	return &m, nil
}

// ApplyPatch writes only the fields present in p. Absent fields bind as
// NULL and COALESCE keeps the stored value.
func (r *repository) ApplyPatch(ctx context.Context, id int, p Patch) (bool, error) {
	query := `
		UPDATE memberships
		SET last_payment = COALESCE($1, last_payment),
			expiration_date = COALESCE($2, expiration_date),
			receipt_number = COALESCE($3, receipt_number),
			id_user = COALESCE($4, id_user),
			id_plan = COALESCE($5, id_plan),
			id_method = COALESCE($6, id_method),
			id_manager = COALESCE($7, id_manager)
		WHERE id_membership = $8
	`

	res, err := r.exec.ExecContext(ctx, query,
		p.LastPayment, p.ExpirationDate, p.ReceiptNumber,
		p.UserID, p.PlanID, p.MethodID, p.ManagerID, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) Renew(ctx context.Context, id int, rn Renewal) error {
	query := `
		UPDATE memberships
		SET last_payment = $1,
			expiration_date = $2,
			receipt_number = $3,
			id_plan = $4,
			id_method = $5,
			id_manager = $6,
			id_state = $7,
			days_arrears = $8
		WHERE id_membership = $9
	`

	_, err := r.exec.ExecContext(ctx, query,
		rn.LastPayment, rn.ExpirationDate, rn.ReceiptNumber, rn.PlanID, rn.MethodID,
		rn.ManagerID, rn.StateID, rn.DaysArrears, id)
	return err
}

func (r *repository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.exec.ExecContext(ctx, `DELETE FROM memberships WHERE id_membership = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) GetSyncRow(ctx context.Context, id int) (*SyncRow, error) {
	query := `
		SELECT id_membership, expiration_date, id_state, days_arrears
		FROM memberships
		WHERE id_membership = $1
	`

	var row SyncRow
	if err := r.exec.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListSyncRows(ctx context.Context) ([]SyncRow, error) {
	query := `
		SELECT id_membership, expiration_date, id_state, days_arrears
		FROM memberships
		ORDER BY id_membership
	`

	rows := []SyncRow{}
	if err := r.exec.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateState is a compare-and-write: it only touches the row when the
// stored state or arrears differ, and reports whether it did.
func (r *repository) UpdateState(ctx context.Context, id, stateID, arrears int) (bool, error) {
	query := `
		UPDATE memberships
		SET id_state = $1, days_arrears = $2
		WHERE id_membership = $3
		  AND (id_state <> $1 OR days_arrears <> $2)
	`

	res, err := r.exec.ExecContext(ctx, query, stateID, arrears, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) ReceiptExists(ctx context.Context, receipt string, excludeID int) (bool, error) {
	return db.Exists(ctx, r.exec,
		`SELECT EXISTS(SELECT 1 FROM memberships WHERE receipt_number = $1 AND id_membership <> $2)`,
		receipt, excludeID)
}

// NextReceipt must run inside a transaction: the advisory lock it takes is
// released on commit or rollback.
func (r *repository) NextReceipt(ctx context.Context, prefix string) (string, error) {
	if _, err := r.exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext('memberships.receipt_number'))`); err != nil {
		return "", err
	}

	var last []string
	query := `
		SELECT receipt_number
		FROM memberships
		WHERE receipt_number ~ $1
		ORDER BY receipt_number DESC
		LIMIT 1
	`
	if err := r.exec.SelectContext(ctx, &last, query, receiptPattern(prefix)); err != nil {
		return "", err
	}

	if len(last) == 0 {
		return NextReceipt(prefix, "")
	}
	return NextReceipt(prefix, last[0])
}

func (r *repository) UserExists(ctx context.Context, id int) (bool, error) {
	return db.Exists(ctx, r.exec, `SELECT EXISTS(SELECT 1 FROM users WHERE id_user = $1)`, id)
}

func (r *repository) MethodExists(ctx context.Context, id int) (bool, error) {
	return db.Exists(ctx, r.exec, `SELECT EXISTS(SELECT 1 FROM payment_methods WHERE id_method = $1)`, id)
}

func (r *repository) ManagerExists(ctx context.Context, id int) (bool, error) {
	return db.Exists(ctx, r.exec, `SELECT EXISTS(SELECT 1 FROM managers WHERE id_manager = $1)`, id)
}

func (r *repository) PlanDuration(ctx context.Context, planID int) (int, error) {
	var days int
	err := r.exec.GetContext(ctx, &days, `SELECT days_duration FROM plans WHERE id_plan = $1`, planID)
	return days, err
}
