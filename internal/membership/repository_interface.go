package membership

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// WithTx returns a Repository bound to tx.
	WithTx(tx *sqlx.Tx) Repository

	Create(ctx context.Context, m *Membership, receiptPrefix string) (int, error)
	Insert(ctx context.Context, m *Membership) (int, error)
	GetByID(ctx context.Context, id int) (*Membership, error)
	GetDetail(ctx context.Context, id int) (*Detail, error)
	ListDetails(ctx context.Context, f ListFilter) ([]Detail, error)
	LatestByUser(ctx context.Context, userID int) (*Membership, error)
	ApplyPatch(ctx context.Context, id int, p Patch) (bool, error)
	Renew(ctx context.Context, id int, r Renewal) error
	Delete(ctx context.Context, id int) (bool, error)

	GetSyncRow(ctx context.Context, id int) (*SyncRow, error)
	ListSyncRows(ctx context.Context) ([]SyncRow, error)
	UpdateState(ctx context.Context, id, stateID, arrears int) (bool, error)

	ReceiptExists(ctx context.Context, receipt string, excludeID int) (bool, error)
	NextReceipt(ctx context.Context, prefix string) (string, error)

	UserExists(ctx context.Context, id int) (bool, error)
	MethodExists(ctx context.Context, id int) (bool, error)
	ManagerExists(ctx context.Context, id int) (bool, error)
	PlanDuration(ctx context.Context, planID int) (int, error)
}

// Renewal rewrites a membership's payment terms in place.
type Renewal struct {
	LastPayment    time.Time
	ExpirationDate time.Time
	ReceiptNumber  string
	PlanID         int
	MethodID       int
	ManagerID      *int
	StateID        int
	DaysArrears    int
}
