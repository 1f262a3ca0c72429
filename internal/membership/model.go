package membership

import "time"

// Membership is the stored row.
type Membership struct {
	ID                  int       `db:"id_membership" json:"id_membership"`
	LastPayment         time.Time `db:"last_payment" json:"last_payment"`
	ExpirationDate      time.Time `db:"expiration_date" json:"expiration_date"`
	ReceiptNumber       string    `db:"receipt_number" json:"receipt_number"`
	DaysArrears         int       `db:"days_arrears" json:"days_arrears"`
	UserID              int       `db:"id_user" json:"id_user"`
	PlanID              int       `db:"id_plan" json:"id_plan"`
	MethodID            int       `db:"id_method" json:"id_method"`
	StateID             int       `db:"id_state" json:"id_state"`
	ManagerID           *int      `db:"id_manager" json:"id_manager"`
	ManagerNameSnapshot *string   `db:"manager_name_snapshot" json:"manager_name_snapshot,omitempty"`
}

// Detail is a membership joined with its user, plan, payment method, state
// and manager. ManagerName falls back to the snapshot once the manager row
// is gone.
type Detail struct {
	ID              int     `db:"id_membership" json:"id_membership"`
	LastPayment     string  `db:"last_payment" json:"last_payment"`
	ExpirationDate  string  `db:"expiration_date" json:"expiration_date"`
	ReceiptNumber   string  `db:"receipt_number" json:"receipt_number"`
	DaysArrears     int     `db:"days_arrears" json:"days_arrears"`
	UserID          int     `db:"id_user" json:"id_user"`
	UserName        string  `db:"name_user" json:"name_user"`
	Phone           string  `db:"phone" json:"phone"`
	EnrolledAt      string  `db:"enrolled_at" json:"enrolled_at"`
	PlanID          int     `db:"id_plan" json:"id_plan"`
	DaysDuration    int     `db:"days_duration" json:"days_duration"`
	Price           float64 `db:"price" json:"price"`
	PlanDescription string  `db:"plan_description" json:"plan_description"`
	MethodID        int     `db:"id_method" json:"id_method"`
	MethodName      string  `db:"name_method" json:"name_method"`
	StateID         int     `db:"id_state" json:"id_state"`
	StateName       string  `db:"name_state" json:"name_state"`
	ManagerID       *int    `db:"id_manager" json:"id_manager"`
	ManagerName     *string `db:"name_manager" json:"name_manager"`
}

// SyncRow carries what the synchronizer needs to reclassify a membership.
type SyncRow struct {
	ID             int       `db:"id_membership"`
	ExpirationDate time.Time `db:"expiration_date"`
	StateID        int       `db:"id_state"`
	DaysArrears    int       `db:"days_arrears"`
}

// Patch lists the optional fields of a membership update. Nil fields are
// left untouched. State and arrears are never patched directly.
type Patch struct {
	LastPayment    *time.Time
	ExpirationDate *time.Time
	ReceiptNumber  *string
	UserID         *int
	PlanID         *int
	MethodID       *int
	ManagerID      *int
}

func (p Patch) Empty() bool {
	return p.LastPayment == nil && p.ExpirationDate == nil && p.ReceiptNumber == nil &&
		p.UserID == nil && p.PlanID == nil && p.MethodID == nil && p.ManagerID == nil
}

// ListFilter narrows a detail listing. Zero values mean no restriction.
type ListFilter struct {
	UserID    int
	PlanID    int
	MethodID  int
	ManagerID int
	States    []string
	Search    string
	PlanDays  int
}

type CreateMembershipRequest struct {
	UserID        int    `json:"id_user" binding:"required,gt=0"`
	PlanID        int    `json:"id_plan" binding:"required,gt=0"`
	MethodID      int    `json:"id_method" binding:"required,gt=0"`
	ManagerID     int    `json:"id_manager" binding:"omitempty,gt=0"`
	ReceiptNumber string `json:"receipt_number" binding:"omitempty,max=20"`
}

type UpdateMembershipRequest struct {
	LastPayment    *string `json:"last_payment" binding:"omitempty,datetime=2006-01-02"`
	ExpirationDate *string `json:"expiration_date" binding:"omitempty,datetime=2006-01-02"`
	ReceiptNumber  *string `json:"receipt_number" binding:"omitempty,min=1,max=20"`
	UserID         *int    `json:"id_user" binding:"omitempty,gt=0"`
	PlanID         *int    `json:"id_plan" binding:"omitempty,gt=0"`
	MethodID       *int    `json:"id_method" binding:"omitempty,gt=0"`
	ManagerID      *int    `json:"id_manager" binding:"omitempty,gt=0"`
}

// ExportFilter is the query contract of the spreadsheet export.
type ExportFilter struct {
	Search   string `form:"search"`
	State    string `form:"state"`
	PlanDays int    `form:"plan"`
}

type SyncResponse struct {
	Message      string `json:"message" example:"Updated 3 memberships"`
	UpdatedCount int    `json:"updatedCount" example:"3"`
}
