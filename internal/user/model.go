package user

import (
	"time"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/membership"
)

// User is a gym member.
type User struct {
	ID        int       `db:"id_user" json:"id_user"`
	Name      string    `db:"name_user" json:"name_user"`
	Phone     string    `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// UserWithMembership carries the member's latest active membership, or nil.
type UserWithMembership struct {
	User
	ActiveMembership *membership.Detail `json:"active_membership"`
}

type CreateUserRequest struct {
	Name  string `json:"name_user" binding:"required,max=100"`
	Phone string `json:"phone" binding:"required,numeric,len=10"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name_user" binding:"omitempty,min=1,max=100"`
	Phone *string `json:"phone" binding:"omitempty,numeric,len=10"`
}

// EnrollRequest registers a member together with their first membership.
// The manager defaults to the authenticated caller.
type EnrollRequest struct {
	Name          string `json:"name_user" binding:"required,max=100"`
	Phone         string `json:"phone" binding:"required,numeric,len=10"`
	PlanID        int    `json:"id_plan" binding:"required,gt=0"`
	MethodID      int    `json:"id_method" binding:"required,gt=0"`
	ManagerID     int    `json:"id_manager" binding:"omitempty,gt=0"`
	ReceiptNumber string `json:"receipt_number" binding:"required,max=20"`
}

// RenewRequest rewrites a member's details and renews their latest
// membership from today.
type RenewRequest struct {
	Name          string `json:"name_user" binding:"required,max=100"`
	Phone         string `json:"phone" binding:"required,numeric,len=10"`
	PlanID        int    `json:"id_plan" binding:"required,gt=0"`
	MethodID      int    `json:"id_method" binding:"required,gt=0"`
	ManagerID     int    `json:"id_manager" binding:"omitempty,gt=0"`
	ReceiptNumber string `json:"receipt_number" binding:"required,max=20"`
}

type RenewResponse struct {
	Message string `json:"message" example:"User updated successfully"`
	User    *User  `json:"user"`
}
