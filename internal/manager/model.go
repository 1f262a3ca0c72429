package manager

import "time"

// Manager is a staff operator. The password hash never leaves the server.
type Manager struct {
	ID        int       `db:"id_manager" json:"id_manager"`
	Name      string    `db:"name_manager" json:"name_manager"`
	Phone     string    `db:"phone" json:"phone"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"`
	Status    bool      `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type CreateManagerRequest struct {
	Name     string `json:"name_manager" binding:"required,max=100"`
	Phone    string `json:"phone" binding:"required,numeric,len=10"`
	Email    string `json:"email" binding:"required,email,max=150"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type UpdateManagerRequest struct {
	Name     *string `json:"name_manager" binding:"omitempty,min=1,max=100"`
	Phone    *string `json:"phone" binding:"omitempty,numeric,len=10"`
	Email    *string `json:"email" binding:"omitempty,email,max=150"`
	Password *string `json:"password" binding:"omitempty,min=6,max=72"`
	Status   *bool   `json:"status"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type Identity struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LoginResponse struct {
	Token   string   `json:"token"`
	Manager Identity `json:"manager"`
}

// Changes is a validated manager update. Nil fields are left untouched.
type Changes struct {
	Name         *string
	Phone        *string
	Email        *string
	PasswordHash *string
	Status       *bool
}
