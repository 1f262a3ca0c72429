package plan

type Plan struct {
	ID           int     `db:"id_plan" json:"id_plan"`
	DaysDuration int     `db:"days_duration" json:"days_duration"`
	Price        float64 `db:"price" json:"price"`
	Description  string  `db:"plan_description" json:"plan_description"`
}

type CreatePlanRequest struct {
	DaysDuration int     `json:"days_duration" binding:"required,gt=0"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	Description  string  `json:"plan_description" binding:"required,max=255"`
}

type UpdatePlanRequest struct {
	DaysDuration *int     `json:"days_duration" binding:"omitempty,gt=0"`
	Price        *float64 `json:"price" binding:"omitempty,gt=0"`
	Description  *string  `json:"plan_description" binding:"omitempty,max=255"`
}
