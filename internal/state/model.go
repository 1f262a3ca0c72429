package state

type State struct {
	ID   int    `db:"id_state" json:"id_state"`
	Name string `db:"name_state" json:"name_state"`
}

type CreateStateRequest struct {
	Name string `json:"name_state" binding:"required,max=50"`
}

type UpdateStateRequest struct {
	Name string `json:"name_state" binding:"required,max=50"`
}
