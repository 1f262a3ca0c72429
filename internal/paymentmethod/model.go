package paymentmethod

type PaymentMethod struct {
	ID   int    `db:"id_method" json:"id_method"`
	Name string `db:"name_method" json:"name_method"`
}

type CreatePaymentMethodRequest struct {
	Name string `json:"name_method" binding:"required,max=50"`
}

type UpdatePaymentMethodRequest struct {
	Name string `json:"name_method" binding:"required,max=50"`
}
