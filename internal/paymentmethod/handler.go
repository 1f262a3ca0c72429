package paymentmethod

import (
	"net/http"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/api"

	"github.com/gin-gonic/gin"
)

const maxBatch = 50

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      List payment methods
// @Tags         payment-methods
// @Produce      json
// @Success      200 {array} paymentmethod.PaymentMethod
// @Router       /api/payment-methods [get]
func (h *Handler) List(c *gin.Context) {
	methods, err := h.service.List(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, methods)
}

// @Summary      Get a payment method
// @Tags         payment-methods
// @Produce      json
// @Param        id path int true "Payment method ID"
// @Success      200 {object} paymentmethod.PaymentMethod
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/payment-methods/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := api.ParamID(c, "id", "payment method")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	m, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

// @Summary      Create one or more payment methods
// @Description  Accepts a single object or an array of up to 50
// @Tags         payment-methods
// @Accept       json
// @Produce      json
// @Param        request body paymentmethod.CreatePaymentMethodRequest true "Payment method payload"
// @Success      201 {object} paymentmethod.PaymentMethod
// @Failure      400 {object} api.ErrorResponse
// @Router       /api/payment-methods [post]
func (h *Handler) Create(c *gin.Context) {
	api.CreateOneOrMany(c, maxBatch, "payment methods", h.service.Create)
}

// @Summary      Update a payment method
// @Tags         payment-methods
// @Accept       json
// @Produce      json
// @Param        id path int true "Payment method ID"
// @Param        request body paymentmethod.UpdatePaymentMethodRequest true "Payment method payload"
// @Success      200 {object} paymentmethod.PaymentMethod
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/payment-methods/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := api.ParamID(c, "id", "payment method")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req UpdatePaymentMethodRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.RespondError(c, err)
		return
	}

	m, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

// @Summary      Delete a payment method
// @Description  Refused while any membership was paid with this method
// @Tags         payment-methods
// @Param        id path int true "Payment method ID"
// @Success      204
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/payment-methods/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := api.ParamID(c, "id", "payment method")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		api.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
