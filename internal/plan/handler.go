package plan

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

// @Summary      List plans
// @Tags         plans
// @Produce      json
// @Success      200 {array} plan.Plan
// @Router       /api/plans [get]
func (h *Handler) List(c *gin.Context) {
	plans, err := h.service.List(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// @Summary      Get a plan
// @Tags         plans
// @Produce      json
// @Param        id path int true "Plan ID"
// @Success      200 {object} plan.Plan
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/plans/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := api.ParamID(c, "id", "plan")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// @Summary      Create one or more plans
// @Description  Accepts a single object or an array of up to 50
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        request body plan.CreatePlanRequest true "Plan payload"
// @Success      201 {object} plan.Plan
// @Failure      400 {object} api.ErrorResponse
// @Router       /api/plans [post]
func (h *Handler) Create(c *gin.Context) {
	api.CreateOneOrMany(c, maxBatch, "plans", h.service.Create)
}

// @Summary      Update a plan
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        id path int true "Plan ID"
// @Param        request body plan.UpdatePlanRequest true "Fields to change"
// @Success      200 {object} plan.Plan
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/plans/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := api.ParamID(c, "id", "plan")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req UpdatePlanRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.RespondError(c, err)
		return
	}

	p, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// @Summary      Delete a plan
// @Description  Refused while any membership uses this plan
// @Tags         plans
// @Param        id path int true "Plan ID"
// @Success      204
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/plans/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := api.ParamID(c, "id", "plan")
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
