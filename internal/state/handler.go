package state

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

// @Summary      List states
// @Tags         states
// @Produce      json
// @Success      200 {array} state.State
// @Failure      500 {object} api.ErrorResponse
// @Router       /api/states [get]
func (h *Handler) List(c *gin.Context) {
	states, err := h.service.List(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, states)
}

// @Summary      Get a state
// @Tags         states
// @Produce      json
// @Param        id path int true "State ID"
// @Success      200 {object} state.State
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/states/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := api.ParamID(c, "id", "state")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	st, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, st)
}

// @Summary      Create one or more states
// @Description  Accepts a single object or an array of up to 50
// @Tags         states
// @Accept       json
// @Produce      json
// @Param        request body state.CreateStateRequest true "State payload"
// @Success      201 {object} state.State
// @Failure      400 {object} api.ErrorResponse
// @Router       /api/states [post]
func (h *Handler) Create(c *gin.Context) {
	api.CreateOneOrMany(c, maxBatch, "states", h.service.Create)
}

// @Summary      Update a state
// @Tags         states
// @Accept       json
// @Produce      json
// @Param        id path int true "State ID"
// @Param        request body state.UpdateStateRequest true "State payload"
// @Success      200 {object} state.State
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/states/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := api.ParamID(c, "id", "state")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req UpdateStateRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.RespondError(c, err)
		return
	}

	st, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, st)
}

// @Summary      Delete a state
// @Description  Refused while any membership is in this state
// @Tags         states
// @Param        id path int true "State ID"
// @Success      204
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/states/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := api.ParamID(c, "id", "state")
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
