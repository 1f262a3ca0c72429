package manager

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

// @Summary      List managers
// @Tags         managers
// @Produce      json
// @Success      200 {array} manager.Manager
// @Router       /api/managers [get]
func (h *Handler) List(c *gin.Context) {
	managers, err := h.service.List(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, managers)
}

// @Summary      Get a manager
// @Tags         managers
// @Produce      json
// @Param        id path int true "Manager ID"
// @Success      200 {object} manager.Manager
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/managers/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := api.ParamID(c, "id", "manager")
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

// @Summary      Register managers
// @Description  Accepts a single manager or an array of up to 50
// @Tags         managers
// @Accept       json
// @Produce      json
// @Param        request body manager.CreateManagerRequest true "Manager or array of managers"
// @Success      201 {object} manager.Manager
// @Failure      400 {object} api.ErrorResponse
// @Router       /api/managers [post]
func (h *Handler) Create(c *gin.Context) {
	api.CreateOneOrMany(c, maxBatch, "managers", h.service.Register)
}

// @Summary      Update a manager
// @Tags         managers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Manager ID"
// @Param        request body manager.UpdateManagerRequest true "Fields to change"
// @Success      200 {object} manager.Manager
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/managers/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := api.ParamID(c, "id", "manager")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req UpdateManagerRequest
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

// @Summary      Delete a manager
// @Description  Memberships keep the manager's name as a snapshot
// @Tags         managers
// @Security     BearerAuth
// @Param        id path int true "Manager ID"
// @Success      204
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/managers/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := api.ParamID(c, "id", "manager")
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

// @Summary      Log in
// @Tags         managers
// @Accept       json
// @Produce      json
// @Param        request body manager.LoginRequest true "Credentials"
// @Success      200 {object} manager.LoginResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      429 {object} api.ErrorResponse
// @Router       /api/managers/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.RespondError(c, err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
