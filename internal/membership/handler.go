package membership

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/api"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/apperr"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      List memberships
// @Description  Refreshes every membership's state before listing
// @Tags         memberships
// @Produce      json
// @Success      200 {array} membership.Detail
// @Failure      500 {object} api.ErrorResponse
// @Router       /api/memberships [get]
func (h *Handler) List(c *gin.Context) {
	details, err := h.service.List(c.Request.Context(), ListFilter{})
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// @Summary      List active memberships
// @Description  Memberships in state Vigente or Por vencer as of today
// @Tags         memberships
// @Produce      json
// @Success      200 {array} membership.Detail
// @Failure      500 {object} api.ErrorResponse
// @Router       /api/memberships/active [get]
func (h *Handler) ListActive(c *gin.Context) {
	details, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// ListInState serves the memberships whose refreshed state is one of states.
//
// @Summary      List memberships by state
// @Description  /expiring lists Por vencer, /expired lists Vencido
// @Tags         memberships
// @Produce      json
// @Success      200 {array} membership.Detail
// @Failure      500 {object} api.ErrorResponse
// @Router       /api/memberships/expiring [get]
// @Router       /api/memberships/expired [get]
func (h *Handler) ListInState(states ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		details, err := h.service.List(c.Request.Context(), ListFilter{States: states})
		if err != nil {
			api.RespondError(c, err)
			return
		}

		c.JSON(http.StatusOK, details)
	}
}

// ListBy serves the memberships of one user, plan, payment method or
// manager, taking the id from the :id path parameter.
func (h *Handler) ListBy(entity string, apply func(f *ListFilter, id int)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := api.ParamID(c, "id", entity)
		if err != nil {
			api.RespondError(c, err)
			return
		}

		var f ListFilter
		apply(&f, id)
		details, err := h.service.List(c.Request.Context(), f)
		if err != nil {
			api.RespondError(c, err)
			return
		}

		c.JSON(http.StatusOK, details)
	}
}

// @Summary      Get a membership
// @Tags         memberships
// @Produce      json
// @Param        id path int true "Membership ID"
// @Success      200 {object} membership.Detail
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/memberships/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := api.ParamID(c, "id", "membership")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	d, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

// @Summary      Create a membership
// @Description  Receipt number is generated when omitted; manager defaults to the caller
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body membership.CreateMembershipRequest true "Membership payload"
// @Success      201 {object} membership.Detail
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/memberships [post]
func (h *Handler) Create(c *gin.Context) {
	actorID, ok := auth.GetManagerID(c)
	if !ok {
		api.RespondError(c, apperr.Auth("Manager not authenticated"))
		return
	}

	var req CreateMembershipRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.RespondError(c, err)
		return
	}

	d, err := h.service.Create(c.Request.Context(), req, actorID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, d)
}

// @Summary      Update a membership
// @Description  Partial update; state and arrears are recomputed afterwards
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Membership ID"
// @Param        request body membership.UpdateMembershipRequest true "Fields to change"
// @Success      200 {object} membership.Detail
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/memberships/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := api.ParamID(c, "id", "membership")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req UpdateMembershipRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.RespondError(c, err)
		return
	}

	d, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

// @Summary      Delete a membership
// @Tags         memberships
// @Security     BearerAuth
// @Param        id path int true "Membership ID"
// @Success      204
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/memberships/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := api.ParamID(c, "id", "membership")
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

// @Summary      Recompute membership states
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} membership.SyncResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /api/memberships/update-states [post]
func (h *Handler) UpdateStates(c *gin.Context) {
	n, err := h.service.SyncStates(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SyncResponse{
		Message:      fmt.Sprintf("Updated %d memberships", n),
		UpdatedCount: n,
	})
}

// @Summary      Export memberships
// @Description  Spreadsheet download. Filters: search (name or phone), state (name), plan (duration in days)
// @Tags         memberships
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        search query string false "Name or phone substring"
// @Param        state query string false "State name"
// @Param        plan query int false "Plan duration in days"
// @Success      200 {file} file
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /api/memberships/export [get]
func (h *Handler) Export(c *gin.Context) {
	var f ExportFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		api.RespondError(c, apperr.Validation("Invalid export filters"))
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(c.Request.Context(), f, &buf); err != nil {
		api.RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="membresias.xlsx"`)
	c.Data(http.StatusOK, ExportContentType, buf.Bytes())
}
