package user

import (
	"net/http"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/api"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/apperr"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/auth"

	"github.com/gin-gonic/gin"
)

const maxBatch = 100

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200 {array} user.User
// @Failure      500 {object} api.ErrorResponse
// @Router       /api/users [get]
func (h *Handler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} user.User
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/users/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := api.ParamID(c, "id", "user")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	u, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// @Summary      Create users
// @Description  Accepts a single user or an array of up to 100
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body user.CreateUserRequest true "User or array of users"
// @Success      201 {object} user.User
// @Failure      400 {object} api.ErrorResponse
// @Router       /api/users [post]
func (h *Handler) Create(c *gin.Context) {
	api.CreateOneOrMany(c, maxBatch, "users", h.service.Create)
}

// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path int true "User ID"
// @Param        request body user.UpdateUserRequest true "Fields to change"
// @Success      200 {object} user.User
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/users/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := api.ParamID(c, "id", "user")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req UpdateUserRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.RespondError(c, err)
		return
	}

	u, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// @Summary      Delete a user
// @Description  Also removes the user's memberships
// @Tags         users
// @Param        id path int true "User ID"
// @Success      204
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/users/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := api.ParamID(c, "id", "user")
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

// @Summary      List a user's memberships
// @Tags         users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {array} membership.Detail
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/users/{id}/memberships [get]
func (h *Handler) Memberships(c *gin.Context) {
	id, err := api.ParamID(c, "id", "user")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	details, err := h.service.Memberships(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// @Summary      Get a user with their active membership
// @Tags         users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} user.UserWithMembership
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/users/{id}/with-membership [get]
func (h *Handler) GetWithMembership(c *gin.Context) {
	id, err := api.ParamID(c, "id", "user")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	u, err := h.service.GetWithMembership(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// @Summary      List users with their active membership
// @Tags         users
// @Produce      json
// @Success      200 {array} user.UserWithMembership
// @Failure      500 {object} api.ErrorResponse
// @Router       /api/users/with-memberships/active [get]
func (h *Handler) ListWithMemberships(c *gin.Context) {
	users, err := h.service.ListWithMemberships(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// @Summary      Enroll a user
// @Description  Creates the user and their first membership atomically
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body user.EnrollRequest true "User and membership"
// @Success      201 {object} user.UserWithMembership
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/users/with-membership [post]
func (h *Handler) CreateWithMembership(c *gin.Context) {
	actorID, ok := auth.GetManagerID(c)
	if !ok {
		api.RespondError(c, apperr.Auth("Manager not authenticated"))
		return
	}

	var req EnrollRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.RespondError(c, err)
		return
	}

	out, err := h.service.CreateWithMembership(c.Request.Context(), req, actorID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, out)
}

// @Summary      Update a user and renew their membership
// @Description  Renews the user's most recent membership from today
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Param        request body user.RenewRequest true "User and membership"
// @Success      200 {object} user.RenewResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/users/{id}/with-membership [put]
func (h *Handler) UpdateWithMembership(c *gin.Context) {
	actorID, ok := auth.GetManagerID(c)
	if !ok {
		api.RespondError(c, apperr.Auth("Manager not authenticated"))
		return
	}

	id, err := api.ParamID(c, "id", "user")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	var req RenewRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.RespondError(c, err)
		return
	}

	u, err := h.service.UpdateWithMembership(c.Request.Context(), id, req, actorID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, RenewResponse{
		Message: "User updated successfully",
		User:    u,
	})
}
