package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edustack/lms-api/internal/models"
	"github.com/edustack/lms-api/internal/service"
	appErrors "github.com/edustack/lms-api/pkg/errors"
	"github.com/edustack/lms-api/pkg/response"
)

// LecturerHandler wires lecturer services to HTTP routes.
type LecturerHandler struct {
	lecturers *service.LecturerService
}

// NewLecturerHandler constructs a new LecturerHandler.
func NewLecturerHandler(lecturers *service.LecturerService) *LecturerHandler {
	return &LecturerHandler{lecturers: lecturers}
}

// Register godoc
// @Summary Register a lecturer account
// @Tags Lecturers
// @Accept json
// @Produce json
// @Param payload body service.RegisterLecturerRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /lecturers/register [post]
func (h *LecturerHandler) Register(c *gin.Context) {
	var req service.RegisterLecturerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}
	auth, err := h.lecturers.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Lecturer registered successfully", auth)
}

// Login godoc
// @Summary Log a lecturer in
// @Tags Lecturers
// @Accept json
// @Produce json
// @Param payload body service.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /lecturers/login [post]
func (h *LecturerHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	auth, err := h.lecturers.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Login successful", auth)
}

// Logout godoc
// @Summary Log a lecturer out
// @Tags Lecturers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /lecturers/logout [post]
func (h *LecturerHandler) Logout(c *gin.Context) {
	// Tokens are stateless; the client discards its copy.
	response.Message(c, "Logout successful", nil)
}

// List godoc
// @Summary List lecturers
// @Tags Lecturers
// @Produce json
// @Param search query string false "Search by name/email/department"
// @Param department query string false "Filter by department"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (name,email,department,created_at)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /lecturers [get]
func (h *LecturerHandler) List(c *gin.Context) {
	filter := models.LecturerFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		Department: strings.TrimSpace(c.Query("department")),
		SortBy:     c.Query("sort"),
		SortOrder:  c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	lecturers, pagination, err := h.lecturers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lecturers, pagination)
}

// Get godoc
// @Summary Get lecturer detail
// @Tags Lecturers
// @Produce json
// @Param id path string true "Lecturer ID"
// @Success 200 {object} response.Envelope
// @Router /lecturers/{id} [get]
func (h *LecturerHandler) Get(c *gin.Context) {
	lecturer, err := h.lecturers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lecturer, nil)
}

// Courses godoc
// @Summary List a lecturer's courses
// @Tags Lecturers
// @Produce json
// @Param id path string true "Lecturer ID"
// @Success 200 {object} response.Envelope
// @Router /lecturers/{id}/courses [get]
func (h *LecturerHandler) Courses(c *gin.Context) {
	courses, err := h.lecturers.Courses(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Update godoc
// @Summary Update a lecturer profile
// @Tags Lecturers
// @Accept json
// @Produce json
// @Param id path string true "Lecturer ID"
// @Param payload body service.UpdateLecturerRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Router /lecturers/{id} [put]
func (h *LecturerHandler) Update(c *gin.Context) {
	var req service.UpdateLecturerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lecturer payload"))
		return
	}
	lecturer, err := h.lecturers.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Lecturer updated successfully", lecturer)
}

// Delete godoc
// @Summary Delete a lecturer account
// @Tags Lecturers
// @Param id path string true "Lecturer ID"
// @Success 204
// @Router /lecturers/{id} [delete]
func (h *LecturerHandler) Delete(c *gin.Context) {
	if err := h.lecturers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
