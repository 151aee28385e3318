package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/schedulr/admin-api/internal/application"
	"github.com/schedulr/admin-api/internal/domain/entity"
	"github.com/schedulr/admin-api/pkg/response"
	"github.com/schedulr/admin-api/pkg/validation"
)

// AdminUserHandler exposes the admin-only user management operations. The
// admin gate runs as route middleware before any of these.
type AdminUserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewAdminUserHandler(svc *userapp.Service, logger *logrus.Logger) *AdminUserHandler {
	return &AdminUserHandler{Svc: svc, Logger: logger}
}

type listUsersRequest struct {
	Search string `form:"search"`
	Skip   *int   `form:"skip" binding:"omitnil,min=0"`
	Take   *int   `form:"take" binding:"omitnil,min=1,max=40"`
}

type addUserRequest struct {
	Name                *string `json:"name"`
	Email               string  `json:"email" binding:"required,email"`
	Username            *string `json:"username"`
	Bio                 *string `json:"bio"`
	TimeZone            *string `json:"timeZone" binding:"omitnil,timezone"`
	WeekStart           *string `json:"weekStart" binding:"omitnil,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	Theme               *string `json:"theme" binding:"omitnil,oneof=light dark system"`
	DefaultScheduleID   *int64  `json:"defaultScheduleId"`
	Locale              *string `json:"locale"`
	TimeFormat          *int    `json:"timeFormat" binding:"omitnil,oneof=12 24"`
	AllowDynamicBooking *bool   `json:"allowDynamicBooking"`
	Role                *string `json:"role" binding:"omitnil,oneof=USER ADMIN"`
}

type updateUserRequest struct {
	Name                *string `json:"name"`
	Email               *string `json:"email" binding:"omitnil,email"`
	Username            *string `json:"username"`
	Bio                 *string `json:"bio"`
	TimeZone            *string `json:"timeZone" binding:"omitnil,timezone"`
	WeekStart           *string `json:"weekStart" binding:"omitnil,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	Theme               *string `json:"theme" binding:"omitnil,oneof=light dark system"`
	DefaultScheduleID   *int64  `json:"defaultScheduleId"`
	Locale              *string `json:"locale"`
	TimeFormat          *int    `json:"timeFormat" binding:"omitnil,oneof=12 24"`
	AllowDynamicBooking *bool   `json:"allowDynamicBooking"`
	Role                *string `json:"role" binding:"omitnil,oneof=USER ADMIN"`
}

// userIDParam parses the :id path segment. Anything non-numeric is a
// validation failure, not a lookup failure.
func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "User id is required", nil)
		return 0, false
	}
	return id, true
}

func (h *AdminUserHandler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, userapp.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, userapp.ErrConflict):
		response.Error(c, http.StatusConflict, "email or username already taken", nil)
	default:
		h.Logger.WithError(err).WithField("path", c.FullPath()).Error("store failure")
		response.Error(c, http.StatusInternalServerError, "internal error", nil)
	}
}

func (h *AdminUserHandler) Get(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	u, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "user", nil)
}

func (h *AdminUserHandler) List(c *gin.Context) {
	var req listUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	in := userapp.ListInput{Search: req.Search}
	if req.Skip != nil {
		in.Skip = *req.Skip
	}
	if req.Take != nil {
		in.Take = *req.Take
	}
	users, err := h.Svc.List(c.Request.Context(), in)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, users, "users", gin.H{"count": len(users)})
}

func (h *AdminUserHandler) Add(c *gin.Context) {
	var req addUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in := userapp.CreateInput{
		Name:                req.Name,
		Email:               req.Email,
		Username:            req.Username,
		Bio:                 req.Bio,
		TimeZone:            req.TimeZone,
		WeekStart:           req.WeekStart,
		Theme:               req.Theme,
		DefaultScheduleID:   req.DefaultScheduleID,
		Locale:              req.Locale,
		TimeFormat:          req.TimeFormat,
		AllowDynamicBooking: req.AllowDynamicBooking,
	}
	if req.Role != nil {
		role := entity.Role(*req.Role)
		in.Role = &role
	}
	u, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": u}, "User added successfully", nil)
}

func (h *AdminUserHandler) Update(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in := userapp.UpdateInput{
		Name:                req.Name,
		Email:               req.Email,
		Username:            req.Username,
		Bio:                 req.Bio,
		TimeZone:            req.TimeZone,
		WeekStart:           req.WeekStart,
		Theme:               req.Theme,
		DefaultScheduleID:   req.DefaultScheduleID,
		Locale:              req.Locale,
		TimeFormat:          req.TimeFormat,
		AllowDynamicBooking: req.AllowDynamicBooking,
	}
	if req.Role != nil {
		role := entity.Role(*req.Role)
		in.Role = &role
	}
	u, err := h.Svc.Update(c.Request.Context(), id, in)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "User updated successfully", nil)
}

func (h *AdminUserHandler) Delete(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "User deleted successfully", nil)
}

// Search queries the Elasticsearch user index.
func (h *AdminUserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error(c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}
