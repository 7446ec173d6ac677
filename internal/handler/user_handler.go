package handler

import (
	"net/http"

	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/pagination"
	"go-gin-ticket-booking/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("users", h.List)
		router.GET("users/by-email", h.GetByEmail)
		router.GET("users/:id", h.GetByID)
		router.POST("users", h.Create)
		router.PUT("users/:id", h.Update)
		router.DELETE("users/:id", h.Delete)
	}
}

// CreateUserRequest 建立使用者請求
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// UpdateUserRequest 未提供的欄位不變更
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type listUsersQuery struct {
	Name string `form:"name"`
}

type emailQuery struct {
	Email string `form:"email" binding:"required"`
}

func (h *UserHandler) List(c *gin.Context) {
	var query listUsersQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}
	var page pagination.Page
	if err := BindQuery(c, &page); err != nil {
		return
	}
	users, err := h.service.ListByName(c, query.Name, page)
	if err != nil {
		handleError(c, err, "ListUsers")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	user, err := h.service.GetByID(c, id)
	if err != nil {
		handleError(c, err, "GetUserByID")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetByEmail(c *gin.Context) {
	var query emailQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}
	user, err := h.service.GetByEmail(c, query.Email)
	if err != nil {
		handleError(c, err, "GetUserByEmail")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	created, err := h.service.Create(c, &model.User{Name: req.Name, Email: req.Email})
	if err != nil {
		handleError(c, err, "CreateUser")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	params := model.UpdateUserParams{Name: req.Name, Email: req.Email}
	if params.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one of name or email is required"})
		return
	}
	updated, err := h.service.Update(c, id, params)
	if err != nil {
		handleError(c, err, "UpdateUser")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	deleted, err := h.service.Delete(c, id)
	if err != nil {
		handleError(c, err, "DeleteUser")
		return
	}
	respondDeleted(c, deleted, "user")
}
