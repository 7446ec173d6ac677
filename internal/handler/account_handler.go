package handler

import (
	"net/http"

	"go-gin-ticket-booking/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AccountHandler struct {
	service service.AccountService
}

func NewAccountHandler(service service.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

func (h *AccountHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("accounts", h.Create)
		router.GET("accounts/:user_id", h.GetByUserID)
		router.POST("accounts/:user_id/refill", h.Refill)
		router.POST("accounts/:user_id/charge", h.Charge)
		router.DELETE("accounts/:user_id", h.Delete)
	}
}

type CreateAccountRequest struct {
	UserID int `json:"user_id" binding:"required"`
}

// AmountRequest 金額可用 JSON 數字或字串，例如 12.5 或 "12.50"
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type userIDUri struct {
	UserID int `uri:"user_id" binding:"required,min=1"`
}

func bindUserID(c *gin.Context) (int, bool) {
	var uri userIDUri
	if err := BindUri(c, &uri); err != nil {
		return 0, false
	}
	return uri.UserID, true
}

func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	account, err := h.service.Create(c, req.UserID)
	if err != nil {
		handleError(c, err, "CreateAccount")
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (h *AccountHandler) GetByUserID(c *gin.Context) {
	userID, ok := bindUserID(c)
	if !ok {
		return
	}
	account, err := h.service.GetByUserID(c, userID)
	if err != nil {
		handleError(c, err, "GetAccount")
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) Refill(c *gin.Context) {
	userID, ok := bindUserID(c)
	if !ok {
		return
	}
	var req AmountRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	account, err := h.service.Refill(c, userID, req.Amount)
	if err != nil {
		handleError(c, err, "RefillAccount")
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) Charge(c *gin.Context) {
	userID, ok := bindUserID(c)
	if !ok {
		return
	}
	var req AmountRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	account, err := h.service.Charge(c, userID, req.Amount)
	if err != nil {
		handleError(c, err, "ChargeAccount")
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) Delete(c *gin.Context) {
	userID, ok := bindUserID(c)
	if !ok {
		return
	}
	deleted, err := h.service.Delete(c, userID)
	if err != nil {
		handleError(c, err, "DeleteAccount")
		return
	}
	respondDeleted(c, deleted, "account")
}
