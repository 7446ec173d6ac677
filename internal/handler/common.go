package handler

import (
	"errors"
	"net/http"

	apperrors "go-gin-ticket-booking/pkg/app_errors"
	"go-gin-ticket-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// idUri 路徑中的整數 id，例如 /users/:id
type idUri struct {
	ID int `uri:"id" binding:"required,min=1"`
}

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindUri(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindUri(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// bindID 解析 :id，失敗時已回應 400
func bindID(c *gin.Context) (int, bool) {
	var uri idUri
	if err := BindUri(c, &uri); err != nil {
		return 0, false
	}
	return uri.ID, true
}

// respondDeleted 刪除成功回 204；找不到資料回 404
func respondDeleted(c *gin.Context, deleted bool, resource string) {
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		log.Warn("Resource not found")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicateEmail):
		log.Warn("Duplicate email")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already in use"})
	case errors.Is(err, apperrors.ErrInsufficientBalance):
		log.Warn("Insufficient balance")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	case errors.Is(err, apperrors.ErrAccountExists):
		log.Warn("Account already exists")
		c.JSON(http.StatusConflict, gin.H{"error": "Account already exists"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
