package handler

import (
	"net/http"
	"time"

	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/pagination"
	"go-gin-ticket-booking/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("events", h.List)
		router.GET("events/:id", h.GetByID)
		router.POST("events", h.Create)
		router.PUT("events/:id", h.Update)
		router.DELETE("events/:id", h.Delete)
	}
}

// CreateEventRequest 建立活動請求，date 格式為 YYYY-MM-DD
type CreateEventRequest struct {
	Title       string          `json:"title" binding:"required"`
	Date        string          `json:"date" binding:"required"`
	TicketPrice decimal.Decimal `json:"ticket_price"`
}

// UpdateEventRequest 更新活動請求
type UpdateEventRequest struct {
	Title       *string          `json:"title"`
	Date        *string          `json:"date"`
	TicketPrice *decimal.Decimal `json:"ticket_price"`
}

// listEventsQuery date 優先於 title；兩者皆空時列出全部
type listEventsQuery struct {
	Title string `form:"title"`
	Date  string `form:"date"`
}

func parseDate(c *gin.Context, value string) (time.Time, bool) {
	date, err := time.Parse(model.DateLayout, value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return date, true
}

func (h *EventHandler) List(c *gin.Context) {
	var query listEventsQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}
	var page pagination.Page
	if err := BindQuery(c, &page); err != nil {
		return
	}

	var (
		events []*model.Event
		err    error
	)
	switch {
	case query.Date != "":
		day, ok := parseDate(c, query.Date)
		if !ok {
			return
		}
		events, err = h.service.ListForDay(c, day, page)
	case query.Title != "":
		events, err = h.service.ListByTitle(c, query.Title, page)
	default:
		events, err = h.service.List(c, page)
	}
	if err != nil {
		handleError(c, err, "ListEvents")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetByID(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	event, err := h.service.GetByID(c, id)
	if err != nil {
		handleError(c, err, "GetEventByID")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}
	created, err := h.service.Create(c, &model.Event{
		Title:       req.Title,
		Date:        date,
		TicketPrice: req.TicketPrice,
	})
	if err != nil {
		handleError(c, err, "CreateEvent")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	params := model.UpdateEventParams{Title: req.Title, TicketPrice: req.TicketPrice}
	if req.Date != nil {
		date, ok := parseDate(c, *req.Date)
		if !ok {
			return
		}
		params.Date = &date
	}
	if params.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one of title, date or ticket_price is required"})
		return
	}
	updated, err := h.service.Update(c, id, params)
	if err != nil {
		handleError(c, err, "UpdateEvent")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	deleted, err := h.service.Delete(c, id)
	if err != nil {
		handleError(c, err, "DeleteEvent")
		return
	}
	respondDeleted(c, deleted, "event")
}
