package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"go-gin-ticket-booking/internal/export"
	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/pagination"
	"go-gin-ticket-booking/internal/service"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	service     service.TicketService
	userService service.UserService
}

func NewTicketHandler(service service.TicketService, userService service.UserService) *TicketHandler {
	return &TicketHandler{service: service, userService: userService}
}

func (h *TicketHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("tickets", h.List)
		router.GET("tickets/:id", h.GetByID)
		router.POST("tickets", h.Book)
		router.POST("tickets/async", h.BookAsync)
		router.DELETE("tickets/:id", h.Cancel)
		router.GET("users/:id/tickets", h.ListByUser)
		router.GET("users/:id/tickets/pdf", h.ExportUserTickets)
		router.GET("events/:id/tickets", h.ListByEvent)
	}
}

func (h *TicketHandler) List(c *gin.Context) {
	var page pagination.Page
	if err := BindQuery(c, &page); err != nil {
		return
	}
	tickets, err := h.service.List(c, page)
	if err != nil {
		handleError(c, err, "ListTickets")
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) GetByID(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	ticket, err := h.service.GetByID(c, id)
	if err != nil {
		handleError(c, err, "GetTicketByID")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) Book(c *gin.Context) {
	var req model.BookTicketRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	ticket, err := h.service.Book(c, req.UserID, req.EventID, req.Category, req.Place)
	if err != nil {
		handleError(c, err, "BookTicket")
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// BookAsync 送進隊列後立即回 202，由 worker 實際建立票券
func (h *TicketHandler) BookAsync(c *gin.Context) {
	var req model.BookTicketRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	requestID, err := h.service.BookAsync(c, req)
	if err != nil {
		handleError(c, err, "BookTicketAsync")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"request_id": requestID})
}

func (h *TicketHandler) Cancel(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	deleted, err := h.service.Cancel(c, id)
	if err != nil {
		handleError(c, err, "CancelTicket")
		return
	}
	respondDeleted(c, deleted, "ticket")
}

func (h *TicketHandler) ListByUser(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var page pagination.Page
	if err := BindQuery(c, &page); err != nil {
		return
	}
	tickets, err := h.service.ListByUser(c, id, page)
	if err != nil {
		handleError(c, err, "ListTicketsByUser")
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) ListByEvent(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var page pagination.Page
	if err := BindQuery(c, &page); err != nil {
		return
	}
	tickets, err := h.service.ListByEvent(c, id, page)
	if err != nil {
		handleError(c, err, "ListTicketsByEvent")
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// ExportUserTickets 以 PDF 輸出使用者的票券 (同樣受分頁參數限制)
func (h *TicketHandler) ExportUserTickets(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var page pagination.Page
	if err := BindQuery(c, &page); err != nil {
		return
	}
	user, err := h.userService.GetByID(c, id)
	if err != nil {
		handleError(c, err, "ExportUserTickets")
		return
	}
	tickets, err := h.service.ListByUser(c, id, page)
	if err != nil {
		handleError(c, err, "ExportUserTickets")
		return
	}

	rows := make([]fmt.Stringer, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, t)
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, fmt.Sprintf("Tickets of %s", user.Name), rows); err != nil {
		handleError(c, err, "ExportUserTickets")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="user-%d-tickets.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
