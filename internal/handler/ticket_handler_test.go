package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/service/mocks"
	apperrors "go-gin-ticket-booking/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seedUserAndEvent(t *testing.T, app *testApp) {
	t.Helper()
	_, err := app.users.Create(context.Background(), &model.User{Name: "Alice", Email: "a@x.io"})
	require.NoError(t, err)
	seedEvent(t, app, "Concert", "2030-05-01", "10")
}

func TestBookTicket(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		app := setupTestApp()
		seedUserAndEvent(t, app)

		w := app.do(createJSONHTTPRequest("POST", "/api/v1/tickets", model.BookTicketRequest{
			UserID: 1, EventID: 1, Category: model.CategoryBar, Place: 3,
		}))

		require.Equal(t, http.StatusCreated, w.Code)
		var ticket model.Ticket
		decodeBody(t, w, &ticket)
		assert.Equal(t, 1, ticket.ID)
		assert.Equal(t, model.CategoryBar, ticket.Category)
	})

	t.Run("NotFound - unknown event", func(t *testing.T) {
		app := setupTestApp()
		seedUserAndEvent(t, app)

		w := app.do(createJSONHTTPRequest("POST", "/api/v1/tickets", model.BookTicketRequest{
			UserID: 1, EventID: 42, Category: model.CategoryStandard, Place: 1,
		}))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Failed - invalid category", func(t *testing.T) {
		app := setupTestApp()
		seedUserAndEvent(t, app)

		w := app.do(createJSONHTTPRequest("POST", "/api/v1/tickets", model.BookTicketRequest{
			UserID: 1, EventID: 1, Category: "VIP", Place: 1,
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Failed - ErrInternalServerError", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		mockService := mocks.NewTicketServiceMock()
		router := gin.New()
		NewTicketHandler(mockService, nil).RegisterRoutes(router)

		mockService.On("Book", mock.Anything, 1, 1, model.CategoryPremium, 2).
			Return(nil, apperrors.ErrInternalServerError).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, createJSONHTTPRequest("POST", "/api/v1/tickets", model.BookTicketRequest{
			UserID: 1, EventID: 1, Category: model.CategoryPremium, Place: 2,
		}))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestBookTicketAsync(t *testing.T) {
	app := setupTestApp()
	seedUserAndEvent(t, app)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msgs, err := app.queue.SubscribeBookings(ctx)
	require.NoError(t, err)

	w := app.do(createJSONHTTPRequest("POST", "/api/v1/tickets/async", model.BookTicketRequest{
		UserID: 1, EventID: 1, Category: model.CategoryStandard, Place: 9,
	}))
	require.Equal(t, http.StatusAccepted, w.Code)

	var body map[string]string
	decodeBody(t, w, &body)
	require.NotEmpty(t, body["request_id"])

	select {
	case msg := <-msgs:
		assert.Equal(t, body["request_id"], msg.Data.RequestID)
		assert.Equal(t, 9, msg.Data.Place)
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("booking was not published")
	}
}

func TestTicketListsAndCancel(t *testing.T) {
	app := setupTestApp()
	seedUserAndEvent(t, app)
	ctx := context.Background()
	for place := 1; place <= 3; place++ {
		_, err := app.tickets.Book(ctx, 1, 1, model.CategoryStandard, place)
		require.NoError(t, err)
	}

	w := app.do(httptest.NewRequest("GET", "/api/v1/users/1/tickets?page_size=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var tickets []model.Ticket
	decodeBody(t, w, &tickets)
	assert.Len(t, tickets, 2)

	w = app.do(httptest.NewRequest("GET", "/api/v1/events/1/tickets", nil))
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &tickets)
	assert.Len(t, tickets, 3)

	w = app.do(httptest.NewRequest("DELETE", "/api/v1/tickets/2", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = app.do(httptest.NewRequest("GET", "/api/v1/tickets/2", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(httptest.NewRequest("GET", "/api/v1/tickets", nil))
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &tickets)
	assert.Len(t, tickets, 2)
}

func TestExportUserTickets(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		app := setupTestApp()
		seedUserAndEvent(t, app)
		_, err := app.tickets.Book(context.Background(), 1, 1, model.CategoryPremium, 5)
		require.NoError(t, err)

		w := app.do(httptest.NewRequest("GET", "/api/v1/users/1/tickets/pdf", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	})

	t.Run("NotFound", func(t *testing.T) {
		app := setupTestApp()

		w := app.do(httptest.NewRequest("GET", "/api/v1/users/3/tickets/pdf", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
