package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-gin-ticket-booking/internal/queue"
	"go-gin-ticket-booking/internal/repository/memory"
	"go-gin-ticket-booking/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var (
	InvalidJSON = `{"invalid": json}`
)

type testApp struct {
	router   *gin.Engine
	users    service.UserService
	events   service.EventService
	tickets  service.TicketService
	accounts service.AccountService
	queue    queue.BookingQueue
}

// setupTestApp 以記憶體 repository 組出完整路由
func setupTestApp() *testApp {
	gin.SetMode(gin.TestMode)

	userRepo := memory.NewUserRepository(nil)
	eventRepo := memory.NewEventRepository(nil)
	ticketRepo := memory.NewTicketRepository(nil)
	accountRepo := memory.NewAccountRepository()
	bookingQueue := queue.NewMemoryBookingQueue(10)

	app := &testApp{
		router:   gin.New(),
		users:    service.NewUserService(userRepo),
		events:   service.NewEventService(eventRepo, nil),
		accounts: service.NewAccountService(accountRepo, userRepo),
		queue:    bookingQueue,
	}
	app.tickets = service.NewTicketService(ticketRepo, userRepo, eventRepo, bookingQueue)

	NewUserHandler(app.users).RegisterRoutes(app.router)
	NewEventHandler(app.events).RegisterRoutes(app.router)
	NewTicketHandler(app.tickets, app.users).RegisterRoutes(app.router)
	NewAccountHandler(app.accounts).RegisterRoutes(app.router)
	return app
}

// create JSON request body
func createJSONRequest(data interface{}) *bytes.Buffer {
	if s, ok := data.(string); ok {
		return bytes.NewBufferString(s)
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return bytes.NewBuffer([]byte(""))
	}
	return bytes.NewBuffer(jsonData)
}

// create HTTP request with JSON body
func createJSONHTTPRequest(method, url string, data interface{}) *http.Request {
	req := httptest.NewRequest(method, url, createJSONRequest(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
