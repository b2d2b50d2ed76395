package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	httpapi "mealplanner/internal/api/http"
	"mealplanner/internal/domain"
	"mealplanner/internal/mocks"
	"mealplanner/internal/service"
	"mealplanner/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type handlerFixture struct {
	accounts    *mocks.AccountService
	restaurants *mocks.RestaurantService
	orders      *mocks.OrderService
	reviews     *mocks.ReviewService
	analytics   *mocks.AnalyticsService
	generation  *mocks.GenerationService
	receipts    *mocks.ReceiptRenderer
	sessions    *storage.RedisStore
	server      http.Handler
}

func setupHandler(t *testing.T) *handlerFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	f := &handlerFixture{
		accounts:    mocks.NewAccountService(t),
		restaurants: mocks.NewRestaurantService(t),
		orders:      mocks.NewOrderService(t),
		reviews:     mocks.NewReviewService(t),
		analytics:   mocks.NewAnalyticsService(t),
		generation:  mocks.NewGenerationService(t),
		receipts:    mocks.NewReceiptRenderer(t),
		sessions:    storage.NewRedisStore(client),
	}
	handler := httpapi.NewHandler(
		f.accounts, f.restaurants, f.orders, f.reviews,
		f.analytics, f.generation, f.receipts, f.sessions,
	)
	f.server = httpapi.NewRouter(handler)
	return f
}

func (f *handlerFixture) loginAs(t *testing.T, realm string, accountID int) *http.Cookie {
	t.Helper()
	token := fmt.Sprintf("test-token-%s-%d", realm, accountID)
	if err := f.sessions.PutSession(context.Background(), realm, token, accountID); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	name := "session"
	if realm == httpapi.RealmRestaurant {
		name = "restaurant_session"
	}
	return &http.Cookie{Name: name, Value: token}
}

func doJSON(f *handlerFixture, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	f.server.ServeHTTP(rr, req)
	return rr
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	f := setupHandler(t)

	f.accounts.On("Register", mock.Anything).
		Return(&domain.User{ID: 7, Email: "ada@example.com"}, nil).Once()

	rr := doJSON(f, http.MethodPost, "/api/register", service.RegisterRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Phone: "5551234567", Password: "secret1", Confirm: "secret1",
	}, nil)

	assert.Equal(t, http.StatusCreated, rr.Code)
	cookies := rr.Result().Cookies()
	assert.NotEmpty(t, cookies)
	assert.Equal(t, "session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := setupHandler(t)

	f.accounts.On("Authenticate", "ada@example.com", "wrong").
		Return(nil, service.ErrNotFound).Once()

	rr := doJSON(f, http.MethodPost, "/api/login",
		map[string]string{"email": "ada@example.com", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProfileRequiresSession(t *testing.T) {
	f := setupHandler(t)

	rr := doJSON(f, http.MethodGet, "/api/profile", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProfileReturnsCurrentUser(t *testing.T) {
	f := setupHandler(t)
	cookie := f.loginAs(t, httpapi.RealmCustomer, 7)

	f.accounts.On("Profile", 7).
		Return(&domain.User{ID: 7, Email: "ada@example.com"}, nil).Once()

	rr := doJSON(f, http.MethodGet, "/api/profile", nil, cookie)
	assert.Equal(t, http.StatusOK, rr.Code)

	var user domain.User
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &user))
	assert.Equal(t, 7, user.ID)
}

func TestCustomerSessionRejectedOnRestaurantRoutes(t *testing.T) {
	f := setupHandler(t)
	cookie := f.loginAs(t, httpapi.RealmCustomer, 7)

	rr := doJSON(f, http.MethodGet, "/api/restaurant/orders", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPlaceOrderStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"validation_400", fmt.Errorf("%w: empty cart", service.ErrValidation), http.StatusBadRequest},
		{"not_found_404", service.ErrNotFound, http.StatusNotFound},
		{"forbidden_403", service.ErrForbidden, http.StatusForbidden},
		{"conflict_409", fmt.Errorf("%w: cannot deliver", service.ErrInvalidTransition), http.StatusConflict},
		{"internal_500", fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := setupHandler(t)
			cookie := f.loginAs(t, httpapi.RealmCustomer, 7)

			f.orders.On("Place", mock.Anything, 7, mock.Anything).
				Return(nil, testCase.err).Once()

			rr := doJSON(f, http.MethodPost, "/api/orders",
				service.PlaceOrderRequest{RestaurantID: 3}, cookie)
			assert.Equal(t, testCase.wantCode, rr.Code)
		})
	}
}

func TestTransitionOrderActions(t *testing.T) {
	tests := []struct {
		action string
		target domain.OrderStatus
	}{
		{"accept", domain.StatusAccepted},
		{"reject", domain.StatusCancelled},
		{"prepare", domain.StatusPreparing},
		{"ready", domain.StatusReady},
		{"deliver", domain.StatusDelivered},
	}

	for _, testCase := range tests {
		t.Run(testCase.action, func(t *testing.T) {
			f := setupHandler(t)
			cookie := f.loginAs(t, httpapi.RealmRestaurant, 3)

			f.orders.On("Transition", mock.Anything, 3, 10, testCase.target).
				Return(testCase.target, nil).Once()

			rr := doJSON(f, http.MethodPost, "/api/restaurant/orders/10/"+testCase.action, nil, cookie)
			assert.Equal(t, http.StatusOK, rr.Code)
		})
	}
}

func TestTransitionOrderUnknownAction(t *testing.T) {
	f := setupHandler(t)
	cookie := f.loginAs(t, httpapi.RealmRestaurant, 3)

	rr := doJSON(f, http.MethodPost, "/api/restaurant/orders/10/teleport", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReceiptDownload(t *testing.T) {
	f := setupHandler(t)
	cookie := f.loginAs(t, httpapi.RealmCustomer, 7)

	order := &domain.Order{ID: 10, UserID: 7, RestaurantName: "Thai Corner"}
	f.orders.On("Get", 7, 10).Return(order, nil).Once()
	f.receipts.On("Render", order).Return([]byte("%PDF-1.4 fake"), nil).Once()

	rr := doJSON(f, http.MethodGet, "/api/orders/10/receipt.pdf", nil, cookie)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "receipt-10.pdf")
}

func TestListReviewsParsesQuery(t *testing.T) {
	f := setupHandler(t)

	f.reviews.On("ListForRestaurant", 3, service.ReviewQuery{Page: 2, FilterRating: 5, Sort: "highest"}).
		Return(&service.ReviewPage{Page: 2, TotalPages: 3}, nil).Once()

	rr := doJSON(f, http.MethodGet, "/api/restaurants/3/reviews?page=2&rating=5&sort=highest", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestEnqueueGenerationDefaultsSlots(t *testing.T) {
	f := setupHandler(t)
	cookie := f.loginAs(t, httpapi.RealmCustomer, 7)

	f.generation.On("Enqueue", mock.Anything, 7, "2025-10-14", 3, []int{1, 2, 3}).
		Return(&domain.GenerationJob{ID: "abc", State: domain.JobPending}, nil).Once()

	rr := doJSON(f, http.MethodPost, "/api/menu/generate",
		map[string]interface{}{"start_date": "2025-10-14", "days": 3}, cookie)
	assert.Equal(t, http.StatusAccepted, rr.Code)
}

func TestGenerationExhaustedMapsToBadGateway(t *testing.T) {
	f := setupHandler(t)
	cookie := f.loginAs(t, httpapi.RealmCustomer, 7)

	f.generation.On("Enqueue", mock.Anything, 7, "2025-10-14", 1, []int{2}).
		Return(nil, &service.GenerationExhaustedError{Date: "2025-10-14", Slot: 2, Attempts: 5}).Once()

	rr := doJSON(f, http.MethodPost, "/api/menu/generate",
		map[string]interface{}{"start_date": "2025-10-14", "days": 1, "slots": []int{2}}, cookie)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestRestaurantAnalytics(t *testing.T) {
	f := setupHandler(t)
	cookie := f.loginAs(t, httpapi.RealmRestaurant, 3)

	f.analytics.On("Dashboard", 3).Return(&domain.Dashboard{
		TotalOrders: 20, TotalRevenueCents: 80000, AvgOrderValueCents: 4000,
	}, nil).Once()

	rr := doJSON(f, http.MethodGet, "/api/restaurant/analytics", nil, cookie)
	assert.Equal(t, http.StatusOK, rr.Code)

	var dashboard domain.Dashboard
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dashboard))
	assert.Equal(t, int64(80000), dashboard.TotalRevenueCents)
}

func TestLogoutClearsSession(t *testing.T) {
	f := setupHandler(t)
	cookie := f.loginAs(t, httpapi.RealmCustomer, 7)

	rr := doJSON(f, http.MethodPost, "/api/logout", nil, cookie)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(f, http.MethodGet, "/api/profile", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
