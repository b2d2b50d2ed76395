package mocks

import (
	"context"
	"testing"

	"mealplanner/internal/domain"
	"mealplanner/internal/service"

	"github.com/stretchr/testify/mock"
)

// -------------------------------------------------------- AccountService

type AccountService struct{ mock.Mock }

func NewAccountService(t *testing.T) *AccountService {
	m := &AccountService{}
	setup(t, m)
	return m
}

func (m *AccountService) Register(req service.RegisterRequest) (*domain.User, error) {
	args := m.Called(req)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *AccountService) Authenticate(email, password string) (*domain.User, error) {
	args := m.Called(email, password)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *AccountService) Profile(userID int) (*domain.User, error) {
	args := m.Called(userID)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *AccountService) UpdateProfile(userID int, phone, preferences, allergens string) (*domain.User, error) {
	args := m.Called(userID, phone, preferences, allergens)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *AccountService) ChangePassword(userID int, current, next, confirm string) error {
	return m.Called(userID, current, next, confirm).Error(0)
}

func (m *AccountService) TopUpWallet(userID int, amountCents int64) (*domain.User, error) {
	args := m.Called(userID, amountCents)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

// ----------------------------------------------------- RestaurantService

type RestaurantService struct{ mock.Mock }

func NewRestaurantService(t *testing.T) *RestaurantService {
	m := &RestaurantService{}
	setup(t, m)
	return m
}

func (m *RestaurantService) Authenticate(email, password string) (*domain.Restaurant, error) {
	args := m.Called(email, password)
	restaurant, _ := args.Get(0).(*domain.Restaurant)
	return restaurant, args.Error(1)
}

func (m *RestaurantService) List() ([]domain.Restaurant, error) {
	args := m.Called()
	restaurants, _ := args.Get(0).([]domain.Restaurant)
	return restaurants, args.Error(1)
}

func (m *RestaurantService) Get(id int) (*domain.Restaurant, error) {
	args := m.Called(id)
	restaurant, _ := args.Get(0).(*domain.Restaurant)
	return restaurant, args.Error(1)
}

func (m *RestaurantService) Menu(restaurantID int) ([]domain.MenuItem, error) {
	args := m.Called(restaurantID)
	items, _ := args.Get(0).([]domain.MenuItem)
	return items, args.Error(1)
}

func (m *RestaurantService) StatusCounts(restaurantID int) (map[domain.OrderStatus]int, error) {
	args := m.Called(restaurantID)
	counts, _ := args.Get(0).(map[domain.OrderStatus]int)
	return counts, args.Error(1)
}

// ---------------------------------------------------------- OrderService

type OrderService struct{ mock.Mock }

func NewOrderService(t *testing.T) *OrderService {
	m := &OrderService{}
	setup(t, m)
	return m
}

func (m *OrderService) Place(ctx context.Context, userID int, req service.PlaceOrderRequest) (*domain.Order, error) {
	args := m.Called(ctx, userID, req)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *OrderService) Get(userID, orderID int) (*domain.Order, error) {
	args := m.Called(userID, orderID)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *OrderService) ListForUser(userID int) ([]domain.Order, error) {
	args := m.Called(userID)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *OrderService) ListForRestaurant(restaurantID int) (map[domain.OrderStatus][]domain.Order, error) {
	args := m.Called(restaurantID)
	grouped, _ := args.Get(0).(map[domain.OrderStatus][]domain.Order)
	return grouped, args.Error(1)
}

func (m *OrderService) Transition(ctx context.Context, restaurantID, orderID int, target domain.OrderStatus) (domain.OrderStatus, error) {
	args := m.Called(ctx, restaurantID, orderID, target)
	status, _ := args.Get(0).(domain.OrderStatus)
	return status, args.Error(1)
}

// --------------------------------------------------------- ReviewService

type ReviewService struct{ mock.Mock }

func NewReviewService(t *testing.T) *ReviewService {
	m := &ReviewService{}
	setup(t, m)
	return m
}

func (m *ReviewService) Submit(userID, orderID int, title string, rating int, description string) (*domain.Review, error) {
	args := m.Called(userID, orderID, title, rating, description)
	review, _ := args.Get(0).(*domain.Review)
	return review, args.Error(1)
}

func (m *ReviewService) ListForRestaurant(restaurantID int, q service.ReviewQuery) (*service.ReviewPage, error) {
	args := m.Called(restaurantID, q)
	page, _ := args.Get(0).(*service.ReviewPage)
	return page, args.Error(1)
}

// ------------------------------------------------------ AnalyticsService

type AnalyticsService struct{ mock.Mock }

func NewAnalyticsService(t *testing.T) *AnalyticsService {
	m := &AnalyticsService{}
	setup(t, m)
	return m
}

func (m *AnalyticsService) Dashboard(restaurantID int) (*domain.Dashboard, error) {
	args := m.Called(restaurantID)
	dashboard, _ := args.Get(0).(*domain.Dashboard)
	return dashboard, args.Error(1)
}

// ----------------------------------------------------- GenerationService

type GenerationService struct{ mock.Mock }

func NewGenerationService(t *testing.T) *GenerationService {
	m := &GenerationService{}
	setup(t, m)
	return m
}

func (m *GenerationService) Enqueue(ctx context.Context, userID int, startDate string, days int, slots []int) (*domain.GenerationJob, error) {
	args := m.Called(ctx, userID, startDate, days, slots)
	job, _ := args.Get(0).(*domain.GenerationJob)
	return job, args.Error(1)
}

func (m *GenerationService) Job(ctx context.Context, userID int, jobID string) (*domain.GenerationJob, error) {
	args := m.Called(ctx, userID, jobID)
	job, _ := args.Get(0).(*domain.GenerationJob)
	return job, args.Error(1)
}

// ------------------------------------------------------- ReceiptRenderer

type ReceiptRenderer struct{ mock.Mock }

func NewReceiptRenderer(t *testing.T) *ReceiptRenderer {
	m := &ReceiptRenderer{}
	setup(t, m)
	return m
}

func (m *ReceiptRenderer) Render(order *domain.Order) ([]byte, error) {
	args := m.Called(order)
	pdf, _ := args.Get(0).([]byte)
	return pdf, args.Error(1)
}
