// Package mocks contains hand-maintained testify mocks for the service and
// storage interfaces.
package mocks

import (
	"context"
	"testing"

	"mealplanner/internal/domain"

	"github.com/stretchr/testify/mock"
)

func setup(t *testing.T, m interface {
	Test(mock.TestingT)
	AssertExpectations(mock.TestingT) bool
}) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

// ----------------------------------------------------- AccountRepository

type AccountRepository struct{ mock.Mock }

func NewAccountRepository(t *testing.T) *AccountRepository {
	m := &AccountRepository{}
	setup(t, m)
	return m
}

func (m *AccountRepository) CreateUser(u *domain.User) error {
	return m.Called(u).Error(0)
}

func (m *AccountRepository) GetUserByEmail(email string) (*domain.User, error) {
	args := m.Called(email)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *AccountRepository) GetUser(id int) (*domain.User, error) {
	args := m.Called(id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *AccountRepository) UpdateUserContact(id int, phone, preferences, allergens string) error {
	return m.Called(id, phone, preferences, allergens).Error(0)
}

func (m *AccountRepository) UpdateUserPassword(id int, hash string) error {
	return m.Called(id, hash).Error(0)
}

func (m *AccountRepository) UpdateGeneratedMenu(id int, selection string) error {
	return m.Called(id, selection).Error(0)
}

func (m *AccountRepository) DebitWallet(id int, amountCents int64) (int64, error) {
	args := m.Called(id, amountCents)
	return args.Get(0).(int64), args.Error(1)
}

func (m *AccountRepository) CreditWallet(id int, amountCents int64) error {
	return m.Called(id, amountCents).Error(0)
}

// -------------------------------------------------- RestaurantRepository

type RestaurantRepository struct{ mock.Mock }

func NewRestaurantRepository(t *testing.T) *RestaurantRepository {
	m := &RestaurantRepository{}
	setup(t, m)
	return m
}

func (m *RestaurantRepository) GetRestaurantByEmail(email string) (*domain.Restaurant, error) {
	args := m.Called(email)
	restaurant, _ := args.Get(0).(*domain.Restaurant)
	return restaurant, args.Error(1)
}

func (m *RestaurantRepository) GetRestaurant(id int) (*domain.Restaurant, error) {
	args := m.Called(id)
	restaurant, _ := args.Get(0).(*domain.Restaurant)
	return restaurant, args.Error(1)
}

func (m *RestaurantRepository) ListRestaurants() ([]domain.Restaurant, error) {
	args := m.Called()
	restaurants, _ := args.Get(0).([]domain.Restaurant)
	return restaurants, args.Error(1)
}

// -------------------------------------------------------- MenuRepository

type MenuRepository struct{ mock.Mock }

func NewMenuRepository(t *testing.T) *MenuRepository {
	m := &MenuRepository{}
	setup(t, m)
	return m
}

func (m *MenuRepository) ListInStockItems(restaurantID int) ([]domain.MenuItem, error) {
	args := m.Called(restaurantID)
	items, _ := args.Get(0).([]domain.MenuItem)
	return items, args.Error(1)
}

func (m *MenuRepository) GetItemsByIDs(ids []int) (map[int]domain.MenuItem, error) {
	args := m.Called(ids)
	items, _ := args.Get(0).(map[int]domain.MenuItem)
	return items, args.Error(1)
}

func (m *MenuRepository) ListCandidates() ([]domain.Candidate, error) {
	args := m.Called()
	candidates, _ := args.Get(0).([]domain.Candidate)
	return candidates, args.Error(1)
}

func (m *MenuRepository) GetItemName(id int) (string, error) {
	args := m.Called(id)
	return args.String(0), args.Error(1)
}

// ------------------------------------------------------- OrderRepository

type OrderRepository struct{ mock.Mock }

func NewOrderRepository(t *testing.T) *OrderRepository {
	m := &OrderRepository{}
	setup(t, m)
	return m
}

func (m *OrderRepository) CreateOrder(o *domain.Order) error {
	return m.Called(o).Error(0)
}

func (m *OrderRepository) GetOrder(id int) (*domain.Order, error) {
	args := m.Called(id)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *OrderRepository) ListUserOrders(userID int) ([]domain.Order, error) {
	args := m.Called(userID)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *OrderRepository) ListRestaurantOrders(restaurantID int) ([]domain.Order, error) {
	args := m.Called(restaurantID)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *OrderRepository) UpdateOrderStatus(orderID, restaurantID int, from []domain.OrderStatus, to domain.OrderStatus) (int64, error) {
	args := m.Called(orderID, restaurantID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

// ------------------------------------------------------ ReviewRepository

type ReviewRepository struct{ mock.Mock }

func NewReviewRepository(t *testing.T) *ReviewRepository {
	m := &ReviewRepository{}
	setup(t, m)
	return m
}

func (m *ReviewRepository) InsertReview(rv *domain.Review) error {
	return m.Called(rv).Error(0)
}

func (m *ReviewRepository) HasReviewForOrder(orderID int) (bool, error) {
	args := m.Called(orderID)
	return args.Bool(0), args.Error(1)
}

func (m *ReviewRepository) ListRestaurantReviews(restaurantID, filterRating, limit, offset int, sort string) ([]domain.Review, error) {
	args := m.Called(restaurantID, filterRating, limit, offset, sort)
	reviews, _ := args.Get(0).([]domain.Review)
	return reviews, args.Error(1)
}

func (m *ReviewRepository) CountReviews(restaurantID, filterRating int) (int, error) {
	args := m.Called(restaurantID, filterRating)
	return args.Int(0), args.Error(1)
}

func (m *ReviewRepository) AverageRating(restaurantID int) (float64, error) {
	args := m.Called(restaurantID)
	return args.Get(0).(float64), args.Error(1)
}

// --------------------------------------------------- AnalyticsRepository

type AnalyticsRepository struct{ mock.Mock }

func NewAnalyticsRepository(t *testing.T) *AnalyticsRepository {
	m := &AnalyticsRepository{}
	setup(t, m)
	return m
}

func (m *AnalyticsRepository) InsertSnapshot(s *domain.Snapshot) error {
	return m.Called(s).Error(0)
}

func (m *AnalyticsRepository) SumSnapshots(restaurantID int) (int, int64, error) {
	args := m.Called(restaurantID)
	return args.Int(0), args.Get(1).(int64), args.Error(2)
}

func (m *AnalyticsRepository) ListSnapshots(restaurantID, limit int) ([]domain.Snapshot, error) {
	args := m.Called(restaurantID, limit)
	snapshots, _ := args.Get(0).([]domain.Snapshot)
	return snapshots, args.Error(1)
}

func (m *AnalyticsRepository) OrderDayStats(restaurantID int, date string) (int, int64, int, error) {
	args := m.Called(restaurantID, date)
	return args.Int(0), args.Get(1).(int64), args.Int(2), args.Error(3)
}

// ---------------------------------------------------------- MetricsStore

type MetricsStore struct{ mock.Mock }

func NewMetricsStore(t *testing.T) *MetricsStore {
	m := &MetricsStore{}
	setup(t, m)
	return m
}

func (m *MetricsStore) RecordOrderPlaced(ctx context.Context, evt domain.OrderEvent) error {
	return m.Called(ctx, evt).Error(0)
}

func (m *MetricsStore) RecordStatusChange(ctx context.Context, evt domain.OrderEvent) error {
	return m.Called(ctx, evt).Error(0)
}

func (m *MetricsStore) DailyMetrics(ctx context.Context, restaurantID int, date string) (*domain.DailyMetrics, error) {
	args := m.Called(ctx, restaurantID, date)
	metrics, _ := args.Get(0).(*domain.DailyMetrics)
	return metrics, args.Error(1)
}

// -------------------------------------------------------- OrderPublisher

type OrderPublisher struct{ mock.Mock }

func NewOrderPublisher(t *testing.T) *OrderPublisher {
	m := &OrderPublisher{}
	setup(t, m)
	return m
}

func (m *OrderPublisher) PublishOrderEvent(ctx context.Context, evt domain.OrderEvent) error {
	return m.Called(ctx, evt).Error(0)
}

// --------------------------------------------------------- TextGenerator

type TextGenerator struct{ mock.Mock }

func NewTextGenerator(t *testing.T) *TextGenerator {
	m := &TextGenerator{}
	setup(t, m)
	return m
}

func (m *TextGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}

// -------------------------------------------------------------- JobStore

type JobStore struct{ mock.Mock }

func NewJobStore(t *testing.T) *JobStore {
	m := &JobStore{}
	setup(t, m)
	return m
}

func (m *JobStore) SaveJob(ctx context.Context, job *domain.GenerationJob) error {
	return m.Called(ctx, job).Error(0)
}

func (m *JobStore) GetJob(ctx context.Context, id string) (*domain.GenerationJob, error) {
	args := m.Called(ctx, id)
	job, _ := args.Get(0).(*domain.GenerationJob)
	return job, args.Error(1)
}
