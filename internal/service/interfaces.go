package service

import (
	"context"

	"mealplanner/internal/domain"
)

type AccountRepository interface {
	CreateUser(u *domain.User) error
	GetUserByEmail(email string) (*domain.User, error)
	GetUser(id int) (*domain.User, error)
	UpdateUserContact(id int, phone, preferences, allergens string) error
	UpdateUserPassword(id int, hash string) error
	UpdateGeneratedMenu(id int, selection string) error
	DebitWallet(id int, amountCents int64) (int64, error)
	CreditWallet(id int, amountCents int64) error
}

type RestaurantRepository interface {
	GetRestaurantByEmail(email string) (*domain.Restaurant, error)
	GetRestaurant(id int) (*domain.Restaurant, error)
	ListRestaurants() ([]domain.Restaurant, error)
}

type MenuRepository interface {
	ListInStockItems(restaurantID int) ([]domain.MenuItem, error)
	GetItemsByIDs(ids []int) (map[int]domain.MenuItem, error)
	ListCandidates() ([]domain.Candidate, error)
	GetItemName(id int) (string, error)
}

type OrderRepository interface {
	CreateOrder(o *domain.Order) error
	GetOrder(id int) (*domain.Order, error)
	ListUserOrders(userID int) ([]domain.Order, error)
	ListRestaurantOrders(restaurantID int) ([]domain.Order, error)
	// UpdateOrderStatus applies a conditional update: the row changes only if
	// it still belongs to restaurantID and its status is one of from. Returns
	// the number of rows affected.
	UpdateOrderStatus(orderID, restaurantID int, from []domain.OrderStatus, to domain.OrderStatus) (int64, error)
}

type ReviewRepository interface {
	InsertReview(rv *domain.Review) error
	HasReviewForOrder(orderID int) (bool, error)
	ListRestaurantReviews(restaurantID, filterRating, limit, offset int, sort string) ([]domain.Review, error)
	CountReviews(restaurantID, filterRating int) (int, error)
	AverageRating(restaurantID int) (float64, error)
}

type AnalyticsRepository interface {
	InsertSnapshot(s *domain.Snapshot) error
	SumSnapshots(restaurantID int) (orders int, revenueCents int64, err error)
	ListSnapshots(restaurantID, limit int) ([]domain.Snapshot, error)
	OrderDayStats(restaurantID int, date string) (orders int, revenueCents int64, delivered int, err error)
}

type SessionStore interface {
	PutSession(ctx context.Context, realm, token string, id int) error
	GetSession(ctx context.Context, realm, token string) (int, error)
	DeleteSession(ctx context.Context, realm, token string) error
}

type JobStore interface {
	SaveJob(ctx context.Context, job *domain.GenerationJob) error
	GetJob(ctx context.Context, id string) (*domain.GenerationJob, error)
}

type MetricsStore interface {
	RecordOrderPlaced(ctx context.Context, evt domain.OrderEvent) error
	RecordStatusChange(ctx context.Context, evt domain.OrderEvent) error
	DailyMetrics(ctx context.Context, restaurantID int, date string) (*domain.DailyMetrics, error)
}

type OrderPublisher interface {
	PublishOrderEvent(ctx context.Context, evt domain.OrderEvent) error
}

// TextGenerator is the opaque text-completion service behind menu generation.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Interfaces consumed by the HTTP layer.

type AccountServiceInterface interface {
	Register(req RegisterRequest) (*domain.User, error)
	Authenticate(email, password string) (*domain.User, error)
	Profile(userID int) (*domain.User, error)
	UpdateProfile(userID int, phone, preferences, allergens string) (*domain.User, error)
	ChangePassword(userID int, current, next, confirm string) error
	TopUpWallet(userID int, amountCents int64) (*domain.User, error)
}

type RestaurantServiceInterface interface {
	Authenticate(email, password string) (*domain.Restaurant, error)
	List() ([]domain.Restaurant, error)
	Get(id int) (*domain.Restaurant, error)
	Menu(restaurantID int) ([]domain.MenuItem, error)
	StatusCounts(restaurantID int) (map[domain.OrderStatus]int, error)
}

type OrderServiceInterface interface {
	Place(ctx context.Context, userID int, req PlaceOrderRequest) (*domain.Order, error)
	Get(userID, orderID int) (*domain.Order, error)
	ListForUser(userID int) ([]domain.Order, error)
	ListForRestaurant(restaurantID int) (map[domain.OrderStatus][]domain.Order, error)
	Transition(ctx context.Context, restaurantID, orderID int, target domain.OrderStatus) (domain.OrderStatus, error)
}

type ReviewServiceInterface interface {
	Submit(userID, orderID int, title string, rating int, description string) (*domain.Review, error)
	ListForRestaurant(restaurantID int, q ReviewQuery) (*ReviewPage, error)
}

type AnalyticsServiceInterface interface {
	Dashboard(restaurantID int) (*domain.Dashboard, error)
}

type ReceiptRenderer interface {
	Render(order *domain.Order) ([]byte, error)
}

// GenerationServiceInterface is implemented by the background generation
// worker: enqueue a batch, then poll the job until terminal.
type GenerationServiceInterface interface {
	Enqueue(ctx context.Context, userID int, startDate string, days int, slots []int) (*domain.GenerationJob, error)
	Job(ctx context.Context, userID int, jobID string) (*domain.GenerationJob, error)
}
