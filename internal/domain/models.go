package domain

import (
	"strings"
	"time"
)

// All money amounts are integer cents.

type User struct {
	ID            int    `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PasswordHash  string `json:"-"`
	WalletCents   int64  `json:"wallet_cents"`
	Preferences   string `json:"preferences"`
	Allergens     string `json:"allergens"`
	GeneratedMenu string `json:"generated_menu"`
}

// WeekHours maps short weekday names (Mon..Sun) to a flat list of open/close
// times in HHMM integers: [1000, 1200, 1400, 2000] means open 10:00-12:00 and
// again 14:00-20:00. A missing day means closed all day; an odd-length list is
// malformed and also treated as closed.
type WeekHours map[string][]int

func (h WeekHours) OpenAt(weekday string, clock int) bool {
	times, ok := h[weekday]
	if !ok || len(times)%2 != 0 {
		return false
	}
	for i := 0; i+1 < len(times); i += 2 {
		if clock >= times[i] && clock <= times[i+1] {
			return true
		}
	}
	return false
}

type Restaurant struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Zip          string    `json:"zip"`
	Hours        WeekHours `json:"hours"`
	Status       string    `json:"status"` // "open" or "closed"
}

func (r *Restaurant) AddressFull() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{r.Address, r.City, r.State, r.Zip} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

type MenuItem struct {
	ID           int    `json:"id"`
	RestaurantID int    `json:"restaurant_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	PriceCents   int64  `json:"price_cents"`
	Calories     int    `json:"calories"`
	InStock      bool   `json:"in_stock"`
	Allergens    string `json:"allergens"` // comma separated tags
}

// AllergenTags splits the stored comma-separated allergen string into
// normalized lowercase tags.
func (m *MenuItem) AllergenTags() []string {
	return SplitTags(m.Allergens)
}

func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Candidate is a menu item joined with the owning restaurant's availability,
// used when building generation candidate pools.
type Candidate struct {
	Item             MenuItem  `json:"item"`
	RestaurantName   string    `json:"restaurant_name"`
	RestaurantHours  WeekHours `json:"restaurant_hours"`
	RestaurantStatus string    `json:"restaurant_status"`
}

type OrderLine struct {
	ItemID         int    `json:"itm_id"`
	Name           string `json:"name"`
	Qty            int    `json:"qty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
	Notes          string `json:"notes,omitempty"`
}

type Charges struct {
	SubtotalCents    int64 `json:"subtotal_cents"`
	TaxCents         int64 `json:"tax_cents"`
	DeliveryFeeCents int64 `json:"delivery_fee_cents"`
	ServiceFeeCents  int64 `json:"service_fee_cents"`
	TipCents         int64 `json:"tip_cents"`
	TotalCents       int64 `json:"total_cents"`
}

// OrderDetails is the denormalized order payload stored as one JSON document
// on the order row. It is validated at the boundary and treated as a fixed
// value object from there on.
type OrderDetails struct {
	PlacedAt     time.Time   `json:"placed_at"`
	Items        []OrderLine `json:"items"`
	Charges      Charges     `json:"charges"`
	DeliveryType string      `json:"delivery_type"` // "delivery" or "pickup"
	ETAMinutes   int         `json:"eta_minutes"`
	Date         string      `json:"date"` // YYYY-MM-DD the meal is planned for
	Meal         int         `json:"meal"` // slot 1..3
	Notes        string      `json:"notes,omitempty"`
}

type Order struct {
	ID             int          `json:"id"`
	RestaurantID   int          `json:"restaurant_id"`
	UserID         int          `json:"user_id"`
	Details        OrderDetails `json:"details"`
	Status         OrderStatus  `json:"status"`
	RestaurantName string       `json:"restaurant_name,omitempty"`
	CustomerName   string       `json:"customer_name,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

type Review struct {
	ID           int       `json:"id"`
	RestaurantID int       `json:"restaurant_id"`
	UserID       int       `json:"user_id"`
	OrderID      int       `json:"order_id"`
	Title        string    `json:"title"`
	Rating       int       `json:"rating"`
	Description  string    `json:"description"`
	UserName     string    `json:"user_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Snapshot is one precomputed row of daily metrics for one restaurant.
// Rows are append-only: one per restaurant per calendar date.
type Snapshot struct {
	ID                 int       `json:"id"`
	RestaurantID       int       `json:"restaurant_id"`
	Date               string    `json:"snapshot_date"` // YYYY-MM-DD
	TotalOrders        int       `json:"total_orders"`
	TotalRevenueCents  int64     `json:"total_revenue_cents"`
	AvgOrderValueCents int64     `json:"avg_order_value_cents"`
	TotalCustomers     int       `json:"total_customers"`
	MostPopularItemID  int       `json:"most_popular_item_id"` // 0 when unknown
	CompletionRate     float64   `json:"order_completion_rate"`
	CreatedAt          time.Time `json:"created_at"`
}

type SnapshotPoint struct {
	Date               string `json:"date"`
	TotalOrders        int    `json:"total_orders"`
	TotalRevenueCents  int64  `json:"total_revenue_cents"`
	AvgOrderValueCents int64  `json:"avg_order_value_cents"`
}

// Dashboard is the aggregated analytics view served to restaurant owners.
type Dashboard struct {
	TotalOrders         int             `json:"total_orders"`
	TotalRevenueCents   int64           `json:"total_revenue_cents"`
	AvgOrderValueCents  int64           `json:"avg_order_value_cents"`
	Series              []SnapshotPoint `json:"series"` // chronological, at most 30 points
	MostPopularItemID   int             `json:"most_popular_item_id"`
	MostPopularItemName string          `json:"most_popular_item_name,omitempty"`
}

// OrderEvent is the message published to Kafka on order placement and on
// every status change.
type OrderEvent struct {
	Type         string    `json:"type"` // "order_placed" or "status_change"
	OrderID      int       `json:"order_id"`
	RestaurantID int       `json:"restaurant_id"`
	UserID       int       `json:"user_id"`
	Status       string    `json:"status"`
	TotalCents   int64     `json:"total_cents"`
	ItemIDs      []int     `json:"item_ids,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

const (
	EventOrderPlaced  = "order_placed"
	EventStatusChange = "status_change"
)

// DailyMetrics are the live counters a snapshot row is cut from.
type DailyMetrics struct {
	Orders        int   `json:"orders"`
	RevenueCents  int64 `json:"revenue_cents"`
	Customers     int   `json:"customers"`
	Delivered     int   `json:"delivered"`
	PopularItemID int   `json:"popular_item_id"` // 0 when unknown
}

// GenerationJob tracks one background menu-generation batch. Callers poll it
// by ID until it reaches a terminal state.
type GenerationJob struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	State     string    `json:"state"` // pending, running, done, failed
	StartDate string    `json:"start_date"`
	Days      int       `json:"days"`
	Slots     []int     `json:"slots"`
	Selection string    `json:"selection,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	JobPending = "pending"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)
