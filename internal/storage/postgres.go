package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"mealplanner/internal/domain"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

// ---------------------------------------------------------------- users

func (r *PostgresRepository) CreateUser(u *domain.User) error {
	return r.DB.QueryRow(`
		INSERT INTO users (first_name, last_name, email, phone, password_hash, wallet_cents, preferences, allergens, generated_menu)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '')
		RETURNING usr_id`,
		u.FirstName, u.LastName, u.Email, u.Phone, u.PasswordHash, u.WalletCents, u.Preferences, u.Allergens,
	).Scan(&u.ID)
}

func (r *PostgresRepository) GetUserByEmail(email string) (*domain.User, error) {
	return r.scanUser(r.DB.QueryRow(`
		SELECT usr_id, first_name, last_name, email, COALESCE(phone, ''), password_hash,
		       wallet_cents, COALESCE(preferences, ''), COALESCE(allergens, ''), COALESCE(generated_menu, '')
		FROM users WHERE email = $1`, email))
}

func (r *PostgresRepository) GetUser(id int) (*domain.User, error) {
	return r.scanUser(r.DB.QueryRow(`
		SELECT usr_id, first_name, last_name, email, COALESCE(phone, ''), password_hash,
		       wallet_cents, COALESCE(preferences, ''), COALESCE(allergens, ''), COALESCE(generated_menu, '')
		FROM users WHERE usr_id = $1`, id))
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.PasswordHash,
		&u.WalletCents, &u.Preferences, &u.Allergens, &u.GeneratedMenu)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) UpdateUserContact(id int, phone, preferences, allergens string) error {
	_, err := r.DB.Exec(`
		UPDATE users SET phone = $1, preferences = $2, allergens = $3 WHERE usr_id = $4`,
		phone, preferences, allergens, id)
	return err
}

func (r *PostgresRepository) UpdateUserPassword(id int, hash string) error {
	_, err := r.DB.Exec(`UPDATE users SET password_hash = $1 WHERE usr_id = $2`, hash, id)
	return err
}

func (r *PostgresRepository) UpdateGeneratedMenu(id int, selection string) error {
	_, err := r.DB.Exec(`UPDATE users SET generated_menu = $1 WHERE usr_id = $2`, selection, id)
	return err
}

// DebitWallet only succeeds when the balance covers the amount; the caller
// inspects rows affected to detect insufficient funds.
func (r *PostgresRepository) DebitWallet(id int, amountCents int64) (int64, error) {
	result, err := r.DB.Exec(`
		UPDATE users SET wallet_cents = wallet_cents - $1
		WHERE usr_id = $2 AND wallet_cents >= $1`,
		amountCents, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresRepository) CreditWallet(id int, amountCents int64) error {
	_, err := r.DB.Exec(`
		UPDATE users SET wallet_cents = wallet_cents + $1 WHERE usr_id = $2`,
		amountCents, id)
	return err
}

// ---------------------------------------------------------- restaurants

const restaurantColumns = `
	rtr_id, name, COALESCE(description, ''), COALESCE(phone, ''), email, password_hash,
	COALESCE(address, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(zip, ''),
	COALESCE(hours, '{}'), COALESCE(status, 'open')`

func (r *PostgresRepository) GetRestaurantByEmail(email string) (*domain.Restaurant, error) {
	return scanRestaurant(r.DB.QueryRow(
		`SELECT `+restaurantColumns+` FROM restaurants WHERE email = $1`, email))
}

func (r *PostgresRepository) GetRestaurant(id int) (*domain.Restaurant, error) {
	return scanRestaurant(r.DB.QueryRow(
		`SELECT `+restaurantColumns+` FROM restaurants WHERE rtr_id = $1`, id))
}

func (r *PostgresRepository) ListRestaurants() ([]domain.Restaurant, error) {
	rows, err := r.DB.Query(`SELECT ` + restaurantColumns + ` FROM restaurants ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []domain.Restaurant
	for rows.Next() {
		rest, err := scanRestaurantRows(rows)
		if err != nil {
			continue
		}
		restaurants = append(restaurants, *rest)
	}
	return restaurants, rows.Err()
}

func scanRestaurant(row *sql.Row) (*domain.Restaurant, error) {
	var rest domain.Restaurant
	var hours string
	err := row.Scan(&rest.ID, &rest.Name, &rest.Description, &rest.Phone, &rest.Email, &rest.PasswordHash,
		&rest.Address, &rest.City, &rest.State, &rest.Zip, &hours, &rest.Status)
	if err != nil {
		return nil, err
	}
	rest.Hours = parseHours(hours)
	return &rest, nil
}

func scanRestaurantRows(rows *sql.Rows) (*domain.Restaurant, error) {
	var rest domain.Restaurant
	var hours string
	err := rows.Scan(&rest.ID, &rest.Name, &rest.Description, &rest.Phone, &rest.Email, &rest.PasswordHash,
		&rest.Address, &rest.City, &rest.State, &rest.Zip, &hours, &rest.Status)
	if err != nil {
		return nil, err
	}
	rest.Hours = parseHours(hours)
	return &rest, nil
}

func parseHours(s string) domain.WeekHours {
	hours := domain.WeekHours{}
	if s == "" {
		return hours
	}
	// Malformed hours mean "closed"; don't fail a whole listing over one row.
	_ = json.Unmarshal([]byte(s), &hours)
	return hours
}

// ----------------------------------------------------------- menu items

const menuItemColumns = `
	itm_id, rtr_id, name, COALESCE(description, ''), price_cents, COALESCE(calories, 0),
	COALESCE(instock, TRUE), COALESCE(allergens, '')`

func (r *PostgresRepository) ListInStockItems(restaurantID int) ([]domain.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE instock ORDER BY itm_id`
	args := []interface{}{}
	if restaurantID > 0 {
		query = `SELECT ` + menuItemColumns + ` FROM menu_items WHERE instock AND rtr_id = $1 ORDER BY itm_id`
		args = append(args, restaurantID)
	}

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var m domain.MenuItem
		if err := rows.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.PriceCents,
			&m.Calories, &m.InStock, &m.Allergens); err != nil {
			continue
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) GetItemsByIDs(ids []int) (map[int]domain.MenuItem, error) {
	out := map[int]domain.MenuItem{}
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.DB.Query(
		`SELECT `+menuItemColumns+` FROM menu_items WHERE itm_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.MenuItem
		if err := rows.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.PriceCents,
			&m.Calories, &m.InStock, &m.Allergens); err != nil {
			continue
		}
		out[m.ID] = m
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetItemName(id int) (string, error) {
	var name string
	err := r.DB.QueryRow(`SELECT name FROM menu_items WHERE itm_id = $1`, id).Scan(&name)
	return name, err
}

// ListCandidates joins in-stock items with their restaurant's availability for
// the generation candidate pool. Closed restaurants are kept here and dropped
// by the engine, which knows the serving time.
func (r *PostgresRepository) ListCandidates() ([]domain.Candidate, error) {
	rows, err := r.DB.Query(`
		SELECT m.itm_id, m.rtr_id, m.name, COALESCE(m.description, ''), m.price_cents,
		       COALESCE(m.calories, 0), COALESCE(m.allergens, ''),
		       rest.name, COALESCE(rest.hours, '{}'), COALESCE(rest.status, 'open')
		FROM menu_items m
		JOIN restaurants rest ON rest.rtr_id = m.rtr_id
		WHERE m.instock`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		var hours string
		if err := rows.Scan(&c.Item.ID, &c.Item.RestaurantID, &c.Item.Name, &c.Item.Description,
			&c.Item.PriceCents, &c.Item.Calories, &c.Item.Allergens,
			&c.RestaurantName, &hours, &c.RestaurantStatus); err != nil {
			continue
		}
		c.Item.InStock = true
		c.RestaurantHours = parseHours(hours)
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// --------------------------------------------------------------- orders

func (r *PostgresRepository) CreateOrder(o *domain.Order) error {
	details, err := json.Marshal(o.Details)
	if err != nil {
		return fmt.Errorf("marshal order details: %w", err)
	}
	return r.DB.QueryRow(`
		INSERT INTO orders (rtr_id, usr_id, details, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ord_id, created_at`,
		o.RestaurantID, o.UserID, details, string(o.Status),
	).Scan(&o.ID, &o.CreatedAt)
}

func (r *PostgresRepository) GetOrder(id int) (*domain.Order, error) {
	var o domain.Order
	var details []byte
	var status string
	err := r.DB.QueryRow(`
		SELECT o.ord_id, o.rtr_id, o.usr_id, o.details, o.status, o.created_at, rest.name
		FROM orders o
		JOIN restaurants rest ON rest.rtr_id = o.rtr_id
		WHERE o.ord_id = $1`, id,
	).Scan(&o.ID, &o.RestaurantID, &o.UserID, &details, &status, &o.CreatedAt, &o.RestaurantName)
	if err != nil {
		return nil, err
	}
	if o.Status, err = domain.ParseStatus(status); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(details, &o.Details); err != nil {
		return nil, fmt.Errorf("unmarshal order %d details: %w", o.ID, err)
	}
	return &o, nil
}

func (r *PostgresRepository) ListUserOrders(userID int) ([]domain.Order, error) {
	rows, err := r.DB.Query(`
		SELECT o.ord_id, o.rtr_id, o.usr_id, o.details, o.status, o.created_at, rest.name
		FROM orders o
		JOIN restaurants rest ON rest.rtr_id = o.rtr_id
		WHERE o.usr_id = $1
		ORDER BY o.ord_id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows, false)
}

func (r *PostgresRepository) ListRestaurantOrders(restaurantID int) ([]domain.Order, error) {
	rows, err := r.DB.Query(`
		SELECT o.ord_id, o.rtr_id, o.usr_id, o.details, o.status, o.created_at,
		       u.first_name || ' ' || u.last_name
		FROM orders o
		JOIN users u ON u.usr_id = o.usr_id
		WHERE o.rtr_id = $1
		ORDER BY o.ord_id DESC`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows, true)
}

func scanOrders(rows *sql.Rows, withCustomer bool) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var details []byte
		var status, name string
		if err := rows.Scan(&o.ID, &o.RestaurantID, &o.UserID, &details, &status, &o.CreatedAt, &name); err != nil {
			continue
		}
		st, err := domain.ParseStatus(status)
		if err != nil {
			// Reject unknown statuses at the persistence boundary.
			continue
		}
		o.Status = st
		if err := json.Unmarshal(details, &o.Details); err != nil {
			continue
		}
		if withCustomer {
			o.CustomerName = name
		} else {
			o.RestaurantName = name
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateOrderStatus is the atomic read-modify-write for the status machine:
// the row only changes when it still belongs to restaurantID and its status
// is one of the expected prior states. Concurrent callers race on the
// condition, not on a stale read.
func (r *PostgresRepository) UpdateOrderStatus(orderID, restaurantID int, from []domain.OrderStatus, to domain.OrderStatus) (int64, error) {
	froms := make([]string, len(from))
	for i, s := range from {
		froms[i] = string(s)
	}
	result, err := r.DB.Exec(`
		UPDATE orders SET status = $1
		WHERE ord_id = $2 AND rtr_id = $3 AND status = ANY($4)`,
		string(to), orderID, restaurantID, pq.Array(froms))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// -------------------------------------------------------------- reviews

func (r *PostgresRepository) InsertReview(rv *domain.Review) error {
	return r.DB.QueryRow(`
		INSERT INTO reviews (rtr_id, usr_id, ord_id, title, rating, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING rev_id, created_at`,
		rv.RestaurantID, rv.UserID, rv.OrderID, rv.Title, rv.Rating, rv.Description,
	).Scan(&rv.ID, &rv.CreatedAt)
}

func (r *PostgresRepository) HasReviewForOrder(orderID int) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM reviews WHERE ord_id = $1)`, orderID).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) ListRestaurantReviews(restaurantID, filterRating, limit, offset int, sort string) ([]domain.Review, error) {
	orderBy := "rv.created_at DESC"
	switch sort {
	case "highest":
		orderBy = "rv.rating DESC, rv.created_at DESC"
	case "lowest":
		orderBy = "rv.rating ASC, rv.created_at DESC"
	}

	query := `
		SELECT rv.rev_id, rv.rtr_id, rv.usr_id, rv.ord_id, COALESCE(rv.title, ''), rv.rating,
		       COALESCE(rv.description, ''), rv.created_at, u.first_name || ' ' || u.last_name
		FROM reviews rv
		JOIN users u ON u.usr_id = rv.usr_id
		WHERE rv.rtr_id = $1`
	args := []interface{}{restaurantID}
	if filterRating >= 1 && filterRating <= 5 {
		query += ` AND rv.rating = $2`
		args = append(args, filterRating)
	}
	query += ` ORDER BY ` + orderBy +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.RestaurantID, &rv.UserID, &rv.OrderID, &rv.Title,
			&rv.Rating, &rv.Description, &rv.CreatedAt, &rv.UserName); err != nil {
			continue
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *PostgresRepository) CountReviews(restaurantID, filterRating int) (int, error) {
	var count int
	var err error
	if filterRating >= 1 && filterRating <= 5 {
		err = r.DB.QueryRow(`SELECT COUNT(*) FROM reviews WHERE rtr_id = $1 AND rating = $2`,
			restaurantID, filterRating).Scan(&count)
	} else {
		err = r.DB.QueryRow(`SELECT COUNT(*) FROM reviews WHERE rtr_id = $1`, restaurantID).Scan(&count)
	}
	return count, err
}

func (r *PostgresRepository) AverageRating(restaurantID int) (float64, error) {
	var avg float64
	err := r.DB.QueryRow(`SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE rtr_id = $1`,
		restaurantID).Scan(&avg)
	return avg, err
}

// ------------------------------------------------------------ analytics

// InsertSnapshot appends today's row. Snapshots are append-only, one per
// restaurant per date; a second write for the same date is a no-op.
func (r *PostgresRepository) InsertSnapshot(s *domain.Snapshot) error {
	var popular sql.NullInt64
	if s.MostPopularItemID > 0 {
		popular = sql.NullInt64{Int64: int64(s.MostPopularItemID), Valid: true}
	}
	_, err := r.DB.Exec(`
		INSERT INTO analytics (rtr_id, snapshot_date, total_orders, total_revenue_cents,
			avg_order_value_cents, total_customers, most_popular_item_id, order_completion_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (rtr_id, snapshot_date) DO NOTHING`,
		s.RestaurantID, s.Date, s.TotalOrders, s.TotalRevenueCents,
		s.AvgOrderValueCents, s.TotalCustomers, popular, s.CompletionRate)
	return err
}

func (r *PostgresRepository) SumSnapshots(restaurantID int) (int, int64, error) {
	var orders int
	var revenue int64
	err := r.DB.QueryRow(`
		SELECT COALESCE(SUM(total_orders), 0), COALESCE(SUM(total_revenue_cents), 0)
		FROM analytics WHERE rtr_id = $1`, restaurantID,
	).Scan(&orders, &revenue)
	return orders, revenue, err
}

// ListSnapshots returns newest-first, at most limit rows (0 means all).
func (r *PostgresRepository) ListSnapshots(restaurantID, limit int) ([]domain.Snapshot, error) {
	query := `
		SELECT analytics_id, rtr_id, snapshot_date, total_orders, total_revenue_cents,
		       avg_order_value_cents, total_customers, COALESCE(most_popular_item_id, 0),
		       order_completion_rate, created_at
		FROM analytics WHERE rtr_id = $1
		ORDER BY snapshot_date DESC`
	args := []interface{}{restaurantID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []domain.Snapshot
	for rows.Next() {
		var s domain.Snapshot
		if err := rows.Scan(&s.ID, &s.RestaurantID, &s.Date, &s.TotalOrders, &s.TotalRevenueCents,
			&s.AvgOrderValueCents, &s.TotalCustomers, &s.MostPopularItemID,
			&s.CompletionRate, &s.CreatedAt); err != nil {
			continue
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// OrderDayStats recomputes one day's counters straight from the orders table,
// used when the live Redis counters are empty (e.g. after a restart).
func (r *PostgresRepository) OrderDayStats(restaurantID int, date string) (int, int64, int, error) {
	var orders, delivered int
	var revenue int64
	err := r.DB.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM((details->'charges'->>'total_cents')::bigint), 0),
		       COUNT(*) FILTER (WHERE status = 'Delivered')
		FROM orders
		WHERE rtr_id = $1 AND created_at::date = $2::date`,
		restaurantID, date,
	).Scan(&orders, &revenue, &delivered)
	return orders, revenue, delivered, err
}

// --------------------------------------------------------------- schema

func (r *PostgresRepository) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			usr_id SERIAL PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			phone TEXT,
			password_hash TEXT NOT NULL,
			wallet_cents BIGINT NOT NULL DEFAULT 0,
			preferences TEXT,
			allergens TEXT,
			generated_menu TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS restaurants (
			rtr_id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			phone TEXT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			address TEXT, city TEXT, state TEXT, zip TEXT,
			hours TEXT,
			status TEXT DEFAULT 'open'
		)`,
		`CREATE TABLE IF NOT EXISTS menu_items (
			itm_id SERIAL PRIMARY KEY,
			rtr_id INTEGER NOT NULL REFERENCES restaurants(rtr_id),
			name TEXT NOT NULL,
			description TEXT,
			price_cents BIGINT NOT NULL,
			calories INTEGER,
			instock BOOLEAN NOT NULL DEFAULT TRUE,
			allergens TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			ord_id SERIAL PRIMARY KEY,
			rtr_id INTEGER NOT NULL REFERENCES restaurants(rtr_id),
			usr_id INTEGER NOT NULL REFERENCES users(usr_id),
			details JSONB NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			rev_id SERIAL PRIMARY KEY,
			rtr_id INTEGER NOT NULL REFERENCES restaurants(rtr_id),
			usr_id INTEGER NOT NULL REFERENCES users(usr_id),
			ord_id INTEGER NOT NULL UNIQUE REFERENCES orders(ord_id),
			title TEXT,
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS analytics (
			analytics_id SERIAL PRIMARY KEY,
			rtr_id INTEGER NOT NULL REFERENCES restaurants(rtr_id),
			snapshot_date DATE NOT NULL,
			total_orders INTEGER NOT NULL DEFAULT 0,
			total_revenue_cents BIGINT NOT NULL DEFAULT 0,
			avg_order_value_cents BIGINT NOT NULL DEFAULT 0,
			total_customers INTEGER NOT NULL DEFAULT 0,
			most_popular_item_id INTEGER REFERENCES menu_items(itm_id),
			order_completion_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (rtr_id, snapshot_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_rtr ON orders (rtr_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_usr ON orders (usr_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_rtr ON reviews (rtr_id)`,
	}

	for _, stmt := range statements {
		if _, err := r.DB.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
