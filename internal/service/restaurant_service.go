package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"mealplanner/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type RestaurantService struct {
	restaurants RestaurantRepository
	menu        MenuRepository
	orders      OrderRepository
}

func NewRestaurantService(restaurants RestaurantRepository, menu MenuRepository, orders OrderRepository) *RestaurantService {
	return &RestaurantService{restaurants: restaurants, menu: menu, orders: orders}
}

func (s *RestaurantService) Authenticate(email, password string) (*domain.Restaurant, error) {
	restaurant, err := s.restaurants.GetRestaurantByEmail(strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch restaurant: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(restaurant.PasswordHash), []byte(password)) != nil {
		return nil, ErrNotFound
	}
	return restaurant, nil
}

func (s *RestaurantService) List() ([]domain.Restaurant, error) {
	return s.restaurants.ListRestaurants()
}

func (s *RestaurantService) Get(id int) (*domain.Restaurant, error) {
	restaurant, err := s.restaurants.GetRestaurant(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch restaurant: %w", err)
	}
	return restaurant, nil
}

// Menu lists only in-stock items; sold-out rows never reach the storefront.
func (s *RestaurantService) Menu(restaurantID int) ([]domain.MenuItem, error) {
	if _, err := s.Get(restaurantID); err != nil {
		return nil, err
	}
	return s.menu.ListInStockItems(restaurantID)
}

// StatusCounts summarizes the restaurant's order queue for its dashboard
// header. Every status appears in the map, zero or not.
func (s *RestaurantService) StatusCounts(restaurantID int) (map[domain.OrderStatus]int, error) {
	orders, err := s.orders.ListRestaurantOrders(restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	counts := make(map[domain.OrderStatus]int, len(domain.AllStatuses))
	for _, status := range domain.AllStatuses {
		counts[status] = 0
	}
	for _, order := range orders {
		counts[order.Status]++
	}
	return counts, nil
}
