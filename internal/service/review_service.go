package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"mealplanner/internal/domain"
)

const reviewPageSize = 10

type ReviewQuery struct {
	Page         int    // 1-based
	FilterRating int    // 0 means no filter
	Sort         string // recent, highest, lowest
}

type ReviewPage struct {
	Reviews       []domain.Review `json:"reviews"`
	Page          int             `json:"page"`
	TotalPages    int             `json:"total_pages"`
	TotalReviews  int             `json:"total_reviews"`
	AverageRating float64         `json:"average_rating"`
}

type ReviewService struct {
	reviews ReviewRepository
	orders  OrderRepository
}

func NewReviewService(reviews ReviewRepository, orders OrderRepository) *ReviewService {
	return &ReviewService{reviews: reviews, orders: orders}
}

// Submit accepts a review only for the caller's own delivered order, and only
// once per order.
func (s *ReviewService) Submit(userID, orderID int, title string, rating int, description string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	order, err := s.orders.GetOrder(orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	if order.Status != domain.StatusDelivered {
		return nil, fmt.Errorf("%w: only delivered orders can be reviewed", ErrValidation)
	}

	exists, err := s.reviews.HasReviewForOrder(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: order already has a review", ErrValidation)
	}

	review := &domain.Review{
		RestaurantID: order.RestaurantID,
		UserID:       userID,
		OrderID:      orderID,
		Title:        strings.TrimSpace(title),
		Rating:       rating,
		Description:  strings.TrimSpace(description),
	}
	if err := s.reviews.InsertReview(review); err != nil {
		return nil, fmt.Errorf("failed to insert review: %w", err)
	}
	return review, nil
}

func (s *ReviewService) ListForRestaurant(restaurantID int, q ReviewQuery) (*ReviewPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	switch q.Sort {
	case "recent", "highest", "lowest":
	default:
		q.Sort = "recent"
	}
	if q.FilterRating < 0 || q.FilterRating > 5 {
		return nil, fmt.Errorf("%w: rating filter must be between 1 and 5", ErrValidation)
	}

	total, err := s.reviews.CountReviews(restaurantID, q.FilterRating)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}
	avg, err := s.reviews.AverageRating(restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to average ratings: %w", err)
	}

	offset := (q.Page - 1) * reviewPageSize
	reviews := []domain.Review{}
	if offset < total {
		reviews, err = s.reviews.ListRestaurantReviews(restaurantID, q.FilterRating, reviewPageSize, offset, q.Sort)
		if err != nil {
			return nil, fmt.Errorf("failed to list reviews: %w", err)
		}
	}

	totalPages := (total + reviewPageSize - 1) / reviewPageSize
	if totalPages == 0 {
		totalPages = 1
	}
	return &ReviewPage{
		Reviews:       reviews,
		Page:          q.Page,
		TotalPages:    totalPages,
		TotalReviews:  total,
		AverageRating: avg,
	}, nil
}
