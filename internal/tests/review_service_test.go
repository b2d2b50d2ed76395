package tests

import (
	"database/sql"
	"testing"

	"mealplanner/internal/domain"
	"mealplanner/internal/mocks"
	"mealplanner/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestReviewService_Submit(t *testing.T) {
	deliveredOrder := &domain.Order{ID: 10, RestaurantID: 3, UserID: 7, Status: domain.StatusDelivered}

	tests := []struct {
		name         string
		userID       int
		rating       int
		prepareMocks func(reviews *mocks.ReviewRepository, orders *mocks.OrderRepository)
		wantErr      error
	}{
		{
			name: "success", userID: 7, rating: 5,
			prepareMocks: func(reviews *mocks.ReviewRepository, orders *mocks.OrderRepository) {
				orders.On("GetOrder", 10).Return(deliveredOrder, nil).Once()
				reviews.On("HasReviewForOrder", 10).Return(false, nil).Once()
				reviews.On("InsertReview", mock.MatchedBy(func(rv *domain.Review) bool {
					return rv.RestaurantID == 3 && rv.OrderID == 10 && rv.Rating == 5
				})).Return(nil).Once()
			},
		},
		{
			name: "rating_out_of_range", userID: 7, rating: 6,
			wantErr: service.ErrValidation,
		},
		{
			name: "not_own_order", userID: 99, rating: 4,
			prepareMocks: func(_ *mocks.ReviewRepository, orders *mocks.OrderRepository) {
				orders.On("GetOrder", 10).Return(deliveredOrder, nil).Once()
			},
			wantErr: service.ErrForbidden,
		},
		{
			name: "order_not_delivered", userID: 7, rating: 4,
			prepareMocks: func(_ *mocks.ReviewRepository, orders *mocks.OrderRepository) {
				orders.On("GetOrder", 10).
					Return(&domain.Order{ID: 10, RestaurantID: 3, UserID: 7, Status: domain.StatusPreparing}, nil).Once()
			},
			wantErr: service.ErrValidation,
		},
		{
			name: "duplicate_review", userID: 7, rating: 4,
			prepareMocks: func(reviews *mocks.ReviewRepository, orders *mocks.OrderRepository) {
				orders.On("GetOrder", 10).Return(deliveredOrder, nil).Once()
				reviews.On("HasReviewForOrder", 10).Return(true, nil).Once()
			},
			wantErr: service.ErrValidation,
		},
		{
			name: "order_missing", userID: 7, rating: 4,
			prepareMocks: func(_ *mocks.ReviewRepository, orders *mocks.OrderRepository) {
				orders.On("GetOrder", 10).Return(nil, sql.ErrNoRows).Once()
			},
			wantErr: service.ErrNotFound,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			reviews := mocks.NewReviewRepository(t)
			orders := mocks.NewOrderRepository(t)
			if testCase.prepareMocks != nil {
				testCase.prepareMocks(reviews, orders)
			}
			svc := service.NewReviewService(reviews, orders)

			review, err := svc.Submit(testCase.userID, 10, "Tasty", testCase.rating, "Would order again")
			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, 3, review.RestaurantID)
		})
	}
}

func TestReviewService_ListForRestaurant(t *testing.T) {
	reviews := mocks.NewReviewRepository(t)
	orders := mocks.NewOrderRepository(t)
	svc := service.NewReviewService(reviews, orders)

	reviews.On("CountReviews", 3, 0).Return(25, nil).Once()
	reviews.On("AverageRating", 3).Return(4.2, nil).Once()
	// Page 2 starts at offset 10 with the fixed page size.
	reviews.On("ListRestaurantReviews", 3, 0, 10, 10, "highest").
		Return([]domain.Review{{ID: 11}, {ID: 12}}, nil).Once()

	page, err := svc.ListForRestaurant(3, service.ReviewQuery{Page: 2, Sort: "highest"})
	assert.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 25, page.TotalReviews)
	assert.InDelta(t, 4.2, page.AverageRating, 0.001)
	assert.Len(t, page.Reviews, 2)
}

func TestReviewService_ListForRestaurant_PageBeyondEnd(t *testing.T) {
	reviews := mocks.NewReviewRepository(t)
	orders := mocks.NewOrderRepository(t)
	svc := service.NewReviewService(reviews, orders)

	reviews.On("CountReviews", 3, 0).Return(5, nil).Once()
	reviews.On("AverageRating", 3).Return(3.0, nil).Once()

	// Offset past the total short-circuits without a list query.
	page, err := svc.ListForRestaurant(3, service.ReviewQuery{Page: 4})
	assert.NoError(t, err)
	assert.Empty(t, page.Reviews)
	assert.Equal(t, 1, page.TotalPages)
}

func TestReviewService_ListForRestaurant_DefaultsApplied(t *testing.T) {
	reviews := mocks.NewReviewRepository(t)
	orders := mocks.NewOrderRepository(t)
	svc := service.NewReviewService(reviews, orders)

	reviews.On("CountReviews", 3, 5).Return(1, nil).Once()
	reviews.On("AverageRating", 3).Return(5.0, nil).Once()
	reviews.On("ListRestaurantReviews", 3, 5, 10, 0, "recent").
		Return([]domain.Review{{ID: 1, Rating: 5}}, nil).Once()

	// Page 0 and an unknown sort fall back to page 1, recent.
	page, err := svc.ListForRestaurant(3, service.ReviewQuery{Page: 0, FilterRating: 5, Sort: "bogus"})
	assert.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Reviews, 1)
}
