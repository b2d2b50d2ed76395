package service

import (
	"context"
	"fmt"
	"log"

	"mealplanner/internal/domain"
)

const dashboardSeriesDays = 30

type AnalyticsService struct {
	analytics AnalyticsRepository
	menu      MenuRepository
	metrics   MetricsStore
}

func NewAnalyticsService(analytics AnalyticsRepository, menu MenuRepository, metrics MetricsStore) *AnalyticsService {
	return &AnalyticsService{analytics: analytics, menu: menu, metrics: metrics}
}

// Dashboard reads precomputed snapshot rows only; it never aggregates over
// the orders table. A restaurant with no snapshots yet gets a zeroed
// dashboard, not an error.
func (s *AnalyticsService) Dashboard(restaurantID int) (*domain.Dashboard, error) {
	totalOrders, totalRevenue, err := s.analytics.SumSnapshots(restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum snapshots: %w", err)
	}

	snapshots, err := s.analytics.ListSnapshots(restaurantID, dashboardSeriesDays)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	dashboard := &domain.Dashboard{
		TotalOrders:       totalOrders,
		TotalRevenueCents: totalRevenue,
		Series:            make([]domain.SnapshotPoint, 0, len(snapshots)),
	}
	if totalOrders > 0 {
		dashboard.AvgOrderValueCents = totalRevenue / int64(totalOrders)
	}

	// Snapshots arrive newest-first; the chart wants chronological order.
	for i := len(snapshots) - 1; i >= 0; i-- {
		snap := snapshots[i]
		dashboard.Series = append(dashboard.Series, domain.SnapshotPoint{
			Date:               snap.Date,
			TotalOrders:        snap.TotalOrders,
			TotalRevenueCents:  snap.TotalRevenueCents,
			AvgOrderValueCents: snap.AvgOrderValueCents,
		})
	}

	if len(snapshots) > 0 && snapshots[0].MostPopularItemID > 0 {
		dashboard.MostPopularItemID = snapshots[0].MostPopularItemID
		name, err := s.menu.GetItemName(dashboard.MostPopularItemID)
		if err != nil {
			log.Printf("restaurant %d: failed to resolve popular item %d: %v",
				restaurantID, dashboard.MostPopularItemID, err)
		} else {
			dashboard.MostPopularItemName = name
		}
	}
	return dashboard, nil
}

// RecordSnapshot folds one day's live counters into a snapshot row. When the
// counters are empty (for example after a cache restart) the day is
// recomputed from the orders table instead.
func (s *AnalyticsService) RecordSnapshot(ctx context.Context, restaurantID int, date string) error {
	metrics, err := s.metrics.DailyMetrics(ctx, restaurantID, date)
	if err != nil {
		return fmt.Errorf("failed to read daily metrics: %w", err)
	}

	if metrics.Orders == 0 {
		orders, revenue, delivered, err := s.analytics.OrderDayStats(restaurantID, date)
		if err != nil {
			return fmt.Errorf("failed to recompute day stats: %w", err)
		}
		metrics.Orders = orders
		metrics.RevenueCents = revenue
		metrics.Delivered = delivered
	}
	if metrics.Orders == 0 {
		// Nothing happened; no row for this day.
		return nil
	}

	snapshot := &domain.Snapshot{
		RestaurantID:      restaurantID,
		Date:              date,
		TotalOrders:       metrics.Orders,
		TotalRevenueCents: metrics.RevenueCents,
		TotalCustomers:    metrics.Customers,
		MostPopularItemID: metrics.PopularItemID,
		CompletionRate:    float64(metrics.Delivered) / float64(metrics.Orders),
	}
	snapshot.AvgOrderValueCents = metrics.RevenueCents / int64(metrics.Orders)

	if err := s.analytics.InsertSnapshot(snapshot); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}
