package storage

import (
	"context"
	"testing"
	"time"

	"mealplanner/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client)
}

func TestSessionRoundTrip(t *testing.T) {
	store := setupTestRedis(t)
	ctx := context.Background()

	if err := store.PutSession(ctx, "customer", "tok123", 7); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	id, err := store.GetSession(ctx, "customer", "tok123")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if id != 7 {
		t.Fatalf("expected 7, got %d", id)
	}

	// A restaurant token with the same value must not resolve.
	if _, err := store.GetSession(ctx, "restaurant", "tok123"); err == nil {
		t.Fatal("expected miss in the restaurant realm")
	}

	if err := store.DeleteSession(ctx, "customer", "tok123"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.GetSession(ctx, "customer", "tok123"); err == nil {
		t.Fatal("expected miss after delete")
	}
}

func TestJobRoundTrip(t *testing.T) {
	store := setupTestRedis(t)
	ctx := context.Background()

	job := &domain.GenerationJob{
		ID:        "abc-123",
		UserID:    7,
		State:     domain.JobPending,
		StartDate: "2025-10-14",
		Days:      3,
		Slots:     []int{2, 3},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.GetJob(ctx, "abc-123")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.UserID != 7 || got.State != domain.JobPending || len(got.Slots) != 2 {
		t.Fatalf("unexpected job: %+v", got)
	}
}

func TestDailyMetricsAccumulate(t *testing.T) {
	store := setupTestRedis(t)
	ctx := context.Background()
	at := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)

	events := []domain.OrderEvent{
		{Type: domain.EventOrderPlaced, OrderID: 1, RestaurantID: 3, UserID: 7, TotalCents: 2830, ItemIDs: []int{42, 42}, Timestamp: at},
		{Type: domain.EventOrderPlaced, OrderID: 2, RestaurantID: 3, UserID: 8, TotalCents: 1500, ItemIDs: []int{58}, Timestamp: at},
		{Type: domain.EventOrderPlaced, OrderID: 3, RestaurantID: 3, UserID: 7, TotalCents: 900, ItemIDs: []int{42}, Timestamp: at},
	}
	for _, evt := range events {
		if err := store.RecordOrderPlaced(ctx, evt); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}
	if err := store.RecordStatusChange(ctx, domain.OrderEvent{
		Type: domain.EventStatusChange, OrderID: 1, RestaurantID: 3,
		Status: string(domain.StatusDelivered), Timestamp: at,
	}); err != nil {
		t.Fatalf("record status failed: %v", err)
	}
	// Non-delivered changes do not count toward completion.
	if err := store.RecordStatusChange(ctx, domain.OrderEvent{
		Type: domain.EventStatusChange, OrderID: 2, RestaurantID: 3,
		Status: string(domain.StatusAccepted), Timestamp: at,
	}); err != nil {
		t.Fatalf("record status failed: %v", err)
	}

	metrics, err := store.DailyMetrics(ctx, 3, "2025-10-14")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if metrics.Orders != 3 {
		t.Fatalf("expected 3 orders, got %d", metrics.Orders)
	}
	if metrics.RevenueCents != 5230 {
		t.Fatalf("expected 5230 revenue, got %d", metrics.RevenueCents)
	}
	if metrics.Customers != 2 {
		t.Fatalf("expected 2 distinct customers, got %d", metrics.Customers)
	}
	if metrics.Delivered != 1 {
		t.Fatalf("expected 1 delivered, got %d", metrics.Delivered)
	}
	if metrics.PopularItemID != 42 {
		t.Fatalf("expected item 42 most popular, got %d", metrics.PopularItemID)
	}
}

func TestDailyMetricsEmptyDay(t *testing.T) {
	store := setupTestRedis(t)

	metrics, err := store.DailyMetrics(context.Background(), 99, "2025-01-01")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if metrics.Orders != 0 || metrics.RevenueCents != 0 || metrics.PopularItemID != 0 {
		t.Fatalf("expected zeroed metrics, got %+v", metrics)
	}
}
