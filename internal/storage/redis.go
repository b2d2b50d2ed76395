package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"mealplanner/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	sessionTTL = 30 * time.Minute
	jobTTL     = 24 * time.Hour
	metricsTTL = 48 * time.Hour
)

type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client}
}

// ------------------------------------------------------------- sessions

// Sessions are opaque tokens scoped by realm ("customer" or "restaurant"),
// so a customer token can never authenticate a restaurant endpoint.
func sessionKey(realm, token string) string {
	return fmt.Sprintf("session:%s:%s", realm, token)
}

func (s *RedisStore) PutSession(ctx context.Context, realm, token string, accountID int) error {
	return s.Client.Set(ctx, sessionKey(realm, token), accountID, sessionTTL).Err()
}

func (s *RedisStore) GetSession(ctx context.Context, realm, token string) (int, error) {
	val, err := s.Client.Get(ctx, sessionKey(realm, token)).Result()
	if err != nil {
		return 0, err
	}
	// Sliding expiry: activity keeps the session alive.
	s.Client.Expire(ctx, sessionKey(realm, token), sessionTTL)
	return strconv.Atoi(val)
}

func (s *RedisStore) DeleteSession(ctx context.Context, realm, token string) error {
	return s.Client.Del(ctx, sessionKey(realm, token)).Err()
}

// ------------------------------------------------------ generation jobs

func jobKey(id string) string {
	return "menugen:job:" + id
}

func (s *RedisStore) SaveJob(ctx context.Context, job *domain.GenerationJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, jobKey(job.ID), payload, jobTTL).Err()
}

func (s *RedisStore) GetJob(ctx context.Context, id string) (*domain.GenerationJob, error) {
	payload, err := s.Client.Get(ctx, jobKey(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var job domain.GenerationJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// --------------------------------------------------- live daily metrics

// Per-restaurant, per-date counters bumped by the event consumer and folded
// into a snapshot row at end of day. Keys expire on their own once the
// snapshot has been cut.
func metricsKey(restaurantID int, date, field string) string {
	return fmt.Sprintf("metrics:%d:%s:%s", restaurantID, date, field)
}

func (s *RedisStore) RecordOrderPlaced(ctx context.Context, ev domain.OrderEvent) error {
	date := ev.Timestamp.Format("2006-01-02")
	pipe := s.Client.Pipeline()
	pipe.Incr(ctx, metricsKey(ev.RestaurantID, date, "orders"))
	pipe.IncrBy(ctx, metricsKey(ev.RestaurantID, date, "revenue"), ev.TotalCents)
	pipe.SAdd(ctx, metricsKey(ev.RestaurantID, date, "customers"), ev.UserID)
	for _, itemID := range ev.ItemIDs {
		pipe.ZIncrBy(ctx, metricsKey(ev.RestaurantID, date, "items"), 1, strconv.Itoa(itemID))
	}
	for _, field := range []string{"orders", "revenue", "customers", "items"} {
		pipe.Expire(ctx, metricsKey(ev.RestaurantID, date, field), metricsTTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) RecordStatusChange(ctx context.Context, ev domain.OrderEvent) error {
	if ev.Status != string(domain.StatusDelivered) {
		return nil
	}
	date := ev.Timestamp.Format("2006-01-02")
	pipe := s.Client.Pipeline()
	pipe.Incr(ctx, metricsKey(ev.RestaurantID, date, "delivered"))
	pipe.Expire(ctx, metricsKey(ev.RestaurantID, date, "delivered"), metricsTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) DailyMetrics(ctx context.Context, restaurantID int, date string) (*domain.DailyMetrics, error) {
	var m domain.DailyMetrics

	orders, err := s.Client.Get(ctx, metricsKey(restaurantID, date, "orders")).Int()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	m.Orders = orders

	revenue, err := s.Client.Get(ctx, metricsKey(restaurantID, date, "revenue")).Int64()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	m.RevenueCents = revenue

	customers, err := s.Client.SCard(ctx, metricsKey(restaurantID, date, "customers")).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	m.Customers = int(customers)

	delivered, err := s.Client.Get(ctx, metricsKey(restaurantID, date, "delivered")).Int()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	m.Delivered = delivered

	top, err := s.Client.ZRevRangeWithScores(ctx, metricsKey(restaurantID, date, "items"), 0, 0).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	if len(top) > 0 {
		if id, ok := top[0].Member.(string); ok {
			m.PopularItemID, _ = strconv.Atoi(id)
		}
	}
	return &m, nil
}
