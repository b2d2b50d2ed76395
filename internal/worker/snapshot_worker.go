package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"mealplanner/internal/domain"
	"mealplanner/internal/service"

	"github.com/segmentio/kafka-go"
)

// SnapshotRecorder cuts a snapshot row for one restaurant and date.
type SnapshotRecorder interface {
	RecordSnapshot(ctx context.Context, restaurantID int, date string) error
}

// SnapshotWorker consumes order events into the live daily counters and cuts
// one analytics snapshot per restaurant at the end of each day.
type SnapshotWorker struct {
	Reader      *kafka.Reader
	Metrics     service.MetricsStore
	Recorder    SnapshotRecorder
	Restaurants service.RestaurantRepository
}

func NewSnapshotWorker(reader *kafka.Reader, metrics service.MetricsStore, recorder SnapshotRecorder, restaurants service.RestaurantRepository) *SnapshotWorker {
	return &SnapshotWorker{
		Reader:      reader,
		Metrics:     metrics,
		Recorder:    recorder,
		Restaurants: restaurants,
	}
}

func (w *SnapshotWorker) Consume(ctx context.Context) {
	log.Println("Starting order event consumer...")
	for {
		message, err := w.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Error reading message: %v", err)
			continue
		}

		var evt domain.OrderEvent
		if err := json.Unmarshal(message.Value, &evt); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		switch evt.Type {
		case domain.EventOrderPlaced:
			if err := w.Metrics.RecordOrderPlaced(ctx, evt); err != nil {
				log.Printf("Error recording placed order %d: %v", evt.OrderID, err)
			}
		case domain.EventStatusChange:
			if err := w.Metrics.RecordStatusChange(ctx, evt); err != nil {
				log.Printf("Error recording status change for order %d: %v", evt.OrderID, err)
			}
		}
	}
}

// RunDaily blocks until ctx is cancelled, cutting snapshots for the day that
// just ended shortly after each midnight UTC.
func (w *SnapshotWorker) RunDaily(ctx context.Context) {
	for {
		now := time.Now().UTC()
		next := now.Truncate(24 * time.Hour).Add(24*time.Hour + 5*time.Minute)
		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
			w.SnapshotAll(ctx, now.Format("2006-01-02"))
		}
	}
}

func (w *SnapshotWorker) SnapshotAll(ctx context.Context, date string) {
	restaurants, err := w.Restaurants.ListRestaurants()
	if err != nil {
		log.Printf("Error listing restaurants for snapshots: %v", err)
		return
	}
	for _, restaurant := range restaurants {
		if err := w.Recorder.RecordSnapshot(ctx, restaurant.ID, date); err != nil {
			log.Printf("Error recording snapshot for restaurant %d: %v", restaurant.ID, err)
		}
	}
	log.Printf("Recorded snapshots for %s across %d restaurants", date, len(restaurants))
}
