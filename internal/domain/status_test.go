package domain_test

import (
	"testing"

	"mealplanner/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitionTable(t *testing.T) {
	allowed := map[domain.OrderStatus][]domain.OrderStatus{
		domain.StatusOrdered:   {domain.StatusAccepted, domain.StatusCancelled},
		domain.StatusAccepted:  {domain.StatusPreparing, domain.StatusCancelled},
		domain.StatusPreparing: {domain.StatusReady, domain.StatusCancelled},
		domain.StatusReady:     {domain.StatusDelivered},
		domain.StatusDelivered: {},
		domain.StatusCancelled: {},
	}

	for _, from := range domain.AllStatuses {
		for _, to := range domain.AllStatuses {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestOrderStatusNeverRegresses(t *testing.T) {
	order := []domain.OrderStatus{
		domain.StatusOrdered,
		domain.StatusAccepted,
		domain.StatusPreparing,
		domain.StatusReady,
		domain.StatusDelivered,
	}
	for i, from := range order {
		for j := 0; j <= i; j++ {
			assert.False(t, from.CanTransitionTo(order[j]), "%s must not regress to %s", from, order[j])
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, domain.StatusDelivered.Terminal())
	assert.True(t, domain.StatusCancelled.Terminal())
	assert.False(t, domain.StatusOrdered.Terminal())
	assert.False(t, domain.StatusReady.Terminal())
}

func TestParseStatus(t *testing.T) {
	st, err := domain.ParseStatus("Preparing")
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, st)

	_, err = domain.ParseStatus("pending")
	assert.Error(t, err)

	_, err = domain.ParseStatus("")
	assert.Error(t, err)
}

func TestCancellableFrom(t *testing.T) {
	froms := domain.CancellableFrom()
	assert.Equal(t, []domain.OrderStatus{
		domain.StatusOrdered, domain.StatusAccepted, domain.StatusPreparing,
	}, froms)
	for _, from := range froms {
		assert.True(t, from.CanTransitionTo(domain.StatusCancelled))
	}
}
