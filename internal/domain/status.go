package domain

import "fmt"

// OrderStatus is a closed enumeration. Values outside the known set are
// rejected at the persistence boundary by ParseStatus.
type OrderStatus string

const (
	StatusOrdered   OrderStatus = "Ordered"
	StatusAccepted  OrderStatus = "Accepted"
	StatusPreparing OrderStatus = "Preparing"
	StatusReady     OrderStatus = "Ready"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

// AllStatuses lists every status in workflow order, Cancelled last.
var AllStatuses = []OrderStatus{
	StatusOrdered,
	StatusAccepted,
	StatusPreparing,
	StatusReady,
	StatusDelivered,
	StatusCancelled,
}

// transitions is the full forward table. An order only ever advances through
// the fixed sequence or jumps to Cancelled from a non-terminal state; it
// never regresses.
var transitions = map[OrderStatus][]OrderStatus{
	StatusOrdered:   {StatusAccepted, StatusCancelled},
	StatusAccepted:  {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

func ParseStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}

func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// CancellableFrom reports the statuses Cancelled is reachable from, used to
// build the conditional update for reject endpoints.
func CancellableFrom() []OrderStatus {
	return []OrderStatus{StatusOrdered, StatusAccepted, StatusPreparing}
}
