package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"mealplanner/internal/domain"
)

const (
	taxRateBasisPoints    = 725 // 7.25%
	deliveryFeeCents      = 399
	serviceFeeCents       = 149
	insufficientFundsText = "wallet balance does not cover the order total"
)

type OrderLineRequest struct {
	ItemID int    `json:"itm_id"`
	Qty    int    `json:"qty"`
	Notes  string `json:"notes,omitempty"`
}

type PlaceOrderRequest struct {
	RestaurantID int                `json:"restaurant_id"`
	Items        []OrderLineRequest `json:"items"`
	DeliveryType string             `json:"delivery_type"`
	TipCents     int64              `json:"tip_cents"`
	Date         string             `json:"date,omitempty"`
	Meal         int                `json:"meal,omitempty"`
	Notes        string             `json:"notes,omitempty"`
}

type OrderService struct {
	orders    OrderRepository
	menu      MenuRepository
	accounts  AccountRepository
	publisher OrderPublisher
}

func NewOrderService(orders OrderRepository, menu MenuRepository, accounts AccountRepository, publisher OrderPublisher) *OrderService {
	return &OrderService{orders: orders, menu: menu, accounts: accounts, publisher: publisher}
}

// Place validates the cart, prices it from the stored menu, debits the
// customer's wallet and persists the order in status Ordered. Client-supplied
// prices are never trusted; every amount is recomputed here.
func (s *OrderService) Place(ctx context.Context, userID int, req PlaceOrderRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrValidation)
	}
	if req.DeliveryType != "delivery" && req.DeliveryType != "pickup" {
		return nil, fmt.Errorf("%w: delivery_type must be delivery or pickup", ErrValidation)
	}
	if req.TipCents < 0 {
		return nil, fmt.Errorf("%w: tip cannot be negative", ErrValidation)
	}

	ids := make([]int, 0, len(req.Items))
	for _, line := range req.Items {
		if line.Qty <= 0 {
			return nil, fmt.Errorf("%w: item %d has invalid quantity", ErrValidation, line.ItemID)
		}
		ids = append(ids, line.ItemID)
	}
	catalog, err := s.menu.GetItemsByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}

	var lines []domain.OrderLine
	var subtotal int64
	itemIDs := make([]int, 0, len(req.Items))
	for _, line := range req.Items {
		item, ok := catalog[line.ItemID]
		if !ok {
			return nil, fmt.Errorf("%w: item %d does not exist", ErrValidation, line.ItemID)
		}
		if item.RestaurantID != req.RestaurantID {
			return nil, fmt.Errorf("%w: item %d belongs to another restaurant", ErrValidation, line.ItemID)
		}
		if !item.InStock {
			return nil, fmt.Errorf("%w: %s is out of stock", ErrValidation, item.Name)
		}
		lineTotal := item.PriceCents * int64(line.Qty)
		subtotal += lineTotal
		itemIDs = append(itemIDs, line.ItemID)
		lines = append(lines, domain.OrderLine{
			ItemID:         item.ID,
			Name:           item.Name,
			Qty:            line.Qty,
			UnitPriceCents: item.PriceCents,
			LineTotalCents: lineTotal,
			Notes:          line.Notes,
		})
	}

	charges := ComputeCharges(subtotal, req.DeliveryType, req.TipCents)

	affected, err := s.accounts.DebitWallet(userID, charges.TotalCents)
	if err != nil {
		return nil, fmt.Errorf("failed to charge wallet: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, insufficientFundsText)
	}

	order := &domain.Order{
		RestaurantID: req.RestaurantID,
		UserID:       userID,
		Status:       domain.StatusOrdered,
		Details: domain.OrderDetails{
			PlacedAt:     time.Now().UTC(),
			Items:        lines,
			Charges:      charges,
			DeliveryType: req.DeliveryType,
			ETAMinutes:   25 + rand.Intn(21),
			Date:         req.Date,
			Meal:         req.Meal,
			Notes:        req.Notes,
		},
	}
	if err := s.orders.CreateOrder(order); err != nil {
		// The debit above must not stand without an order row.
		if refundErr := s.accounts.CreditWallet(userID, charges.TotalCents); refundErr != nil {
			log.Printf("user %d: failed to refund %d cents after order insert error: %v",
				userID, charges.TotalCents, refundErr)
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderEvent(ctx, domain.OrderEvent{
			Type:         domain.EventOrderPlaced,
			OrderID:      order.ID,
			RestaurantID: order.RestaurantID,
			UserID:       order.UserID,
			Status:       string(order.Status),
			TotalCents:   charges.TotalCents,
			ItemIDs:      itemIDs,
			Timestamp:    order.CreatedAt,
		}); err != nil {
			log.Printf("order %d: failed to publish placed event: %v", order.ID, err)
		}
	}
	return order, nil
}

// ComputeCharges prices an order in integer cents. Tax applies to the food
// subtotal only; the delivery fee is charged for delivery orders alone.
func ComputeCharges(subtotalCents int64, deliveryType string, tipCents int64) domain.Charges {
	charges := domain.Charges{
		SubtotalCents:   subtotalCents,
		TaxCents:        (subtotalCents*taxRateBasisPoints + 5000) / 10000,
		ServiceFeeCents: serviceFeeCents,
		TipCents:        tipCents,
	}
	if deliveryType == "delivery" {
		charges.DeliveryFeeCents = deliveryFeeCents
	}
	charges.TotalCents = charges.SubtotalCents + charges.TaxCents +
		charges.DeliveryFeeCents + charges.ServiceFeeCents + charges.TipCents
	return charges
}

func (s *OrderService) Get(userID, orderID int) (*domain.Order, error) {
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
	return order, nil
}

func (s *OrderService) ListForUser(userID int) ([]domain.Order, error) {
	return s.orders.ListUserOrders(userID)
}

func (s *OrderService) ListForRestaurant(restaurantID int) (map[domain.OrderStatus][]domain.Order, error) {
	orders, err := s.orders.ListRestaurantOrders(restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	grouped := make(map[domain.OrderStatus][]domain.Order, len(domain.AllStatuses))
	for _, status := range domain.AllStatuses {
		grouped[status] = []domain.Order{}
	}
	for _, order := range orders {
		grouped[order.Status] = append(grouped[order.Status], order)
	}
	return grouped, nil
}

// Transition advances an order through the status machine on behalf of the
// restaurant. The update is conditional in storage; when no row matches, a
// follow-up read tells apart a missing order, another restaurant's order and
// an illegal transition.
func (s *OrderService) Transition(ctx context.Context, restaurantID, orderID int, target domain.OrderStatus) (domain.OrderStatus, error) {
	if !target.Valid() || target == domain.StatusOrdered {
		return "", fmt.Errorf("%w: unknown target status %q", ErrValidation, target)
	}

	var from []domain.OrderStatus
	if target == domain.StatusCancelled {
		from = domain.CancellableFrom()
	} else {
		for _, status := range domain.AllStatuses {
			if status.CanTransitionTo(target) {
				from = append(from, status)
			}
		}
	}

	affected, err := s.orders.UpdateOrderStatus(orderID, restaurantID, from, target)
	if err != nil {
		return "", fmt.Errorf("failed to update order status: %w", err)
	}
	if affected == 0 {
		order, err := s.orders.GetOrder(orderID)
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		if err != nil {
			return "", fmt.Errorf("failed to fetch order: %w", err)
		}
		if order.RestaurantID != restaurantID {
			return "", ErrForbidden
		}
		return "", fmt.Errorf("%w: cannot move order from %s to %s", ErrInvalidTransition, order.Status, target)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderEvent(ctx, domain.OrderEvent{
			Type:         domain.EventStatusChange,
			OrderID:      orderID,
			RestaurantID: restaurantID,
			Status:       string(target),
			Timestamp:    time.Now().UTC(),
		}); err != nil {
			log.Printf("order %d: failed to publish status event: %v", orderID, err)
		}
	}
	return target, nil
}
