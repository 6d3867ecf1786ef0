package services

import (
	"examapp/internal/domain"
	"examapp/internal/repos"
)

type OrderService struct {
	Orders *repos.OrderRepo
	Refs   *repos.ReferenceRepo
}

func NewOrderService(orders *repos.OrderRepo, refs *repos.ReferenceRepo) *OrderService {
	return &OrderService{Orders: orders, Refs: refs}
}

// ClientOrders lists the orders placed by one client with pickup point and status.
func (s *OrderService) ClientOrders(clientID int64) ([]domain.Order, error) {
	return s.Orders.ListByClient(clientID)
}

// Board is the staff view of recent orders plus the labels they can be moved to.
type Board struct {
	Orders   []domain.Order
	Statuses []domain.OrderStatus
}

func (s *OrderService) Board(limit int) (Board, error) {
	orders, err := s.Orders.ListLatest(limit)
	if err != nil {
		return Board{}, err
	}
	statuses, err := s.Refs.Statuses()
	if err != nil {
		return Board{}, err
	}
	return Board{Orders: orders, Statuses: statuses}, nil
}

func (s *OrderService) SetStatus(orderID, statusID int64) error {
	return s.Orders.UpdateStatus(orderID, statusID)
}

// PickupPoints lists where orders can be collected.
func (s *OrderService) PickupPoints() ([]domain.PickupPoint, error) {
	return s.Refs.PickupPoints()
}
