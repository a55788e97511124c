package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultStatusName is the status new orders start in unless configured.
const DefaultStatusName = "created"

// OrderServiceConfig tunes the order workflow.
type OrderServiceConfig struct {
	// DefaultStatus is the name of the status new orders receive.
	DefaultStatus string
	// Policy restricts status changes. The zero value allows any.
	Policy StatusPolicy
}

// OrderService places orders and manages their status and assignee. Every
// mutation runs in one order-workflow transaction: either the order, its
// lines, and the stock decrements all commit, or none of them do.
type OrderService struct {
	tx            *TxManager
	orders        *EntityService[Order, OrderSummary]
	sink          AuditSink
	defaultStatus string
	policy        StatusPolicy
	now           func() time.Time
	log           zerolog.Logger
}

func NewOrderService(tx *TxManager, sink AuditSink, cfg OrderServiceConfig, log zerolog.Logger) *OrderService {
	if sink == nil {
		sink = NopSink{}
	}
	if cfg.DefaultStatus == "" {
		cfg.DefaultStatus = DefaultStatusName
	}
	return &OrderService{
		tx: tx,
		orders: NewEntityService(EntityOrder, WorkflowOrder, tx,
			func(u UnitOfWork) Table[Order] { return u.Orders() }, summarizeOrder, sink),
		sink:          sink,
		defaultStatus: cfg.DefaultStatus,
		policy:        cfg.Policy,
		now:           time.Now,
		log:           log,
	}
}

// Orders exposes the generic list/get/archive operations for orders.
func (s *OrderService) Orders() *EntityService[Order, OrderSummary] { return s.orders }

// GetOrder returns an active order.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*OrderSummary, error) {
	return s.orders.GetByID(ctx, id)
}

// ListOrders returns one page of orders.
func (s *OrderService) ListOrders(ctx context.Context, f OrderFilter) (*PagedResult[OrderSummary], error) {
	return s.orders.GetPaged(ctx, f)
}

// lineDemand is the merged demand for one product across request lines.
type lineDemand struct {
	product  *Product
	quantity int64
}

type mutation struct {
	summary OrderSummary
	events  []AuditEvent
}

// PlaceOrder validates the request, reserves stock, snapshots prices, and
// persists the order graph in one transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderSummary, error) {
	res, err := InTx(ctx, s.tx, WorkflowOrder, func(ctx context.Context, uow UnitOfWork) (mutation, error) {
		wh, err := ResolveActive(ctx, uow.Warehouses(), EntityWarehouse, req.WarehouseID)
		if err != nil {
			return mutation{}, unusableReference(err, EntityWarehouse, req.WarehouseID)
		}
		user, err := ResolveActive(ctx, uow.Users(), EntityUser, req.UserID)
		if err != nil {
			return mutation{}, unusableReference(err, EntityUser, req.UserID)
		}

		demand, err := s.resolveLines(ctx, uow, req.Lines)
		if err != nil {
			return mutation{}, err
		}

		var events []AuditEvent
		lines := make([]OrderLine, 0, len(demand))
		total := decimal.Zero
		for _, d := range demand {
			// Read under lock inside this transaction; never trust an earlier read.
			st, err := uow.Stock().Find(ctx, d.product.ID, wh.ID, true)
			if errors.Is(err, ErrNoRow) {
				return mutation{}, &Error{
					Kind:   KindDomain,
					Entity: EntityProduct,
					ID:     d.product.ID,
					Detail: fmt.Sprintf("product %d not stocked at this warehouse", d.product.ID),
				}
			}
			if err != nil {
				return mutation{}, err
			}
			if st.Quantity < d.quantity {
				return mutation{}, &Error{
					Kind:   KindDomain,
					Entity: EntityProduct,
					ID:     d.product.ID,
					Detail: fmt.Sprintf("insufficient stock for product %d: available %d, requested %d, short by %d",
						d.product.ID, st.Quantity, d.quantity, d.quantity-st.Quantity),
				}
			}
			if err := uow.Stock().Decrement(ctx, st.ID, d.quantity); err != nil {
				return mutation{}, err
			}

			after := *st
			after.Quantity -= d.quantity
			events = append(events, AuditEvent{
				TableName: EntityStock,
				Operation: OpUpdate,
				RecordID:  st.ID,
				OldState:  *st,
				NewState:  after,
			})

			lineTotal := d.product.Price.Mul(decimal.NewFromInt(d.quantity))
			total = total.Add(lineTotal)
			lines = append(lines, OrderLine{
				ProductID: d.product.ID,
				Quantity:  d.quantity,
				UnitPrice: d.product.Price,
				LineTotal: lineTotal,
			})
		}

		status, err := s.defaultStatusRow(ctx, uow)
		if err != nil {
			return mutation{}, err
		}

		order := &Order{
			UserID:      user.ID,
			WarehouseID: wh.ID,
			StatusID:    status.ID,
			TotalPrice:  total,
		}
		if err := uow.Orders().Insert(ctx, order); err != nil {
			return mutation{}, err
		}
		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if err := uow.Orders().InsertLines(ctx, order.ID, lines); err != nil {
			return mutation{}, err
		}

		summary, err := summarizeOrder(ctx, uow, *order)
		if err != nil {
			return mutation{}, err
		}

		events = append(events, AuditEvent{
			TableName: EntityOrder,
			Operation: OpInsert,
			RecordID:  order.ID,
			NewState:  *order,
		})
		for _, l := range summary.Lines {
			events = append(events, AuditEvent{
				TableName: EntityOrderLine,
				Operation: OpInsert,
				RecordID:  l.ID,
				NewState:  l.OrderLine,
			})
		}
		for i := range events {
			events[i].UserID = &user.ID
		}
		return mutation{summary: summary, events: events}, nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("kind", string(KindOf(err))).
			Int64("warehouse_id", req.WarehouseID).Int64("user_id", req.UserID).
			Msg("order placement failed")
		return nil, err
	}

	notifyAll(ctx, s.sink, s.now(), res.events)
	s.log.Info().Int64("order_id", res.summary.ID).Str("total", res.summary.TotalPrice.String()).
		Int("lines", len(res.summary.Lines)).Msg("order placed")
	return &res.summary, nil
}

// resolveLines validates the request lines and merges repeated products,
// keeping the order in which products first appear.
func (s *OrderService) resolveLines(ctx context.Context, uow UnitOfWork, reqLines []OrderLineRequest) ([]*lineDemand, error) {
	if len(reqLines) == 0 {
		return nil, Validation("lines", "order must have at least one line")
	}

	var demand []*lineDemand
	byProduct := make(map[int64]*lineDemand, len(reqLines))
	for i, l := range reqLines {
		if l.Quantity <= 0 {
			return nil, Validation(fmt.Sprintf("lines[%d].quantity", i),
				"line %d: quantity must be positive, got %d", i+1, l.Quantity)
		}
		if d, ok := byProduct[l.ProductID]; ok {
			if d.quantity > math.MaxInt64-l.Quantity {
				return nil, Validation(fmt.Sprintf("lines[%d].quantity", i),
					"line %d: total quantity for product %d is too large", i+1, l.ProductID)
			}
			d.quantity += l.Quantity
			continue
		}
		p, err := ResolveActive(ctx, uow.Products(), EntityProduct, l.ProductID)
		if errors.Is(err, ErrNotFound) {
			return nil, Validation(fmt.Sprintf("lines[%d].product_id", i),
				"line %d: product %d not found", i+1, l.ProductID)
		}
		if err != nil {
			return nil, err
		}
		d := &lineDemand{product: p, quantity: l.Quantity}
		byProduct[l.ProductID] = d
		demand = append(demand, d)
	}
	return demand, nil
}

// defaultStatusRow finds the active status new orders start in.
func (s *OrderService) defaultStatusRow(ctx context.Context, uow UnitOfWork) (*OrderStatus, error) {
	statuses, _, err := uow.Statuses().List(ctx, Query{})
	if err != nil {
		return nil, err
	}
	for i := range statuses {
		if strings.EqualFold(statuses[i].Name, s.defaultStatus) {
			return &statuses[i], nil
		}
	}
	return nil, Domain("default order status %q is missing or archived", s.defaultStatus)
}

// UpdateStatus overwrites the order's status and bumps its update timestamp.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, statusID int64) (*OrderSummary, error) {
	return updateRow(ctx, s.orders, orderID, func(ctx context.Context, uow UnitOfWork, o *Order) error {
		next, err := requireActive(ctx, uow.Statuses(), EntityStatus, statusID)
		if err != nil {
			return err
		}
		if s.policy.Strict() {
			cur, err := lookup(ctx, uow.Statuses(), o.StatusID)
			if err != nil {
				return err
			}
			if cur != nil && !s.policy.Allows(cur.Name, next.Name) {
				return Domain("order %d cannot move from status %q to %q", o.ID, cur.Name, next.Name)
			}
		}
		o.StatusID = next.ID
		return nil
	})
}

// AssignEmployee sets the order's assignee. A nil employeeID clears it.
func (s *OrderService) AssignEmployee(ctx context.Context, orderID int64, employeeID *int64) (*OrderSummary, error) {
	return updateRow(ctx, s.orders, orderID, func(ctx context.Context, uow UnitOfWork, o *Order) error {
		if employeeID == nil {
			o.EmployeeID = nil
			return nil
		}
		e, err := requireActive(ctx, uow.Employees(), EntityEmployee, *employeeID)
		if err != nil {
			return err
		}
		id := e.ID
		o.EmployeeID = &id
		return nil
	})
}

// unusableReference turns a guard failure on a placement reference into the
// Domain error the placement contract promises.
func unusableReference(err error, entity string, id int64) error {
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return &Error{
		Kind:   KindDomain,
		Entity: entity,
		ID:     id,
		Detail: fmt.Sprintf("%s %d is missing or archived", singular(entity), id),
	}
}
