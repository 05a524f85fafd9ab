package order

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"rasa-cafe/database"
	"rasa-cafe/metrics"
	"rasa-cafe/model"
	"rasa-cafe/notification"
)

// ItemInput is one line of an incoming order. Price and name are stored in
// the snapshot as submitted.
type ItemInput struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Name     string `json:"name"`
}

type CreateOrderInput struct {
	Items       []ItemInput `json:"items"`
	TotalAmount int64       `json:"totalAmount"`
	// Identifier is an employee number or a user id. Unknown values place
	// a guest order.
	Identifier      string `json:"employeeNumber"`
	DeliveryFloorID uint   `json:"deliveryFloorId"`
	Priority        int    `json:"priority"`
}

type depletedProduct struct {
	id, name string
}

// CreateOrder validates and commits a new Pending order. Stock and credit are
// only touched once every check has passed, and all writes share one
// transaction. A lost race on the order id is retried.
func (e *Engine) CreateOrder(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	if err := validateInput(in); err != nil {
		metrics.OrderFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		order, depleted, err := e.createOnce(ctx, in)
		if err == nil {
			metrics.OrdersCreated.Inc()
			e.log.Info("order created",
				zap.String("order_id", order.ID),
				zap.Int64("total", order.TotalAmount),
				zap.Bool("guest", order.UserID == nil))
			e.announceDepleted(order, depleted)
			return order, nil
		}
		if !IsConflict(err) || attempt >= e.maxAttempts {
			metrics.OrderFailures.WithLabelValues(failureReason(err)).Inc()
			return nil, err
		}
		e.log.Warn("order creation conflict, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
}

func validateInput(in CreateOrderInput) error {
	if in.DeliveryFloorID == 0 {
		return invalid("floor required")
	}
	if len(in.Items) == 0 {
		return invalid("empty order")
	}
	for _, item := range in.Items {
		if strings.TrimSpace(item.ID) == "" {
			return invalid("item without product id")
		}
		if item.Quantity <= 0 {
			return invalid("quantity must be positive")
		}
	}
	if in.TotalAmount < 0 {
		return invalid("total amount must not be negative")
	}
	return nil
}

func (e *Engine) createOnce(ctx context.Context, in CreateOrderInput) (*model.Order, []depletedProduct, error) {
	var (
		order    *model.Order
		depleted []depletedProduct
	)
	err := e.transaction(ctx, func(tx *gorm.DB) error {
		var floors int64
		if err := tx.Model(&model.Floor{}).Where("id = ?", in.DeliveryFloorID).Count(&floors).Error; err != nil {
			return err
		}
		if floors == 0 {
			return invalid("unknown delivery floor")
		}

		owner, err := resolveOwner(tx, in.Identifier)
		if err != nil {
			return err
		}

		creditSystem, err := database.FeatureEnabled(ctx, tx, model.FeatureCreditSystem)
		if err != nil {
			return err
		}
		charge := creditSystem && owner != nil
		if charge && owner.CreditBalance < in.TotalAmount {
			return &InsufficientCreditError{Balance: owner.CreditBalance, Required: in.TotalAmount}
		}

		lines, products, err := loadProducts(tx, in.Items)
		if err != nil {
			return err
		}

		snapshot := make(model.OrderItems, 0, len(in.Items))
		var listed int64
		for _, item := range in.Items {
			p := products[item.ID]
			name := item.Name
			if name == "" {
				name = p.Name
			}
			snapshot = append(snapshot, model.OrderItem{
				ID:       p.ID,
				Quantity: item.Quantity,
				Price:    item.Price,
				Name:     name,
				Category: p.Category,
				ImageURL: p.ImageURL,
			})
			listed += p.Price * int64(item.Quantity)
		}
		if listed != in.TotalAmount {
			e.log.Warn("order total differs from menu prices",
				zap.Int64("total", in.TotalAmount),
				zap.Int64("menu_total", listed))
		}
		total := in.TotalAmount

		// every check passed; mutate
		if charge {
			res := tx.Model(&model.User{}).
				Where("id = ? AND credit_balance >= ?", owner.ID, total).
				UpdateColumn("credit_balance", gorm.Expr("credit_balance - ?", total))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &InsufficientCreditError{Balance: owner.CreditBalance, Required: total}
			}
		}

		for _, l := range lines {
			p := products[l.productID]
			res := tx.Model(&model.Product{}).
				Where("id = ? AND stock >= ?", p.ID, l.quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", l.quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &InsufficientStockError{ProductID: p.ID, ProductName: p.Name, Available: p.Stock, Requested: l.quantity}
			}
			if p.Stock == l.quantity {
				depleted = append(depleted, depletedProduct{id: p.ID, name: p.Name})
			}
		}

		now := e.now().In(e.loc)
		id, err := allocateOrderID(tx, now)
		if err != nil {
			return err
		}

		priority := in.Priority
		if priority <= 0 {
			priority = 1
		}
		order = &model.Order{
			ID:              id,
			Items:           snapshot,
			TotalAmount:     total,
			Status:          model.StatusPending,
			Priority:        priority,
			DeliveryFloorID: in.DeliveryFloorID,
			CreatedAt:       now,
		}
		if owner != nil {
			order.UserID = &owner.ID
		}
		if err := tx.Create(order).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return &ConflictError{Msg: "order id " + id + " already taken", Err: err}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return order, depleted, nil
}

// resolveOwner matches identifier against employee numbers first and user ids
// second. No match is a guest order.
func resolveOwner(tx *gorm.DB, identifier string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil
	}
	for _, column := range []string{"employee_number", "id"} {
		var user model.User
		res := forUpdate(tx).Where(column+" = ?", identifier).Limit(1).Find(&user)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			return &user, nil
		}
	}
	return nil, nil
}

type line struct {
	productID string
	quantity  int
}

// loadProducts sums quantities per product in first-seen order and checks
// each product can cover its sum.
func loadProducts(tx *gorm.DB, items []ItemInput) ([]line, map[string]model.Product, error) {
	index := make(map[string]int)
	var lines []line
	for _, item := range items {
		if i, ok := index[item.ID]; ok {
			lines[i].quantity += item.Quantity
			continue
		}
		index[item.ID] = len(lines)
		lines = append(lines, line{productID: item.ID, quantity: item.Quantity})
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.productID
	}
	var rows []model.Product
	if err := forUpdate(tx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	products := make(map[string]model.Product, len(rows))
	for _, p := range rows {
		products[p.ID] = p
	}

	for _, l := range lines {
		p, ok := products[l.productID]
		if !ok {
			return nil, nil, &NotFoundError{Entity: "product", ID: l.productID}
		}
		if p.IsDisabled {
			return nil, nil, invalid("%s is not available", p.Name)
		}
		if p.MaxOrderPerUser > 0 && l.quantity > p.MaxOrderPerUser {
			return nil, nil, invalid("at most %d of %s per order", p.MaxOrderPerUser, p.Name)
		}
		if p.Stock < l.quantity {
			return nil, nil, &InsufficientStockError{ProductID: p.ID, ProductName: p.Name, Available: p.Stock, Requested: l.quantity}
		}
	}
	return lines, products, nil
}

func (e *Engine) announceDepleted(order *model.Order, depleted []depletedProduct) {
	exclude := ""
	if order.UserID != nil {
		exclude = *order.UserID
	}
	for _, p := range depleted {
		e.broadcast(notification.StockDepleted(p.id, p.name), exclude)
	}
}
