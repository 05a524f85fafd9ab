package order

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"rasa-cafe/metrics"
	"rasa-cafe/model"
	"rasa-cafe/notification"
)

// UpdateStatus moves an order to status. Any transition is allowed; only
// Pending to Cancelled has a side effect, which returns the snapshot
// quantities to stock. The owner is notified after commit.
func (e *Engine) UpdateStatus(ctx context.Context, orderID, status string) (*model.Order, error) {
	next, ok := model.ParseOrderStatus(status)
	if !ok {
		return nil, invalid("a valid status is required")
	}

	var (
		order model.Order
		prev  model.OrderStatus
	)
	err := e.transaction(ctx, func(tx *gorm.DB) error {
		err := forUpdate(tx).Where("id = ?", orderID).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "order", ID: orderID}
		}
		if err != nil {
			return err
		}
		prev = order.Status

		if prev == model.StatusPending && next == model.StatusCancelled {
			if err := restock(tx, order.Items); err != nil {
				return err
			}
		}

		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", orderID, prev).
			Update("status", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &ConflictError{Msg: "order " + orderID + " changed concurrently"}
		}
		order.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitions.WithLabelValues(string(prev), string(next)).Inc()
	e.log.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("from", string(prev)),
		zap.String("to", string(next)))

	if order.UserID != nil {
		e.sendToUser(*order.UserID, notification.OrderUpdate(order.ID, string(next)))
	}
	return &order, nil
}

func restock(tx *gorm.DB, items model.OrderItems) error {
	for _, item := range items {
		res := tx.Model(&model.Product{}).
			Where("id = ?", item.ID).
			UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
	}
	return nil
}
