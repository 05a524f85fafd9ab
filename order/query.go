package order

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rasa-cafe/model"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// sortColumns is the only way a caller-supplied sort key reaches SQL.
var sortColumns = map[string]clause.Column{
	"id":          {Table: "orders", Name: "id"},
	"userName":    {Table: "users", Name: "name"},
	"createdAt":   {Table: "orders", Name: "created_at"},
	"totalAmount": {Table: "orders", Name: "total_amount"},
	"status":      {Table: "orders", Name: "status"},
}

type ListParams struct {
	Search    string
	Status    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalOrders int64 `json:"totalOrders"`
}

type Page struct {
	Orders     []model.OrderView `json:"orders"`
	Pagination Pagination        `json:"pagination"`
}

func (e *Engine) joined(ctx context.Context) *gorm.DB {
	return e.db.WithContext(ctx).
		Table("orders").
		Joins("LEFT JOIN users ON users.id = orders.user_id").
		Joins("LEFT JOIN floors ON floors.id = orders.delivery_floor_id")
}

func (e *Engine) views(ctx context.Context) *gorm.DB {
	return e.joined(ctx).
		Select("orders.*, users.name AS user_name, floors.name AS delivery_floor_name")
}

func searchScope(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		search = strings.TrimSpace(search)
		if search == "" {
			return db
		}
		pattern := "%" + search + "%"
		return db.Where("(users.name LIKE ? OR orders.id LIKE ?)", pattern, pattern)
	}
}

// GetOrder returns one order with its owner's name. Guest orders have no name.
func (e *Engine) GetOrder(ctx context.Context, id string) (*model.OrderView, error) {
	var views []model.OrderView
	if err := e.views(ctx).Where("orders.id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, &NotFoundError{Entity: "order", ID: id}
	}
	return &views[0], nil
}

func (e *Engine) ListUserOrders(ctx context.Context, userID string) ([]model.Order, error) {
	orders := []model.Order{}
	err := e.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// ListOrders is the admin listing: filtered, sorted by an allow-listed key
// and paginated.
func (e *Engine) ListOrders(ctx context.Context, p ListParams) (*Page, error) {
	page, limit := normalizePage(p.Page, p.Limit)

	filter := func(q *gorm.DB) *gorm.DB {
		q = q.Scopes(searchScope(p.Search))
		if p.Status != "" && p.Status != "All" {
			q = q.Where("orders.status = ?", p.Status)
		}
		return q
	}

	var total int64
	if err := e.joined(ctx).Scopes(filter).Count(&total).Error; err != nil {
		return nil, err
	}

	column, ok := sortColumns[p.SortBy]
	if !ok {
		column = sortColumns["createdAt"]
	}
	desc := !strings.EqualFold(p.SortOrder, "asc")

	views := []model.OrderView{}
	err := e.views(ctx).Scopes(filter).
		Order(clause.OrderByColumn{Column: column, Desc: desc}).
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return &Page{Orders: views, Pagination: paginate(page, limit, total)}, nil
}

// DashboardOrders is the barista queue, oldest first.
func (e *Engine) DashboardOrders(ctx context.Context, search string) ([]model.OrderView, error) {
	views := []model.OrderView{}
	err := e.views(ctx).
		Scopes(searchScope(search)).
		Order("orders.created_at ASC").
		Scan(&views).Error
	return views, err
}

// PastOrders lists orders that have left Pending, newest first.
func (e *Engine) PastOrders(ctx context.Context, page, limit int) (*Page, error) {
	page, limit = normalizePage(page, limit)

	var total int64
	err := e.db.WithContext(ctx).Model(&model.Order{}).
		Where("status <> ?", model.StatusPending).
		Count(&total).Error
	if err != nil {
		return nil, err
	}

	views := []model.OrderView{}
	err = e.views(ctx).
		Where("orders.status <> ?", model.StatusPending).
		Order("orders.created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return &Page{Orders: views, Pagination: paginate(page, limit, total)}, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func paginate(page, limit int, total int64) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{CurrentPage: page, TotalPages: pages, TotalOrders: total}
}
