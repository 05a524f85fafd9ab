package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rasa-cafe/model"
	"rasa-cafe/order"
)

func orderIDs(views []model.OrderView) []string {
	ids := make([]string, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	return ids
}

// seedOrders places three orders an hour apart: one guest, two by Sara.
func seedOrders(t *testing.T, f *fixture) (sara model.User) {
	t.Helper()
	p := f.product(t, "Latte", 100, 50)
	sara = f.user(t, "E-50", 10000)
	require.NoError(t, f.db.Model(&sara).Update("name", "Sara").Error)

	f.placeOrder(t, "E-50", p, 1) // 20250310-1
	f.now = f.now.Add(time.Hour)
	f.placeOrder(t, "", p, 3) // 20250310-2
	f.now = f.now.Add(time.Hour)
	f.placeOrder(t, "E-50", p, 2) // 20250310-3
	return sara
}

func TestGetOrderIncludesOwnerName(t *testing.T) {
	f := newFixture(t)
	seedOrders(t, f)

	v, err := f.engine.GetOrder(context.Background(), "20250310-1")
	require.NoError(t, err)
	require.NotNil(t, v.UserName)
	assert.Equal(t, "Sara", *v.UserName)
	require.NotNil(t, v.DeliveryFloorName)

	guest, err := f.engine.GetOrder(context.Background(), "20250310-2")
	require.NoError(t, err)
	assert.Nil(t, guest.UserName)

	_, err = f.engine.GetOrder(context.Background(), "nope")
	assert.True(t, order.IsNotFound(err))
}

func TestListUserOrdersNewestFirst(t *testing.T) {
	f := newFixture(t)
	sara := seedOrders(t, f)

	orders, err := f.engine.ListUserOrders(context.Background(), sara.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "20250310-3", orders[0].ID)
	assert.Equal(t, "20250310-1", orders[1].ID)

	none, err := f.engine.ListUserOrders(context.Background(), "someone-else")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListOrders(t *testing.T) {
	f := newFixture(t)
	seedOrders(t, f)
	_, err := f.engine.UpdateStatus(context.Background(), "20250310-2", "Completed")
	require.NoError(t, err)

	tests := []struct {
		name   string
		params order.ListParams
		want   []string
		total  int64
		pages  int
	}{
		{
			name:  "defaults to newest first",
			want:  []string{"20250310-3", "20250310-2", "20250310-1"},
			total: 3, pages: 1,
		},
		{
			name:   "ascending by total",
			params: order.ListParams{SortBy: "totalAmount", SortOrder: "asc"},
			want:   []string{"20250310-1", "20250310-3", "20250310-2"},
			total:  3, pages: 1,
		},
		{
			name:   "search by user name",
			params: order.ListParams{Search: "Sar"},
			want:   []string{"20250310-3", "20250310-1"},
			total:  2, pages: 1,
		},
		{
			name:   "search by id",
			params: order.ListParams{Search: "-2"},
			want:   []string{"20250310-2"},
			total:  1, pages: 1,
		},
		{
			name:   "status filter",
			params: order.ListParams{Status: "Pending"},
			want:   []string{"20250310-3", "20250310-1"},
			total:  2, pages: 1,
		},
		{
			name:   "all statuses",
			params: order.ListParams{Status: "All", Limit: 2},
			want:   []string{"20250310-3", "20250310-2"},
			total:  3, pages: 2,
		},
		{
			name:   "second page",
			params: order.ListParams{Page: 2, Limit: 2},
			want:   []string{"20250310-1"},
			total:  3, pages: 2,
		},
		{
			name:   "unknown sort key falls back to created at",
			params: order.ListParams{SortBy: "id; DROP TABLE orders", SortOrder: "asc"},
			want:   []string{"20250310-1", "20250310-2", "20250310-3"},
			total:  3, pages: 1,
		},
		{
			name:   "search input is a parameter",
			params: order.ListParams{Search: "' OR 1=1 --"},
			want:   []string{},
			total:  0, pages: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.engine.ListOrders(context.Background(), tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, orderIDs(page.Orders))
			assert.Equal(t, tt.total, page.Pagination.TotalOrders)
			assert.Equal(t, tt.pages, page.Pagination.TotalPages)
		})
	}
}

func TestDashboardAndPastOrders(t *testing.T) {
	f := newFixture(t)
	seedOrders(t, f)
	_, err := f.engine.UpdateStatus(context.Background(), "20250310-1", "Completed")
	require.NoError(t, err)
	_, err = f.engine.UpdateStatus(context.Background(), "20250310-3", "Cancelled")
	require.NoError(t, err)

	queue, err := f.engine.DashboardOrders(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"20250310-1", "20250310-2", "20250310-3"}, orderIDs(queue))
	require.NotNil(t, queue[0].DeliveryFloorName)

	filtered, err := f.engine.DashboardOrders(context.Background(), "Sara")
	require.NoError(t, err)
	assert.Equal(t, []string{"20250310-1", "20250310-3"}, orderIDs(filtered))

	past, err := f.engine.PastOrders(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"20250310-3", "20250310-1"}, orderIDs(past.Orders))
	assert.Equal(t, int64(2), past.Pagination.TotalOrders)
	assert.Equal(t, 1, past.Pagination.TotalPages)
}
