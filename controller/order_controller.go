package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rasa-cafe/order"
	"rasa-cafe/utils"
)

func (ctl *Controller) CreateOrder(c *gin.Context) {
	var in order.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid order payload")
		return
	}
	if in.Identifier == "" {
		if user, ok := utils.CurrentUser(c); ok {
			in.Identifier = user.ID
		}
	}

	created, err := ctl.Orders.CreateOrder(c.Request.Context(), in)
	if err != nil {
		ctl.respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "سفارش با موفقیت ثبت شد",
		"data":    created,
	})
}

func (ctl *Controller) GetOrder(c *gin.Context) {
	view, err := ctl.Orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctl.respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": view})
}

func (ctl *Controller) GetUserOrders(c *gin.Context) {
	user, _ := utils.CurrentUser(c)
	orders, err := ctl.Orders.ListUserOrders(c.Request.Context(), user.ID)
	if err != nil {
		ctl.serverError(c, "list user orders failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
}

// UpdateOrderStatus serves both the admin and the barista routes.
func (ctl *Controller) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "A valid status is required.")
		return
	}

	updated, err := ctl.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		ctl.respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order status updated successfully.",
		"data":    updated,
	})
}

func (ctl *Controller) ListOrders(c *gin.Context) {
	page, err := ctl.Orders.ListOrders(c.Request.Context(), order.ListParams{
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", 10),
		SortBy:    c.DefaultQuery("sortBy", "createdAt"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	})
	if err != nil {
		ctl.serverError(c, "list orders failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": page})
}

func (ctl *Controller) DashboardOrders(c *gin.Context) {
	orders, err := ctl.Orders.DashboardOrders(c.Request.Context(), c.Query("search"))
	if err != nil {
		ctl.serverError(c, "dashboard orders failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
}

func (ctl *Controller) PastOrders(c *gin.Context) {
	page, err := ctl.Orders.PastOrders(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		ctl.serverError(c, "past orders failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": page})
}
