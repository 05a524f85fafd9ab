// Package controller holds the gin handlers of the café API.
package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rasa-cafe/notification"
	"rasa-cafe/order"
	"rasa-cafe/report"
)

type Controller struct {
	DB      *gorm.DB
	Orders  *order.Engine
	Hub     *notification.Hub
	Reports *report.Agent
	Log     *zap.Logger

	ImagesDir string
	Heartbeat time.Duration
}

func New(db *gorm.DB, orders *order.Engine, hub *notification.Hub, reports *report.Agent, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		DB:        db,
		Orders:    orders,
		Hub:       hub,
		Reports:   reports,
		Log:       log,
		ImagesDir: "./images",
		Heartbeat: 25 * time.Second,
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

func (ctl *Controller) serverError(c *gin.Context, msg string, err error) {
	ctl.Log.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server error"})
}

// respondOrderError maps order engine failures onto status codes. Anything
// unclassified is logged and reported as a generic server error.
func (ctl *Controller) respondOrderError(c *gin.Context, err error) {
	var (
		credit *order.InsufficientCreditError
		stock  *order.InsufficientStockError
	)
	if order.IsRejected(err) {
		ctl.Log.Debug("order rejected", zap.String("path", c.FullPath()), zap.Error(err))
	}
	switch {
	case order.IsValidation(err):
		badRequest(c, err.Error())
	case errors.As(err, &credit):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "اعتبار شما کافی نیست",
			"data":    gin.H{"balance": credit.Balance, "required": credit.Required},
		})
	case errors.As(err, &stock):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Not enough stock for " + stock.ProductName,
			"data":    gin.H{"productId": stock.ProductID, "available": stock.Available},
		})
	case order.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case order.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "The order could not be saved, please try again"})
	default:
		ctl.serverError(c, "order operation failed", err)
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}
