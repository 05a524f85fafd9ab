package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rasa-cafe/notification"
	"rasa-cafe/utils"
)

// Events holds the caller's server-sent event stream open until the client
// goes away.
func (ctl *Controller) Events(c *gin.Context) {
	user, _ := utils.CurrentUser(c)
	err := ctl.Hub.Serve(c.Request.Context(), c.Writer, user.ID, ctl.Heartbeat)
	if errors.Is(err, notification.ErrStreamingUnsupported) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Streaming unsupported"})
		return
	}
	if err != nil {
		ctl.Log.Debug("event stream closed", zap.String("user_id", user.ID), zap.Error(err))
	}
}
