package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"rasa-cafe/database"
	"rasa-cafe/model"
)

func (ctl *Controller) ListFloors(c *gin.Context) {
	floors := []model.Floor{}
	if err := ctl.DB.WithContext(c.Request.Context()).Order("name").Find(&floors).Error; err != nil {
		ctl.serverError(c, "list floors failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": floors})
}

func (ctl *Controller) CreateFloor(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		badRequest(c, "Floor name is required")
		return
	}

	floor := model.Floor{Name: strings.TrimSpace(req.Name)}
	if err := ctl.DB.WithContext(c.Request.Context()).Create(&floor).Error; err != nil {
		if database.IsUniqueViolation(err) {
			badRequest(c, "A floor with this name already exists")
			return
		}
		ctl.serverError(c, "create floor failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Floor created successfully.", "data": floor})
}

func (ctl *Controller) DeleteFloor(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "Invalid floor ID")
		return
	}

	res := ctl.DB.WithContext(c.Request.Context()).Delete(&model.Floor{}, uint(id))
	if res.Error != nil {
		if database.IsForeignKeyViolation(res.Error) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Floor is referenced by orders or users"})
			return
		}
		ctl.serverError(c, "delete floor failed", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Floor not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Floor deleted successfully."})
}
