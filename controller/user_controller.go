package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rasa-cafe/model"
	"rasa-cafe/utils"
)

func (ctl *Controller) UpdateProfile(c *gin.Context) {
	current, _ := utils.CurrentUser(c)
	var req struct {
		Name     string `json:"name" binding:"required"`
		Phone    string `json:"phone"`
		Country  string `json:"country"`
		City     string `json:"city"`
		Age      int    `json:"age" binding:"gte=0"`
		Position string `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid profile data")
		return
	}

	ctx := c.Request.Context()
	err := ctl.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", current.ID).Updates(map[string]interface{}{
		"name":     strings.TrimSpace(req.Name),
		"phone":    req.Phone,
		"country":  req.Country,
		"city":     req.City,
		"age":      req.Age,
		"position": req.Position,
	}).Error
	if err != nil {
		ctl.serverError(c, "update profile failed", err)
		return
	}

	user, ok := ctl.findUser(c, current.ID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"data":    gin.H{"user": user},
	})
}

func (ctl *Controller) ChangePassword(c *gin.Context) {
	current, _ := utils.CurrentUser(c)
	var req struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Please provide both old and new passwords.")
		return
	}

	user, ok := ctl.findUser(c, current.ID)
	if !ok {
		return
	}
	if !utils.CheckPassword(user.Password, req.OldPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Incorrect current password."})
		return
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		ctl.serverError(c, "hash password failed", err)
		return
	}
	if err := ctl.DB.WithContext(c.Request.Context()).Model(user).Update("password", hashed).Error; err != nil {
		ctl.serverError(c, "change password failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed successfully."})
}
