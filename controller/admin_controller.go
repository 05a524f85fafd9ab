package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"rasa-cafe/database"
	"rasa-cafe/model"
	"rasa-cafe/utils"
)

func (ctl *Controller) ListUsers(c *gin.Context) {
	users := []model.User{}
	q := ctl.DB.WithContext(c.Request.Context()).Order("name")
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR employee_number LIKE ?", like, like)
	}
	if err := q.Find(&users).Error; err != nil {
		ctl.serverError(c, "list users failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": users})
}

func (ctl *Controller) CreateUser(c *gin.Context) {
	var req struct {
		Name           string `json:"name" binding:"required"`
		Email          string `json:"email" binding:"required,email"`
		Password       string `json:"password" binding:"required"`
		EmployeeNumber string `json:"employeeNumber" binding:"required"`
		Role           string `json:"role" binding:"required"`
		Position       string `json:"position"`
		CreditLimit    int64  `json:"creditLimit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Please provide all required fields.")
		return
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		badRequest(c, "Unknown role")
		return
	}
	if req.CreditLimit == 0 {
		req.CreditLimit = model.DefaultCreditLimit
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		ctl.serverError(c, "hash password failed", err)
		return
	}
	number := strings.TrimSpace(req.EmployeeNumber)
	user := model.User{
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Password:       hashed,
		EmployeeNumber: &number,
		Role:           role,
		Position:       req.Position,
		CreditLimit:    req.CreditLimit,
		CreditBalance:  req.CreditLimit,
	}
	if err := ctl.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			badRequest(c, "User with this email or employee number already exists.")
			return
		}
		ctl.serverError(c, "create user failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully!",
		"data":    user,
	})
}

func (ctl *Controller) UpdateUser(c *gin.Context) {
	var req struct {
		Name           string `json:"name" binding:"required"`
		Email          string `json:"email" binding:"required,email"`
		Role           string `json:"role" binding:"required"`
		Position       string `json:"position"`
		CreditLimit    int64  `json:"creditLimit"`
		CreditBalance  int64  `json:"creditBalance"`
		EmployeeNumber string `json:"employeeNumber"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Please provide all required fields.")
		return
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		badRequest(c, "Unknown role")
		return
	}

	id := c.Param("id")
	ctx := c.Request.Context()
	var number *string
	if n := strings.TrimSpace(req.EmployeeNumber); n != "" {
		number = &n
		var taken int64
		if err := ctl.DB.WithContext(ctx).Model(&model.User{}).
			Where("employee_number = ? AND id <> ?", n, id).
			Count(&taken).Error; err != nil {
			ctl.serverError(c, "employee number lookup failed", err)
			return
		}
		if taken > 0 {
			badRequest(c, "Employee number already exists for another user.")
			return
		}
	}

	res := ctl.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":            strings.TrimSpace(req.Name),
		"email":           strings.ToLower(strings.TrimSpace(req.Email)),
		"role":            role,
		"position":        req.Position,
		"credit_limit":    req.CreditLimit,
		"credit_balance":  req.CreditBalance,
		"employee_number": number,
	})
	if res.Error != nil {
		if database.IsUniqueViolation(res.Error) {
			badRequest(c, "Email or employee number already exists for another user.")
			return
		}
		ctl.serverError(c, "update user failed", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User updated successfully."})
}

func (ctl *Controller) BulkUpdateCredits(c *gin.Context) {
	var req struct {
		Amount    *int64 `json:"amount"`
		Operation string `json:"operation"`
		Filter    struct {
			Position string `json:"position"`
		} `json:"filter"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount == nil {
		badRequest(c, "Invalid amount or operation specified.")
		return
	}

	q := ctl.DB.WithContext(c.Request.Context()).Model(&model.User{})
	if req.Filter.Position != "" {
		q = q.Where("position = ?", req.Filter.Position)
	} else {
		q = q.Where("1 = 1")
	}

	var res *gorm.DB
	switch req.Operation {
	case "set":
		res = q.Update("credit_balance", *req.Amount)
	case "add":
		res = q.Update("credit_balance", gorm.Expr("credit_balance + ?", *req.Amount))
	default:
		badRequest(c, "Invalid amount or operation specified.")
		return
	}
	if res.Error != nil {
		ctl.serverError(c, "bulk credit update failed", res.Error)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Successfully updated %d users.", res.RowsAffected),
		"data":    gin.H{"updated": res.RowsAffected},
	})
}

func (ctl *Controller) GetCreditSystem(c *gin.Context) {
	enabled, err := database.FeatureEnabled(c.Request.Context(), ctl.DB, model.FeatureCreditSystem)
	if err != nil {
		ctl.serverError(c, "read credit system flag failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"isEnabled": enabled}})
}

func (ctl *Controller) SetCreditSystem(c *gin.Context) {
	var req struct {
		IsEnabled *bool `json:"isEnabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IsEnabled == nil {
		badRequest(c, "isEnabled is required")
		return
	}
	if err := database.SetFeature(c.Request.Context(), ctl.DB, model.FeatureCreditSystem, *req.IsEnabled); err != nil {
		ctl.serverError(c, "write credit system flag failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"isEnabled": *req.IsEnabled}})
}

func (ctl *Controller) findUser(c *gin.Context, id string) (*model.User, bool) {
	var user model.User
	err := ctl.DB.WithContext(c.Request.Context()).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return nil, false
	}
	if err != nil {
		ctl.serverError(c, "load user failed", err)
		return nil, false
	}
	return &user, true
}
