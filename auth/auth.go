// Package auth handles sign-in, sign-up and the session cookie.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rasa-cafe/database"
	"rasa-cafe/model"
	"rasa-cafe/utils"
)

type Handler struct {
	DB *gorm.DB
	// Secret signs session tokens.
	Secret string
	// Secure marks the session cookie as HTTPS only.
	Secure bool
	Log    *zap.Logger
}

func NewHandler(db *gorm.DB, secret string, secure bool, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{DB: db, Secret: secret, Secure: secure, Log: log}
}

func (h *Handler) setCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.TokenCookie, token, maxAge, "/", "", h.Secure, true)
}

func (h *Handler) Login(c *gin.Context) {
	type Request struct {
		EmployeeNumber string `json:"employeeNumber" binding:"required"`
		Password       string `json:"password" binding:"required"`
		RememberMe     bool   `json:"rememberMe"`
	}

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "لطفا شماره کارمندی و رمز عبور را وارد کنید"})
		return
	}

	var user model.User
	err := h.DB.WithContext(c.Request.Context()).Where("employee_number = ?", strings.TrimSpace(req.EmployeeNumber)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "کاربری با این شماره کارمندی وجود ندارد"})
		return
	}
	if err != nil {
		h.Log.Error("login lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "خطای سرور"})
		return
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "رمز عبور اشتباه است"})
		return
	}

	token, err := utils.GenerateToken(h.Secret, &user, req.RememberMe)
	if err != nil {
		h.Log.Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "خطای سرور"})
		return
	}
	h.setCookie(c, token, int(utils.TokenTTL(req.RememberMe).Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "ورود با موفقیت انجام شد",
		"data":    gin.H{"user": user, "token": token},
	})
}

func (h *Handler) Register(c *gin.Context) {
	type Request struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Please provide all required fields."})
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("password hashing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server error"})
		return
	}

	user := model.User{
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Password:      hashed,
		CreditLimit:   model.DefaultCreditLimit,
		CreditBalance: model.DefaultCreditLimit,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "User with this email already exists."})
			return
		}
		h.Log.Error("register failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully!",
		"data":    gin.H{"userId": user.ID},
	})
}

// Profile must run behind utils.Protect.
func (h *Handler) Profile(c *gin.Context) {
	user, ok := utils.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "لطفا ابتدا وارد حساب کاربری خود شوید"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"user": user}})
}

func (h *Handler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "خروج از حساب کاربری با موفقیت انجام شد"})
}
