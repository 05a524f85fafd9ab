package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"rasa-cafe/model"
)

const (
	TokenCookie    = "token"
	currentUserKey = "current_user"
)

var ErrNoToken = errors.New("no token")

// ExtractToken reads the session token from the cookie, then from an
// Authorization: Bearer header.
func ExtractToken(c *gin.Context) (string, error) {
	if token, err := c.Cookie(TokenCookie); err == nil && token != "" {
		return token, nil
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")); token != "" {
			return token, nil
		}
	}
	return "", ErrNoToken
}

func authenticate(c *gin.Context, db *gorm.DB, secret string) (*model.User, string) {
	token, err := ExtractToken(c)
	if err != nil {
		return nil, "Not authorized, no token"
	}
	claims, err := ValidateToken(secret, token)
	if err != nil {
		return nil, "Not authorized, token failed"
	}
	var user model.User
	if err := db.WithContext(c.Request.Context()).First(&user, "id = ?", claims.ID).Error; err != nil {
		return nil, "Not authorized, user not found"
	}
	return &user, ""
}

// Protect rejects requests without a valid session. The user is reloaded on
// every request so role changes apply immediately.
func Protect(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, reason := authenticate(c, db, secret)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": reason})
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// OptionalUser attaches the session user when there is one and lets
// anonymous requests through.
func OptionalUser(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, _ := authenticate(c, db, secret); user != nil {
			c.Set(currentUserKey, user)
		}
		c.Next()
	}
}

// Can must run after Protect.
func Can(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !model.Can(roles, user.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Forbidden: You do not have the required role for this action.",
			})
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}
