package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rasa-cafe/catalog"
	"rasa-cafe/model"
)

const importDefaultStock = 100

type productRequest struct {
	Name            string  `json:"name" binding:"required"`
	Price           *int64  `json:"price" binding:"required,gte=0"`
	Category        string  `json:"category" binding:"required"`
	Description     string  `json:"description"`
	Stock           *int    `json:"stock" binding:"required,gte=0"`
	ImageURL        string  `json:"imageUrl"`
	Rating          float64 `json:"rating"`
	MaxOrderPerUser int     `json:"maxOrderPerUser" binding:"gte=0"`
	IsDisabled      bool    `json:"isDisabled"`
}

func (ctl *Controller) ListProducts(c *gin.Context) {
	products := []model.Product{}
	if err := ctl.DB.WithContext(c.Request.Context()).
		Where("is_disabled = ?", false).
		Order("category, name").
		Find(&products).Error; err != nil {
		ctl.serverError(c, "list products failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": products})
}

func (ctl *Controller) ManageProducts(c *gin.Context) {
	products := []model.Product{}
	q := ctl.DB.WithContext(c.Request.Context()).Order("category, name")
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	if err := q.Find(&products).Error; err != nil {
		ctl.serverError(c, "list manageable products failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": products})
}

func (ctl *Controller) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing required product fields.")
		return
	}

	product := model.Product{
		Name:            strings.TrimSpace(req.Name),
		Price:           *req.Price,
		Category:        strings.TrimSpace(req.Category),
		Description:     req.Description,
		Stock:           *req.Stock,
		ImageURL:        req.ImageURL,
		Rating:          req.Rating,
		MaxOrderPerUser: req.MaxOrderPerUser,
		IsDisabled:      req.IsDisabled,
	}
	if err := ctl.DB.WithContext(c.Request.Context()).Create(&product).Error; err != nil {
		ctl.serverError(c, "create product failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "محصول با موفقیت ایجاد شد",
		"data":    product,
	})
}

func (ctl *Controller) UpdateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing required product fields.")
		return
	}

	updates := map[string]interface{}{
		"name":               strings.TrimSpace(req.Name),
		"price":              *req.Price,
		"category":           strings.TrimSpace(req.Category),
		"description":        req.Description,
		"stock":              *req.Stock,
		"rating":             req.Rating,
		"max_order_per_user": req.MaxOrderPerUser,
		"is_disabled":        req.IsDisabled,
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}
	res := ctl.DB.WithContext(c.Request.Context()).Model(&model.Product{}).Where("id = ?", c.Param("id")).Updates(updates)
	if res.Error != nil {
		ctl.serverError(c, "update product failed", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product updated successfully."})
}

// DisableProduct hides a product from the menu. Rows are never deleted so
// old orders keep their references.
func (ctl *Controller) DisableProduct(c *gin.Context) {
	res := ctl.DB.WithContext(c.Request.Context()).Model(&model.Product{}).
		Where("id = ?", c.Param("id")).
		Update("is_disabled", true)
	if res.Error != nil {
		ctl.serverError(c, "disable product failed", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product disabled successfully."})
}

func (ctl *Controller) ImportProducts(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Excel file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		ctl.serverError(c, "open excel upload failed", err)
		return
	}
	defer file.Close()

	products, skipped, err := catalog.ParseWorkbook(file, importDefaultStock)
	if err != nil {
		if errors.Is(err, catalog.ErrNoValidRows) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "data": gin.H{"skipped": skipped}})
			return
		}
		badRequest(c, err.Error())
		return
	}
	if err := catalog.Import(c.Request.Context(), ctl.DB, products); err != nil {
		ctl.serverError(c, "import products failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Products imported successfully",
		"data":    gin.H{"imported": len(products), "skipped": skipped},
	})
}
