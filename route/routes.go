package route

import (
	"github.com/gin-gonic/gin"

	"rasa-cafe/auth"
	"rasa-cafe/controller"
	"rasa-cafe/model"
	"rasa-cafe/utils"
)

func APIRoutes(router *gin.Engine, ctl *controller.Controller, authHandler *auth.Handler, secret string) {
	protect := utils.Protect(ctl.DB, secret)
	staff := utils.Can(model.StaffRoles...)
	admin := utils.Can(model.RoleAdmin)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
		authGroup.GET("/profile", protect, authHandler.Profile)
		authGroup.POST("/logout", authHandler.Logout)
	}

	users := api.Group("/users", protect)
	{
		users.PUT("/profile", ctl.UpdateProfile)
		users.PUT("/password", ctl.ChangePassword)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", utils.OptionalUser(ctl.DB, secret), ctl.CreateOrder)
		orders.GET("", protect, ctl.GetUserOrders)
		orders.GET("/:id", ctl.GetOrder)
	}

	products := api.Group("/products")
	{
		products.GET("", ctl.ListProducts)
		products.GET("/manage", protect, staff, ctl.ManageProducts)
		products.POST("", protect, staff, ctl.CreateProduct)
		products.POST("/import", protect, staff, ctl.ImportProducts)
		products.PUT("/:id", protect, staff, ctl.UpdateProduct)
		products.DELETE("/:id", protect, staff, ctl.DisableProduct)
	}

	floors := api.Group("/floors")
	{
		floors.GET("", ctl.ListFloors)
		floors.POST("", protect, staff, ctl.CreateFloor)
		floors.DELETE("/:id", protect, staff, ctl.DeleteFloor)
	}

	api.POST("/upload", protect, staff, ctl.UploadImage)
	api.GET("/events", protect, ctl.Events)

	barista := api.Group("/barista", protect, staff)
	{
		barista.GET("/orders", ctl.DashboardOrders)
		barista.GET("/history", ctl.PastOrders)
		barista.PUT("/orders/:id/status", ctl.UpdateOrderStatus)
	}

	adminGroup := api.Group("/admin", protect, admin)
	{
		adminGroup.GET("/users", ctl.ListUsers)
		adminGroup.POST("/users", ctl.CreateUser)
		adminGroup.PUT("/users/:id", ctl.UpdateUser)
		adminGroup.GET("/orders", ctl.ListOrders)
		adminGroup.PUT("/orders/:id/status", ctl.UpdateOrderStatus)
		adminGroup.POST("/credits/bulk-update", ctl.BulkUpdateCredits)
		adminGroup.GET("/config/credit-system", ctl.GetCreditSystem)
		adminGroup.PUT("/config/credit-system", ctl.SetCreditSystem)
	}

	reports := api.Group("/reports", protect, admin)
	{
		reports.POST("/run", ctl.RunReport)
		reports.POST("/save", ctl.SaveReport)
		reports.GET("/saved", ctl.SavedReports)
		reports.GET("/:id/results", ctl.ReportResults)
		reports.GET("/:id/export", ctl.ExportReport)
		reports.DELETE("/:id", ctl.DeleteReport)
	}
}
