package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/lunchorder/config"
	"github.com/yeremiapane/lunchorder/controllers"
	"github.com/yeremiapane/lunchorder/feed"
	"github.com/yeremiapane/lunchorder/middlewares"
)

// SetupRouter mounts the lunch ordering API under /api.
func SetupRouter(db *gorm.DB, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigins))
	r.Use(middlewares.LoggerMiddleware())

	hub := feed.NewHub()

	// Inisialisasi controller
	authCtrl := controllers.NewAuthController(db)
	userCtrl := controllers.NewUserController(db)
	restaurantCtrl := controllers.NewRestaurantController(db)
	menuCtrl := controllers.NewMenuController(db, cfg.UploadDir)
	orderCtrl := controllers.NewOrderController(db, hub)
	adminCtrl := controllers.NewAdminController(db, hub)
	feedCtrl := controllers.NewFeedController(hub)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	public := api.Group("/auth")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", authCtrl.Register)
		public.POST("/login", authCtrl.Login)
	}

	// Menu files are embedded by browsers without auth headers.
	api.GET("/uploads/:filename", menuCtrl.ServeUpload)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := api.Group("")
	auth.Use(middlewares.AuthMiddleware(db))

	auth.POST("/auth/logout", authCtrl.Logout)
	auth.GET("/auth/me", authCtrl.Me)
	auth.PUT("/auth/me", authCtrl.UpdateProfile)
	auth.POST("/auth/change-password", authCtrl.ChangePassword)

	// RESTAURANTS
	auth.GET("/restaurants", restaurantCtrl.List)
	auth.GET("/restaurants/available", restaurantCtrl.Available)
	auth.GET("/restaurants/:id", restaurantCtrl.Get)

	// MENUS
	auth.GET("/menus", menuCtrl.List)
	auth.GET("/menus/available", menuCtrl.Available)
	auth.GET("/menus/:id", menuCtrl.Get)

	// ORDERS (own orders only)
	auth.GET("/orders", orderCtrl.List)
	auth.GET("/orders/missing-days", orderCtrl.MissingDays)
	auth.GET("/orders/:id", orderCtrl.Get)
	auth.POST("/orders/simple", orderCtrl.CreateSimple)
	auth.PUT("/orders/:id/simple", orderCtrl.UpdateSimple)
	auth.DELETE("/orders/:id", orderCtrl.Cancel)

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := auth.Group("")
	admin.Use(middlewares.AdminOnly())
	{
		admin.POST("/restaurants", restaurantCtrl.Create)
		admin.PUT("/restaurants/:id", restaurantCtrl.Update)
		admin.DELETE("/restaurants/:id", restaurantCtrl.Deactivate)

		admin.POST("/menus", menuCtrl.Create)
		admin.POST("/menus/with-content", menuCtrl.CreateWithContent)
		admin.PUT("/menus/:id", menuCtrl.Update)
		admin.PUT("/menus/:id/content", menuCtrl.UpdateContent)
		admin.DELETE("/menus/:id", menuCtrl.Delete)

		admin.GET("/users", userCtrl.List)
		admin.POST("/users", userCtrl.Create)
		admin.GET("/users/:id", userCtrl.Get)
		admin.PUT("/users/:id", userCtrl.Update)
		admin.DELETE("/users/:id", userCtrl.Deactivate)

		admin.GET("/admin/dashboard", adminCtrl.Dashboard)
		admin.GET("/admin/orders/by-date", adminCtrl.OrdersByDate)
		admin.POST("/admin/orders/email-draft", adminCtrl.EmailDraft)
		admin.POST("/admin/orders/send-email", adminCtrl.SendEmail)
		admin.POST("/admin/orders/send-all-emails", adminCtrl.SendAllEmails)
		admin.PUT("/admin/orders/:id/status", adminCtrl.UpdateOrderStatus)
		admin.GET("/admin/users-without-orders", adminCtrl.UsersWithoutOrders)
		admin.GET("/admin/motd", adminCtrl.GetMotd)
		admin.PUT("/admin/motd", adminCtrl.PutMotd)
		admin.GET("/admin/restaurants/availability", adminCtrl.GetAvailability)
		admin.PUT("/admin/restaurants/:id/availability", adminCtrl.PutAvailability)
		admin.GET("/admin/orders/feed", feedCtrl.Subscribe)
	}

	return r
}
