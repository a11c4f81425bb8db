package router

import (
	"github.com/MaulRai/tiku/internal/config"
	"github.com/MaulRai/tiku/internal/ethereum"
	"github.com/MaulRai/tiku/internal/handler"
	"github.com/MaulRai/tiku/internal/logic"
	"github.com/MaulRai/tiku/internal/model"
	"github.com/MaulRai/tiku/internal/upload"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, ethClient *ethereum.Client, store *upload.Store, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "tiku",
		})
	})

	// 上传文件静态访问
	r.Static(cfg.Upload.BaseURL, store.Dir())

	authLogic := logic.NewAuthLogic(db, cfg.Auth)
	authRequired := handler.AuthMiddleware(authLogic)
	epsilon := cfg.Checkout.PercentToleranceEpsilon

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 认证相关路由
		authHandler := handler.NewAuthHandler(db, cfg.Auth)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/verify", authRequired, authHandler.VerifyToken)
			auth.POST("/logout", authRequired, authHandler.Logout)
			auth.POST("/wallet/nonce", authRequired, authHandler.WalletNonce)
			auth.POST("/wallet/connect", authRequired, authHandler.ConnectWallet)
			auth.POST("/wallet/disconnect", authRequired, authHandler.DisconnectWallet)
		}

		// 活动相关路由（公开）
		eventHandler := handler.NewEventHandler(db, epsilon)
		events := v1.Group("/events")
		{
			events.GET("", eventHandler.GetEvents)
			events.GET("/:id", eventHandler.GetEvent)
			events.GET("/:id/stats", eventHandler.GetEventStats)
		}

		// 购票与持票相关路由
		ticketHandler := handler.NewTicketHandler(db, ethClient, cfg.Checkout)
		tickets := v1.Group("/tickets")
		{
			tickets.POST("/quote", ticketHandler.Quote)
			tickets.GET("/resale", ticketHandler.GetResaleTickets)
			tickets.POST("/purchase", authRequired, ticketHandler.Purchase)
			tickets.GET("/my", authRequired, ticketHandler.GetMyTickets)
			tickets.POST("/:id/resale", authRequired, ticketHandler.ListForResale)
			tickets.POST("/:id/resale/buy", authRequired, ticketHandler.BuyResale)
			tickets.POST("/:id/sync", authRequired, ticketHandler.SyncTicket)
		}

		// 主办方控制台路由
		organizerHandler := handler.NewOrganizerHandler(db, ethClient, epsilon)
		eo := v1.Group("/eo", authRequired, handler.RequireRole(model.UserRoleOrganizer))
		{
			eo.POST("/events", organizerHandler.CreateEvent)
			eo.GET("/events", organizerHandler.GetMyEvents)
			eo.POST("/events/:id/ticket-types", organizerHandler.AddTicketType)
			eo.PUT("/ticket-types/:id", organizerHandler.UpdateTicketType)
			eo.GET("/stats", organizerHandler.GetDashboardStats)
			eo.GET("/tickets/:id/verify", organizerHandler.VerifyTicket)
			eo.POST("/tickets/:id/use", organizerHandler.UseTicket)
		}

		// 管理后台路由
		adminHandler := handler.NewAdminHandler(db, epsilon)
		admin := v1.Group("/admin", authRequired, handler.RequireRole(model.UserRoleAdmin))
		{
			admin.GET("/proposals/pending", adminHandler.GetPendingProposals)
			admin.POST("/proposals/:id/approve", adminHandler.ApproveProposal)
			admin.POST("/proposals/:id/reject", adminHandler.RejectProposal)
			admin.GET("/stats", adminHandler.GetAdminStats)
			admin.GET("/organizers", adminHandler.GetEventOrganizers)
			admin.POST("/events/:id/cancel", adminHandler.CancelEvent)
		}

		// 文件上传路由
		uploadHandler := handler.NewUploadHandler(store)
		uploads := v1.Group("/uploads", authRequired)
		{
			uploads.POST("/image", uploadHandler.UploadImage)
			uploads.POST("/document", uploadHandler.UploadDocument)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
