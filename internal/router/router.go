package router

import (
	"ghgp/internal/database"
	"ghgp/internal/handlers"
	"ghgp/internal/middleware"
	"ghgp/internal/models"
	"ghgp/internal/rbac"
	"ghgp/internal/services"
	"ghgp/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	// 注册路由
	registerRoutes(router)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine) {

	auth := middleware.NewAuthMiddleware()

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// JWT认证路由（无需认证）
		authHandler := handlers.NewAuthHandler(services.NewUserService(), services.NewCompanyService())
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)          // 用户登录
			authGroup.POST("/logout", authHandler.Logout)        // 用户登出
			authGroup.POST("/refresh", authHandler.RefreshToken) // 刷新Token

			// 🔒 获取当前用户完整信息
			authGroup.GET("/me", auth.RequireLogin(), authHandler.Me)
		}

		// 自助注册路由（无需认证）
		registerHandler := handlers.NewRegisterHandler(services.NewRegistrationService(), services.NewCompanyService())
		registerGroup := api.Group("/register")
		{
			registerGroup.GET("/check-username", registerHandler.CheckUsername) // 用户名可用性
			registerGroup.GET("/check-email", registerHandler.CheckEmail)       // 邮箱可用性
			registerGroup.GET("/companies", registerHandler.ListCompanies)      // 可加入的公司列表
			registerGroup.POST("/join", registerHandler.JoinCompany)            // 加入已有公司
			registerGroup.POST("/new-company", registerHandler.NewCompany)      // 注册新公司
		}

		// 用户管理路由（管理员全量，manager限本公司）
		userHandler := handlers.NewUserHandler()
		users := api.Group("/users", auth.RequireLogin(), auth.RequireRole(models.RoleAdmin, models.RoleManager))
		{
			users.GET("", userHandler.List)
			users.GET("/stats", auth.RequireFeature(rbac.PermManageUsers), userHandler.Stats)
			users.GET("/:id", userHandler.Get)
			users.POST("", userHandler.Create)
			users.PUT("/:id", userHandler.Update)
			users.DELETE("/:id", userHandler.Delete)
			users.POST("/:id/activate", userHandler.Activate)
			users.POST("/:id/deactivate", userHandler.Deactivate)
			users.POST("/:id/reset-password", userHandler.ResetPassword)
		}

		// 公司管理路由（仅管理员）
		companyHandler := handlers.NewCompanyHandler()
		companies := api.Group("/companies", auth.RequireLogin())
		{
			companies.GET("", auth.RequireFeature(rbac.PermViewAllCompanies), companyHandler.List)
			companies.GET("/stats", auth.RequireFeature(rbac.PermViewAllCompanies), companyHandler.Stats)
			companies.GET("/:id", auth.RequireFeature(rbac.PermViewAllCompanies), companyHandler.Get)
			companies.POST("", auth.RequireFeature(rbac.PermManageCompanies), companyHandler.Create)
			companies.PUT("/:id", auth.RequireFeature(rbac.PermManageCompanies), companyHandler.Update)
			companies.DELETE("/:id", auth.RequireFeature(rbac.PermManageCompanies), companyHandler.Delete)
			companies.POST("/:id/verify", auth.RequireFeature(rbac.PermManageCompanies), companyHandler.Verify)
			companies.POST("/:id/reject", auth.RequireFeature(rbac.PermManageCompanies), companyHandler.Reject)
		}

		// 排放源目录路由
		sourceHandler := handlers.NewEmissionSourceHandler()
		sources := api.Group("/emission-sources", auth.RequireLogin())
		{
			sources.GET("/scopes", sourceHandler.Scopes)
			sources.GET("/categories", sourceHandler.Categories)
			sources.GET("/available", sourceHandler.ListForCompany) // 录入时可选的源
			sources.GET("", auth.RequireFeature(rbac.PermManageFactors), sourceHandler.ListForManagement)
			sources.GET("/:id", sourceHandler.Get)
			sources.GET("/:id/usage", auth.RequireFeature(rbac.PermManageFactors), sourceHandler.Usage)
			sources.GET("/:id/history", auth.RequireFeature(rbac.PermManageFactors), sourceHandler.History)

			// 🔒 自建源维护（需公司已认证）
			custom := sources.Group("", auth.RequireFeature(rbac.PermManageFactors), auth.RequireCompanyVerified())
			{
				custom.POST("/custom", sourceHandler.CreateCustom)
				custom.PUT("/custom/:id", sourceHandler.UpdateCustom)
				custom.DELETE("/custom/:id", sourceHandler.DeleteCustom)
			}

			// 🔒 全局开关（仅管理员）
			admin := sources.Group("", auth.RequireRole(models.RoleAdmin))
			{
				admin.POST("/:id/active", sourceHandler.SetActive)
				admin.POST("/:id/visible", sourceHandler.SetVisible)
				admin.POST("/bulk-flags", sourceHandler.BulkSetFlags)
			}
		}

		// 排放记录路由（需公司已认证）
		emissionHandler := handlers.NewEmissionHandler()
		emissions := api.Group("/emissions", auth.RequireLogin(), auth.RequireCompanyVerified())
		{
			emissions.GET("/periods", emissionHandler.Periods)
			emissions.GET("", auth.RequireFeature(rbac.PermViewData), emissionHandler.List)
			emissions.GET("/stats", auth.RequireFeature(rbac.PermViewData), emissionHandler.Stats)
			emissions.GET("/export", auth.RequireFeature(rbac.PermExportData), emissionHandler.Export)
			emissions.GET("/:id", auth.RequireFeature(rbac.PermViewData), emissionHandler.Get)
			emissions.POST("", auth.RequireFeature(rbac.PermAddActivity), emissionHandler.Create)
			emissions.PUT("/:id", auth.RequireFeature(rbac.PermEditEmissions), emissionHandler.Update)
			emissions.DELETE("/:id", auth.RequireFeature(rbac.PermDeleteEmissions), emissionHandler.Delete)
			emissions.POST("/:id/verify", auth.RequireFeature(rbac.PermVerifyData), emissionHandler.Verify)
			emissions.POST("/:id/reject", auth.RequireFeature(rbac.PermVerifyData), emissionHandler.Reject)

			// 批量导入
			emissions.POST("/bulk-import", auth.RequireFeature(rbac.PermAddBulkEmissions), emissionHandler.BulkImport)
			emissions.GET("/import-batches/:batch_id", auth.RequireFeature(rbac.PermAddBulkEmissions), emissionHandler.GetImportBatch)
		}

		// 排放汇总路由
		summaryHandler := handlers.NewSummaryHandler()
		summary := api.Group("/summary", auth.RequireLogin(), auth.RequireCompanyVerified(), auth.RequireFeature(rbac.PermGenerateReports))
		{
			summary.GET("", summaryHandler.Get)
			summary.GET("/sources", summaryHandler.SourceBreakdown)
		}

		// WebSocket路由（token在查询参数中自行认证）
		wsHandler := handlers.NewWebSocketHandler()
		api.GET("/ws/review-feed", wsHandler.ReviewFeed)
	}
}

// 健康检查
func healthCheck(c *gin.Context) {
	sqlDB, err := database.GetDB().DB()
	if err != nil || sqlDB.Ping() != nil {
		response.ServerError(c, "数据库连接异常")
		return
	}
	response.Success(c, gin.H{"status": "ok"})
}

func ping(c *gin.Context) {
	response.Success(c, gin.H{"message": "pong"})
}
