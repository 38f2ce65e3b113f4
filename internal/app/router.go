package app

import (
	"peymonak_backend/docs"
	"peymonak_backend/internal/config"
	"peymonak_backend/internal/middleware"
	"peymonak_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, s *services, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. Public routes
	a.registerPublicRoutes(router, c)

	// 2. Authenticated routes
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret, s.tokens), middleware.ActivityMiddleware(repos.account))
	{
		a.registerAccountRoutes(authGroup, c)
		a.registerAdRoutes(authGroup, c)
		a.registerCooperationRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		public.POST("/request-verification", c.auth.RequestVerification)
		public.POST("/verify", c.auth.VerifyCode)
		public.POST("/token/refresh", c.auth.RefreshToken)

		auth := public.Group("/auth")
		{
			auth.POST("/verify", c.auth.VerifyCode)
			auth.POST("/register", c.auth.Register)
			auth.POST("/login/request-code", c.auth.RequestLoginCode)
		}

		public.GET("/provinces/check", c.province.CheckProvince)
		public.GET("/provinces/suggestions", c.province.SuggestProvinces)
		public.GET("/support", c.support.ListContacts)

		ref := public.Group("/reference")
		{
			ref.GET("/provinces", c.reference.Provinces)
			ref.GET("/skills", c.reference.Skills)
			ref.GET("/genders", c.reference.Genders)
		}
	}
}

func (a *App) registerAccountRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/auth/logout", c.auth.Logout)
	rg.GET("/user", c.auth.CurrentUser)

	rg.GET("/my-profile", c.profile.GetMyProfile)
	rg.POST("/my-profile", c.profile.CreateMyProfile)
	rg.PATCH("/my-profile", c.profile.UpdateMyProfile)
	rg.DELETE("/my-profile", c.profile.DeleteMyProfile)
	rg.GET("/my-profile/:userId/public", c.profile.GetPublicProfile)
	rg.DELETE("/my-profile/images/:imageId", c.profile.DeleteSampleImage)
}

func (a *App) registerAdRoutes(rg *gin.RouterGroup, c *controllers) {
	ads := rg.Group("/ads")
	{
		ads.GET("", c.ad.ListAds)
		ads.GET("/active", c.ad.ListActiveAds)
		ads.GET("/mine", c.ad.ListMyAds)
		ads.POST("", c.ad.CreateAd)
		ads.GET("/:id", c.ad.GetAd)
		ads.PATCH("/:id", c.ad.UpdateAd)
		ads.DELETE("/:id", c.ad.DeleteAd)
		ads.POST("/:id/reports", c.ad.ReportAd)
	}

	saved := rg.Group("/saved-ads")
	{
		saved.GET("", c.savedAd.ListSavedAds)
		saved.POST("", c.savedAd.SaveAd)
		saved.DELETE("/:id", c.savedAd.RemoveSavedAd)
	}
}

func (a *App) registerCooperationRoutes(rg *gin.RouterGroup, c *controllers) {
	coop := rg.Group("/cooperation-requests")
	{
		coop.GET("", c.cooperation.ListRequests)
		coop.POST("", c.cooperation.CreateRequest)
		coop.GET("/:id", c.cooperation.GetRequest)
		coop.PATCH("/:id", c.cooperation.RespondRequest)
		coop.DELETE("/:id", c.cooperation.CancelRequest)
	}
}
