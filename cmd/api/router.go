package api

import (
	"net/http"

	"meeting-portal-backend/internal/auth/delivery"
	authdomain "meeting-portal-backend/internal/auth/domain"
	authUsecase "meeting-portal-backend/internal/auth/usecase"
	calendarDelivery "meeting-portal-backend/internal/calendar/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase, calendarHandler *calendarDelivery.CalendarHandler, meetingHandler *calendarDelivery.MeetingHandler) {
	authHandler := delivery.NewAuthHandler(authUsecase)
	requireAuth := delivery.AuthMiddleware(authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", requireAuth, authHandler.Me)
			auth.POST("/logout", authHandler.Logout)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(requireAuth)
		{
			fcm.POST("/register", authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", authHandler.UnregisterFCMToken)
		}

		// Outlook OAuth redirect lands here without a portal token; state identifies the user
		api.GET("/calendar/callback", calendarHandler.Callback)

		// Calendar routes (protected)
		calendar := api.Group("/calendar")
		calendar.Use(requireAuth)
		{
			calendar.GET("/connect", calendarHandler.Connect)
			calendar.GET("/status", calendarHandler.GetStatus)
			calendar.DELETE("/connection", calendarHandler.Disconnect)
			calendar.POST("/sync", calendarHandler.Sync)
			calendar.GET("/sync/history", calendarHandler.GetSyncHistory)
		}

		// Meeting routes (protected)
		meetings := api.Group("/meetings")
		meetings.Use(requireAuth)
		{
			meetings.GET("", meetingHandler.GetMeetings)
			meetings.POST("", meetingHandler.CreateMeeting)
			meetings.GET("/:id", meetingHandler.GetMeetingByID)
			meetings.PUT("/:id", meetingHandler.UpdateMeeting)
			meetings.DELETE("/:id", meetingHandler.DeleteMeeting)
			meetings.PATCH("/:id/status", meetingHandler.UpdateMeetingStatus)
		}

		// Settings routes (admin) - Runtime configuration
		settings := api.Group("/settings")
		settings.Use(requireAuth, delivery.RequireRole(authdomain.RoleAdmin))
		{
			settings.GET("/sync", GetSyncSettings)
			settings.PUT("/sync", UpdateSyncSettings)
		}
	}
}
