package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/aquaflow/aquaflow-backend/internal/middleware"
	"github.com/aquaflow/aquaflow-backend/internal/models"
	"github.com/aquaflow/aquaflow-backend/internal/services"
	"github.com/aquaflow/aquaflow-backend/internal/storage"
)

// NewRouter wires every route over the injected storage and hub. Literal
// path segments (/email/:email, /status/:status, ...) are registered before
// the generic /:id routes; gin routes them by segment so both can coexist,
// and keeping the order explicit guards against the Express-style
// misrouting the API contract warns about.
func NewRouter(store storage.Storage, hub *services.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		auth := api.Group("/auth")
		{
			auth.POST("/register", CreateUser(store))
			auth.POST("/login", Login(store))
			auth.POST("/firebase", FirebaseLogin(store))
		}

		api.GET("/ws", middleware.AuthMiddleware(), WebSocketHandler(hub))

		users := api.Group("/users")
		{
			users.POST("", CreateUser(store))
			users.GET("/email/:email", GetUserByEmail(store))
			users.GET("/username/:username", GetUserByUsername(store))
			users.GET("/role/:role", GetUsersByRole(store))
			users.GET("/profile", middleware.AuthMiddleware(), GetProfile(store))
			users.POST("/profile-image", middleware.AuthMiddleware(), UploadProfileImage(store))
			users.GET("/:id", GetUser(store))
		}

		requests := api.Group("/requests")
		{
			requests.POST("", CreateWaterRequest(store))
			requests.GET("", GetAllWaterRequests(store))
			requests.GET("/rid/:requestId", GetWaterRequestByRequestID(store))
			requests.GET("/user/:userId", GetUserWaterRequests(store))
			requests.GET("/driver/:driverId", GetDriverWaterRequests(store))
			requests.GET("/status/:status", GetWaterRequestsByStatus(store))
			requests.GET("/:id", GetWaterRequest(store))
			requests.PATCH("/:id", UpdateWaterRequest(store, hub))

			driverActions := requests.Group("")
			driverActions.Use(middleware.AuthMiddleware(), middleware.RoleRequired(string(models.RoleDriver)))
			{
				driverActions.POST("/:id/accept", AcceptWaterRequest(store, hub))
				driverActions.POST("/:id/transit", StartWaterRequestTransit(store, hub))
				driverActions.POST("/:id/complete", CompleteWaterRequest(store, hub))
			}

			requests.POST("/:id/rate",
				middleware.AuthMiddleware(),
				middleware.RoleRequired(string(models.RoleResident)),
				RateWaterRequest(store))
		}

		locations := api.Group("/locations")
		{
			locations.POST("", CreateDriverLocation(store, hub))
			locations.GET("", GetAllDriverLocations(store))
			locations.GET("/driver/:driverId", GetLatestDriverLocation(store))
		}

		anomalies := api.Group("/anomalies")
		{
			anomalies.POST("", CreateAnomaly(store))
			anomalies.GET("", GetAllAnomalies(store))
			anomalies.GET("/request/:requestId", GetAnomaliesByRequest(store))
			anomalies.PATCH("/:id/resolve", ResolveAnomaly(store))
		}

		api.GET("/stats/driver/:driverId", GetDriverStats(store))
	}

	return r
}
