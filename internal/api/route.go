package api

import (
	"Linkup/internal/api/middleware"
	"Linkup/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		imGroup := apiGroup.Group("/im")
		{
			imGroup.GET("/ws", group.WSHandler.Connect)

			authGroup := imGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/events/direct", group.IMHandler.OnDirectMessage)
				authGroup.POST("/events/group", group.IMHandler.OnGroupMessage)
				authGroup.POST("/group/read", group.IMHandler.MarkGroupRead)
				authGroup.GET("/presence/:user_id", group.IMHandler.GetPresence)
				authGroup.GET("/unread", group.IMHandler.GetTotalUnread)
				authGroup.GET("/conversations/:conversation_id/unread", group.IMHandler.GetDirectUnread)
			}
		}
	}

	return r
}
