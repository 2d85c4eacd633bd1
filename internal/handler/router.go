package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"
)

// NewRouter はAPIのルーティングを設定したginエンジンを作成
func NewRouter(itinerary *ItineraryHandler, stream *ProgressStreamHandler, health *HealthHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	api := r.Group("/api")
	{
		api.GET("/health", health.GetHealth)
		api.POST("/plan", itinerary.PostPlan)

		itineraries := api.Group("/itineraries")
		itineraries.POST("", itinerary.PostItinerary)
		itineraries.GET("/:id", itinerary.GetResult)
		itineraries.GET("/:id/status", itinerary.GetStatus)
		itineraries.GET("/:id/events", stream.StreamEvents)
		itineraries.GET("/:id/export", itinerary.GetExport)
	}
	return r
}

// requestLogger はリクエストごとにアクセスログを出力する
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("🌐 リクエスト処理")
	}
}
