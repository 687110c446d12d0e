package transport

import (
	"github.com/gin-gonic/gin"
)

func InitRoutes(scanHandler *ScanHandler) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/scan", scanHandler.ProcessScan)
	router.GET("/scan/:id", scanHandler.GetScan)
	router.GET("/scan/:id/annotated", scanHandler.AnnotatedImage)
	router.DELETE("/scan/:id", scanHandler.DeleteScan)

	router.GET("/diagnostics", scanHandler.Diagnostics)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "validascan-gateway",
		})
	})

	return router
}
