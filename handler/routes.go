package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func InitRoutes(r *gin.Engine) {
	r.GET("/health", HealthHandler)

	r.GET("/api/user-path-analysis", UserPathAnalysisHandler)
	r.GET("/api/user-path-analysis/mock", MockUserPathHandler)

	r.GET("/api/analysis-options", AnalysisOptionsHandler)
	r.GET("/api/events", GetEventsHandler)
	r.GET("/api/pages", GetPagesHandler)
}

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
