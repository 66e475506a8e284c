package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tallersur/presupuestos_backend/models"
)

func GetDashboard(c *gin.Context) {
	summary, err := models.GetDashboardSummary(c.Request.Context())
	if err != nil {
		respondError(c, "dashboard.go", "GetDashboard", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
