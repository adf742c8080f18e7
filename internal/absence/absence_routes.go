package absence

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	absences := r.Group("/employees/:id/absences")
	{
		absences.GET("", handler.List)
		absences.POST("", handler.File)
		absences.PUT("/:absenceID", handler.Revise)
		absences.DELETE("/:absenceID", handler.Cancel)
	}
}
