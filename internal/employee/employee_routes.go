package employee

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	employees := r.Group("/employees")
	{
		employees.GET("", handler.GetAll)
		employees.POST("", handler.Create)
		employees.GET("/:id", handler.GetByID)
		employees.PUT("/:id", handler.Rename)
		employees.GET("/:id/counters", handler.CounterSummary)
		employees.POST("/:id/worked-days", handler.AccrueWorkedDay)
	}
}
