package absence

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-absences/internal/shared/apperror"
	"go-absences/internal/shared/response"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("absence.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("absence.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("absence request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) File(c *gin.Context) {
	employeeID := c.Param("id")

	var req FileAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http file absence validation failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}

	resp, err := h.service.File(c.Request.Context(), employeeID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Revise(c *gin.Context) {
	employeeID := c.Param("id")
	absenceID := c.Param("absenceID")

	var req ReviseAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http revise absence validation failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}

	resp, err := h.service.Revise(c.Request.Context(), employeeID, absenceID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	employeeID := c.Param("id")
	absenceID := c.Param("absenceID")

	if err := h.service.Cancel(c.Request.Context(), employeeID, absenceID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cancelled": true}, nil)
}

func (h *Handler) List(c *gin.Context) {
	employeeID := c.Param("id")

	from, err := queryDate(c, "from", time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", "from must be YYYY-MM-DD")
		return
	}
	to, err := queryDate(c, "to", time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", "to must be YYYY-MM-DD")
		return
	}

	resp, err := h.service.ListInRange(c.Request.Context(), employeeID, from, to)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func queryDate(c *gin.Context, name string, fallback time.Time) (time.Time, error) {
	v := c.Query(name)
	if v == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", v)
}
