package absence_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"go-absences/internal/absence"
	absenceerrors "go-absences/internal/absence/errors"
)

type fakeAbsenceService struct {
	FileFn        func(ctx context.Context, employeeID string, req absence.FileAbsenceRequest) (absence.AbsenceResponse, error)
	ReviseFn      func(ctx context.Context, employeeID, id string, req absence.ReviseAbsenceRequest) (absence.AbsenceResponse, error)
	CancelFn      func(ctx context.Context, employeeID, id string) error
	ListInRangeFn func(ctx context.Context, employeeID string, from, to time.Time) ([]absence.AbsenceResponse, error)
}

func (f *fakeAbsenceService) File(ctx context.Context, employeeID string, req absence.FileAbsenceRequest) (absence.AbsenceResponse, error) {
	return f.FileFn(ctx, employeeID, req)
}
func (f *fakeAbsenceService) Revise(ctx context.Context, employeeID, id string, req absence.ReviseAbsenceRequest) (absence.AbsenceResponse, error) {
	return f.ReviseFn(ctx, employeeID, id, req)
}
func (f *fakeAbsenceService) Cancel(ctx context.Context, employeeID, id string) error {
	return f.CancelFn(ctx, employeeID, id)
}
func (f *fakeAbsenceService) ListInRange(ctx context.Context, employeeID string, from, to time.Time) ([]absence.AbsenceResponse, error) {
	return f.ListInRangeFn(ctx, employeeID, from, to)
}

func TestAbsenceHandler_File(t *testing.T) {
	gin.SetMode(gin.TestMode)
	employeeID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		svc := &fakeAbsenceService{
			FileFn: func(ctx context.Context, eid string, req absence.FileAbsenceRequest) (absence.AbsenceResponse, error) {
				assert.Equal(t, employeeID, eid)
				assert.Equal(t, "PAID_LEAVE", req.Type)
				return absence.AbsenceResponse{
					ID:         uuid.New().String(),
					EmployeeID: eid,
					Type:       req.Type,
					Label:      "Paid leave",
					StartDate:  req.StartDate,
					EndDate:    req.EndDate,
					TotalDays:  3,
				}, nil
			},
		}

		h := absence.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"type":"PAID_LEAVE","start_date":"2026-03-02","end_date":"2026-03-04"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/employees/"+employeeID+"/absences", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req
		c.Params = gin.Params{{Key: "id", Value: employeeID}}

		h.File(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "PAID_LEAVE")
	})

	t.Run("validation error", func(t *testing.T) {
		svc := &fakeAbsenceService{}
		h := absence.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"type":"GARDENING_LEAVE","start_date":"2026-03-02","end_date":"2026-03-04"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/employees/"+employeeID+"/absences", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req
		c.Params = gin.Params{{Key: "id", Value: employeeID}}

		h.File(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("overlap maps to conflict", func(t *testing.T) {
		svc := &fakeAbsenceService{
			FileFn: func(ctx context.Context, eid string, req absence.FileAbsenceRequest) (absence.AbsenceResponse, error) {
				return absence.AbsenceResponse{}, absenceerrors.ErrAbsenceOverlap
			},
		}
		h := absence.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"type":"PAID_LEAVE","start_date":"2026-03-02","end_date":"2026-03-04"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/employees/"+employeeID+"/absences", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req
		c.Params = gin.Params{{Key: "id", Value: employeeID}}

		h.File(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAbsenceHandler_Cancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	employeeID := uuid.New().String()
	absenceID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		svc := &fakeAbsenceService{
			CancelFn: func(ctx context.Context, eid, id string) error {
				assert.Equal(t, employeeID, eid)
				assert.Equal(t, absenceID, id)
				return nil
			},
		}
		h := absence.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodDelete, "/api/v1/employees/"+employeeID+"/absences/"+absenceID, nil)
		c.Params = gin.Params{{Key: "id", Value: employeeID}, {Key: "absenceID", Value: absenceID}}

		h.Cancel(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "cancelled")
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeAbsenceService{
			CancelFn: func(ctx context.Context, eid, id string) error {
				return absenceerrors.ErrAbsenceNotFound
			},
		}
		h := absence.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodDelete, "/api/v1/employees/"+employeeID+"/absences/"+absenceID, nil)
		c.Params = gin.Params{{Key: "id", Value: employeeID}, {Key: "absenceID", Value: absenceID}}

		h.Cancel(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAbsenceHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)
	employeeID := uuid.New().String()

	t.Run("passes the query window through", func(t *testing.T) {
		svc := &fakeAbsenceService{
			ListInRangeFn: func(ctx context.Context, eid string, from, to time.Time) ([]absence.AbsenceResponse, error) {
				assert.Equal(t, "2026-03-01", from.Format("2006-01-02"))
				assert.Equal(t, "2026-03-31", to.Format("2006-01-02"))
				return []absence.AbsenceResponse{{Type: "SICK", TotalDays: 1}}, nil
			},
		}
		h := absence.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/employees/"+employeeID+"/absences?from=2026-03-01&to=2026-03-31", nil)
		c.Params = gin.Params{{Key: "id", Value: employeeID}}

		h.List(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "SICK")
	})

	t.Run("malformed from", func(t *testing.T) {
		svc := &fakeAbsenceService{}
		h := absence.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/employees/"+employeeID+"/absences?from=bogus", nil)
		c.Params = gin.Params{{Key: "id", Value: employeeID}}

		h.List(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
