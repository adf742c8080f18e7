package absence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	absenceerrors "go-absences/internal/absence/errors"
	"go-absences/internal/absencetype"
	"go-absences/internal/counter"
	"go-absences/internal/employee"
	employeeerrors "go-absences/internal/employee/errors"
	"go-absences/internal/events"
	"go-absences/internal/messaging/kafka"
	"go-absences/internal/shared/contextutil"
)

//go:generate mockgen -source=absence_service.go -destination=mock/absence_service_mock.go -package=mock
type Service interface {
	File(ctx context.Context, employeeID string, req FileAbsenceRequest) (AbsenceResponse, error)
	Revise(ctx context.Context, employeeID, id string, req ReviseAbsenceRequest) (AbsenceResponse, error)
	Cancel(ctx context.Context, employeeID, id string) error
	ListInRange(ctx context.Context, employeeID string, from, to time.Time) ([]AbsenceResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	counters counter.Repository
	engine   *counter.Engine
	outbox   kafka.OutboxRepository
	rdb      *redis.Client
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counters counter.Repository,
	engine *counter.Engine,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, counters, engine, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	counters counter.Repository,
	engine *counter.Engine,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("absence.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("absence.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		counters: counters,
		engine:   engine,
		outbox:   outboxRepo,
		rdb:      rdb,
		logger:   l,
	}
}

func (s *service) File(ctx context.Context, employeeID string, req FileAbsenceRequest) (AbsenceResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("file absence requested",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID),
		zap.String("type", req.Type),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	employeeUUID, startDate, endDate, err := s.validateInput(employeeID, req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Warn("file absence validation failed", zap.Error(err))
		return AbsenceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("file absence begin tx failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qctr := s.counters.WithTx(tx)

	counters, err := s.loadCounters(ctx, qctr, employeeID)
	if err != nil {
		return AbsenceResponse{}, err
	}

	overlap, err := qtx.HasOverlappingPeriod(ctx, employeeID, startDate, endDate, nil)
	if err != nil {
		s.logger.Error("file absence overlap check failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	if overlap {
		s.logger.Warn("file absence overlap detected",
			zap.String("employee_id", employeeID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return AbsenceResponse{}, absenceerrors.ErrAbsenceOverlap
	}

	a, err := New(employeeUUID, req.Type, startDate, endDate)
	if err != nil {
		return AbsenceResponse{}, err
	}

	if err := s.engine.Debit(counters, a.Type, a.StartDate, a.EndDate); err != nil {
		s.logger.Warn("file absence debit refused",
			zap.String("employee_id", employeeID),
			zap.String("type", req.Type),
			zap.Error(err),
		)
		return AbsenceResponse{}, err
	}

	if err := qtx.Create(ctx, a); err != nil {
		s.logger.Error("file absence persist failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	if err := qctr.SaveAll(ctx, counters); err != nil {
		s.logger.Error("file absence counters persist failed", zap.Error(err))
		return AbsenceResponse{}, err
	}

	if err := s.queueEvent(ctx, tx, events.AbsenceFiled, rid, a); err != nil {
		return AbsenceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("file absence commit failed", zap.Error(err))
		return AbsenceResponse{}, err
	}

	s.invalidateSummary(ctx, employeeID)
	s.logger.Info("file absence success",
		zap.String("request_id", rid),
		zap.String("absence_id", a.ID.String()),
		zap.String("employee_id", employeeID),
	)

	return mapToResponse(*a), nil
}

func (s *service) Revise(ctx context.Context, employeeID, id string, req ReviseAbsenceRequest) (AbsenceResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("revise absence requested",
		zap.String("request_id", rid),
		zap.String("absence_id", id),
		zap.String("employee_id", employeeID),
	)

	_, startDate, endDate, err := s.validateInput(employeeID, req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Warn("revise absence validation failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return AbsenceResponse{}, absenceerrors.ErrInvalidAbsenceID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("revise absence begin tx failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qctr := s.counters.WithTx(tx)

	// The absence being revised must not collide with itself.
	overlap, err := qtx.HasOverlappingPeriod(ctx, employeeID, startDate, endDate, &id)
	if err != nil {
		s.logger.Error("revise absence overlap check failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	if overlap {
		return AbsenceResponse{}, absenceerrors.ErrAbsenceOverlap
	}

	a, err := qtx.FindByIDAndEmployee(ctx, employeeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AbsenceResponse{}, absenceerrors.ErrAbsenceNotFound
		}
		return AbsenceResponse{}, err
	}

	counters, err := s.loadCounters(ctx, qctr, employeeID)
	if err != nil {
		return AbsenceResponse{}, err
	}

	newType, err := absencetype.Parse(req.Type)
	if err != nil {
		return AbsenceResponse{}, err
	}

	if err := s.engine.Revise(counters, a.Type, a.StartDate, a.EndDate, newType, startDate, endDate); err != nil {
		s.logger.Warn("revise absence counters refused",
			zap.String("absence_id", id),
			zap.Error(err),
		)
		return AbsenceResponse{}, err
	}

	if err := a.Modify(req.Type, startDate, endDate); err != nil {
		return AbsenceResponse{}, err
	}

	if err := qtx.Update(ctx, a); err != nil {
		s.logger.Error("revise absence persist failed", zap.Error(err))
		return AbsenceResponse{}, err
	}
	if err := qctr.SaveAll(ctx, counters); err != nil {
		s.logger.Error("revise absence counters persist failed", zap.Error(err))
		return AbsenceResponse{}, err
	}

	if err := s.queueEvent(ctx, tx, events.AbsenceRevised, rid, a); err != nil {
		return AbsenceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("revise absence commit failed", zap.Error(err))
		return AbsenceResponse{}, err
	}

	s.invalidateSummary(ctx, employeeID)
	s.logger.Info("revise absence success",
		zap.String("request_id", rid),
		zap.String("absence_id", id),
	)

	return mapToResponse(*a), nil
}

func (s *service) Cancel(ctx context.Context, employeeID, id string) error {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("cancel absence requested",
		zap.String("request_id", rid),
		zap.String("absence_id", id),
		zap.String("employee_id", employeeID),
	)

	if _, err := uuid.Parse(employeeID); err != nil {
		return absenceerrors.ErrInvalidEmployeeID
	}
	if _, err := uuid.Parse(id); err != nil {
		return absenceerrors.ErrInvalidAbsenceID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("cancel absence begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qctr := s.counters.WithTx(tx)

	a, err := qtx.FindByIDAndEmployee(ctx, employeeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return absenceerrors.ErrAbsenceNotFound
		}
		return err
	}

	counters, err := s.loadCounters(ctx, qctr, employeeID)
	if err != nil {
		return err
	}

	if err := qtx.Remove(ctx, a); err != nil {
		s.logger.Error("cancel absence remove failed", zap.Error(err))
		return err
	}

	// Cancellation gives the debited days back.
	if err := s.engine.Credit(counters, a.Type, a.StartDate, a.EndDate); err != nil {
		return err
	}
	if err := qctr.SaveAll(ctx, counters); err != nil {
		s.logger.Error("cancel absence counters persist failed", zap.Error(err))
		return err
	}

	if err := s.queueEvent(ctx, tx, events.AbsenceCancelled, rid, a); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("cancel absence commit failed", zap.Error(err))
		return err
	}

	s.invalidateSummary(ctx, employeeID)
	s.logger.Info("cancel absence success",
		zap.String("request_id", rid),
		zap.String("absence_id", id),
	)
	return nil
}

func (s *service) ListInRange(ctx context.Context, employeeID string, from, to time.Time) ([]AbsenceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, absenceerrors.ErrInvalidEmployeeID
	}
	if from.After(to) {
		return nil, absenceerrors.ErrInvalidDateRange
	}

	absences, err := s.repo.ListInRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(absences), nil
}

func (s *service) validateInput(employeeID, startDate, endDate string) (uuid.UUID, time.Time, time.Time, error) {
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, absenceerrors.ErrInvalidEmployeeID
	}
	start, err := parseDate(startDate)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, err
	}
	end, err := parseDate(endDate)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, err
	}
	if start.After(end) {
		return uuid.Nil, time.Time{}, time.Time{}, absenceerrors.ErrInvalidDateRange
	}
	if s.engine.Policy().RejectPastStart {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		if start.Before(today) {
			return uuid.Nil, time.Time{}, time.Time{}, absenceerrors.ErrDateInPast
		}
	}
	return employeeUUID, start, end, nil
}

func (s *service) loadCounters(ctx context.Context, qctr counter.Repository, employeeID string) ([]counter.AbsenceCounter, error) {
	counters, err := qctr.FindByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("load counters failed", zap.Error(err))
		return nil, err
	}
	if len(counters) == 0 {
		return nil, employeeerrors.ErrEmployeeNotFound
	}
	return counters, nil
}

func (s *service) queueEvent(ctx context.Context, tx *sql.Tx, eventType, rid string, a *Absence) error {
	if s.outbox == nil {
		return nil
	}

	event := events.AbsenceEvent{
		EventType:   eventType,
		RequestID:   rid,
		AbsenceID:   a.ID.String(),
		EmployeeID:  a.EmployeeID.String(),
		AbsenceType: string(a.Type),
		StartDate:   a.StartDate.Format("2006-01-02"),
		EndDate:     a.EndDate.Format("2006-01-02"),
		OccurredAt:  time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal absence event failed", zap.Error(err))
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "absence",
		AggregateID:   a.ID.String(),
		EventType:     eventType,
		Topic:         events.AbsenceLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("absence outbox persist failed",
			zap.String("absence_id", a.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) invalidateSummary(ctx context.Context, employeeID string) {
	if s.rdb == nil {
		return
	}
	cacheKey := employee.GetCounterSummaryKey(employeeID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate counter summary cache",
			zap.Error(err),
			zap.String("key", cacheKey),
		)
	}
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, absenceerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(a Absence) AbsenceResponse {
	return AbsenceResponse{
		ID:         a.ID.String(),
		EmployeeID: a.EmployeeID.String(),
		Type:       string(a.Type),
		Label:      a.Type.Label(),
		StartDate:  a.StartDate.Format("2006-01-02"),
		EndDate:    a.EndDate.Format("2006-01-02"),
		TotalDays:  counter.InclusiveDays(a.StartDate, a.EndDate),
		Formatted:  a.Formatted("2006-01-02"),
	}
}

func mapToListResponse(absences []Absence) []AbsenceResponse {
	resp := make([]AbsenceResponse, len(absences))
	for i, a := range absences {
		resp[i] = mapToResponse(a)
	}
	return resp
}
