package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"go-absences/internal/counter"
	employeeerrors "go-absences/internal/employee/errors"
	"go-absences/internal/events"
	"go-absences/internal/messaging/kafka"
	"go-absences/internal/shared/contextutil"
)

const CounterSummaryKeyPrefix = "employees:counters:"

func GetCounterSummaryKey(employeeID string) string {
	return CounterSummaryKeyPrefix + employeeID
}

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	GetByEmail(ctx context.Context, email string) (EmployeeResponse, error)
	Rename(ctx context.Context, id string, req RenameEmployeeRequest) (EmployeeResponse, error)
	CounterSummary(ctx context.Context, id string) ([]counter.CounterInfo, error)
	AccrueWorkedDay(ctx context.Context, id string, date time.Time) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	counters counter.Repository
	engine   *counter.Engine
	outbox   kafka.OutboxRepository
	rdb      *redis.Client
	sf       *singleflight.Group
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
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		counters: counters,
		engine:   engine,
		outbox:   outboxRepo,
		rdb:      rdb,
		sf:       &singleflight.Group{},
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("email", req.Email),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	taken, err := qtx.EmailExists(ctx, req.Email)
	if err != nil {
		s.logger.Error("create employee email check failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	if taken {
		s.logger.Warn("create employee email already taken", zap.String("email", req.Email))
		return EmployeeResponse{}, employeeerrors.ErrEmailAlreadyTaken
	}

	empl := &Employee{
		ID:       uuid.New(),
		Email:    req.Email,
		FullName: req.FullName,
	}

	if err := qtx.Create(ctx, empl); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	// One zeroed counter per counted type, created with the employee.
	counters := s.engine.Initialize(empl.ID)
	if err := s.counters.WithTx(tx).CreateAll(ctx, counters); err != nil {
		s.logger.Error("create employee counters persist failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	if s.outbox != nil {
		event := events.EmployeeCreatedEvent{
			EventType:  "employee_created",
			RequestID:  rid,
			EmployeeID: empl.ID.String(),
			Email:      empl.Email,
			OccurredAt: time.Now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return EmployeeResponse{}, err
		}

		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "employee",
			AggregateID:   empl.ID.String(),
			EventType:     event.EventType,
			Topic:         events.EmployeeCreatedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("create employee outbox persist failed",
				zap.String("employee_id", empl.ID.String()),
				zap.Error(err),
			)
			return EmployeeResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create employee commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	s.invalidateSummary(ctx, empl.ID.String())
	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
	)

	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	empls, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(empls), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*empl), nil
}

func (s *service) GetByEmail(ctx context.Context, email string) (EmployeeResponse, error) {
	empl, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*empl), nil
}

func (s *service) Rename(ctx context.Context, id string, req RenameEmployeeRequest) (EmployeeResponse, error) {
	s.logger.Debug("rename employee requested", zap.String("employee_id", id))

	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("rename employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl, err := qtx.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	// Email is the employee's identity and stays immutable after creation.
	empl.FullName = req.FullName

	if err := qtx.Update(ctx, empl); err != nil {
		s.logger.Error("rename employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("rename employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.logger.Info("rename employee success", zap.String("employee_id", id))

	return mapToResponse(*empl), nil
}

func (s *service) CounterSummary(ctx context.Context, id string) ([]counter.CounterInfo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, employeeerrors.ErrInvalidEmployeeID
	}

	cacheKey := GetCounterSummaryKey(id)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var infos []counter.CounterInfo
			if json.Unmarshal([]byte(cached), &infos) == nil {
				return infos, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			return nil, mapRepositoryError(err)
		}

		counters, err := s.counters.FindByEmployee(ctx, id)
		if err != nil {
			return nil, err
		}

		infos := s.engine.Project(counters)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(infos); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, 10*time.Minute)
			}
		}

		return infos, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]counter.CounterInfo), nil
}

func (s *service) AccrueWorkedDay(ctx context.Context, id string, date time.Time) error {
	s.logger.Debug("accrue worked day requested",
		zap.String("employee_id", id),
		zap.String("date", date.Format("2006-01-02")),
	)

	if _, err := uuid.Parse(id); err != nil {
		return employeeerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("accrue worked day begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if _, err := qtx.FindByID(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	qctr := s.counters.WithTx(tx)
	counters, err := qctr.FindByEmployee(ctx, id)
	if err != nil {
		return err
	}

	if err := s.engine.AccrueWorkedDay(ctx, counters, id, date); err != nil {
		return err
	}

	if err := qctr.SaveAll(ctx, counters); err != nil {
		s.logger.Error("accrue worked day persist failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("accrue worked day commit failed", zap.Error(err))
		return err
	}

	s.invalidateSummary(ctx, id)
	return nil
}

func (s *service) invalidateSummary(ctx context.Context, id string) {
	if s.rdb == nil {
		return
	}
	cacheKey := GetCounterSummaryKey(id)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate counter summary cache",
			zap.Error(err),
			zap.String("key", cacheKey),
		)
	}
}

func mapToResponse(empl Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:       empl.ID.String(),
		Email:    empl.Email,
		FullName: empl.FullName,
	}
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}
