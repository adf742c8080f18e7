package employee_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"go-absences/internal/absencetype"
	"go-absences/internal/counter"
	"go-absences/internal/employee"
	employeeerrors "go-absences/internal/employee/errors"
)

type fakeEmployeeRepository struct {
	withTxFn      func(tx *sql.Tx) employee.Repository
	createFn      func(ctx context.Context, empl *employee.Employee) error
	findAllFn     func(ctx context.Context) ([]employee.Employee, error)
	findByIDFn    func(ctx context.Context, id string) (*employee.Employee, error)
	findByEmailFn func(ctx context.Context, email string) (*employee.Employee, error)
	emailExistsFn func(ctx context.Context, email string) (bool, error)
	updateFn      func(ctx context.Context, empl *employee.Employee) error
}

func (f *fakeEmployeeRepository) WithTx(tx *sql.Tx) employee.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeEmployeeRepository) Create(ctx context.Context, empl *employee.Employee) error {
	if f.createFn != nil {
		return f.createFn(ctx, empl)
	}
	return nil
}

func (f *fakeEmployeeRepository) FindAll(ctx context.Context) ([]employee.Employee, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	if f.findByEmailFn != nil {
		return f.findByEmailFn(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	if f.emailExistsFn != nil {
		return f.emailExistsFn(ctx, email)
	}
	return false, nil
}

func (f *fakeEmployeeRepository) Update(ctx context.Context, empl *employee.Employee) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, empl)
	}
	return nil
}

type fakeCounterRepository struct {
	withTxFn         func(tx *sql.Tx) counter.Repository
	createAllFn      func(ctx context.Context, counters []counter.AbsenceCounter) error
	findByEmployeeFn func(ctx context.Context, employeeID string) ([]counter.AbsenceCounter, error)
	saveAllFn        func(ctx context.Context, counters []counter.AbsenceCounter) error
}

func (f *fakeCounterRepository) WithTx(tx *sql.Tx) counter.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeCounterRepository) CreateAll(ctx context.Context, counters []counter.AbsenceCounter) error {
	if f.createAllFn != nil {
		return f.createAllFn(ctx, counters)
	}
	return nil
}

func (f *fakeCounterRepository) FindByEmployee(ctx context.Context, employeeID string) ([]counter.AbsenceCounter, error) {
	if f.findByEmployeeFn != nil {
		return f.findByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeCounterRepository) SaveAll(ctx context.Context, counters []counter.AbsenceCounter) error {
	if f.saveAllFn != nil {
		return f.saveAllFn(ctx, counters)
	}
	return nil
}

type fakeAbsenceLookup struct {
	coversDateOfTypeFn func(ctx context.Context, employeeID string, date time.Time, types []absencetype.Type) (bool, error)
}

func (f *fakeAbsenceLookup) CoversDateOfType(ctx context.Context, employeeID string, date time.Time, types []absencetype.Type) (bool, error) {
	if f.coversDateOfTypeFn != nil {
		return f.coversDateOfTypeFn(ctx, employeeID, date, types)
	}
	return false, nil
}

type employeeServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  employee.Service
	repo     *fakeEmployeeRepository
	counters *fakeCounterRepository
	lookup   *fakeAbsenceLookup
}

func setupEmployeeServiceTest(t *testing.T) *employeeServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeEmployeeRepository{}
	counters := &fakeCounterRepository{}
	lookup := &fakeAbsenceLookup{}
	engine := counter.NewEngine(counter.DefaultPolicy(), lookup)
	svc := employee.NewService(db, repo, counters, engine, nil)

	return &employeeServiceDeps{
		db:       db,
		sqlMock:  sqlMock,
		service:  svc,
		repo:     repo,
		counters: counters,
		lookup:   lookup,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestEmployeeService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success seeds one counter per counted type", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		var created *employee.Employee
		deps.repo.createFn = func(ctx context.Context, empl *employee.Employee) error {
			created = empl
			return nil
		}

		var seeded []counter.AbsenceCounter
		deps.counters.createAllFn = func(ctx context.Context, counters []counter.AbsenceCounter) error {
			seeded = counters
			return nil
		}

		resp, err := deps.service.Create(ctx, employee.CreateEmployeeRequest{
			Email:    "ada@example.com",
			FullName: "Ada Lovelace",
		})

		assert.NoError(t, err)
		assert.Equal(t, "ada@example.com", resp.Email)
		assert.Equal(t, "Ada Lovelace", resp.FullName)
		assert.NotNil(t, created)

		assert.Len(t, seeded, 2)
		for _, c := range seeded {
			assert.Equal(t, created.ID, c.EmployeeID)
			assert.Equal(t, 0, c.DaysAvailable)
			assert.Equal(t, 0, c.DaysWorked)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("taken email is refused", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.emailExistsFn = func(ctx context.Context, email string) (bool, error) {
			assert.Equal(t, "ada@example.com", email)
			return true, nil
		}

		createCalled := false
		deps.repo.createFn = func(ctx context.Context, empl *employee.Employee) error {
			createCalled = true
			return nil
		}

		_, err := deps.service.Create(ctx, employee.CreateEmployeeRequest{
			Email:    "ada@example.com",
			FullName: "Ada Lovelace",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrEmailAlreadyTaken)
		assert.False(t, createCalled)
	})
}

func TestEmployeeService_Rename(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	t.Run("changes the name and keeps the email", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return &employee.Employee{ID: employeeID, Email: "ada@example.com", FullName: "Ada Lovelace"}, nil
		}

		var updated *employee.Employee
		deps.repo.updateFn = func(ctx context.Context, empl *employee.Employee) error {
			updated = empl
			return nil
		}

		resp, err := deps.service.Rename(ctx, employeeID.String(), employee.RenameEmployeeRequest{
			FullName: "Ada King",
		})

		assert.NoError(t, err)
		assert.Equal(t, "Ada King", updated.FullName)
		assert.Equal(t, "ada@example.com", updated.Email)
		assert.Equal(t, "Ada King", resp.FullName)
	})

	t.Run("unknown employee", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Rename(ctx, employeeID.String(), employee.RenameEmployeeRequest{
			FullName: "Ada King",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestEmployeeService_CounterSummary(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	t.Run("projects counters with their accrual period", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return &employee.Employee{ID: employeeID}, nil
		}
		deps.counters.findByEmployeeFn = func(ctx context.Context, eid string) ([]counter.AbsenceCounter, error) {
			return []counter.AbsenceCounter{
				{ID: uuid.New(), EmployeeID: employeeID, Type: absencetype.PaidLeave, DaysAvailable: 3, DaysWorked: 4},
				{ID: uuid.New(), EmployeeID: employeeID, Type: absencetype.RemoteWork, DaysAvailable: 1, DaysWorked: 2},
			}, nil
		}

		infos, err := deps.service.CounterSummary(ctx, employeeID.String())

		assert.NoError(t, err)
		assert.Len(t, infos, 2)
		assert.Equal(t, "Paid leave", infos[0].Counter)
		assert.Equal(t, 3, infos[0].DaysAvailable)
		assert.Equal(t, 10, infos[0].AccrualPeriod)
		assert.Equal(t, 5, infos[1].AccrualPeriod)
	})

	t.Run("unknown employee", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.CounterSummary(ctx, employeeID.String())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.CounterSummary(ctx, "nope")

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})
}

func TestEmployeeService_CounterSummaryCache(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	summary := []counter.CounterInfo{
		{Counter: "Paid leave", Type: "PAID_LEAVE", DaysAvailable: 3, DaysWorked: 4, AccrualPeriod: 10},
		{Counter: "Remote work", Type: "REMOTE_WORK", DaysAvailable: 1, DaysWorked: 2, AccrualPeriod: 5},
	}
	cacheKey := employee.GetCounterSummaryKey(employeeID.String())

	t.Run("cache hit skips the database", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		rdb, redisMock := redismock.NewClientMock()

		cached, err := json.Marshal(summary)
		assert.NoError(t, err)
		redisMock.ExpectGet(cacheKey).SetVal(string(cached))

		repo := &fakeEmployeeRepository{
			findByIDFn: func(ctx context.Context, id string) (*employee.Employee, error) {
				t.Fatal("repository must not be hit on a cache hit")
				return nil, nil
			},
		}
		counters := &fakeCounterRepository{}
		engine := counter.NewEngine(counter.DefaultPolicy(), &fakeAbsenceLookup{})
		svc := employee.NewService(db, repo, counters, engine, rdb)

		infos, err := svc.CounterSummary(ctx, employeeID.String())

		assert.NoError(t, err)
		assert.Equal(t, summary, infos)
		assert.NoError(t, redisMock.ExpectationsWereMet())
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("cache miss fills the cache", func(t *testing.T) {
		db, _, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		rdb, redisMock := redismock.NewClientMock()

		expected, err := json.Marshal(summary)
		assert.NoError(t, err)
		redisMock.ExpectGet(cacheKey).RedisNil()
		redisMock.ExpectSet(cacheKey, expected, 10*time.Minute).SetVal("OK")

		repo := &fakeEmployeeRepository{
			findByIDFn: func(ctx context.Context, id string) (*employee.Employee, error) {
				return &employee.Employee{ID: employeeID}, nil
			},
		}
		counters := &fakeCounterRepository{
			findByEmployeeFn: func(ctx context.Context, eid string) ([]counter.AbsenceCounter, error) {
				return []counter.AbsenceCounter{
					{ID: uuid.New(), EmployeeID: employeeID, Type: absencetype.PaidLeave, DaysAvailable: 3, DaysWorked: 4},
					{ID: uuid.New(), EmployeeID: employeeID, Type: absencetype.RemoteWork, DaysAvailable: 1, DaysWorked: 2},
				}, nil
			},
		}
		engine := counter.NewEngine(counter.DefaultPolicy(), &fakeAbsenceLookup{})
		svc := employee.NewService(db, repo, counters, engine, rdb)

		infos, err := svc.CounterSummary(ctx, employeeID.String())

		assert.NoError(t, err)
		assert.Equal(t, summary, infos)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})
}

func TestEmployeeService_AccrueWorkedDay(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	t.Run("worked day advances the ladder", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return &employee.Employee{ID: employeeID}, nil
		}
		deps.counters.findByEmployeeFn = func(ctx context.Context, eid string) ([]counter.AbsenceCounter, error) {
			return []counter.AbsenceCounter{
				{ID: uuid.New(), EmployeeID: employeeID, Type: absencetype.PaidLeave, DaysWorked: 9},
				{ID: uuid.New(), EmployeeID: employeeID, Type: absencetype.RemoteWork, DaysWorked: 1},
			}, nil
		}

		var saved []counter.AbsenceCounter
		deps.counters.saveAllFn = func(ctx context.Context, counters []counter.AbsenceCounter) error {
			saved = counters
			return nil
		}

		err := deps.service.AccrueWorkedDay(ctx, employeeID.String(), date)

		assert.NoError(t, err)
		for _, c := range saved {
			if c.Type == absencetype.PaidLeave {
				assert.Equal(t, 1, c.DaysAvailable)
				assert.Equal(t, 0, c.DaysWorked)
			}
			if c.Type == absencetype.RemoteWork {
				assert.Equal(t, 0, c.DaysAvailable)
				assert.Equal(t, 2, c.DaysWorked)
			}
		}
	})

	t.Run("absent day leaves counters alone", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return &employee.Employee{ID: employeeID}, nil
		}
		deps.counters.findByEmployeeFn = func(ctx context.Context, eid string) ([]counter.AbsenceCounter, error) {
			return []counter.AbsenceCounter{
				{ID: uuid.New(), EmployeeID: employeeID, Type: absencetype.PaidLeave, DaysWorked: 9},
				{ID: uuid.New(), EmployeeID: employeeID, Type: absencetype.RemoteWork, DaysWorked: 1},
			}, nil
		}
		deps.lookup.coversDateOfTypeFn = func(ctx context.Context, eid string, d time.Time, types []absencetype.Type) (bool, error) {
			assert.True(t, date.Equal(d))
			return true, nil
		}

		var saved []counter.AbsenceCounter
		deps.counters.saveAllFn = func(ctx context.Context, counters []counter.AbsenceCounter) error {
			saved = counters
			return nil
		}

		err := deps.service.AccrueWorkedDay(ctx, employeeID.String(), date)

		assert.NoError(t, err)
		for _, c := range saved {
			assert.Equal(t, 0, c.DaysAvailable)
		}
	})
}
