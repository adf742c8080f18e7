package counter

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=counter_repo.go -destination=mock/counter_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreateAll(ctx context.Context, counters []AbsenceCounter) error
	FindByEmployee(ctx context.Context, employeeID string) ([]AbsenceCounter, error)
	SaveAll(ctx context.Context, counters []AbsenceCounter) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx rebinds every query onto the caller's transaction so that
// rolling back the tx also rolls back this repository's writes.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	db := r.db.Session(&gorm.Session{NewDB: true, Context: r.db.Statement.Context})
	db.Statement.ConnPool = tx
	return &repository{db: db}
}

func (r *repository) CreateAll(ctx context.Context, counters []AbsenceCounter) error {
	if len(counters) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&counters).Error
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]AbsenceCounter, error) {
	var counters []AbsenceCounter
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("type ASC").
		Find(&counters).Error
	return counters, err
}

func (r *repository) SaveAll(ctx context.Context, counters []AbsenceCounter) error {
	for i := range counters {
		if err := r.db.WithContext(ctx).Save(&counters[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
