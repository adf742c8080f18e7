package absence

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"go-absences/internal/absencetype"
)

//go:generate mockgen -source=absence_repo.go -destination=mock/absence_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Absence) error
	Update(ctx context.Context, a *Absence) error
	Remove(ctx context.Context, a *Absence) error
	FindByIDAndEmployee(ctx context.Context, employeeID, id string) (*Absence, error)
	ListInRange(ctx context.Context, employeeID string, from, to time.Time) ([]Absence, error)
	HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error)
	CoversDateOfType(ctx context.Context, employeeID string, date time.Time, types []absencetype.Type) (bool, error)
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

func (r *repository) Create(ctx context.Context, a *Absence) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) Update(ctx context.Context, a *Absence) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *repository) Remove(ctx context.Context, a *Absence) error {
	return r.db.WithContext(ctx).Delete(a).Error
}

func (r *repository) FindByIDAndEmployee(ctx context.Context, employeeID, id string) (*Absence, error) {
	var a Absence
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) ListInRange(ctx context.Context, employeeID string, from, to time.Time) ([]Absence, error) {
	var absences []Absence
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("start_date <= ?", to).
		Where("end_date >= ?", from).
		Order("start_date ASC").
		Find(&absences).Error
	return absences, err
}

func (r *repository) HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&Absence{}).
		Where("employee_id = ?", employeeID).
		Where("start_date <= ?", endDate).
		Where("end_date >= ?", startDate)

	if excludeID != nil && *excludeID != "" {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *repository) CoversDateOfType(ctx context.Context, employeeID string, date time.Time, types []absencetype.Type) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Absence{}).
		Where("employee_id = ?", employeeID).
		Where("start_date <= ?", date).
		Where("end_date >= ?", date).
		Where("type IN ?", types).
		Count(&count).Error
	return count > 0, err
}
