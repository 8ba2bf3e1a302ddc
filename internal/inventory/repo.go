package inventory

import (
	"context"
	"errors"

	"github.com/angelmondragon/bufferstock-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bufferstock-backend/pkg/errors"
	"gorm.io/gorm"
)

// Repository manages persistence for the parts catalog. Quantity writes are
// raw; invariant enforcement lives in the stock coordinator.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, part *models.Part) error
	GetByCode(ctx context.Context, partCode string) (*models.Part, error)
	List(ctx context.Context) ([]models.Part, error)
	ListBelow(ctx context.Context, threshold int) ([]models.Part, error)
	SetQuantity(ctx context.Context, partCode string, quantity int) error
	SetQuantityGuarded(ctx context.Context, partCode string, previous, next int) error
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a parts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, part *models.Part) error {
	return r.db.WithContext(ctx).Create(part).Error
}

func (r *repository) GetByCode(ctx context.Context, partCode string) (*models.Part, error) {
	var part models.Part
	err := r.db.WithContext(ctx).First(&part, "part_code = ?", partCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "part not found").
				WithDetails(map[string]any{"part_code": partCode})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load part")
	}
	return &part, nil
}

func (r *repository) List(ctx context.Context) ([]models.Part, error) {
	var parts []models.Part
	if err := r.db.WithContext(ctx).Order("part_code ASC").Find(&parts).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list parts")
	}
	return parts, nil
}

func (r *repository) ListBelow(ctx context.Context, threshold int) ([]models.Part, error) {
	var parts []models.Part
	if err := r.db.WithContext(ctx).
		Where("quantity < ?", threshold).
		Order("part_code ASC").
		Find(&parts).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock parts")
	}
	return parts, nil
}

func (r *repository) SetQuantity(ctx context.Context, partCode string, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Part{}).
		Where("part_code = ?", partCode).
		Update("quantity", quantity)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update part quantity")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "part not found").
			WithDetails(map[string]any{"part_code": partCode})
	}
	return nil
}

// SetQuantityGuarded updates the quantity only when the stored value still
// matches previous, so a competing writer outside the per-part lock (another
// instance) cannot silently overwrite the balance.
func (r *repository) SetQuantityGuarded(ctx context.Context, partCode string, previous, next int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Part{}).
		Where("part_code = ? AND quantity = ?", partCode, previous).
		Update("quantity", next)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update part quantity")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "part quantity changed concurrently").
			WithDetails(map[string]any{"part_code": partCode, "expected": previous})
	}
	return nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Part{}).Count(&count).Error; err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count parts")
	}
	return count, nil
}
