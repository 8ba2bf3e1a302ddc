package ledger

import (
	"context"
	"time"

	"github.com/angelmondragon/bufferstock-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bufferstock-backend/pkg/errors"
	"github.com/angelmondragon/bufferstock-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Filter narrows a ledger query. Zero values mean "no constraint".
type Filter struct {
	PartCode string
	Start    time.Time
	End      time.Time
	Limit    int
	Cursor   *pagination.Cursor
}

// Repository appends and reads movement records. The ledger is append-only:
// there is deliberately no update or delete surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, movement *models.StockMovement) error
	Query(ctx context.Context, filter Filter) ([]models.StockMovement, error)
	SumDeltas(ctx context.Context, partCode string) (int, error)
	SumOutByPart(ctx context.Context, start, end time.Time) (map[string]int, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Append(ctx context.Context, movement *models.StockMovement) error {
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append movement")
	}
	return nil
}

func (r *repository) Query(ctx context.Context, filter Filter) ([]models.StockMovement, error) {
	q := r.db.WithContext(ctx).Model(&models.StockMovement{})
	if filter.PartCode != "" {
		q = q.Where("part_code = ?", filter.PartCode)
	}
	if !filter.Start.IsZero() {
		q = q.Where("recorded_at >= ?", filter.Start)
	}
	if !filter.End.IsZero() {
		q = q.Where("recorded_at < ?", filter.End)
	}
	if filter.Cursor != nil {
		q = q.Where(
			"recorded_at > ? OR (recorded_at = ? AND id > ?)",
			filter.Cursor.RecordedAt, filter.Cursor.RecordedAt, filter.Cursor.ID,
		)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var movements []models.StockMovement
	if err := q.Order("recorded_at ASC, id ASC").Find(&movements).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query movements")
	}
	return movements, nil
}

func (r *repository) SumDeltas(ctx context.Context, partCode string) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Where("part_code = ?", partCode).
		Select("COALESCE(SUM(in_qty - out_qty), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum movement deltas")
	}
	return int(total), nil
}

func (r *repository) SumOutByPart(ctx context.Context, start, end time.Time) (map[string]int, error) {
	type row struct {
		PartCode string
		Total    int64
	}
	var rows []row
	q := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Select("part_code, COALESCE(SUM(out_qty), 0) AS total").
		Group("part_code")
	if !start.IsZero() {
		q = q.Where("recorded_at >= ?", start)
	}
	if !end.IsZero() {
		q = q.Where("recorded_at < ?", end)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum consumption")
	}

	totals := make(map[string]int, len(rows))
	for _, r := range rows {
		if r.Total > 0 {
			totals[r.PartCode] = int(r.Total)
		}
	}
	return totals, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.StockMovement{}).Count(&count).Error; err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count movements")
	}
	return count, nil
}
