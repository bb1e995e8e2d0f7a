package repo

import (
	"context"

	"github.com/emotionlab/server/internal/modules/model"
	"gorm.io/gorm"
)

type GenerationLogRepo interface {
	Create(ctx context.Context, l *model.GenerationLog) error
	// FallbackRate returns the share of runs of kind that served static content.
	FallbackRate(ctx context.Context, kind model.GenerationKind) (float64, int64, error)
}

type generationLogRepo struct {
	db *gorm.DB
}

func NewGenerationLogRepo(db *gorm.DB) GenerationLogRepo {
	return &generationLogRepo{db: db}
}

func (r *generationLogRepo) Create(ctx context.Context, l *model.GenerationLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *generationLogRepo) FallbackRate(ctx context.Context, kind model.GenerationKind) (float64, int64, error) {
	var row struct {
		Total     int64
		Fallbacks int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.GenerationLog{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN fallback_used THEN 1 ELSE 0 END), 0) AS fallbacks").
		Where("kind = ?", kind).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	if row.Total == 0 {
		return 0, 0, nil
	}
	return float64(row.Fallbacks) / float64(row.Total), row.Total, nil
}
