package repo

import (
	"context"
	"errors"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrStoryNotFound  = errors.New("story not found")
	ErrScriptNotFound = errors.New("regulation script not found")
)

// CatalogRepo reads the static story and regulation script libraries.
type CatalogRepo interface {
	ListStories(ctx context.Context) ([]model.Story, error)
	GetStory(ctx context.Context, id uuid.UUID) (*model.Story, error)
	GetStoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Story, error)
	GetScript(ctx context.Context, id uuid.UUID) (*model.RegulationScript, error)
	FindScripts(ctx context.Context, emotion model.Emotion, intensity int) ([]model.RegulationScript, error)
	GenericScripts(ctx context.Context) ([]model.RegulationScript, error)
	CountStories(ctx context.Context) (int64, error)
	UpsertStories(ctx context.Context, stories []model.Story) error
	UpsertScripts(ctx context.Context, scripts []model.RegulationScript) error
}

type catalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepo(db *gorm.DB) CatalogRepo {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) ListStories(ctx context.Context) ([]model.Story, error) {
	var out []model.Story
	err := r.db.WithContext(ctx).Order("target_emotion ASC, complexity ASC, title ASC").Find(&out).Error
	return out, err
}

func (r *catalogRepo) GetStory(ctx context.Context, id uuid.UUID) (*model.Story, error) {
	var s model.Story
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *catalogRepo) GetStoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Story, error) {
	if len(ids) == 0 {
		return []model.Story{}, nil
	}
	var out []model.Story
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *catalogRepo) GetScript(ctx context.Context, id uuid.UUID) (*model.RegulationScript, error) {
	var s model.RegulationScript
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScriptNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *catalogRepo) FindScripts(ctx context.Context, emotion model.Emotion, intensity int) ([]model.RegulationScript, error) {
	var out []model.RegulationScript
	err := r.db.WithContext(ctx).
		Where("emotion = ? AND min_intensity <= ? AND max_intensity >= ?", emotion, intensity, intensity).
		Order("name ASC").
		Find(&out).Error
	return out, err
}

func (r *catalogRepo) GenericScripts(ctx context.Context) ([]model.RegulationScript, error) {
	var out []model.RegulationScript
	err := r.db.WithContext(ctx).Where("is_generic = ?", true).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *catalogRepo) CountStories(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Story{}).Count(&n).Error
	return n, err
}

func (r *catalogRepo) UpsertStories(ctx context.Context, stories []model.Story) error {
	if len(stories) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&stories).Error
}

// UpsertScripts inserts scripts whose name is not yet present.
func (r *catalogRepo) UpsertScripts(ctx context.Context, scripts []model.RegulationScript) error {
	if len(scripts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&scripts).Error
}
