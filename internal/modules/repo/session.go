package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session already completed")
)

type SessionRepo interface {
	Create(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, id uuid.UUID) (*model.Session, error)
	GetWithRounds(ctx context.Context, id uuid.UUID) (*model.Session, error)
	// SetObserverContext writes cumulative_context[roundNumber-1] under a row lock.
	SetObserverContext(ctx context.Context, id uuid.UUID, roundNumber int, a *model.Analysis) error
}

type sessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) SessionRepo {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, s *model.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepo) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	var s model.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) GetWithRounds(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	var s model.Session
	err := r.db.WithContext(ctx).
		Preload("Rounds", func(db *gorm.DB) *gorm.DB { return db.Order("round_number ASC") }).
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) SetObserverContext(ctx context.Context, id uuid.UUID, roundNumber int, a *model.Analysis) error {
	if roundNumber < 1 {
		return fmt.Errorf("invalid round number %d", roundNumber)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s model.Session
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "cumulative_context").
			Where("id = ?", id).
			First(&s).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}

		next := s.CumulativeContext.Set(roundNumber-1, a)
		return tx.Model(&model.Session{ID: id}).
			Select("cumulative_context").
			Updates(&model.Session{CumulativeContext: next}).Error
	})
}
