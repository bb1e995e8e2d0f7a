package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emotionlab/server/internal/infra/db"
	"github.com/emotionlab/server/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrRoundNotFound = errors.New("round not found")

// RoundPatch is a partial round update; nil fields are left unchanged.
type RoundPatch struct {
	LabeledEmotion     *model.Emotion
	IsCorrect          *bool
	PreIntensity       *int
	PostIntensity      *int
	RegulationScriptID *uuid.UUID
}

func (p RoundPatch) apply(r *model.Round) {
	if p.LabeledEmotion != nil {
		r.LabeledEmotion = p.LabeledEmotion
	}
	if p.IsCorrect != nil {
		r.IsCorrect = p.IsCorrect
	}
	if p.PreIntensity != nil {
		r.PreIntensity = p.PreIntensity
	}
	if p.PostIntensity != nil {
		r.PostIntensity = p.PostIntensity
	}
	if p.RegulationScriptID != nil {
		r.RegulationScriptID = p.RegulationScriptID
	}
}

// storedIn reports whether every field set in p already holds that value in r.
func (p RoundPatch) storedIn(r *model.Round) bool {
	return sameValue(p.LabeledEmotion, r.LabeledEmotion) &&
		sameValue(p.IsCorrect, r.IsCorrect) &&
		sameValue(p.PreIntensity, r.PreIntensity) &&
		sameValue(p.PostIntensity, r.PostIntensity) &&
		sameValue(p.RegulationScriptID, r.RegulationScriptID)
}

func sameValue[T comparable](patch, stored *T) bool {
	if patch == nil {
		return true
	}
	return stored != nil && *patch == *stored
}

// StageResult is a generation stage outcome merged into a round.
type StageResult struct {
	Kind           model.GenerationKind
	Metadata       model.StageMetadata
	GeneratedStory *model.GeneratedStory
	PraiseMessage  *string
}

type RoundUpdateResult struct {
	Round *model.Round
	// Completed is true when this update closed the round.
	Completed bool
	// SessionCompleted is true when this update closed the session.
	SessionCompleted bool
	Session          *model.Session
}

type RoundRepo interface {
	// Create inserts r unless (session_id, round_number) exists. created is false when
	// the row already existed or a concurrent insert won the race.
	Create(ctx context.Context, r *model.Round) (round *model.Round, created bool, err error)
	Get(ctx context.Context, id uuid.UUID) (*model.Round, error)
	GetByNumber(ctx context.Context, sessionID uuid.UUID, roundNumber int) (*model.Round, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Round, error)
	// Update merges patch in one transaction and rejects rounds of completed sessions.
	// Replaying a patch already stored on a completed round succeeds without changes.
	Update(ctx context.Context, id uuid.UUID, patch RoundPatch) (*RoundUpdateResult, error)
	// MergeStageResult records a generation outcome on an existing round. It does not
	// check the session state: praise lands after the last round closed its session.
	MergeStageResult(ctx context.Context, sessionID uuid.UUID, roundNumber int, res StageResult) error
}

type roundRepo struct {
	db *gorm.DB
}

func NewRoundRepo(db *gorm.DB) RoundRepo {
	return &roundRepo{db: db}
}

func (r *roundRepo) Create(ctx context.Context, in *model.Round) (*model.Round, bool, error) {
	existing, err := r.GetByNumber(ctx, in.SessionID, in.RoundNumber)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrRoundNotFound) {
		return nil, false, err
	}

	if err := r.db.WithContext(ctx).Create(in).Error; err != nil {
		if !db.IsUniqueViolation(err) {
			return nil, false, err
		}
		// lost the insert race; the winner's row is the result
		winner, rerr := r.GetByNumber(ctx, in.SessionID, in.RoundNumber)
		if rerr != nil {
			return nil, false, fmt.Errorf("re-read after unique violation: %w", rerr)
		}
		return winner, false, nil
	}
	return in, true, nil
}

func (r *roundRepo) Get(ctx context.Context, id uuid.UUID) (*model.Round, error) {
	var out model.Round
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *roundRepo) GetByNumber(ctx context.Context, sessionID uuid.UUID, roundNumber int) (*model.Round, error) {
	var out model.Round
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND round_number = ?", sessionID, roundNumber).
		First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *roundRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Round, error) {
	var out []model.Round
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("round_number ASC").
		Find(&out).Error
	return out, err
}

func (r *roundRepo) Update(ctx context.Context, id uuid.UUID, patch RoundPatch) (*RoundUpdateResult, error) {
	res := &RoundUpdateResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var round model.Round
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&round).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoundNotFound
			}
			return err
		}

		var session model.Session
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", round.SessionID).First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		// a resent update whose response was lost
		if round.CompletedAt != nil && patch.storedIn(&round) {
			res.Round = &round
			res.Session = &session
			return nil
		}
		if session.IsCompleted() || session.CompletedRounds >= session.TotalRounds {
			return ErrSessionClosed
		}

		patch.apply(&round)
		now := time.Now().UTC()
		if round.CompletedAt == nil && round.ReadyToComplete() {
			round.CompletedAt = &now
			res.Completed = true
		}

		if err := tx.Model(&round).Select(
			"labeled_emotion", "is_correct", "pre_intensity", "post_intensity",
			"regulation_script_id", "completed_at", "updated_at",
		).Updates(&round).Error; err != nil {
			return fmt.Errorf("update round: %w", err)
		}

		if res.Completed {
			session.CompletedRounds++
			cols := []string{"completed_rounds", "updated_at"}
			if session.CompletedRounds >= session.TotalRounds {
				session.CompletedAt = &now
				res.SessionCompleted = true
				cols = append(cols, "completed_at")
			}
			if err := tx.Model(&session).Select(cols).Updates(&session).Error; err != nil {
				return fmt.Errorf("update session progress: %w", err)
			}
		}

		res.Round = &round
		res.Session = &session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *roundRepo) MergeStageResult(ctx context.Context, sessionID uuid.UUID, roundNumber int, res StageResult) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var round model.Round
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_id = ? AND round_number = ?", sessionID, roundNumber).
			First(&round).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoundNotFound
			}
			return err
		}

		round.GenerationMetadata = round.GenerationMetadata.With(res.Kind, res.Metadata)
		cols := []string{"generation_metadata", "updated_at"}
		if res.GeneratedStory != nil {
			round.GeneratedStory = res.GeneratedStory
			cols = append(cols, "generated_story")
		}
		if res.PraiseMessage != nil {
			round.PraiseMessage = res.PraiseMessage
			cols = append(cols, "praise_message")
		}
		return tx.Model(&round).Select(cols).Updates(&round).Error
	})
}
