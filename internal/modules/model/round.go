package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Round struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_round_session_id_number,priority:1" json:"session_id"`
	RoundNumber int       `gorm:"not null;uniqueIndex:uq_round_session_id_number,priority:2;check:round_number >= 1" json:"round_number"`

	StoryID        *uuid.UUID      `gorm:"type:uuid" json:"story_id"`
	GeneratedStory *GeneratedStory `gorm:"type:jsonb;serializer:json" json:"generated_story"`

	LabeledEmotion     *Emotion   `gorm:"type:text" json:"labeled_emotion"`
	IsCorrect          *bool      `json:"is_correct"`
	PreIntensity       *int       `json:"pre_intensity"`
	PostIntensity      *int       `json:"post_intensity"`
	RegulationScriptID *uuid.UUID `gorm:"type:uuid" json:"regulation_script_id"`
	PraiseMessage      *string    `gorm:"type:text" json:"praise_message"`

	GenerationMetadata GenerationMetadata `gorm:"type:jsonb;serializer:json" swaggertype:"object" json:"generation_metadata"`

	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Round <-> Session
	Session *Session `gorm:"foreignKey:SessionID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Round) TableName() string { return "rounds" }

func (r *Round) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}
	return nil
}

// ReadyToComplete reports whether the round carries everything completion requires.
func (r *Round) ReadyToComplete() bool {
	return r.LabeledEmotion != nil && r.PreIntensity != nil && r.PostIntensity != nil
}

// StageMetadata describes one generation stage run for a round.
type StageMetadata struct {
	Model        string    `json:"model"`
	ElapsedMS    int64     `json:"elapsed_ms"`
	SafetyFlags  []string  `json:"safety_flags"`
	FallbackUsed bool      `json:"fallback_used"`
	Reason       string    `json:"reason,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// GenerationMetadata is keyed by GenerationKind.
type GenerationMetadata map[GenerationKind]StageMetadata

// With returns a copy of m with kind set to meta.
func (m GenerationMetadata) With(kind GenerationKind, meta StageMetadata) GenerationMetadata {
	out := make(GenerationMetadata, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[kind] = meta
	return out
}
