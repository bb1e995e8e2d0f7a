package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GenerationLog is an append-only audit row for one generation stage run.
type GenerationLog struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Kind         GenerationKind              `gorm:"type:text;not null;index:ix_generation_log_kind" json:"kind"`
	SessionID    *uuid.UUID                  `gorm:"type:uuid;index:ix_generation_log_session_id" json:"session_id"`
	RoundNumber  *int                        `json:"round_number"`
	Model        string                      `gorm:"type:text" json:"model"`
	ElapsedMS    int64                       `gorm:"not null" json:"elapsed_ms"`
	FallbackUsed bool                        `gorm:"not null;default:false;index:ix_generation_log_fallback" json:"fallback_used"`
	SafetyFlags  datatypes.JSONSlice[string] `swaggertype:"array,string" json:"safety_flags"`
	Reason       string                      `gorm:"type:text" json:"reason"`
	PayloadKey   string                      `gorm:"type:text" json:"payload_key"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (GenerationLog) TableName() string { return "generation_logs" }

func (l *GenerationLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
