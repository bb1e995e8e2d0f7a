package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Story struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string    `gorm:"type:text;not null" json:"title"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	TargetEmotion Emotion   `gorm:"type:text;not null;index:ix_story_target_emotion" json:"target_emotion"`
	Complexity    int       `gorm:"not null;default:1" json:"complexity"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Story) TableName() string { return "stories" }

func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type RegulationScript struct {
	ID           uuid.UUID                       `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string                          `gorm:"type:text;not null;uniqueIndex:uq_script_name" json:"name"`
	Emotion      *Emotion                        `gorm:"type:text;index:ix_script_emotion" json:"emotion"`
	MinIntensity int                             `gorm:"not null;default:1" json:"min_intensity"`
	MaxIntensity int                             `gorm:"not null;default:5" json:"max_intensity"`
	IsGeneric    bool                            `gorm:"not null;default:false;index:ix_script_generic" json:"is_generic"`
	Steps        datatypes.JSONSlice[ScriptStep] `gorm:"not null" swaggertype:"array,object" json:"steps"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (RegulationScript) TableName() string { return "regulation_scripts" }

func (s *RegulationScript) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
