package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultTotalRounds = 5

type Session struct {
	ID                uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	ChildID           uuid.UUID                      `gorm:"type:uuid;not null;index:ix_session_child_id" json:"child_id"`
	StoryIDs          datatypes.JSONSlice[uuid.UUID] `gorm:"not null" swaggertype:"array,string" json:"story_ids"`
	TotalRounds       int                            `gorm:"not null;default:5;check:total_rounds > 0" json:"total_rounds"`
	CompletedRounds   int                            `gorm:"not null;default:0;check:completed_rounds >= 0" json:"completed_rounds"`
	AgentEnabled      bool                           `gorm:"not null;default:false" json:"agent_enabled"`
	CumulativeContext ObserverContext                `gorm:"type:jsonb;serializer:json" swaggertype:"array,object" json:"cumulative_context"`

	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Session <-> Round
	Rounds []Round `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"rounds,omitempty"`
}

func (Session) TableName() string { return "sessions" }

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now().UTC()
	}
	if s.TotalRounds == 0 {
		s.TotalRounds = DefaultTotalRounds
	}
	if s.StoryIDs == nil {
		s.StoryIDs = datatypes.JSONSlice[uuid.UUID]{}
	}
	return nil
}

func (s *Session) IsCompleted() bool {
	return s.CompletedAt != nil
}

// StoryIDFor returns the story assigned to roundNumber (1-based), if any.
func (s *Session) StoryIDFor(roundNumber int) (uuid.UUID, bool) {
	if roundNumber < 1 || roundNumber > len(s.StoryIDs) {
		return uuid.Nil, false
	}
	return s.StoryIDs[roundNumber-1], true
}
