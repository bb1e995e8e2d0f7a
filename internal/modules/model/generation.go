package model

import "github.com/google/uuid"

type GenerationKind string

const (
	KindAnalysis GenerationKind = "analysis"
	KindStory    GenerationKind = "story"
	KindScript   GenerationKind = "script"
	KindPraise   GenerationKind = "praise"
)

func (k GenerationKind) Valid() bool {
	switch k {
	case KindAnalysis, KindStory, KindScript, KindPraise:
		return true
	}
	return false
}

// Analysis is the Observer stage output for one completed round.
type Analysis struct {
	RoundNumber        int      `json:"round_number"`
	Summary            string   `json:"summary"`
	EmotionalPatterns  []string `json:"emotional_patterns"`
	Recommendations    []string `json:"recommendations"`
	SuggestedFocus     Emotion  `json:"suggested_focus,omitempty"`
	RecognitionCorrect *bool    `json:"recognition_correct,omitempty"`
}

type GeneratedStory struct {
	Title         string  `json:"title"`
	Text          string  `json:"text"`
	TargetEmotion Emotion `json:"target_emotion"`
	Complexity    int     `json:"complexity"`
}

type ScriptStep struct {
	Instruction     string `json:"instruction"`
	DurationSeconds int    `json:"duration_seconds"`
}

type GeneratedScript struct {
	Name  string       `json:"name"`
	Steps []ScriptStep `json:"steps"`
}

func (s GeneratedScript) TotalSeconds() int {
	total := 0
	for _, st := range s.Steps {
		total += st.DurationSeconds
	}
	return total
}

type Praise struct {
	Message string `json:"message"`
}

// AnalysisInput describes a finished round for the Observer stage.
type AnalysisInput struct {
	RoundNumber     int       `json:"round_number"`
	TargetEmotion   Emotion   `json:"target_emotion"`
	LabeledEmotion  Emotion   `json:"labeled_emotion"`
	IsCorrect       bool      `json:"is_correct"`
	PreIntensity    int       `json:"pre_intensity"`
	PostIntensity   int       `json:"post_intensity"`
	ScriptName      string    `json:"script_name"`
	ScriptCompleted bool      `json:"script_completed"`
	PriorAnalysis   *Analysis `json:"prior_analysis,omitempty"`
}

type StoryInput struct {
	ChildID       uuid.UUID `json:"child_id"`
	TargetEmotion Emotion   `json:"target_emotion"`
	Complexity    int       `json:"complexity"`
	AgeBand       string    `json:"age_band,omitempty"`
	Nickname      string    `json:"nickname,omitempty"`
	PriorAnalysis *Analysis `json:"prior_analysis,omitempty"`
}

type ScriptInput struct {
	Emotion       Emotion   `json:"emotion"`
	Intensity     int       `json:"intensity"`
	PriorAnalysis *Analysis `json:"prior_analysis,omitempty"`
}

type PraiseInput struct {
	Nickname       string    `json:"nickname"`
	Highlight      string    `json:"highlight"`
	LabeledEmotion Emotion   `json:"labeled_emotion"`
	IsCorrect      *bool     `json:"is_correct"`
	PreIntensity   int       `json:"pre_intensity"`
	PostIntensity  int       `json:"post_intensity"`
	PriorAnalysis  *Analysis `json:"prior_analysis,omitempty"`
}
