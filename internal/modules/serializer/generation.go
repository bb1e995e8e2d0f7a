package serializer

import (
	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/service"
	"github.com/emotionlab/server/internal/pkg/safety"
)

// Generation responses share one shape: the kind payload under its own key plus the
// fallback flag, safety result and stage metadata. Generated and static content are
// indistinguishable apart from fallback_used.

type AnalysisResponse struct {
	Success      bool                `json:"success"`
	Analysis     model.Analysis      `json:"analysis"`
	FallbackUsed bool                `json:"fallback_used"`
	SafetyResult safety.Result       `json:"safety_result"`
	Metadata     model.StageMetadata `json:"metadata"`
}

type StoryResponse struct {
	Success      bool                 `json:"success"`
	Story        model.GeneratedStory `json:"story"`
	FallbackUsed bool                 `json:"fallback_used"`
	SafetyResult safety.Result        `json:"safety_result"`
	Metadata     model.StageMetadata  `json:"metadata"`
}

type ScriptResponse struct {
	Success      bool                  `json:"success"`
	Script       model.GeneratedScript `json:"script"`
	FallbackUsed bool                  `json:"fallback_used"`
	SafetyResult safety.Result         `json:"safety_result"`
	Metadata     model.StageMetadata   `json:"metadata"`
}

type PraiseResponse struct {
	Success      bool                `json:"success"`
	Praise       model.Praise        `json:"praise"`
	FallbackUsed bool                `json:"fallback_used"`
	SafetyResult safety.Result       `json:"safety_result"`
	Metadata     model.StageMetadata `json:"metadata"`
}

func Analysis(o *service.Outcome[model.Analysis]) AnalysisResponse {
	return AnalysisResponse{Success: true, Analysis: o.Content, FallbackUsed: o.FallbackUsed, SafetyResult: o.Safety, Metadata: o.Metadata}
}

func Story(o *service.Outcome[model.GeneratedStory]) StoryResponse {
	return StoryResponse{Success: true, Story: o.Content, FallbackUsed: o.FallbackUsed, SafetyResult: o.Safety, Metadata: o.Metadata}
}

func Script(o *service.Outcome[model.GeneratedScript]) ScriptResponse {
	return ScriptResponse{Success: true, Script: o.Content, FallbackUsed: o.FallbackUsed, SafetyResult: o.Safety, Metadata: o.Metadata}
}

func Praise(o *service.Outcome[model.Praise]) PraiseResponse {
	return PraiseResponse{Success: true, Praise: o.Content, FallbackUsed: o.FallbackUsed, SafetyResult: o.Safety, Metadata: o.Metadata}
}
