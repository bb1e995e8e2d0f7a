package handler

import (
	"errors"
	"net/http"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/serializer"
	"github.com/emotionlab/server/internal/modules/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GenerationHandler struct {
	svc service.GenerationService
}

func NewGenerationHandler(s service.GenerationService) *GenerationHandler {
	return &GenerationHandler{svc: s}
}

// TargetReq ties a generation request to a stored round. Both fields are optional; when
// session_id is set the result is merged into that round.
type TargetReq struct {
	SessionID   string `json:"session_id" binding:"omitempty,uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
	RoundNumber int    `json:"round_number" binding:"omitempty,min=1" example:"3"`
}

func (t TargetReq) target() (*service.Target, error) {
	if t.SessionID == "" {
		return nil, nil
	}
	if t.RoundNumber == 0 {
		return nil, errors.New("round_number is required with session_id")
	}
	return &service.Target{SessionID: uuid.MustParse(t.SessionID), RoundNumber: t.RoundNumber}, nil
}

type AnalysisReq struct {
	SessionID       string        `json:"session_id" binding:"omitempty,uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
	RoundNumber     int           `json:"round_number" binding:"required,min=1" example:"2"`
	TargetEmotion   model.Emotion `json:"target_emotion" binding:"required,emotion" swaggertype:"string" example:"angry"`
	LabeledEmotion  model.Emotion `json:"labeled_emotion" binding:"required,emotion" swaggertype:"string" example:"sad"`
	IsCorrect       *bool         `json:"is_correct" example:"false"`
	PreIntensity    int           `json:"pre_intensity" binding:"required,intensity" example:"4"`
	PostIntensity   int           `json:"post_intensity" binding:"required,intensity" example:"2"`
	ScriptName      string        `json:"script_name" binding:"max=200" example:"Dragon Breath"`
	ScriptCompleted bool          `json:"script_completed" example:"true"`
}

type StoryReq struct {
	TargetReq
	ChildID       string        `json:"child_id" binding:"required,uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
	TargetEmotion model.Emotion `json:"target_emotion" binding:"required,emotion" swaggertype:"string" example:"scared"`
	Complexity    int           `json:"complexity" binding:"omitempty,min=1,max=5" example:"2"`
	Nickname      string        `json:"nickname" binding:"max=50" example:"Mia"`
}

type ScriptReq struct {
	TargetReq
	Emotion   model.Emotion `json:"emotion" binding:"required,emotion" swaggertype:"string" example:"angry"`
	Intensity int           `json:"intensity" binding:"required,intensity" example:"4"`
}

type PraiseReq struct {
	TargetReq
	Nickname       string        `json:"nickname" binding:"max=50" example:"Mia"`
	Highlight      string        `json:"highlight" binding:"max=200" example:"You named your feeling"`
	LabeledEmotion model.Emotion `json:"labeled_emotion" binding:"omitempty,emotion" swaggertype:"string" example:"angry"`
	IsCorrect      *bool         `json:"is_correct" example:"true"`
	PreIntensity   int           `json:"pre_intensity" binding:"omitempty,intensity" example:"4"`
	PostIntensity  int           `json:"post_intensity" binding:"omitempty,intensity" example:"2"`
}

// Analysis godoc
//
//	@Summary		Generate round analysis
//	@Description	Run the Observer stage for a finished round. With session_id the analysis is stored as context for later rounds. Timeouts and safety rejections return 200 with fallback_used=true.
//	@Tags			generate
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.AnalysisReq	true	"Analysis payload"
//	@Success		200		{object}	serializer.AnalysisResponse
//	@Failure		400		{object}	serializer.ErrResponse
//	@Failure		404		{object}	serializer.ErrResponse
//	@Router			/generate/analysis [post]
func (h *GenerationHandler) Analysis(c *gin.Context) {
	req := AnalysisReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	target, _ := TargetReq{SessionID: req.SessionID, RoundNumber: req.RoundNumber}.target()

	correct := req.LabeledEmotion == req.TargetEmotion
	if req.IsCorrect != nil {
		correct = *req.IsCorrect
	}
	out, err := h.svc.Analyze(c.Request.Context(), service.AnalysisRequest{
		AnalysisInput: model.AnalysisInput{
			RoundNumber:     req.RoundNumber,
			TargetEmotion:   req.TargetEmotion,
			LabeledEmotion:  req.LabeledEmotion,
			IsCorrect:       correct,
			PreIntensity:    req.PreIntensity,
			PostIntensity:   req.PostIntensity,
			ScriptName:      req.ScriptName,
			ScriptCompleted: req.ScriptCompleted,
		},
		Target: target,
	})
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Analysis(out))
}

// Story godoc
//
//	@Summary		Generate story
//	@Description	Generate a short story portraying the target emotion, personalized from the child profile. Timeouts and safety rejections return 200 with a static story and fallback_used=true.
//	@Tags			generate
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.StoryReq	true	"Story payload"
//	@Success		200		{object}	serializer.StoryResponse
//	@Failure		400		{object}	serializer.ErrResponse
//	@Failure		404		{object}	serializer.ErrResponse	"Child or session not found"
//	@Router			/generate/story [post]
func (h *GenerationHandler) Story(c *gin.Context) {
	req := StoryReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	target, err := req.target()
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if req.Complexity == 0 {
		req.Complexity = 2
	}

	out, err := h.svc.Story(c.Request.Context(), service.StoryRequest{
		StoryInput: model.StoryInput{
			ChildID:       uuid.MustParse(req.ChildID),
			TargetEmotion: req.TargetEmotion,
			Complexity:    req.Complexity,
			Nickname:      req.Nickname,
		},
		Target: target,
	})
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Story(out))
}

// Script godoc
//
//	@Summary		Generate regulation script
//	@Description	Generate a step-by-step regulation script for an emotion and intensity. Timeouts and safety rejections return 200 with a static script and fallback_used=true.
//	@Tags			generate
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.ScriptReq	true	"Script payload"
//	@Success		200		{object}	serializer.ScriptResponse
//	@Failure		400		{object}	serializer.ErrResponse
//	@Failure		404		{object}	serializer.ErrResponse
//	@Router			/generate/script [post]
func (h *GenerationHandler) Script(c *gin.Context) {
	req := ScriptReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	target, err := req.target()
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Script(c.Request.Context(), service.ScriptRequest{
		ScriptInput: model.ScriptInput{Emotion: req.Emotion, Intensity: req.Intensity},
		Target:      target,
	})
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Script(out))
}

// Praise godoc
//
//	@Summary		Generate praise
//	@Description	Generate an end-of-round praise message. With session_id it is stored on the round even after the session closed. Timeouts and safety rejections return 200 with a canned message and fallback_used=true.
//	@Tags			generate
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.PraiseReq	true	"Praise payload"
//	@Success		200		{object}	serializer.PraiseResponse
//	@Failure		400		{object}	serializer.ErrResponse
//	@Failure		404		{object}	serializer.ErrResponse
//	@Router			/generate/praise [post]
func (h *GenerationHandler) Praise(c *gin.Context) {
	req := PraiseReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	target, err := req.target()
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Praise(c.Request.Context(), service.PraiseRequest{
		PraiseInput: model.PraiseInput{
			Nickname:       req.Nickname,
			Highlight:      req.Highlight,
			LabeledEmotion: req.LabeledEmotion,
			IsCorrect:      req.IsCorrect,
			PreIntensity:   req.PreIntensity,
			PostIntensity:  req.PostIntensity,
		},
		Target: target,
	})
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Praise(out))
}
