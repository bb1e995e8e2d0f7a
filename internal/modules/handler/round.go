package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/serializer"
	"github.com/emotionlab/server/internal/modules/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RoundHandler struct {
	svc service.RoundService
}

func NewRoundHandler(s service.RoundService) *RoundHandler {
	return &RoundHandler{svc: s}
}

type CreateRoundReq struct {
	RoundNumber int `json:"round_number" binding:"required,min=1" example:"1"`
}

type UpdateRoundReq struct {
	LabeledEmotion     *model.Emotion `json:"labeled_emotion" binding:"omitempty,emotion" swaggertype:"string" example:"angry"`
	PreIntensity       *int           `json:"pre_intensity" binding:"omitempty,intensity" example:"4"`
	PostIntensity      *int           `json:"post_intensity" binding:"omitempty,intensity" example:"2"`
	RegulationScriptID *string        `json:"regulation_script_id" binding:"omitempty,uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
}

func (r UpdateRoundReq) empty() bool {
	return r.LabeledEmotion == nil && r.PreIntensity == nil && r.PostIntensity == nil && r.RegulationScriptID == nil
}

type UpdateRoundResp struct {
	Round            *model.Round `json:"round"`
	Completed        bool         `json:"completed"`
	SessionCompleted bool         `json:"session_completed"`
}

func parseRoundNumber(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("round_number"))
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid round_number", err))
		return 0, false
	}
	return n, true
}

// CreateRound godoc
//
//	@Summary		Create round
//	@Description	Idempotently create a round. Returns 201 when this request created it and 200 when it already existed, including when a concurrent request won the race.
//	@Tags			round
//	@Accept			json
//	@Produce		json
//	@Param			session_id	path		string					true	"Session ID"	format(uuid)
//	@Param			payload		body		handler.CreateRoundReq	true	"CreateRound payload"
//	@Success		201			{object}	serializer.Response{data=model.Round}
//	@Success		200			{object}	serializer.Response{data=model.Round}
//	@Failure		400			{object}	serializer.ErrResponse
//	@Failure		404			{object}	serializer.ErrResponse
//	@Router			/sessions/{session_id}/rounds [post]
func (h *RoundHandler) CreateRound(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "session_id")
	if !ok {
		return
	}
	req := CreateRoundReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	round, created, err := h.svc.Create(c.Request.Context(), sessionID, req.RoundNumber)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, serializer.OK(round))
}

// PrepareRound godoc
//
//	@Summary		Prepare round
//	@Description	Create the round if needed and, for agent-enabled sessions, start story generation in the background. Poll readiness for the result.
//	@Tags			round
//	@Produce		json
//	@Param			session_id		path		string	true	"Session ID"	format(uuid)
//	@Param			round_number	path		integer	true	"Round number"
//	@Success		202				{object}	serializer.Response{data=model.Round}
//	@Failure		400				{object}	serializer.ErrResponse
//	@Failure		404				{object}	serializer.ErrResponse
//	@Router			/sessions/{session_id}/rounds/{round_number}/prepare [post]
func (h *RoundHandler) PrepareRound(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "session_id")
	if !ok {
		return
	}
	n, ok := parseRoundNumber(c)
	if !ok {
		return
	}

	round, _, err := h.svc.Prepare(c.Request.Context(), sessionID, n)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}

	c.JSON(http.StatusAccepted, serializer.OK(round))
}

// UpdateRound godoc
//
//	@Summary		Update round
//	@Description	Record the child's answers for a round in one atomic update. The round completes once a labeled emotion and both intensities are present; is_correct is derived server-side.
//	@Tags			round
//	@Accept			json
//	@Produce		json
//	@Param			session_id	path		string					true	"Session ID"	format(uuid)
//	@Param			round_id	path		string					true	"Round ID"		format(uuid)
//	@Param			payload		body		handler.UpdateRoundReq	true	"UpdateRound payload"
//	@Success		200			{object}	serializer.Response{data=handler.UpdateRoundResp}
//	@Failure		400			{object}	serializer.ErrResponse	"validation_error or session_completed"
//	@Failure		404			{object}	serializer.ErrResponse
//	@Router			/sessions/{session_id}/rounds/{round_id} [patch]
func (h *RoundHandler) UpdateRound(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "session_id")
	if !ok {
		return
	}
	roundID, ok := parseUUIDParam(c, "round_id")
	if !ok {
		return
	}
	req := UpdateRoundReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if req.empty() {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", errors.New("no fields to update")))
		return
	}

	in := service.UpdateRoundInput{
		LabeledEmotion: req.LabeledEmotion,
		PreIntensity:   req.PreIntensity,
		PostIntensity:  req.PostIntensity,
	}
	if req.RegulationScriptID != nil {
		id := uuid.MustParse(*req.RegulationScriptID)
		in.RegulationScriptID = &id
	}

	res, err := h.svc.Update(c.Request.Context(), sessionID, roundID, in)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.OK(UpdateRoundResp{
		Round:            res.Round,
		Completed:        res.Completed,
		SessionCompleted: res.SessionCompleted,
	}))
}

// GetReadiness godoc
//
//	@Summary		Get round readiness
//	@Description	Report whether a round's content can be presented. Rate limited per round; clients should back off on 429.
//	@Tags			round
//	@Produce		json
//	@Param			session_id		path		string	true	"Session ID"	format(uuid)
//	@Param			round_number	path		integer	true	"Round number"
//	@Success		200				{object}	serializer.Response{data=service.Readiness}
//	@Failure		404				{object}	serializer.ErrResponse
//	@Failure		429				{object}	serializer.ErrResponse
//	@Router			/sessions/{session_id}/rounds/{round_number}/readiness [get]
func (h *RoundHandler) GetReadiness(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "session_id")
	if !ok {
		return
	}
	n, ok := parseRoundNumber(c)
	if !ok {
		return
	}

	out, err := h.svc.Readiness(c.Request.Context(), sessionID, n)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, serializer.OK(out))
}
