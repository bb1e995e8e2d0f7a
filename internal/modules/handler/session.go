package handler

import (
	"net/http"

	"github.com/emotionlab/server/internal/modules/serializer"
	"github.com/emotionlab/server/internal/modules/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SessionHandler struct {
	svc service.SessionService
}

func NewSessionHandler(s service.SessionService) *SessionHandler {
	return &SessionHandler{svc: s}
}

type CreateSessionReq struct {
	ChildID      string `json:"child_id" binding:"required,uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
	AgentEnabled bool   `json:"agent_enabled" example:"true"`
}

// CreateSession godoc
//
//	@Summary		Create session
//	@Description	Start a practice session of five rounds for a child. Story references are picked from the catalog, cycling target emotions.
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.CreateSessionReq	true	"CreateSession payload"
//	@Success		201		{object}	serializer.Response{data=model.Session}
//	@Failure		400		{object}	serializer.ErrResponse
//	@Failure		404		{object}	serializer.ErrResponse	"Child not found"
//	@Router			/sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	req := CreateSessionReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	ss, err := h.svc.Create(c.Request.Context(), service.CreateSessionInput{
		ChildID:      uuid.MustParse(req.ChildID),
		AgentEnabled: req.AgentEnabled,
	})
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.OK(ss))
}

// GetSession godoc
//
//	@Summary		Get session
//	@Description	Get a session with its rounds and the catalog stories it references. Round data is always read from the store.
//	@Tags			session
//	@Produce		json
//	@Param			session_id	path		string	true	"Session ID"	format(uuid)
//	@Success		200			{object}	serializer.Response{data=service.SessionDetail}
//	@Failure		404			{object}	serializer.ErrResponse
//	@Router			/sessions/{session_id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := parseUUIDParam(c, "session_id")
	if !ok {
		return
	}

	out, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, serializer.OK(out))
}
