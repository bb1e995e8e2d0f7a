package handler

import (
	"net/http"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/serializer"
	"github.com/emotionlab/server/internal/modules/service"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	svc service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: s}
}

type ListScriptsReq struct {
	Emotion   model.Emotion `form:"emotion" json:"emotion" binding:"required,emotion" swaggertype:"string" example:"angry"`
	Intensity int           `form:"intensity" json:"intensity" binding:"required,intensity" example:"4"`
}

// ListStories godoc
//
//	@Summary		List stories
//	@Description	List the static story catalog
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{object}	serializer.Response{data=[]model.Story}
//	@Router			/catalog/stories [get]
func (h *CatalogHandler) ListStories(c *gin.Context) {
	stories, err := h.svc.Stories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.OK(stories))
}

// ListScripts godoc
//
//	@Summary		List regulation scripts
//	@Description	List regulation scripts for an emotion and intensity. Falls back to the generic set when nothing matches.
//	@Tags			catalog
//	@Produce		json
//	@Param			emotion		query		string	true	"Emotion"	Enums(happy, sad, angry, scared, surprised, disgusted, calm)
//	@Param			intensity	query		integer	true	"Intensity 1-5"
//	@Success		200			{object}	serializer.Response{data=service.ScriptSelection}
//	@Failure		400			{object}	serializer.ErrResponse
//	@Router			/catalog/scripts [get]
func (h *CatalogHandler) ListScripts(c *gin.Context) {
	req := ListScriptsReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	sel, err := h.svc.Scripts(c.Request.Context(), req.Emotion, req.Intensity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.OK(sel))
}
