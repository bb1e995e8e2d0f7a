package handler

import (
	"errors"
	"net/http"

	"github.com/emotionlab/server/internal/modules/serializer"
	"github.com/emotionlab/server/internal/modules/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var notFoundMsgs = []struct {
	err error
	msg string
}{
	{service.ErrSessionNotFound, "session not found"},
	{service.ErrRoundNotFound, "round not found"},
	{service.ErrChildNotFound, "child not found"},
}

// abortWithServiceErr maps a service error onto the response taxonomy.
func abortWithServiceErr(c *gin.Context, err error) {
	for _, nf := range notFoundMsgs {
		if errors.Is(err, nf.err) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr(nf.msg))
			return
		}
	}
	switch {
	case errors.Is(err, service.ErrSessionCompleted):
		c.JSON(http.StatusBadRequest, serializer.SessionCompletedErr())
	case errors.Is(err, service.ErrRoundOutOfRange), errors.Is(err, service.ErrRoundMismatch):
		c.JSON(http.StatusBadRequest, serializer.ParamErr(err.Error(), nil))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}
