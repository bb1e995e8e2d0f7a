package serializer

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamErr_FieldDetails(t *testing.T) {
	type req struct {
		Intensity int `validate:"min=1,max=5"`
	}
	err := validator.New().Struct(req{Intensity: 9})
	require.Error(t, err)

	res := ParamErr("", err)
	assert.Equal(t, CodeValidation, res.Error)
	assert.False(t, res.Success)
	assert.Equal(t, []FieldError{{Field: "Intensity", Rule: "max", Param: "5"}}, res.Details)
}

func TestErr_DetailsHiddenInRelease(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	res := DBErr("", errors.New("connection refused"))
	assert.Equal(t, CodeDatabase, res.Error)
	assert.Nil(t, res.Details)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusOf(CodeValidation))
	assert.Equal(t, http.StatusBadRequest, StatusOf(CodeSessionCompleted))
	assert.Equal(t, http.StatusNotFound, StatusOf(CodeNotFound))
	assert.Equal(t, http.StatusTooManyRequests, StatusOf(CodeRateLimited))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(CodeDatabase))
}
