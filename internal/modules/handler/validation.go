package handler

import (
	"fmt"
	"reflect"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the emotion and intensity rules to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("emotion", validEmotion); err != nil {
		return err
	}
	return v.RegisterValidation("intensity", validIntensity)
}

func validEmotion(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return model.Emotion(fl.Field().String()).Valid()
}

func validIntensity(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return model.ValidIntensity(int(fl.Field().Int()))
	}
	return false
}
