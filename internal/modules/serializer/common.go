package serializer

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Error codes returned in the error field of a failed response.
const (
	CodeValidation       = "validation_error"
	CodeNotFound         = "not_found"
	CodeSessionCompleted = "session_completed"
	CodeDatabase         = "database_error"
	CodeRateLimited      = "rate_limited"
)

var log = zap.NewNop()

// SetLogger sets the logger used to report server-side errors.
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

// Response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Msg     string      `json:"msg,omitempty"`
}

// ErrResponse
type ErrResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Msg     string      `json:"msg,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// OK
func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// Err
func Err(code, msg string, err error) ErrResponse {
	res := ErrResponse{Error: code, Msg: msg}
	// development mode, show error detail
	if err != nil && gin.Mode() != gin.ReleaseMode {
		res.Details = fmt.Sprintf("%+v", err)
	}
	return res
}

// ParamErr reports a validation_error. Field-level details are always returned.
func ParamErr(msg string, err error) ErrResponse {
	if msg == "" {
		msg = "parameter error"
	}
	res := ErrResponse{Error: CodeValidation, Msg: msg}
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		}
		res.Details = fields
	case err != nil:
		res.Details = err.Error()
	}
	return res
}

// NotFoundErr
func NotFoundErr(msg string) ErrResponse {
	if msg == "" {
		msg = "not found"
	}
	return Err(CodeNotFound, msg, nil)
}

// SessionCompletedErr
func SessionCompletedErr() ErrResponse {
	return Err(CodeSessionCompleted, "session is already completed", nil)
}

// DBErr
func DBErr(msg string, err error) ErrResponse {
	if msg == "" {
		msg = "database error"
	}
	if err != nil {
		log.Error(msg, zap.Error(err))
	}
	return Err(CodeDatabase, msg, err)
}

// RateLimitedErr
func RateLimitedErr() ErrResponse {
	return Err(CodeRateLimited, "polling too fast", nil)
}

// StatusOf returns the HTTP status for an error code.
func StatusOf(code string) int {
	switch code {
	case CodeValidation, CodeSessionCompleted:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
