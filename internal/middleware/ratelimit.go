package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/emotionlab/server/internal/modules/serializer"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ThrottleFunc claims key for ttl and reports whether the claim succeeded.
type ThrottleFunc func(ctx context.Context, key string, ttl time.Duration) (bool, error)

// PollRateLimit allows one request per interval for each (session, round) pair. When the
// limiter itself fails the request is let through.
func PollRateLimit(throttle ThrottleFunc, interval time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if throttle == nil || interval <= 0 {
			c.Next()
			return
		}

		key := "poll:" + c.Param("session_id") + ":" + c.Param("round_number")
		ok, err := throttle(c.Request.Context(), key, interval)
		if err != nil {
			log.Warn("poll rate limit", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			c.Header("Retry-After", retryAfter(interval))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, serializer.RateLimitedErr())
			return
		}
		c.Next()
	}
}

func retryAfter(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
