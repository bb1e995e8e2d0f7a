package service

import (
	"context"
	"sync"
	"time"

	"github.com/emotionlab/server/internal/config"
	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/pkg/safety"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const alertPublishTimeout = 5 * time.Second

// SafetyAlert is the safety.crisis message body.
type SafetyAlert struct {
	Kind        model.GenerationKind `json:"kind"`
	SessionID   *uuid.UUID           `json:"session_id,omitempty"`
	RoundNumber *int                 `json:"round_number,omitempty"`
	Flags       []string             `json:"flags"`
	Matched     []string             `json:"matched"`
	DetectedAt  time.Time            `json:"detected_at"`
}

type SafetyAlerter interface {
	// Crisis publishes an alert for a crisis-keyword rejection in the background.
	Crisis(ctx context.Context, a SafetyAlert)
	Wait()
}

type safetyAlerter struct {
	pub Publisher
	log *zap.Logger
	cfg *config.Config
	wg  sync.WaitGroup
}

// NewSafetyAlerter builds an alerter; pub may be nil when the broker is disabled, in
// which case alerts are only logged.
func NewSafetyAlerter(pub Publisher, log *zap.Logger, cfg *config.Config) SafetyAlerter {
	return &safetyAlerter{pub: pub, log: log, cfg: cfg}
}

func (s *safetyAlerter) Crisis(ctx context.Context, a SafetyAlert) {
	if a.DetectedAt.IsZero() {
		a.DetectedAt = time.Now().UTC()
	}
	fields := []zap.Field{
		zap.String("kind", string(a.Kind)),
		zap.Strings("matched", a.Matched),
	}
	if a.SessionID != nil {
		fields = append(fields, zap.String("session_id", a.SessionID.String()))
	}
	s.log.Error("crisis keywords in generated content", fields...)

	if s.pub == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertPublishTimeout)
		defer cancel()
		if err := s.pub.PublishJSON(pctx, s.cfg.RabbitMQ.ExchangeName.Safety, s.cfg.RabbitMQ.RoutingKey.SafetyCrisis, a); err != nil {
			s.log.Warn("publish safety alert", zap.Error(err))
		}
	}()
}

func (s *safetyAlerter) Wait() { s.wg.Wait() }

// crisisAlert builds an alert from a failed safety result, or reports false when the
// rejection was not a crisis.
func crisisAlert(kind model.GenerationKind, t *Target, res safety.Result) (SafetyAlert, bool) {
	if !res.HasFlag(safety.FlagCrisisKeywords) {
		return SafetyAlert{}, false
	}
	a := SafetyAlert{Kind: kind, Flags: res.Flags, Matched: res.KeywordViolations}
	if t != nil {
		id, n := t.SessionID, t.RoundNumber
		a.SessionID, a.RoundNumber = &id, &n
	}
	return a, true
}
