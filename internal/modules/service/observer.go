package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/emotionlab/server/internal/config"
	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const observerRunTimeout = 30 * time.Second

// RoundCompletedEvent is the round.completed message body.
type RoundCompletedEvent struct {
	SessionID   uuid.UUID `json:"session_id"`
	RoundNumber int       `json:"round_number"`
	CompletedAt time.Time `json:"completed_at"`
}

// MessageSource is satisfied by *mq.Consumer.
type MessageSource interface {
	Handle(ctx context.Context, handler func(context.Context, []byte) error) error
}

type ObserverService interface {
	// Dispatch schedules the Observer stage for a completed round without blocking.
	Dispatch(ctx context.Context, evt RoundCompletedEvent)
	// Observe runs the Observer stage for a completed round and stores its analysis.
	Observe(ctx context.Context, evt RoundCompletedEvent) error
	// Consume processes round.completed messages until ctx is done.
	Consume(ctx context.Context, src MessageSource) error
	Wait()
}

type observerService struct {
	sessions repo.SessionRepo
	rounds   repo.RoundRepo
	catalog  repo.CatalogRepo
	gen      GenerationService
	pub      Publisher
	log      *zap.Logger
	cfg      *config.Config
	wg       sync.WaitGroup
}

// NewObserverService builds the observer; pub may be nil, in which case completed rounds
// are observed in-process.
func NewObserverService(sessions repo.SessionRepo, rounds repo.RoundRepo, catalog repo.CatalogRepo, gen GenerationService, pub Publisher, log *zap.Logger, cfg *config.Config) ObserverService {
	return &observerService{
		sessions: sessions,
		rounds:   rounds,
		catalog:  catalog,
		gen:      gen,
		pub:      pub,
		log:      log,
		cfg:      cfg,
	}
}

func (s *observerService) Dispatch(ctx context.Context, evt RoundCompletedEvent) {
	if evt.CompletedAt.IsZero() {
		evt.CompletedAt = time.Now().UTC()
	}
	if s.pub != nil {
		err := s.pub.PublishJSON(ctx, s.cfg.RabbitMQ.ExchangeName.Rounds, s.cfg.RabbitMQ.RoutingKey.RoundCompleted, evt)
		if err == nil {
			return
		}
		s.log.Warn("publish round.completed, observing in-process", zap.String("session_id", evt.SessionID.String()), zap.Error(err))
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		octx, cancel := context.WithTimeout(context.WithoutCancel(ctx), observerRunTimeout)
		defer cancel()
		if err := s.Observe(octx, evt); err != nil {
			s.log.Warn("observe round", zap.String("session_id", evt.SessionID.String()), zap.Int("round_number", evt.RoundNumber), zap.Error(err))
		}
	}()
}

func (s *observerService) Observe(ctx context.Context, evt RoundCompletedEvent) error {
	r, err := s.rounds.GetByNumber(ctx, evt.SessionID, evt.RoundNumber)
	if err != nil {
		return translate(err)
	}
	if r.CompletedAt == nil {
		return fmt.Errorf("round %d of session %s is not completed", evt.RoundNumber, evt.SessionID)
	}

	in := model.AnalysisInput{RoundNumber: r.RoundNumber}
	if r.LabeledEmotion != nil {
		in.LabeledEmotion = *r.LabeledEmotion
	}
	if r.IsCorrect != nil {
		in.IsCorrect = *r.IsCorrect
	}
	if r.PreIntensity != nil {
		in.PreIntensity = *r.PreIntensity
	}
	if r.PostIntensity != nil {
		in.PostIntensity = *r.PostIntensity
	}
	in.TargetEmotion = s.targetEmotion(ctx, r)
	if r.RegulationScriptID != nil {
		script, err := s.catalog.GetScript(ctx, *r.RegulationScriptID)
		if err != nil {
			s.log.Warn("load regulation script", zap.String("script_id", r.RegulationScriptID.String()), zap.Error(err))
		} else {
			in.ScriptName = script.Name
			in.ScriptCompleted = true
		}
	}

	_, err = s.gen.Analyze(ctx, AnalysisRequest{
		AnalysisInput: in,
		Target:        &Target{SessionID: evt.SessionID, RoundNumber: evt.RoundNumber},
	})
	return err
}

// targetEmotion prefers the generated story, then the catalog story.
func (s *observerService) targetEmotion(ctx context.Context, r *model.Round) model.Emotion {
	if r.GeneratedStory != nil && r.GeneratedStory.TargetEmotion != "" {
		return r.GeneratedStory.TargetEmotion
	}
	if r.StoryID == nil {
		return ""
	}
	st, err := s.catalog.GetStory(ctx, *r.StoryID)
	if err != nil {
		s.log.Warn("load round story", zap.String("story_id", r.StoryID.String()), zap.Error(err))
		return ""
	}
	return st.TargetEmotion
}

func (s *observerService) Consume(ctx context.Context, src MessageSource) error {
	return src.Handle(ctx, func(ctx context.Context, body []byte) error {
		var evt RoundCompletedEvent
		if err := sonic.Unmarshal(body, &evt); err != nil || evt.SessionID == uuid.Nil {
			// requeueing a malformed message would loop forever
			s.log.Error("drop malformed round.completed message", zap.ByteString("body", body), zap.Error(err))
			return nil
		}
		err := s.Observe(ctx, evt)
		if errors.Is(err, ErrRoundNotFound) || errors.Is(err, ErrSessionNotFound) {
			s.log.Warn("drop round.completed for missing round", zap.String("session_id", evt.SessionID.String()), zap.Error(err))
			return nil
		}
		return err
	})
}

func (s *observerService) Wait() { s.wg.Wait() }
