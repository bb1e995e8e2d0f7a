package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const storyPrepareTimeout = 20 * time.Second

type UpdateRoundInput struct {
	LabeledEmotion     *model.Emotion
	PreIntensity       *int
	PostIntensity      *int
	RegulationScriptID *uuid.UUID
}

// Readiness reports whether a round's content can be presented.
type Readiness struct {
	Ready bool         `json:"ready"`
	Round *model.Round `json:"round"`
}

type RoundService interface {
	// Create returns the round for (sessionID, roundNumber), creating it at most once.
	Create(ctx context.Context, sessionID uuid.UUID, roundNumber int) (round *model.Round, created bool, err error)
	// Prepare creates the round and, for agent-enabled sessions, starts story generation
	// in the background. On a completed session it returns an existing round so a client
	// can resume; a missing round there is ErrSessionCompleted.
	Prepare(ctx context.Context, sessionID uuid.UUID, roundNumber int) (round *model.Round, created bool, err error)
	Update(ctx context.Context, sessionID, roundID uuid.UUID, in UpdateRoundInput) (*repo.RoundUpdateResult, error)
	Readiness(ctx context.Context, sessionID uuid.UUID, roundNumber int) (*Readiness, error)
	// Wait blocks until background story preparation has finished.
	Wait()
}

type roundService struct {
	sessions repo.SessionRepo
	rounds   repo.RoundRepo
	catalog  repo.CatalogRepo
	gen      GenerationService
	observer ObserverService
	throttle ThrottleFunc
	debounce time.Duration
	log      *zap.Logger
	sf       singleflight.Group
	wg       sync.WaitGroup
}

type RoundDeps struct {
	Sessions repo.SessionRepo
	Rounds   repo.RoundRepo
	Catalog  repo.CatalogRepo
	Gen      GenerationService
	Observer ObserverService
	// Throttle may be nil; repeated prepare calls then each consider starting generation.
	Throttle ThrottleFunc
	// Debounce is the window in which repeated prepare calls start generation once.
	Debounce time.Duration
	Log      *zap.Logger
}

func NewRoundService(d RoundDeps) RoundService {
	return &roundService{
		sessions: d.Sessions,
		rounds:   d.Rounds,
		catalog:  d.Catalog,
		gen:      d.Gen,
		observer: d.Observer,
		throttle: d.Throttle,
		debounce: d.Debounce,
		log:      d.Log,
	}
}

func (s *roundService) Create(ctx context.Context, sessionID uuid.UUID, roundNumber int) (*model.Round, bool, error) {
	ss, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, false, translate(err)
	}
	return s.create(ctx, ss, roundNumber)
}

func (s *roundService) create(ctx context.Context, ss *model.Session, roundNumber int) (*model.Round, bool, error) {
	sessionID := ss.ID
	if roundNumber < 1 || roundNumber > ss.TotalRounds {
		return nil, false, fmt.Errorf("%w: %d of %d", ErrRoundOutOfRange, roundNumber, ss.TotalRounds)
	}

	r := &model.Round{SessionID: sessionID, RoundNumber: roundNumber}
	if id, ok := ss.StoryIDFor(roundNumber); ok {
		r.StoryID = &id
	}

	round, created, err := s.rounds.Create(ctx, r)
	if err != nil {
		return nil, false, err
	}
	// an existing round is returned even for a closed session so retries stay idempotent
	if created && ss.IsCompleted() {
		s.log.Warn("round created in completed session", zap.String("session_id", sessionID.String()), zap.Int("round_number", roundNumber))
	}
	return round, created, nil
}

func (s *roundService) Prepare(ctx context.Context, sessionID uuid.UUID, roundNumber int) (*model.Round, bool, error) {
	ss, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, false, translate(err)
	}
	if ss.IsCompleted() {
		round, err := s.rounds.GetByNumber(ctx, sessionID, roundNumber)
		if errors.Is(err, repo.ErrRoundNotFound) {
			return nil, false, ErrSessionCompleted
		}
		if err != nil {
			return nil, false, err
		}
		return round, false, nil
	}

	round, created, err := s.create(ctx, ss, roundNumber)
	if err != nil {
		return nil, false, err
	}
	if !ss.AgentEnabled || round.GeneratedStory != nil {
		return round, created, nil
	}

	if s.throttle != nil && s.debounce > 0 {
		ok, err := s.throttle(ctx, fmt.Sprintf("prepare:%s:%d", sessionID, roundNumber), s.debounce)
		if err != nil {
			s.log.Warn("prepare throttle", zap.Error(err))
		} else if !ok {
			return round, created, nil
		}
	}

	in := StoryRequest{
		StoryInput: model.StoryInput{ChildID: ss.ChildID, Complexity: 2},
		Target:     &Target{SessionID: sessionID, RoundNumber: roundNumber},
	}
	in.TargetEmotion = s.storyEmotion(ctx, round, roundNumber)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		gctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storyPrepareTimeout)
		defer cancel()
		if _, err := s.gen.Story(gctx, in); err != nil {
			s.log.Warn("prepare story", zap.String("session_id", sessionID.String()), zap.Int("round_number", roundNumber), zap.Error(err))
		}
	}()
	return round, created, nil
}

// storyEmotion targets the catalog story's emotion, else cycles through the emotion list.
func (s *roundService) storyEmotion(ctx context.Context, r *model.Round, roundNumber int) model.Emotion {
	if r.StoryID != nil {
		st, err := s.catalog.GetStory(ctx, *r.StoryID)
		if err == nil {
			return st.TargetEmotion
		}
		s.log.Warn("load round story", zap.String("story_id", r.StoryID.String()), zap.Error(err))
	}
	return model.Emotions[(roundNumber-1)%len(model.Emotions)]
}

func (s *roundService) Update(ctx context.Context, sessionID, roundID uuid.UUID, in UpdateRoundInput) (*repo.RoundUpdateResult, error) {
	r, err := s.rounds.Get(ctx, roundID)
	if err != nil {
		return nil, translate(err)
	}
	if r.SessionID != sessionID {
		return nil, ErrRoundMismatch
	}

	patch := repo.RoundPatch{
		LabeledEmotion:     in.LabeledEmotion,
		PreIntensity:       in.PreIntensity,
		PostIntensity:      in.PostIntensity,
		RegulationScriptID: in.RegulationScriptID,
	}
	if in.LabeledEmotion != nil {
		if target := s.targetEmotion(ctx, r); target != "" {
			correct := *in.LabeledEmotion == target
			patch.IsCorrect = &correct
		}
	}

	res, err := s.rounds.Update(ctx, roundID, patch)
	if err != nil {
		return nil, translate(err)
	}
	if res.Completed && s.observer != nil {
		s.observer.Dispatch(ctx, RoundCompletedEvent{
			SessionID:   sessionID,
			RoundNumber: res.Round.RoundNumber,
			CompletedAt: *res.Round.CompletedAt,
		})
	}
	return res, nil
}

// targetEmotion is the emotion the round's story portrays; empty when unknown.
func (s *roundService) targetEmotion(ctx context.Context, r *model.Round) model.Emotion {
	if r.GeneratedStory != nil && r.GeneratedStory.TargetEmotion != "" {
		return r.GeneratedStory.TargetEmotion
	}
	if r.StoryID == nil {
		return ""
	}
	st, err := s.catalog.GetStory(ctx, *r.StoryID)
	if err != nil {
		s.log.Warn("load story for correctness", zap.String("story_id", r.StoryID.String()), zap.Error(err))
		return ""
	}
	return st.TargetEmotion
}

func (s *roundService) Readiness(ctx context.Context, sessionID uuid.UUID, roundNumber int) (*Readiness, error) {
	key := fmt.Sprintf("%s:%d", sessionID, roundNumber)
	v, err, _ := s.sf.Do(key, func() (any, error) {
		ss, err := s.sessions.Get(ctx, sessionID)
		if err != nil {
			return nil, translate(err)
		}
		r, err := s.rounds.GetByNumber(ctx, sessionID, roundNumber)
		if errors.Is(err, repo.ErrRoundNotFound) {
			return &Readiness{Ready: false}, nil
		}
		if err != nil {
			return nil, err
		}
		return &Readiness{Ready: roundReady(ss, r), Round: r}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Readiness), nil
}

func (s *roundService) Wait() { s.wg.Wait() }

// roundReady reports whether the round's story is available. Static sessions are ready as
// soon as the round exists; agent sessions once the story stage has settled.
func roundReady(ss *model.Session, r *model.Round) bool {
	if !ss.AgentEnabled {
		return true
	}
	if r.GeneratedStory != nil {
		return true
	}
	_, settled := r.GenerationMetadata[model.KindStory]
	return settled
}
