package service

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

type CreateSessionInput struct {
	ChildID      uuid.UUID
	AgentEnabled bool
}

// SessionDetail is a session with its rounds and the catalog stories it references.
type SessionDetail struct {
	Session *model.Session `json:"session"`
	Rounds  []model.Round  `json:"rounds"`
	Stories []model.Story  `json:"stories"`
}

type SessionService interface {
	Create(ctx context.Context, in CreateSessionInput) (*model.Session, error)
	Get(ctx context.Context, id uuid.UUID) (*SessionDetail, error)
}

type sessionService struct {
	sessions repo.SessionRepo
	rounds   repo.RoundRepo
	catalog  repo.CatalogRepo
	profiles ProfileLookup
	log      *zap.Logger
	// offset picks the first emotion of a session's story cycle
	offset func(n int) int
}

// NewSessionService builds the service; profiles may be nil when no profile service is configured.
func NewSessionService(sessions repo.SessionRepo, rounds repo.RoundRepo, catalog repo.CatalogRepo, profiles ProfileLookup, log *zap.Logger) SessionService {
	return &sessionService{
		sessions: sessions,
		rounds:   rounds,
		catalog:  catalog,
		profiles: profiles,
		log:      log,
		offset:   rand.IntN,
	}
}

func (s *sessionService) Create(ctx context.Context, in CreateSessionInput) (*model.Session, error) {
	if s.profiles != nil {
		if _, err := s.profiles.GetChildProfile(ctx, in.ChildID); err != nil {
			if translated := translate(err); errors.Is(translated, ErrChildNotFound) {
				return nil, translated
			}
			// profile CRUD lives elsewhere; an unreachable profile service does not block practice
			s.log.Warn("verify child profile", zap.String("child_id", in.ChildID.String()), zap.Error(err))
		}
	}

	stories, err := s.catalog.ListStories(ctx)
	if err != nil {
		return nil, err
	}

	ss := &model.Session{
		ChildID:      in.ChildID,
		TotalRounds:  model.DefaultTotalRounds,
		AgentEnabled: in.AgentEnabled,
		StoryIDs:     datatypes.JSONSlice[uuid.UUID](selectStories(stories, model.DefaultTotalRounds, s.offset(len(model.Emotions)))),
	}
	if err := s.sessions.Create(ctx, ss); err != nil {
		return nil, err
	}
	return ss, nil
}

// selectStories picks n stories cycling through emotions starting at offset. Emotions with
// no stories are skipped, as are stories outside the emotion list; a catalog without
// usable stories yields none.
func selectStories(stories []model.Story, n, offset int) []uuid.UUID {
	byEmotion := make(map[model.Emotion][]model.Story, len(model.Emotions))
	for _, st := range stories {
		if !st.TargetEmotion.Valid() {
			continue
		}
		byEmotion[st.TargetEmotion] = append(byEmotion[st.TargetEmotion], st)
	}
	if len(byEmotion) == 0 {
		return []uuid.UUID{}
	}

	out := make([]uuid.UUID, 0, n)
	used := make(map[model.Emotion]int, len(byEmotion))
	for i := 0; len(out) < n; i++ {
		e := model.Emotions[(offset+i)%len(model.Emotions)]
		pool := byEmotion[e]
		if len(pool) == 0 {
			continue
		}
		out = append(out, pool[used[e]%len(pool)].ID)
		used[e]++
	}
	return out
}

func (s *sessionService) Get(ctx context.Context, id uuid.UUID) (*SessionDetail, error) {
	var (
		ss     *model.Session
		rounds []model.Round
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ss, err = s.sessions.Get(gctx, id)
		return translate(err)
	})
	g.Go(func() error {
		var err error
		rounds, err = s.rounds.ListBySession(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stories, err := s.catalog.GetStoriesByIDs(ctx, ss.StoryIDs)
	if err != nil {
		return nil, err
	}
	if rounds == nil {
		rounds = []model.Round{}
	}
	return &SessionDetail{Session: ss, Rounds: rounds, Stories: stories}, nil
}
