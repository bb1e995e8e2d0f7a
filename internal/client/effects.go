package client

import (
	"context"
	"errors"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/pkg/fallback"
	"github.com/emotionlab/server/internal/pkg/poller"
	"github.com/emotionlab/server/internal/roundflow"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Effects adapts the client to a round machine.
func (c *Client) Effects() roundflow.Effects { return effects{c: c} }

type effects struct{ c *Client }

// StartRound prepares round n, waits for its story and resolves what to present. A round
// that is still preparing when polling gives up is presented with static content.
func (e effects) StartRound(ctx context.Context, sessionID uuid.UUID, n int) (*roundflow.Presentation, error) {
	round, err := e.c.PrepareRound(ctx, sessionID, n)
	if err != nil {
		return nil, err
	}

	detail, err := e.c.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if detail.Session != nil && detail.Session.AgentEnabled && round.GeneratedStory == nil {
		ready, err := e.c.WaitRoundReady(ctx, sessionID, n)
		switch {
		case err == nil && ready != nil:
			round = ready
		case errors.Is(err, poller.ErrStillPreparing):
			e.c.Logger.Warn("story still preparing, presenting static story",
				zap.String("session_id", sessionID.String()), zap.Int("round_number", n))
		case err != nil:
			return nil, err
		}
	}

	return &roundflow.Presentation{Round: round, Story: storyFor(round, detail.Stories)}, nil
}

// storyFor prefers the generated story, then the referenced catalog story, then a static
// one cycling through the emotions.
func storyFor(r *model.Round, stories []model.Story) model.GeneratedStory {
	if r.GeneratedStory != nil {
		return *r.GeneratedStory
	}
	if r.StoryID != nil {
		for _, s := range stories {
			if s.ID == *r.StoryID {
				return model.GeneratedStory{Title: s.Title, Text: s.Text, TargetEmotion: s.TargetEmotion, Complexity: s.Complexity}
			}
		}
	}
	emotion := model.Emotions[(r.RoundNumber-1+len(model.Emotions))%len(model.Emotions)]
	return fallback.Story(emotion, r.RoundNumber)
}

func (e effects) Scripts(ctx context.Context, emotion model.Emotion, intensity int) ([]model.RegulationScript, error) {
	return e.c.Scripts(ctx, emotion, intensity)
}

func (e effects) UpdateRound(ctx context.Context, sessionID, roundID uuid.UUID, u roundflow.RoundUpdate) (*model.Round, error) {
	emotion, pre, post := u.LabeledEmotion, u.PreIntensity, u.PostIntensity
	res, err := e.c.UpdateRound(ctx, sessionID, roundID, RoundPatch{
		LabeledEmotion:     &emotion,
		PreIntensity:       &pre,
		PostIntensity:      &post,
		RegulationScriptID: u.RegulationScriptID,
	})
	if err != nil {
		return nil, err
	}
	return res.Round, nil
}

func (e effects) Praise(ctx context.Context, sessionID uuid.UUID, n int, in model.PraiseInput) (model.Praise, error) {
	res, err := e.c.GeneratePraise(ctx, PraiseRequest{
		SessionID:      &sessionID,
		RoundNumber:    n,
		Nickname:       in.Nickname,
		Highlight:      in.Highlight,
		LabeledEmotion: in.LabeledEmotion,
		IsCorrect:      in.IsCorrect,
		PreIntensity:   in.PreIntensity,
		PostIntensity:  in.PostIntensity,
	})
	if err != nil {
		return model.Praise{}, err
	}
	return res.Praise, nil
}
