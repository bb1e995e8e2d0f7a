package service

import (
	"context"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/repo"
)

// ScriptSelection is the result of a script lookup. Generic is true when no script matched
// the emotion and intensity and the generic set was returned instead.
type ScriptSelection struct {
	Scripts []model.RegulationScript `json:"scripts"`
	Generic bool                     `json:"generic"`
}

type CatalogService interface {
	Stories(ctx context.Context) ([]model.Story, error)
	Scripts(ctx context.Context, emotion model.Emotion, intensity int) (*ScriptSelection, error)
}

type catalogService struct {
	r repo.CatalogRepo
}

func NewCatalogService(r repo.CatalogRepo) CatalogService {
	return &catalogService{r: r}
}

func (s *catalogService) Stories(ctx context.Context) ([]model.Story, error) {
	out, err := s.r.ListStories(ctx)
	if out == nil && err == nil {
		out = []model.Story{}
	}
	return out, err
}

func (s *catalogService) Scripts(ctx context.Context, emotion model.Emotion, intensity int) (*ScriptSelection, error) {
	found, err := s.r.FindScripts(ctx, emotion, intensity)
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		return &ScriptSelection{Scripts: found}, nil
	}
	generic, err := s.r.GenericScripts(ctx)
	if err != nil {
		return nil, err
	}
	if generic == nil {
		generic = []model.RegulationScript{}
	}
	return &ScriptSelection{Scripts: generic, Generic: true}, nil
}
