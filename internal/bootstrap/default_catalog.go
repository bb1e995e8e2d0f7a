package bootstrap

import (
	"context"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/repo"
	"github.com/emotionlab/server/internal/pkg/fallback"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// EnsureDefaultCatalog seeds the static stories and regulation scripts when they are missing.
func EnsureDefaultCatalog(ctx context.Context, catalog repo.CatalogRepo, log *zap.Logger) error {
	stories := DefaultStories()
	if err := catalog.UpsertStories(ctx, stories); err != nil {
		return err
	}
	scripts := DefaultScripts()
	if err := catalog.UpsertScripts(ctx, scripts); err != nil {
		return err
	}
	log.Sugar().Infow("default catalog ensured", "stories", len(stories), "scripts", len(scripts))
	return nil
}

func DefaultStories() []model.Story {
	src := fallback.Stories()
	out := make([]model.Story, 0, len(src))
	for _, s := range src {
		out = append(out, model.Story{
			ID:            fallback.StoryID(s.Title),
			Title:         s.Title,
			Text:          s.Text,
			TargetEmotion: s.TargetEmotion,
			Complexity:    s.Complexity,
		})
	}
	return out
}

func DefaultScripts() []model.RegulationScript {
	src := fallback.Scripts()
	out := make([]model.RegulationScript, 0, len(src))
	for _, s := range src {
		out = append(out, model.RegulationScript{
			ID:           fallback.ScriptID(s.Script.Name),
			Name:         s.Script.Name,
			Emotion:      s.Emotion,
			MinIntensity: s.MinIntensity,
			MaxIntensity: s.MaxIntensity,
			IsGeneric:    s.Generic(),
			Steps:        datatypes.JSONSlice[model.ScriptStep](s.Script.Steps),
		})
	}
	return out
}
