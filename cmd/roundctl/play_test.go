package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/roundflow"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEffects struct {
	startErr error
	started  []int
	updates  []roundflow.RoundUpdate
}

func (s *stubEffects) StartRound(_ context.Context, sid uuid.UUID, n int) (*roundflow.Presentation, error) {
	s.started = append(s.started, n)
	if s.startErr != nil {
		return nil, s.startErr
	}
	return &roundflow.Presentation{
		Round: &model.Round{ID: uuid.New(), SessionID: sid, RoundNumber: n},
		Story: model.GeneratedStory{Title: "Broken Tower", Text: "The blocks fell.", TargetEmotion: model.EmotionAngry},
	}, nil
}

func (s *stubEffects) Scripts(context.Context, model.Emotion, int) ([]model.RegulationScript, error) {
	return []model.RegulationScript{{
		ID:    uuid.New(),
		Name:  "Dragon Breath",
		Steps: []model.ScriptStep{{Instruction: "Breathe out slowly like a calm dragon.", DurationSeconds: 10}},
	}}, nil
}

func (s *stubEffects) UpdateRound(_ context.Context, sid, rid uuid.UUID, u roundflow.RoundUpdate) (*model.Round, error) {
	s.updates = append(s.updates, u)
	correct := u.LabeledEmotion == model.EmotionAngry
	return &model.Round{ID: rid, SessionID: sid, IsCorrect: &correct}, nil
}

func (s *stubEffects) Praise(_ context.Context, _ uuid.UUID, _ int, in model.PraiseInput) (model.Praise, error) {
	return model.Praise{Message: "Nice work, " + in.Nickname + "!"}, nil
}

func TestPlay_Auto(t *testing.T) {
	fx := &stubEffects{}
	var out bytes.Buffer

	err := play(context.Background(), fx, uuid.New(), 4, 5, "Mia", autoAnswerer{}, &out)
	require.NoError(t, err)

	assert.Equal(t, []int{4, 5}, fx.started)
	require.Len(t, fx.updates, 2)
	for _, u := range fx.updates {
		assert.Equal(t, model.EmotionAngry, u.LabeledEmotion)
		assert.Equal(t, 4, u.PreIntensity)
		assert.Equal(t, 2, u.PostIntensity)
		assert.NotNil(t, u.RegulationScriptID)
	}
	text := out.String()
	assert.Contains(t, text, "== Round 4 of 5 ==")
	assert.Contains(t, text, "Breathe out slowly")
	assert.Contains(t, text, "Nice work, Mia!")
	assert.Contains(t, text, "Session complete")
}

func TestPlay_RetriesOnceThenFails(t *testing.T) {
	fx := &stubEffects{startErr: errors.New("server unavailable")}
	var out bytes.Buffer

	err := play(context.Background(), fx, uuid.New(), 1, 5, "Mia", autoAnswerer{}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server unavailable")
	assert.Len(t, fx.started, 2)
	assert.Contains(t, out.String(), "trying again")
}

func TestPromptAnswerer(t *testing.T) {
	in := strings.NewReader("grumpy\nScared\n9\n3\n\n")
	var out bytes.Buffer
	p := &promptAnswerer{in: bufio.NewScanner(in), out: &out}

	e, err := p.Emotion(model.GeneratedStory{})
	require.NoError(t, err)
	assert.Equal(t, model.EmotionScared, e)

	n, err := p.PreIntensity()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	id, err := p.Script([]model.RegulationScript{{ID: uuid.New(), Name: "Dragon Breath"}})
	require.NoError(t, err)
	assert.Nil(t, id)

	_, err = p.PostIntensity()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	assert.Contains(t, out.String(), `"grumpy" is not one of the feelings.`)
	assert.Contains(t, out.String(), "Pick a number from 1 to 5.")
}

func TestPromptAnswerer_PicksScript(t *testing.T) {
	scripts := []model.RegulationScript{{ID: uuid.New(), Name: "A"}, {ID: uuid.New(), Name: "B"}}
	p := &promptAnswerer{in: bufio.NewScanner(strings.NewReader("7\n2\n")), out: io.Discard}

	id, err := p.Script(scripts)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, scripts[1].ID, *id)
}
