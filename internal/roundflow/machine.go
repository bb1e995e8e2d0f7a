package roundflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/pkg/fallback"
	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("event not accepted in current state")
	ErrInvalidEvent      = errors.New("invalid event payload")
	ErrRoundNotCompleted = errors.New("round not completed")
	ErrLastRound         = errors.New("last round of session")
)

// Event is an external trigger plus the data it carries.
type Event struct {
	Type      EventType
	Emotion   model.Emotion
	Intensity int
	ScriptID  *uuid.UUID
}

// Presentation is the round and the story shown to the child.
type Presentation struct {
	Round *model.Round
	Story model.GeneratedStory
}

// RoundUpdate is the single atomic write that closes a round.
type RoundUpdate struct {
	LabeledEmotion     model.Emotion
	PreIntensity       int
	PostIntensity      int
	RegulationScriptID *uuid.UUID
}

// Effects performs the external work of a round.
type Effects interface {
	// StartRound idempotently creates the round and returns what to present.
	StartRound(ctx context.Context, sessionID uuid.UUID, roundNumber int) (*Presentation, error)
	Scripts(ctx context.Context, emotion model.Emotion, intensity int) ([]model.RegulationScript, error)
	UpdateRound(ctx context.Context, sessionID, roundID uuid.UUID, u RoundUpdate) (*model.Round, error)
	Praise(ctx context.Context, sessionID uuid.UUID, roundNumber int, in model.PraiseInput) (model.Praise, error)
}

// RoundContext is everything the machine knows about the current round.
type RoundContext struct {
	SessionID   uuid.UUID
	RoundNumber int
	TotalRounds int
	Nickname    string

	Round          *model.Round
	Story          model.GeneratedStory
	LabeledEmotion model.Emotion
	IsCorrect      bool
	PreIntensity   int
	PostIntensity  int
	Scripts        []model.RegulationScript
	ScriptsGeneric bool
	ScriptID       *uuid.UUID
	Praise         model.Praise
	PraiseFallback bool
	Err            error
}

// Transition is reported for every state change.
type Transition struct {
	From  State
	To    State
	Event EventType
}

type Option func(*Machine)

// WithTransitionHook registers fn to observe every state change.
func WithTransitionHook(fn func(Transition)) Option {
	return func(m *Machine) { m.hook = fn }
}

// Machine drives one round at a time. Send is serialized, so at most one external call is
// in flight per round.
type Machine struct {
	mu    sync.Mutex
	fx    Effects
	state State
	rc    RoundContext
	hook  func(Transition)
}

func New(fx Effects, sessionID uuid.UUID, roundNumber, totalRounds int, nickname string, opts ...Option) *Machine {
	m := &Machine{
		fx:    fx,
		state: StateGreeting,
		rc:    RoundContext{SessionID: sessionID, RoundNumber: roundNumber, TotalRounds: totalRounds, Nickname: nickname},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Context returns a copy of the round context.
func (m *Machine) Context() RoundContext {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rc
}

// IsLastRound reports whether the current round closes the session.
func (m *Machine) IsLastRound() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rc.RoundNumber >= m.rc.TotalRounds
}

// NextRound re-enters greeting for the following round.
func (m *Machine) NextRound() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateCompleted {
		return ErrRoundNotCompleted
	}
	if m.rc.RoundNumber >= m.rc.TotalRounds {
		return ErrLastRound
	}
	m.rc = RoundContext{
		SessionID:   m.rc.SessionID,
		RoundNumber: m.rc.RoundNumber + 1,
		TotalRounds: m.rc.TotalRounds,
		Nickname:    m.rc.Nickname,
	}
	m.move(StateGreeting, "")
	return nil
}

// Send applies ev and runs the working states it leads to. It returns the resting state
// reached. Effect failures never surface here; they move the machine to error or to a
// fallback path.
func (m *Machine) Send(ctx context.Context, ev Event) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, _, ok := Next(m.state, ev.Type)
	if !ok {
		return m.state, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, ev.Type, m.state)
	}
	if err := m.accept(ev); err != nil {
		return m.state, err
	}

	m.move(next, ev.Type)
	for {
		after, working := m.enter(ctx)
		if !working {
			return m.state, nil
		}
		m.move(after, "")
	}
}

// accept validates the payload and records it.
func (m *Machine) accept(ev Event) error {
	switch ev.Type {
	case EventEmotionChosen:
		if !ev.Emotion.Valid() {
			return fmt.Errorf("%w: emotion %q", ErrInvalidEvent, ev.Emotion)
		}
		m.rc.LabeledEmotion = ev.Emotion
	case EventPreIntensitySet:
		if !model.ValidIntensity(ev.Intensity) {
			return fmt.Errorf("%w: intensity %d", ErrInvalidEvent, ev.Intensity)
		}
		m.rc.PreIntensity = ev.Intensity
	case EventPostIntensitySet:
		if !model.ValidIntensity(ev.Intensity) {
			return fmt.Errorf("%w: intensity %d", ErrInvalidEvent, ev.Intensity)
		}
		m.rc.PostIntensity = ev.Intensity
	case EventScriptChosen:
		if ev.ScriptID == nil {
			return fmt.Errorf("%w: script id required", ErrInvalidEvent)
		}
		m.rc.ScriptID = ev.ScriptID
	case EventSkipped:
		m.rc.ScriptID = nil
	case EventRetry:
		m.rc = RoundContext{
			SessionID:   m.rc.SessionID,
			RoundNumber: m.rc.RoundNumber,
			TotalRounds: m.rc.TotalRounds,
			Nickname:    m.rc.Nickname,
		}
	}
	return nil
}

// enter runs the entry effect of the current state. working is false once the machine
// rests, waiting for an event.
func (m *Machine) enter(ctx context.Context) (next State, working bool) {
	switch m.state.Effect() {
	case EffectStartRound:
		p, err := m.fx.StartRound(ctx, m.rc.SessionID, m.rc.RoundNumber)
		if err != nil {
			m.rc.Err = err
			return StateError, true
		}
		m.rc.Round = p.Round
		m.rc.Story = p.Story
		return "", false

	case EffectCheckCorrectness:
		m.rc.IsCorrect = m.rc.LabeledEmotion == m.rc.Story.TargetEmotion
		return StateRatingIntensity, true

	case EffectFetchScripts:
		scripts, err := m.fx.Scripts(ctx, m.rc.LabeledEmotion, m.rc.PreIntensity)
		if err != nil || len(scripts) == 0 {
			m.rc.Err = err
			scripts = genericScripts()
			m.rc.ScriptsGeneric = true
		}
		m.rc.Scripts = scripts
		return StateOfferingRegulation, true

	case EffectUpdateRound:
		r, err := m.fx.UpdateRound(ctx, m.rc.SessionID, m.rc.Round.ID, RoundUpdate{
			LabeledEmotion:     m.rc.LabeledEmotion,
			PreIntensity:       m.rc.PreIntensity,
			PostIntensity:      m.rc.PostIntensity,
			RegulationScriptID: m.rc.ScriptID,
		})
		if err != nil {
			m.rc.Err = err
			return StateError, true
		}
		m.rc.Round = r
		if r.IsCorrect != nil {
			m.rc.IsCorrect = *r.IsCorrect
		}
		return StateGeneratingPraise, true

	case EffectGeneratePraise:
		correct := m.rc.IsCorrect
		p, err := m.fx.Praise(ctx, m.rc.SessionID, m.rc.RoundNumber, model.PraiseInput{
			Nickname:       m.rc.Nickname,
			LabeledEmotion: m.rc.LabeledEmotion,
			IsCorrect:      &correct,
			PreIntensity:   m.rc.PreIntensity,
			PostIntensity:  m.rc.PostIntensity,
		})
		if err != nil {
			m.rc.Err = err
			p = fallback.Praise(m.rc.Nickname)
			m.rc.PraiseFallback = true
		}
		m.rc.Praise = p
		return StatePraising, true
	}
	return "", false
}

func (m *Machine) move(to State, ev EventType) {
	from := m.state
	m.state = to
	if m.hook != nil {
		m.hook(Transition{From: from, To: to, Event: ev})
	}
}

func genericScripts() []model.RegulationScript {
	src := fallback.GenericScripts()
	out := make([]model.RegulationScript, 0, len(src))
	for _, s := range src {
		out = append(out, model.RegulationScript{
			ID:        fallback.ScriptID(s.Name),
			Name:      s.Name,
			IsGeneric: true,
			Steps:     s.Steps,
		})
	}
	return out
}
