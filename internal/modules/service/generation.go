package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emotionlab/server/internal/infra/llm"
	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/modules/repo"
	"github.com/emotionlab/server/internal/pkg/fallback"
	"github.com/emotionlab/server/internal/pkg/prompts"
	"github.com/emotionlab/server/internal/pkg/safety"
	"github.com/emotionlab/server/internal/pkg/timeout"
	"github.com/emotionlab/server/internal/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StaticModel is reported as the model id whenever fallback content was served.
const StaticModel = "static"

// Reasons recorded for fallbacks that are not safety rejections.
const (
	ReasonAgentDisabled      = "agent_disabled"
	ReasonProfileUnavailable = "profile_unavailable"
)

// DefaultDeadlines are the per-kind generation deadlines. Generation is never retried.
var DefaultDeadlines = map[model.GenerationKind]time.Duration{
	model.KindAnalysis: 15 * time.Second,
	model.KindStory:    10 * time.Second,
	model.KindScript:   10 * time.Second,
	model.KindPraise:   5 * time.Second,
}

var errMalformed = errors.New("malformed provider output")

// Target ties a generation request to a stored round.
type Target struct {
	SessionID   uuid.UUID
	RoundNumber int
}

// Outcome is the result of one generation stage. Content is either generated or static and
// has the same shape in both cases.
type Outcome[T any] struct {
	Content      T                   `json:"content"`
	Metadata     model.StageMetadata `json:"metadata"`
	FallbackUsed bool                `json:"fallback_used"`
	Safety       safety.Result       `json:"safety_result"`
}

type AnalysisRequest struct {
	model.AnalysisInput
	Target *Target
}

type StoryRequest struct {
	model.StoryInput
	Target *Target
}

type ScriptRequest struct {
	model.ScriptInput
	Target *Target
}

type PraiseRequest struct {
	model.PraiseInput
	Target *Target
}

type GenerationService interface {
	Analyze(ctx context.Context, in AnalysisRequest) (*Outcome[model.Analysis], error)
	Story(ctx context.Context, in StoryRequest) (*Outcome[model.GeneratedStory], error)
	Script(ctx context.Context, in ScriptRequest) (*Outcome[model.GeneratedScript], error)
	Praise(ctx context.Context, in PraiseRequest) (*Outcome[model.Praise], error)
}

type GenerationDeps struct {
	// Provider may be nil; every stage then serves static content.
	Provider  llm.Provider
	Sessions  repo.SessionRepo
	Rounds    repo.RoundRepo
	Profiles  ProfileLookup
	Audit     AuditRecorder
	Alerts    SafetyAlerter
	Log       *zap.Logger
	Deadlines map[model.GenerationKind]time.Duration
}

type generationService struct {
	provider  llm.Provider
	sessions  repo.SessionRepo
	rounds    repo.RoundRepo
	profiles  ProfileLookup
	audit     AuditRecorder
	alerts    SafetyAlerter
	log       *zap.Logger
	deadlines map[model.GenerationKind]time.Duration
}

func NewGenerationService(d GenerationDeps) GenerationService {
	deadlines := make(map[model.GenerationKind]time.Duration, len(DefaultDeadlines))
	for k, v := range DefaultDeadlines {
		deadlines[k] = v
	}
	for k, v := range d.Deadlines {
		deadlines[k] = v
	}
	return &generationService{
		provider:  d.Provider,
		sessions:  d.Sessions,
		rounds:    d.Rounds,
		profiles:  d.Profiles,
		audit:     d.Audit,
		alerts:    d.Alerts,
		log:       d.Log,
		deadlines: deadlines,
	}
}

// stage describes one generation kind. skip, when non-nil, serves static content without
// calling the provider. reason, when set, is recorded for a fallback instead of the reason
// derived from the safety result.
type stage[T any] struct {
	kind     model.GenerationKind
	target   *Target
	input    any
	prompt   prompts.Prompt
	decode   func(text string) (T, error)
	validate func(T) safety.Result
	fallback func() T
	skip     *safety.Result
	reason   string
}

type completion[T any] struct {
	content T
	model   string
}

// run executes a stage through the timeout wrapper and the safety gate. It never returns
// an error: every failure becomes static content with the cause recorded.
func run[T any](ctx context.Context, s *generationService, st stage[T]) *Outcome[T] {
	start := time.Now()
	out := &Outcome[T]{}

	var res safety.Result
	switch {
	case st.skip != nil:
		res = *st.skip
	case s.provider == nil:
		res = safety.Fail(safety.FlagProviderError, "no generation provider configured")
	default:
		c, err := timeout.Run(ctx, s.deadlines[st.kind], func(ctx context.Context) (completion[T], error) {
			resp, err := s.provider.Complete(ctx, llm.Request{System: st.prompt.System, Prompt: st.prompt.User})
			if err != nil {
				return completion[T]{}, err
			}
			v, err := st.decode(resp.Text)
			if err != nil {
				return completion[T]{}, fmt.Errorf("%w: %v", errMalformed, err)
			}
			return completion[T]{content: v, model: resp.Model}, nil
		})
		switch {
		case timeout.IsTimeout(err):
			res = safety.Fail(safety.FlagTimeout, fmt.Sprintf("%s generation exceeded %s", st.kind, s.deadlines[st.kind]))
		case errors.Is(err, errMalformed):
			res = safety.Fail(safety.FlagMalformedOutput, err.Error())
		case err != nil:
			res = safety.Fail(safety.FlagProviderError, err.Error())
		default:
			res = st.validate(c.content)
			if res.Passed {
				out.Content = c.content
				out.Metadata.Model = c.model
			}
		}
	}

	out.Safety = res
	if st.skip != nil || !res.Passed {
		out.Content = st.fallback()
		out.FallbackUsed = true
		out.Metadata.Model = StaticModel
	}

	reason := ""
	if out.FallbackUsed {
		reason = st.reason
		if reason == "" {
			reason = fallbackReason(res)
		}
	}
	out.Metadata.ElapsedMS = time.Since(start).Milliseconds()
	out.Metadata.SafetyFlags = append([]string{}, res.Flags...)
	out.Metadata.FallbackUsed = out.FallbackUsed
	out.Metadata.Reason = reason
	out.Metadata.GeneratedAt = time.Now().UTC()

	if out.FallbackUsed {
		s.log.Info("generation fell back to static content",
			zap.String("kind", string(st.kind)),
			zap.String("reason", reason),
			zap.Strings("flags", res.Flags),
			zap.Int64("elapsed_ms", out.Metadata.ElapsedMS))
	}

	if a, ok := crisisAlert(st.kind, st.target, res); ok && s.alerts != nil {
		s.alerts.Crisis(ctx, a)
	}
	telemetry.RecordGeneration(ctx, string(st.kind), out.FallbackUsed, reason, float64(time.Since(start).Microseconds())/1000)
	if s.audit != nil {
		e := AuditEntry{Kind: st.kind, Metadata: out.Metadata, Input: st.input, Output: out.Content}
		if st.target != nil {
			id, n := st.target.SessionID, st.target.RoundNumber
			e.SessionID, e.RoundNumber = &id, &n
		}
		s.audit.Record(ctx, e)
	}
	return out
}

// fallbackReason picks the flag that best names why static content was served.
func fallbackReason(res safety.Result) string {
	if res.HasFlag(safety.FlagCrisisKeywords) {
		return safety.FlagCrisisKeywords
	}
	if len(res.Flags) > 0 {
		return res.Flags[0]
	}
	return res.Reason
}

// withField prefixes the rejection reason with the field that failed.
func withField(r safety.Result, field string) safety.Result {
	r.Reason = field + ": " + r.Reason
	return r
}

func decodeJSON[T any](text string) (T, error) {
	var v T
	err := llm.DecodeJSON(text, &v)
	return v, err
}

// sessionFor loads the target session. A nil target yields a nil session.
func (s *generationService) sessionFor(ctx context.Context, t *Target) (*model.Session, error) {
	if t == nil {
		return nil, nil
	}
	ss, err := s.sessions.Get(ctx, t.SessionID)
	if err != nil {
		return nil, translate(err)
	}
	if t.RoundNumber < 1 || t.RoundNumber > ss.TotalRounds {
		return nil, fmt.Errorf("%w: %d of %d", ErrRoundOutOfRange, t.RoundNumber, ss.TotalRounds)
	}
	return ss, nil
}

// prepare resolves prior-round context and the agent switch for a targeted request.
func (s *generationService) prepare(ctx context.Context, t *Target, prior **model.Analysis) (*safety.Result, error) {
	ss, err := s.sessionFor(ctx, t)
	if err != nil || ss == nil {
		return nil, err
	}
	if *prior == nil {
		*prior = ss.CumulativeContext.PriorTo(t.RoundNumber)
	}
	if !ss.AgentEnabled {
		r := safety.Pass()
		r.Reason = ReasonAgentDisabled
		return &r, nil
	}
	return nil, nil
}

// persist merges a stage result into the target round. Failures are logged, never returned:
// the generated content is still served.
func (s *generationService) persist(ctx context.Context, t *Target, res repo.StageResult) {
	if t == nil {
		return
	}
	if err := s.rounds.MergeStageResult(ctx, t.SessionID, t.RoundNumber, res); err != nil {
		s.log.Warn("persist generation stage",
			zap.String("kind", string(res.Kind)),
			zap.String("session_id", t.SessionID.String()),
			zap.Int("round_number", t.RoundNumber),
			zap.Error(err))
	}
}

func (s *generationService) Analyze(ctx context.Context, in AnalysisRequest) (*Outcome[model.Analysis], error) {
	skip, err := s.prepare(ctx, in.Target, &in.PriorAnalysis)
	if err != nil {
		return nil, err
	}
	if in.Target != nil {
		in.RoundNumber = in.Target.RoundNumber
	}

	out := run(ctx, s, stage[model.Analysis]{
		kind:   model.KindAnalysis,
		target: in.Target,
		input:  in.AnalysisInput,
		prompt: prompts.Analysis(in.AnalysisInput),
		skip:   skip,
		decode: func(text string) (model.Analysis, error) {
			a, err := decodeJSON[model.Analysis](text)
			if err != nil {
				return a, err
			}
			a.RoundNumber = in.RoundNumber
			correct := in.IsCorrect
			a.RecognitionCorrect = &correct
			if a.SuggestedFocus != "" && !a.SuggestedFocus.Valid() {
				return a, fmt.Errorf("unknown suggested_focus %q", a.SuggestedFocus)
			}
			return a, nil
		},
		validate: func(a model.Analysis) safety.Result {
			text := strings.Join(append(append([]string{a.Summary}, a.EmotionalPatterns...), a.Recommendations...), " ")
			if r := safety.Validate(text, safety.KindAnalysis); !r.Passed {
				return r
			}
			return safety.ValidateAnalysis(a.Summary)
		},
		fallback: func() model.Analysis { return fallback.Analysis(in.RoundNumber) },
	})

	if in.Target != nil {
		// only real observations become context for later rounds
		if !out.FallbackUsed {
			a := out.Content
			if err := s.sessions.SetObserverContext(ctx, in.Target.SessionID, in.Target.RoundNumber, &a); err != nil {
				s.log.Warn("write observer context", zap.String("session_id", in.Target.SessionID.String()), zap.Error(err))
			}
		}
		s.persist(ctx, in.Target, repo.StageResult{Kind: model.KindAnalysis, Metadata: out.Metadata})
	}
	return out, nil
}

func (s *generationService) Story(ctx context.Context, in StoryRequest) (*Outcome[model.GeneratedStory], error) {
	skip, err := s.prepare(ctx, in.Target, &in.PriorAnalysis)
	if err != nil {
		return nil, err
	}

	// personalization is a prerequisite: without a trustworthy age band, serve static content
	reason := ""
	if skip == nil {
		skip, err = s.resolveProfile(ctx, &in.StoryInput)
		if err != nil {
			return nil, err
		}
		if skip != nil {
			reason = ReasonProfileUnavailable
		}
	}

	variant := 0
	if in.Target != nil {
		variant = in.Target.RoundNumber
	}
	out := run(ctx, s, stage[model.GeneratedStory]{
		kind:   model.KindStory,
		target: in.Target,
		input:  in.StoryInput,
		prompt: prompts.Story(in.StoryInput),
		skip:   skip,
		reason: reason,
		decode: func(text string) (model.GeneratedStory, error) {
			g, err := decodeJSON[model.GeneratedStory](text)
			if err != nil {
				return g, err
			}
			if g.TargetEmotion == "" {
				g.TargetEmotion = in.TargetEmotion
			}
			if g.TargetEmotion != in.TargetEmotion {
				return g, fmt.Errorf("story targets %q, requested %q", g.TargetEmotion, in.TargetEmotion)
			}
			return g, nil
		},
		validate: func(g model.GeneratedStory) safety.Result {
			if r := safety.ValidateTitle(g.Title); !r.Passed {
				return withField(r, "title")
			}
			return safety.ValidateStory(g.Text, g.Complexity)
		},
		fallback: func() model.GeneratedStory { return fallback.Story(in.TargetEmotion, variant) },
	})

	story := out.Content
	s.persist(ctx, in.Target, repo.StageResult{Kind: model.KindStory, Metadata: out.Metadata, GeneratedStory: &story})
	return out, nil
}

// resolveProfile fills the age band and nickname from the profile service. A missing child
// is an error; any other lookup failure fails closed to static content.
func (s *generationService) resolveProfile(ctx context.Context, in *model.StoryInput) (*safety.Result, error) {
	if s.profiles == nil {
		r := safety.Fail(safety.FlagProviderError, "child profile service not configured")
		r.Reason = ReasonProfileUnavailable + ": " + r.Reason
		return &r, nil
	}
	p, err := s.profiles.GetChildProfile(ctx, in.ChildID)
	if err != nil {
		if translated := translate(err); errors.Is(translated, ErrChildNotFound) {
			return nil, translated
		}
		s.log.Warn("child profile lookup failed", zap.String("child_id", in.ChildID.String()), zap.Error(err))
		r := safety.Fail(safety.FlagProviderError, ReasonProfileUnavailable+": "+err.Error())
		return &r, nil
	}
	in.AgeBand = p.AgeBand
	if in.Nickname == "" {
		in.Nickname = p.Nickname
	}
	return nil, nil
}

func (s *generationService) Script(ctx context.Context, in ScriptRequest) (*Outcome[model.GeneratedScript], error) {
	skip, err := s.prepare(ctx, in.Target, &in.PriorAnalysis)
	if err != nil {
		return nil, err
	}

	out := run(ctx, s, stage[model.GeneratedScript]{
		kind:   model.KindScript,
		target: in.Target,
		input:  in.ScriptInput,
		prompt: prompts.Script(in.ScriptInput),
		skip:   skip,
		decode: decodeJSON[model.GeneratedScript],
		validate: func(g model.GeneratedScript) safety.Result {
			if strings.TrimSpace(g.Name) == "" {
				return safety.Fail(safety.FlagMalformedOutput, "script has no name")
			}
			if r := safety.ValidateTitle(g.Name); !r.Passed {
				return withField(r, "name")
			}
			steps := make([]safety.ScriptStep, len(g.Steps))
			for i, st := range g.Steps {
				steps[i] = safety.ScriptStep{Instruction: st.Instruction, DurationSeconds: st.DurationSeconds}
			}
			return safety.ValidateScript(steps)
		},
		fallback: func() model.GeneratedScript { return fallback.Script(in.Emotion, in.Intensity) },
	})

	s.persist(ctx, in.Target, repo.StageResult{Kind: model.KindScript, Metadata: out.Metadata})
	return out, nil
}

func (s *generationService) Praise(ctx context.Context, in PraiseRequest) (*Outcome[model.Praise], error) {
	skip, err := s.prepare(ctx, in.Target, &in.PriorAnalysis)
	if err != nil {
		return nil, err
	}

	out := run(ctx, s, stage[model.Praise]{
		kind:   model.KindPraise,
		target: in.Target,
		input:  in.PraiseInput,
		prompt: prompts.Praise(in.PraiseInput),
		skip:   skip,
		decode: decodeJSON[model.Praise],
		validate: func(p model.Praise) safety.Result {
			return safety.ValidatePraise(p.Message, in.Highlight)
		},
		fallback: func() model.Praise { return fallback.Praise(in.Nickname) },
	})

	msg := out.Content.Message
	s.persist(ctx, in.Target, repo.StageResult{Kind: model.KindPraise, Metadata: out.Metadata, PraiseMessage: &msg})
	return out, nil
}
