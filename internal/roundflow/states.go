package roundflow

// State is a step of one practice round.
type State string

const (
	StateGreeting            State = "greeting"
	StatePresentingStory     State = "presentingStory"
	StateLabelingEmotion     State = "labelingEmotion"
	StateCheckingCorrectness State = "checkingCorrectness"
	StateRatingIntensity     State = "ratingIntensity"
	StateFetchingScripts     State = "fetchingScripts"
	StateOfferingRegulation  State = "offeringRegulation"
	StateRunningScript       State = "runningScript"
	StateReflecting          State = "reflecting"
	StateUpdatingRound       State = "updatingRound"
	StateGeneratingPraise    State = "generatingPraise"
	StatePraising            State = "praising"
	StateCompleted           State = "completed"
	StateError               State = "error"
)

// EventType is an external trigger accepted by a resting state.
type EventType string

const (
	EventStart            EventType = "start"
	EventViewed           EventType = "viewed"
	EventEmotionChosen    EventType = "emotion_chosen"
	EventPreIntensitySet  EventType = "pre_intensity_set"
	EventScriptChosen     EventType = "script_chosen"
	EventSkipped          EventType = "skipped"
	EventScriptFinished   EventType = "script_finished"
	EventPostIntensitySet EventType = "post_intensity_set"
	EventAcknowledged     EventType = "acknowledged"
	EventRetry            EventType = "retry"
)

// transitions maps each resting state to the events it accepts.
var transitions = map[State]map[EventType]State{
	StateGreeting:           {EventStart: StatePresentingStory},
	StatePresentingStory:    {EventViewed: StateLabelingEmotion},
	StateLabelingEmotion:    {EventEmotionChosen: StateCheckingCorrectness},
	StateRatingIntensity:    {EventPreIntensitySet: StateFetchingScripts},
	StateOfferingRegulation: {EventScriptChosen: StateRunningScript, EventSkipped: StateReflecting},
	StateRunningScript:      {EventScriptFinished: StateReflecting, EventSkipped: StateReflecting},
	StateReflecting:         {EventPostIntensitySet: StateUpdatingRound},
	StatePraising:           {EventAcknowledged: StateCompleted},
	StateError:              {EventRetry: StateGreeting},
}

// Effect names the work a state performs on entry. Resting states have EffectNone.
type Effect string

const (
	EffectNone             Effect = ""
	EffectStartRound       Effect = "start_round"
	EffectCheckCorrectness Effect = "check_correctness"
	EffectFetchScripts     Effect = "fetch_scripts"
	EffectUpdateRound      Effect = "update_round"
	EffectGeneratePraise   Effect = "generate_praise"
)

var effects = map[State]Effect{
	StatePresentingStory:     EffectStartRound,
	StateCheckingCorrectness: EffectCheckCorrectness,
	StateFetchingScripts:     EffectFetchScripts,
	StateUpdatingRound:       EffectUpdateRound,
	StateGeneratingPraise:    EffectGeneratePraise,
}

// Next is the transition function. ok is false when s does not accept ev.
func Next(s State, ev EventType) (next State, effect Effect, ok bool) {
	next, ok = transitions[s][ev]
	if !ok {
		return s, EffectNone, false
	}
	return next, effects[next], true
}

// Effect reports the entry work of s.
func (s State) Effect() Effect { return effects[s] }

// Accepts reports the events s accepts. Working states and completed accept none.
func (s State) Accepts() []EventType {
	out := make([]EventType, 0, len(transitions[s]))
	for ev := range transitions[s] {
		out = append(out, ev)
	}
	return out
}

// Terminal reports whether no event can leave s.
func (s State) Terminal() bool { return s == StateCompleted }
