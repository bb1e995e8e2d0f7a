// Package prompts renders provider prompts for each generation kind. Every prompt asks
// for a single JSON object so replies can be decoded into the matching model type.
package prompts

import (
	"fmt"
	"strings"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/emotionlab/server/internal/pkg/tokenizer"
)

// MaxContextTokens bounds the prior-round analysis threaded into a prompt.
const MaxContextTokens = 300

type Prompt struct {
	System string
	User   string
}

const baseSystem = `You support a children's emotional-learning exercise used with a therapist.
Write warm, simple, concrete language suitable for young children.
Never mention self-harm, violence, adult topics, shaming, threats, or energy-healing practices.
Reply with one JSON object and nothing else.`

func Analysis(in model.AnalysisInput) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Observe round %d of an emotion-recognition session.\n", in.RoundNumber)
	fmt.Fprintf(&b, "Story target emotion: %s. Child labeled: %s (correct: %t).\n", in.TargetEmotion, in.LabeledEmotion, in.IsCorrect)
	fmt.Fprintf(&b, "Intensity before regulation: %d/5, after: %d/5.\n", in.PreIntensity, in.PostIntensity)
	if in.ScriptName != "" {
		fmt.Fprintf(&b, "Regulation activity: %s (completed: %t).\n", in.ScriptName, in.ScriptCompleted)
	} else {
		b.WriteString("Regulation activity was skipped.\n")
	}
	writeContext(&b, in.PriorAnalysis)
	b.WriteString(`Return {"summary": string (10-2000 chars), "emotional_patterns": [string], "recommendations": [string], "suggested_focus": one of happy|sad|angry|scared|surprised|disgusted|calm}.`)
	return Prompt{System: baseSystem + "\nYou are the observer: describe patterns for the therapist, not for the child.", User: b.String()}
}

func Story(in model.StoryInput) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a short story in which the main character clearly feels %s.\n", in.TargetEmotion)
	fmt.Fprintf(&b, "Reader age band: %s. Complexity level %d of 5.\n", in.AgeBand, in.Complexity)
	b.WriteString("Use 2 to 4 sentences and at most 500 characters. Do not name the emotion in the text.\n")
	writeContext(&b, in.PriorAnalysis)
	fmt.Fprintf(&b, `Return {"title": string, "text": string, "target_emotion": %q, "complexity": %d}.`, in.TargetEmotion, in.Complexity)
	return Prompt{System: baseSystem, User: b.String()}
}

func Script(in model.ScriptInput) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a calming activity for a child who feels %s at intensity %d of 5.\n", in.Emotion, in.Intensity)
	b.WriteString("Use 4 to 7 short steps of 5-200 characters each, 30 to 120 seconds in total.\n")
	b.WriteString("Use evidence-based techniques only, such as slow breathing, grounding, or muscle relaxation.\n")
	writeContext(&b, in.PriorAnalysis)
	b.WriteString(`Return {"name": string, "steps": [{"instruction": string, "duration_seconds": int}]}.`)
	return Prompt{System: baseSystem, User: b.String()}
}

func Praise(in model.PraiseInput) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Write one or two sentences of praise for %s, who just finished a practice round.\n", in.Nickname)
	if in.Highlight != "" {
		fmt.Fprintf(&b, "Mention this specific thing they did: %s.\n", in.Highlight)
	} else {
		b.WriteString("Name something specific about their effort; avoid generic phrases like \"good job\".\n")
	}
	if in.LabeledEmotion != "" {
		fmt.Fprintf(&b, "They labeled the feeling as %s.\n", in.LabeledEmotion)
	}
	if in.PreIntensity > 0 && in.PostIntensity > 0 {
		fmt.Fprintf(&b, "Their feeling went from %d/5 to %d/5.\n", in.PreIntensity, in.PostIntensity)
	}
	writeContext(&b, in.PriorAnalysis)
	b.WriteString(`Return {"message": string (10-500 chars)}.`)
	return Prompt{System: baseSystem, User: b.String()}
}

func writeContext(b *strings.Builder, a *model.Analysis) {
	if a == nil || a.Summary == "" {
		return
	}
	text := a.Summary
	if len(a.Recommendations) > 0 {
		text += " Recommendations: " + strings.Join(a.Recommendations, "; ")
	}
	if cut, _, err := tokenizer.Truncate(text, MaxContextTokens); err == nil {
		text = cut
	}
	fmt.Fprintf(b, "Notes from the previous round (use softly, do not quote): %s\n", text)
}
