package safety

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	minSentences     = 2
	maxSentences     = 4
	minComplexity    = 1
	maxComplexity    = 5
	minScriptSteps   = 4
	maxScriptSteps   = 7
	minScriptSeconds = 30
	maxScriptSeconds = 120
)

var sentenceEndRe = regexp.MustCompile(`[.!?]+`)

type ScriptStep struct {
	Instruction     string
	DurationSeconds int
}

// CountSentences counts non-empty segments terminated by ., ! or ?; a trailing
// unterminated segment counts too.
func CountSentences(text string) int {
	n := 0
	for _, seg := range sentenceEndRe.Split(text, -1) {
		if strings.TrimSpace(seg) != "" {
			n++
		}
	}
	return n
}

func ValidateStory(text string, complexity int) Result {
	if r := Validate(text, KindStory); !r.Passed {
		return r
	}
	if n := CountSentences(text); n < minSentences || n > maxSentences {
		return Fail(FlagSentenceCount, fmt.Sprintf("story has %d sentences, want %d-%d", n, minSentences, maxSentences))
	}
	if complexity < minComplexity || complexity > maxComplexity {
		return Fail(FlagComplexity, fmt.Sprintf("story complexity %d outside %d-%d", complexity, minComplexity, maxComplexity))
	}
	return Pass()
}

func ValidateScript(steps []ScriptStep) Result {
	texts := make([]string, 0, len(steps))
	for _, s := range steps {
		texts = append(texts, s.Instruction)
	}
	joined := strings.Join(texts, " ")

	if n := len(steps); n < minScriptSteps || n > maxScriptSteps {
		return withCrisis(Fail(FlagStepCount, fmt.Sprintf("script has %d steps, want %d-%d", n, minScriptSteps, maxScriptSteps)), joined)
	}

	total := 0
	for i, s := range steps {
		if r := Validate(s.Instruction, KindScriptStep); !r.Passed {
			r.Flags = append(r.Flags, FlagUnsafeStep)
			r.Reason = fmt.Sprintf("step %d: %s", i+1, r.Reason)
			return r
		}
		total += s.DurationSeconds
	}
	if total < minScriptSeconds || total > maxScriptSeconds {
		return Fail(FlagDuration, fmt.Sprintf("script lasts %ds, want %d-%ds", total, minScriptSeconds, maxScriptSeconds))
	}

	if found := matches(pseudoscienceRe, joined); len(found) > 0 {
		r := Fail(FlagPseudoscience, "script relies on non evidence-based practices")
		r.KeywordViolations = found
		return r
	}
	return Pass()
}

// ValidatePraise rejects boilerplate praise when no specific highlight was supplied.
func ValidatePraise(text, highlight string) Result {
	if r := Validate(text, KindPraise); !r.Passed {
		return r
	}
	if strings.TrimSpace(highlight) == "" && IsGenericPraise(text) {
		return Fail(FlagGenericPraise, "praise is generic and names nothing the child did")
	}
	return Pass()
}

func IsGenericPraise(text string) bool {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		if _, ok := genericPraiseWords[w]; !ok {
			return false
		}
	}
	return true
}

// ValidateTitle gates short child-facing labels such as story titles and script names.
func ValidateTitle(text string) Result {
	return Validate(text, KindTitle)
}

func ValidateAnalysis(text string) Result {
	return Validate(text, KindAnalysis)
}
