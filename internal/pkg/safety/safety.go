// Package safety gates generated text for a children's audience. Checks never rewrite
// content; they pass or reject it.
package safety

import (
	"regexp"
	"strings"
	"unicode"
)

type Kind string

const (
	KindAnalysis   Kind = "analysis"
	KindStory      Kind = "story"
	KindScript     Kind = "script"
	KindScriptStep Kind = "script_step"
	KindPraise     Kind = "praise"
	KindTitle      Kind = "title"
)

const (
	FlagLengthOutOfBounds    = "length_out_of_bounds"
	FlagCrisisKeywords       = "crisis_keywords_detected"
	FlagInappropriateContent = "inappropriate_content_detected"
	FlagToxicity             = "toxicity_detected"
	FlagEmptyContent         = "empty_content"
	FlagExcessiveUppercase   = "excessive_uppercase"
	FlagExcessiveRepetition  = "excessive_repetition"
	FlagSentenceCount        = "invalid_sentence_count"
	FlagComplexity           = "invalid_complexity"
	FlagStepCount            = "invalid_step_count"
	FlagUnsafeStep           = "unsafe_step"
	FlagDuration             = "invalid_duration"
	FlagPseudoscience        = "pseudoscience_detected"
	FlagGenericPraise        = "generic_praise"
	FlagTimeout              = "timeout_error"
	FlagProviderError        = "provider_error"
	FlagMalformedOutput      = "malformed_output"
)

type bounds struct{ min, max int }

var lengthBounds = map[Kind]bounds{
	KindAnalysis:   {10, 2000},
	KindStory:      {10, 500},
	KindPraise:     {10, 500},
	KindScriptStep: {5, 200},
	KindTitle:      {2, 80},
}

// Result is the outcome of a validation. A failed result always carries at least one
// flag and a reason.
type Result struct {
	Passed            bool     `json:"passed"`
	Flags             []string `json:"flags"`
	Reason            string   `json:"reason,omitempty"`
	KeywordViolations []string `json:"keyword_violations,omitempty"`
	ToxicityScore     *float64 `json:"toxicity_score,omitempty"`
}

func Pass() Result { return Result{Passed: true, Flags: []string{}} }

func Fail(flag, reason string) Result {
	return Result{Passed: false, Flags: []string{flag}, Reason: reason}
}

func (r Result) HasFlag(flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// check inspects text and returns a failing result, or nil to continue.
type check func(text string, kind Kind) *Result

// pipeline runs in order and stops at the first failure.
var pipeline = []check{
	checkLength,
	checkCrisis,
	checkInappropriate,
	checkToxicity,
	checkStructure,
}

// Validate runs the generic pipeline for kind. Crisis phrases are reported even when an
// earlier check already rejected the text.
func Validate(text string, kind Kind) Result {
	for _, c := range pipeline {
		if r := c(text, kind); r != nil {
			return withCrisis(*r, text)
		}
	}
	return Pass()
}

func withCrisis(r Result, text string) Result {
	if r.HasFlag(FlagCrisisKeywords) {
		return r
	}
	found := matches(crisisRe, text)
	if len(found) == 0 {
		return r
	}
	r.Flags = append(r.Flags, FlagCrisisKeywords)
	r.KeywordViolations = found
	r.Reason = "content references self-harm or crisis topics"
	return r
}

var (
	crisisRe        = compilePhrases(crisisPhrases)
	inappropriateRe = compilePhrases(inappropriatePhrases)
	toxicRe         = compilePhrases(toxicPhrases)
	pseudoscienceRe = compilePhrases(pseudosciencePhrases)
	wordRe          = regexp.MustCompile(`[\p{L}\p{N}']+`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

func compilePhrases(phrases []string) *regexp.Regexp {
	parts := make([]string, 0, len(phrases))
	for _, p := range phrases {
		parts = append(parts, strings.ReplaceAll(regexp.QuoteMeta(p), " ", `\s+`))
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(parts, "|") + `)\b`)
}

// matches returns the distinct lowercased phrases re finds in text.
func matches(re *regexp.Regexp, text string) []string {
	found := re.FindAllString(text, -1)
	if len(found) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(found))
	out := make([]string, 0, len(found))
	for _, f := range found {
		f = strings.ToLower(whitespaceRe.ReplaceAllString(f, " "))
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// ContainsCrisis reports whether text contains any crisis phrase.
func ContainsCrisis(text string) bool {
	return crisisRe.MatchString(text)
}

func checkLength(text string, kind Kind) *Result {
	b, ok := lengthBounds[kind]
	if !ok {
		return nil
	}
	n := len([]rune(strings.TrimSpace(text)))
	if n < b.min || n > b.max {
		r := Fail(FlagLengthOutOfBounds, "content length outside allowed bounds")
		return &r
	}
	return nil
}

func checkCrisis(text string, _ Kind) *Result {
	if found := matches(crisisRe, text); len(found) > 0 {
		r := Fail(FlagCrisisKeywords, "content references self-harm or crisis topics")
		r.KeywordViolations = found
		return &r
	}
	return nil
}

func checkInappropriate(text string, _ Kind) *Result {
	if found := matches(inappropriateRe, text); len(found) > 0 {
		r := Fail(FlagInappropriateContent, "content contains inappropriate language")
		r.KeywordViolations = found
		return &r
	}
	return nil
}

// checkToxicity fails on any single match. The score is reported for analysis only.
func checkToxicity(text string, _ Kind) *Result {
	hits := toxicRe.FindAllString(text, -1)
	if len(hits) == 0 {
		return nil
	}
	words := len(wordRe.FindAllString(text, -1))
	score := 1.0
	if words > 0 {
		score = float64(len(hits)) / float64(words)
	}
	r := Fail(FlagToxicity, "content contains toxic or shaming language")
	r.KeywordViolations = matches(toxicRe, text)
	r.ToxicityScore = &score
	return &r
}

func checkStructure(text string, _ Kind) *Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		r := Fail(FlagEmptyContent, "content is empty")
		return &r
	}

	var letters, upper int
	for _, c := range trimmed {
		if unicode.IsLetter(c) {
			letters++
			if unicode.IsUpper(c) {
				upper++
			}
		}
	}
	if letters > 0 && float64(upper)/float64(letters) > 0.5 {
		r := Fail(FlagExcessiveUppercase, "content has excessive uppercase")
		return &r
	}

	words := wordRe.FindAllString(strings.ToLower(trimmed), -1)
	if len(words) > 5 {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		if float64(len(unique))/float64(len(words)) < 0.3 {
			r := Fail(FlagExcessiveRepetition, "content is excessively repetitive")
			return &r
		}
	}
	return nil
}
