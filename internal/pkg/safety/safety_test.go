package safety

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Length(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		kind   Kind
		passed bool
	}{
		{"story too short", "Too short", KindStory, false},
		{"story at minimum", "Mia smiled", KindStory, true},
		{"story too long", strings.Repeat("Mia plays in the park. ", 30), KindStory, false},
		{"praise too short", "Nice!", KindPraise, false},
		{"step too short", "Sit", KindScriptStep, false},
		{"step ok", "Sit down", KindScriptStep, true},
		{"step too long", strings.Repeat("breathe slowly ", 20), KindScriptStep, false},
		{"analysis long ok", distinctWords(150), KindAnalysis, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(tt.text, tt.kind)
			assert.Equal(t, tt.passed, r.Passed, r.Reason)
			if !tt.passed {
				assert.Equal(t, []string{FlagLengthOutOfBounds}, r.Flags)
			}
		})
	}
}

func distinctWords(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "note%d ", i)
	}
	return sb.String()
}

func TestValidate_Crisis(t *testing.T) {
	texts := []string{
		"Sometimes I want to die when things go wrong.",
		"He said he would KILL MYSELF if it rained.",
		"She thought about self-harm after school.",
		"He felt suicidal and alone.",
		"I wish   I was dead some days.",
	}
	kinds := []Kind{KindStory, KindPraise, KindAnalysis}
	for _, text := range texts {
		for _, kind := range kinds {
			r := Validate(text, kind)
			require.False(t, r.Passed, text)
			assert.True(t, r.HasFlag(FlagCrisisKeywords), "%s / %s: %v", text, kind, r.Flags)
			assert.NotEmpty(t, r.Reason)
			assert.NotEmpty(t, r.KeywordViolations)
			assert.True(t, ContainsCrisis(text))
		}
	}
}

func TestValidate_CrisisBeforeLength(t *testing.T) {
	r := Validate("suicide", KindStory)
	assert.False(t, r.Passed)
	assert.Equal(t, []string{FlagLengthOutOfBounds, FlagCrisisKeywords}, r.Flags, "length runs first, crisis is still reported")
	assert.Equal(t, []string{"suicide"}, r.KeywordViolations)

	long := "suicide " + strings.Repeat("calm words here ", 40)
	r = Validate(long, KindAnalysis)
	assert.True(t, r.HasFlag(FlagCrisisKeywords))
}

func TestValidate_WholeWord(t *testing.T) {
	// "skill" contains "kill", "Dumbo" contains "dumb", "assassin" contains nothing listed.
	r := Validate("Mia practiced a new skill with her toy Dumbo. She felt proud.", KindStory)
	assert.True(t, r.Passed, r.Reason)
}

func TestValidate_Inappropriate(t *testing.T) {
	r := Validate("Sam found a knife in the kitchen drawer.", KindStory)
	require.False(t, r.Passed)
	assert.Equal(t, []string{FlagInappropriateContent}, r.Flags)
	assert.Equal(t, []string{"knife"}, r.KeywordViolations)

	r = Validate("The kids told Leo nobody likes you at recess.", KindStory)
	require.False(t, r.Passed)
	assert.Contains(t, r.KeywordViolations, "nobody likes you")
}

func TestValidate_ToxicityZeroTolerance(t *testing.T) {
	for _, text := range []string{
		"You did a lovely job but that was a dumb idea at the start.",
		"Great listening today, now stop crying and keep going.",
		"Put your toys away or else there is no story tonight.",
	} {
		r := Validate(text, KindPraise)
		require.False(t, r.Passed, text)
		assert.True(t, r.HasFlag(FlagToxicity), text)
		require.NotNil(t, r.ToxicityScore)
		assert.Greater(t, *r.ToxicityScore, 0.0)
		assert.Less(t, *r.ToxicityScore, 0.5, "a low score still fails")
	}
}

func TestValidate_ToxicPraiseExample(t *testing.T) {
	r := ValidatePraise("You are worthless and should be ashamed", "")
	require.False(t, r.Passed)
	assert.True(t, r.HasFlag(FlagToxicity))
	assert.ElementsMatch(t, []string{"worthless", "ashamed"}, r.KeywordViolations)
}

func TestValidate_Structure(t *testing.T) {
	tests := []struct {
		name string
		text string
		flag string
	}{
		{"blank", "               ", FlagLengthOutOfBounds},
		{"uppercase", "MIA WAS VERY HAPPY TODAY at the park", FlagExcessiveUppercase},
		{"repetition", "happy happy happy happy happy happy happy happy happy happy", FlagExcessiveRepetition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(tt.text, KindStory)
			require.False(t, r.Passed)
			assert.Equal(t, []string{tt.flag}, r.Flags)
		})
	}

	t.Run("empty without length bounds", func(t *testing.T) {
		r := Validate("   ", KindScript)
		assert.Equal(t, []string{FlagEmptyContent}, r.Flags)
	})

	t.Run("short repetition allowed", func(t *testing.T) {
		r := Validate("Yes yes yes yes yes", KindScriptStep)
		assert.True(t, r.Passed)
	})
}

func TestValidateStory(t *testing.T) {
	ok := "Mia dropped her ice cream. Her lip wobbled and her eyes felt wet."
	assert.True(t, ValidateStory(ok, 2).Passed)

	one := "Mia dropped her ice cream on the warm sidewalk"
	r := ValidateStory(one, 2)
	assert.Equal(t, []string{FlagSentenceCount}, r.Flags)

	five := "One. Two is here. Three is here. Four is here. Five is here."
	r = ValidateStory(five, 2)
	assert.Equal(t, []string{FlagSentenceCount}, r.Flags)

	r = ValidateStory(ok, 0)
	assert.Equal(t, []string{FlagComplexity}, r.Flags)
	r = ValidateStory(ok, 6)
	assert.Equal(t, []string{FlagComplexity}, r.Flags)
}

func TestCountSentences(t *testing.T) {
	assert.Equal(t, 0, CountSentences(""))
	assert.Equal(t, 1, CountSentences("No terminator"))
	assert.Equal(t, 2, CountSentences("Wow!! Really?"))
	assert.Equal(t, 3, CountSentences("One. Two... three"))
}

func validSteps() []ScriptStep {
	return []ScriptStep{
		{Instruction: "Sit comfortably and rest your hands.", DurationSeconds: 10},
		{Instruction: "Breathe in slowly through your nose.", DurationSeconds: 10},
		{Instruction: "Breathe out gently like blowing a bubble.", DurationSeconds: 10},
		{Instruction: "Notice how your body feels now.", DurationSeconds: 10},
	}
}

func TestValidateScript(t *testing.T) {
	assert.True(t, ValidateScript(validSteps()).Passed)

	t.Run("too few steps", func(t *testing.T) {
		r := ValidateScript(validSteps()[:3])
		assert.Equal(t, []string{FlagStepCount}, r.Flags)
	})

	t.Run("too many steps", func(t *testing.T) {
		steps := append(validSteps(), validSteps()...)
		r := ValidateScript(steps)
		assert.Equal(t, []string{FlagStepCount}, r.Flags)
	})

	t.Run("unsafe step", func(t *testing.T) {
		steps := validSteps()
		steps[2].Instruction = "Stop crying and breathe."
		r := ValidateScript(steps)
		require.False(t, r.Passed)
		assert.True(t, r.HasFlag(FlagToxicity))
		assert.True(t, r.HasFlag(FlagUnsafeStep))
		assert.Contains(t, r.Reason, "step 3")
	})

	t.Run("duration too short", func(t *testing.T) {
		steps := validSteps()
		for i := range steps {
			steps[i].DurationSeconds = 5
		}
		assert.Equal(t, []string{FlagDuration}, ValidateScript(steps).Flags)
	})

	t.Run("duration too long", func(t *testing.T) {
		steps := validSteps()
		steps[0].DurationSeconds = 100
		assert.Equal(t, []string{FlagDuration}, ValidateScript(steps).Flags)
	})

	t.Run("pseudoscience", func(t *testing.T) {
		steps := validSteps()
		steps[3].Instruction = "Picture your heart chakra glowing."
		r := ValidateScript(steps)
		require.False(t, r.Passed)
		assert.Equal(t, []string{FlagPseudoscience}, r.Flags)
		assert.Equal(t, []string{"chakra"}, r.KeywordViolations)
	})
}

func TestValidatePraise(t *testing.T) {
	r := ValidatePraise("Good job, well done!", "")
	assert.Equal(t, []string{FlagGenericPraise}, r.Flags)

	assert.True(t, ValidatePraise("Good job, well done!", "named the angry feeling").Passed)
	assert.True(t, ValidatePraise("You noticed Leo felt angry when his tower fell.", "").Passed)
}

func TestResultConsistency(t *testing.T) {
	inputs := []struct {
		text string
		kind Kind
	}{
		{"x", KindStory},
		{"I want to die", KindPraise},
		{"He held a gun in the story.", KindStory},
		{"You are so stupid sometimes friend", KindPraise},
		{"AAAAAAAAAAAAAAAAAAAAAA", KindStory},
	}
	for _, in := range inputs {
		r := Validate(in.text, in.kind)
		require.False(t, r.Passed, in.text)
		assert.NotEmpty(t, r.Flags, in.text)
		assert.NotEmpty(t, r.Reason, in.text)
	}
}

func TestValidateScript_CrisisWithBadStepCount(t *testing.T) {
	r := ValidateScript([]ScriptStep{{Instruction: "Think about how you want to die", DurationSeconds: 30}})
	require.False(t, r.Passed)
	assert.Equal(t, []string{FlagStepCount, FlagCrisisKeywords}, r.Flags)
	assert.Equal(t, []string{"want to die"}, r.KeywordViolations)
}

func TestValidateTitle(t *testing.T) {
	assert.True(t, ValidateTitle("The Lost Kite").Passed)
	assert.True(t, ValidateTitle("Dragon Breath").Passed)

	r := ValidateTitle("")
	assert.Equal(t, []string{FlagLengthOutOfBounds}, r.Flags)

	r = ValidateTitle(strings.Repeat("Kite ", 20))
	assert.Equal(t, []string{FlagLengthOutOfBounds}, r.Flags)

	r = ValidateTitle("Why you should kill yourself, stupid")
	require.False(t, r.Passed)
	assert.Equal(t, []string{FlagCrisisKeywords}, r.Flags)
	assert.Equal(t, []string{"kill yourself"}, r.KeywordViolations)

	r = ValidateTitle("Shut Up And Sit")
	assert.Equal(t, []string{FlagToxicity}, r.Flags)
}
