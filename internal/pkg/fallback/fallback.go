// Package fallback holds the static, pre-vetted content served whenever a generation
// stage times out, errors, or fails safety validation. It also seeds the catalog.
package fallback

import (
	"fmt"
	"strings"

	"github.com/emotionlab/server/internal/modules/model"
	"github.com/google/uuid"
)

// catalogNamespace derives stable catalog ids so repeated seeding is a no-op.
var catalogNamespace = uuid.MustParse("6f1c2b9e-4d3a-5e8f-9a7b-1c2d3e4f5a6b")

// StoryID is the catalog id of the static story titled title.
func StoryID(title string) uuid.UUID { return uuid.NewSHA1(catalogNamespace, []byte("story:"+title)) }

// ScriptID is the catalog id of the static script named name.
func ScriptID(name string) uuid.UUID { return uuid.NewSHA1(catalogNamespace, []byte("script:"+name)) }

var stories = []model.GeneratedStory{
	{Title: "Sunny Kite", TargetEmotion: model.EmotionHappy, Complexity: 1,
		Text: "Ava's grandpa helped her build a bright red kite. When the wind lifted it high above the park, Ava laughed and bounced on her toes. She could not stop smiling all the way home."},
	{Title: "Birthday Card", TargetEmotion: model.EmotionHappy, Complexity: 2,
		Text: "Leo opened a card from his best friend. Inside was a drawing of the two of them on the swings. Leo grinned so wide his cheeks felt warm."},
	{Title: "Lost Teddy", TargetEmotion: model.EmotionSad, Complexity: 1,
		Text: "Mia left her favorite teddy bear on the bus. When she got home and could not find it, her eyes filled with tears. She hugged her pillow and felt heavy inside."},
	{Title: "Moving Day", TargetEmotion: model.EmotionSad, Complexity: 2,
		Text: "Sam's best friend Noor moved to a new town far away. At recess Sam sat alone on the bench and missed her laugh. His chest felt tight and quiet."},
	{Title: "Tower Tumble", TargetEmotion: model.EmotionAngry, Complexity: 1,
		Text: "Leo spent all morning building a tall block tower. His little brother ran past and knocked it over. Leo's face got hot and he clenched his fists."},
	{Title: "Not Fair", TargetEmotion: model.EmotionAngry, Complexity: 2,
		Text: "Priya waited a long time for her turn on the swing. Just as she got there, another kid jumped on first. Priya stomped her foot and her cheeks turned red."},
	{Title: "Thunder Night", TargetEmotion: model.EmotionScared, Complexity: 1,
		Text: "A loud clap of thunder woke Omar in the middle of the night. The room was dark and the window rattled. Omar pulled his blanket up and his heart thumped fast."},
	{Title: "First Swim", TargetEmotion: model.EmotionScared, Complexity: 2,
		Text: "Lily stood at the edge of the big pool for her first swim lesson. The water looked deep and her knees shook. She held the teacher's hand very tight."},
	{Title: "Hidden Puppy", TargetEmotion: model.EmotionSurprised, Complexity: 1,
		Text: "When Jonah came home from school, a tiny puppy ran out from behind the couch. Jonah's mouth dropped open and his eyebrows went way up. He had no idea his family had a new pet!"},
	{Title: "Snow Morning", TargetEmotion: model.EmotionSurprised, Complexity: 2,
		Text: "Ella pulled open the curtains and gasped. The whole yard was covered in fresh white snow. She had not expected snow at all this week!"},
	{Title: "Mushy Lunch", TargetEmotion: model.EmotionDisgusted, Complexity: 1,
		Text: "Max opened his lunchbox and found a banana that had gone brown and mushy. It smelled sour and sticky. Max wrinkled his nose and pushed it away."},
	{Title: "Muddy Sock", TargetEmotion: model.EmotionDisgusted, Complexity: 2,
		Text: "Zara stepped right into a slimy puddle of mud. Cold goo squished into her sock. She scrunched up her face and said yuck."},
	{Title: "Quiet Garden", TargetEmotion: model.EmotionCalm, Complexity: 1,
		Text: "Nina sat in the garden and watched a butterfly land on a flower. The sun felt warm on her arms. She took a slow breath and her body felt soft and still."},
	{Title: "Bubble Bath", TargetEmotion: model.EmotionCalm, Complexity: 2,
		Text: "After a busy day, Theo climbed into a warm bubble bath. He floated his little boat and listened to the water. His shoulders dropped and he felt peaceful."},
}

// CatalogScript is a static regulation script plus the lookup keys used to pick it.
type CatalogScript struct {
	Script       model.GeneratedScript
	Emotion      *model.Emotion
	MinIntensity int
	MaxIntensity int
}

func (c CatalogScript) Generic() bool { return c.Emotion == nil }

func emotionPtr(e model.Emotion) *model.Emotion { return &e }

var scripts = []CatalogScript{
	{MinIntensity: 1, MaxIntensity: 5, Script: model.GeneratedScript{Name: "Balloon Breathing", Steps: []model.ScriptStep{
		{Instruction: "Sit comfortably and rest your hands on your belly.", DurationSeconds: 10},
		{Instruction: "Breathe in slowly through your nose and fill your belly like a balloon.", DurationSeconds: 10},
		{Instruction: "Breathe out slowly through your mouth and let the balloon shrink.", DurationSeconds: 10},
		{Instruction: "Repeat three more slow balloon breaths.", DurationSeconds: 20},
		{Instruction: "Notice how your body feels now.", DurationSeconds: 10},
	}}},
	{MinIntensity: 1, MaxIntensity: 5, Script: model.GeneratedScript{Name: "Five Senses Check", Steps: []model.ScriptStep{
		{Instruction: "Look around and name five things you can see.", DurationSeconds: 15},
		{Instruction: "Name four things you can touch.", DurationSeconds: 15},
		{Instruction: "Listen for three sounds around you.", DurationSeconds: 15},
		{Instruction: "Find two things you can smell.", DurationSeconds: 10},
		{Instruction: "Think of one thing you can taste.", DurationSeconds: 10},
	}}},
	{MinIntensity: 1, MaxIntensity: 5, Script: model.GeneratedScript{Name: "Squeeze and Release", Steps: []model.ScriptStep{
		{Instruction: "Make tight fists with both hands.", DurationSeconds: 5},
		{Instruction: "Squeeze and count to five.", DurationSeconds: 10},
		{Instruction: "Let your hands go loose and floppy.", DurationSeconds: 10},
		{Instruction: "Lift your shoulders up to your ears, then let them drop.", DurationSeconds: 10},
		{Instruction: "Shake out your arms and take a big breath.", DurationSeconds: 10},
	}}},
	{Emotion: emotionPtr(model.EmotionAngry), MinIntensity: 3, MaxIntensity: 5, Script: model.GeneratedScript{Name: "Dragon Breath", Steps: []model.ScriptStep{
		{Instruction: "Stand tall with your feet on the floor.", DurationSeconds: 5},
		{Instruction: "Take a big breath in through your nose.", DurationSeconds: 5},
		{Instruction: "Breathe out strongly like a friendly dragon.", DurationSeconds: 10},
		{Instruction: "Do this three more times.", DurationSeconds: 15},
		{Instruction: "Now breathe slowly and feel your face cool down.", DurationSeconds: 10},
	}}},
	{Emotion: emotionPtr(model.EmotionSad), MinIntensity: 1, MaxIntensity: 5, Script: model.GeneratedScript{Name: "Hug and Rock", Steps: []model.ScriptStep{
		{Instruction: "Wrap your arms around yourself in a big hug.", DurationSeconds: 10},
		{Instruction: "Rock gently side to side.", DurationSeconds: 15},
		{Instruction: "Think of a person who loves you.", DurationSeconds: 10},
		{Instruction: "Say one kind thing to yourself.", DurationSeconds: 10},
	}}},
	{Emotion: emotionPtr(model.EmotionScared), MinIntensity: 1, MaxIntensity: 5, Script: model.GeneratedScript{Name: "Brave Counting", Steps: []model.ScriptStep{
		{Instruction: "Put one hand on your heart and feel it beat.", DurationSeconds: 10},
		{Instruction: "Count slowly from one to ten.", DurationSeconds: 15},
		{Instruction: "Say quietly, I am safe right now.", DurationSeconds: 10},
		{Instruction: "Look for three things in the room that feel cozy.", DurationSeconds: 15},
	}}},
}

// Stories returns the full static story library.
func Stories() []model.GeneratedStory {
	out := make([]model.GeneratedStory, len(stories))
	copy(out, stories)
	return out
}

// Scripts returns the full static script library, generic scripts first.
func Scripts() []CatalogScript {
	out := make([]CatalogScript, len(scripts))
	copy(out, scripts)
	return out
}

// Story returns a static story for emotion. variant picks among stories of the same
// emotion; unknown emotions get a calm story.
func Story(emotion model.Emotion, variant int) model.GeneratedStory {
	var pool []model.GeneratedStory
	for _, s := range stories {
		if s.TargetEmotion == emotion {
			pool = append(pool, s)
		}
	}
	if len(pool) == 0 {
		return Story(model.EmotionCalm, variant)
	}
	if variant < 0 {
		variant = -variant
	}
	return pool[variant%len(pool)]
}

// GenericScripts returns the scripts usable for any emotion.
func GenericScripts() []model.GeneratedScript {
	var out []model.GeneratedScript
	for _, s := range scripts {
		if s.Generic() {
			out = append(out, s.Script)
		}
	}
	return out
}

// Script returns the emotion-specific script covering intensity, else the first generic one.
func Script(emotion model.Emotion, intensity int) model.GeneratedScript {
	for _, s := range scripts {
		if s.Emotion != nil && *s.Emotion == emotion && intensity >= s.MinIntensity && intensity <= s.MaxIntensity {
			return s.Script
		}
	}
	return GenericScripts()[0]
}

// Praise returns the canned praise for nickname.
func Praise(nickname string) model.Praise {
	name := strings.TrimSpace(nickname)
	if name == "" {
		name = "Friend"
	}
	return model.Praise{Message: fmt.Sprintf(
		"%s, you worked hard on noticing feelings today. Taking time to breathe and think is a real skill!", name)}
}

// Analysis returns the neutral observation used when the Observer stage cannot run.
func Analysis(roundNumber int) model.Analysis {
	return model.Analysis{
		RoundNumber:       roundNumber,
		Summary:           "No new observations were recorded for this round. Continue practicing emotion recognition at the current level.",
		EmotionalPatterns: []string{},
		Recommendations:   []string{"Keep story complexity at the current level."},
	}
}
