package model

import "strings"

type Emotion string

const (
	EmotionHappy     Emotion = "happy"
	EmotionSad       Emotion = "sad"
	EmotionAngry     Emotion = "angry"
	EmotionScared    Emotion = "scared"
	EmotionSurprised Emotion = "surprised"
	EmotionDisgusted Emotion = "disgusted"
	EmotionCalm      Emotion = "calm"
)

var Emotions = []Emotion{
	EmotionHappy,
	EmotionSad,
	EmotionAngry,
	EmotionScared,
	EmotionSurprised,
	EmotionDisgusted,
	EmotionCalm,
}

func (e Emotion) Valid() bool {
	for _, v := range Emotions {
		if v == e {
			return true
		}
	}
	return false
}

func ParseEmotion(s string) (Emotion, bool) {
	e := Emotion(strings.ToLower(strings.TrimSpace(s)))
	return e, e.Valid()
}

const (
	MinIntensity = 1
	MaxIntensity = 5
)

func ValidIntensity(v int) bool {
	return v >= MinIntensity && v <= MaxIntensity
}
