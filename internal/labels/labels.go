// Package labels defines the label dimensions an adjudicator rules on and the
// fixed option sets offered when overriding both annotators.
package labels

import (
	"fmt"
	"strings"
)

// Dimension identifies one label axis of a record.
type Dimension string

const (
	Emotion    Dimension = "emotion"
	Sentiment  Dimension = "sentiment"
	HateSpeech Dimension = "hate_speech"
	Cyberbully Dimension = "cyberbully"
)

// Dimensions lists every label axis in display order.
var Dimensions = []Dimension{Emotion, Sentiment, HateSpeech, Cyberbully}

// FriendlyName returns the title used in tables and prompts.
func (d Dimension) FriendlyName() string {
	switch d {
	case Emotion:
		return "Emotion"
	case Sentiment:
		return "Sentiment"
	case HateSpeech:
		return "Hate Speech"
	case Cyberbully:
		return "Cyberbully"
	default:
		return string(d)
	}
}

// Valid reports whether d is a known dimension.
func (d Dimension) Valid() bool {
	for _, known := range Dimensions {
		if d == known {
			return true
		}
	}
	return false
}

// ParseDimension accepts either the identifier or the friendly name.
func ParseDimension(value string) (Dimension, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	d := Dimension(normalized)
	if !d.Valid() {
		return "", fmt.Errorf("labels: unknown dimension %q", value)
	}
	return d, nil
}

// The emotion set keeps the "Happniess" spelling found in the source data so
// custom choices line up with existing annotations.
var (
	defaultEmotion    = []string{"Happniess", "Neutral", "Surprise", "Disgust", "Fear", "Sadness", "Anger"}
	defaultSentiment  = []string{"Neutral", "Negative", "Positive"}
	defaultHateSpeech = []string{"True", "False"}
	defaultCyberbully = []string{"True", "False"}
)

// OptionSets maps each dimension to the values offered for a custom choice.
type OptionSets map[Dimension][]string

// Defaults returns a fresh copy of the built-in option sets.
func Defaults() OptionSets {
	return OptionSets{
		Emotion:    append([]string(nil), defaultEmotion...),
		Sentiment:  append([]string(nil), defaultSentiment...),
		HateSpeech: append([]string(nil), defaultHateSpeech...),
		Cyberbully: append([]string(nil), defaultCyberbully...),
	}
}

// Options returns the values for d, falling back to the defaults when the set
// is empty or missing.
func (o OptionSets) Options(d Dimension) []string {
	if values := o[d]; len(values) > 0 {
		return values
	}
	return Defaults()[d]
}

// Contains reports whether value is one of the options for d.
func (o OptionSets) Contains(d Dimension, value string) bool {
	for _, candidate := range o.Options(d) {
		if candidate == value {
			return true
		}
	}
	return false
}

// Merge overlays non-empty sets from override onto a copy of o.
func (o OptionSets) Merge(override OptionSets) OptionSets {
	merged := OptionSets{}
	for _, d := range Dimensions {
		merged[d] = append([]string(nil), o.Options(d)...)
	}
	for d, values := range override {
		if !d.Valid() {
			continue
		}
		cleaned := make([]string, 0, len(values))
		for _, v := range values {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			merged[d] = cleaned
		}
	}
	return merged
}
