// Package emotion turns detected facial emotions into an auxiliary
// confidence score and publishes the latest reading for the interview flow.
package emotion

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable is returned by detectors when no camera can be used.
var ErrUnavailable = errors.New("camera unavailable")

const (
	FeedbackPending     = "Analyzing..."
	FeedbackUnavailable = "Cannot access camera"
	FeedbackNoFace      = "No face detected. Please sit in front of the camera."
	FeedbackUnclear     = "Face not detected or unclear."
)

// Detector returns the dominant emotion label seen by the camera.
type Detector interface {
	Detect(ctx context.Context) (string, error)
}

// Score maps a dominant emotion label to a 0..10 score and feedback.
func Score(label string) (int, string) {
	label = strings.ToLower(strings.TrimSpace(label))

	switch label {
	case "":
		return 0, FeedbackNoFace
	case "happy":
		return 10, "You look confident and engaged!"
	case "surprise":
		return 8, "You seem alert and attentive!"
	case "neutral":
		return 6, "You look calm. Try to smile more for confidence."
	case "sad", "angry", "fear", "disgust":
		return 3, fmt.Sprintf("Your emotion seems %s. Try to smile more.", label)
	default:
		return 5, "Keep your focus and confidence high."
	}
}
