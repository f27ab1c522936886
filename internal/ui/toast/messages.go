package toast

import (
	"math/rand"

	"blinkaway/internal/core/model"
)

var blinkMessages = []string{
	"Blink blink, friend!",
	"Those peepers need moisture",
	"Time for a blink break",
	"Blink it out!",
	"Give those eyes a flutter",
}

var postureMessages = []string{
	"Sit up straight, champion!",
	"Check that posture!",
	"Shoulders back, chin up",
	"Time to straighten up",
	"Your spine will thank you",
}

// Messages returns the built-in messages for a reminder kind.
func Messages(kind model.ReminderKind) []string {
	switch kind {
	case model.KindBlink:
		return blinkMessages
	case model.KindPosture:
		return postureMessages
	default:
		return nil
	}
}

// Icon returns the emoji shown next to a toast.
func Icon(kind model.ReminderKind) string {
	switch kind {
	case model.KindBlink:
		return "👁️"
	case model.KindPosture:
		return "🧘"
	default:
		return "🔔"
	}
}

func pickMessage(kind model.ReminderKind, rng *rand.Rand) string {
	messages := Messages(kind)
	if len(messages) == 0 {
		return "Time for a quick break"
	}
	return messages[rng.Intn(len(messages))]
}
