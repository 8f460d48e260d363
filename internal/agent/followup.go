package agent

import (
	"strings"

	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/models"
)

const followupConfidence = 0.7

// followupQuestions keys an intent to clarifying questions worth asking when
// the inquiry is still high-level.
var followupQuestions = map[string][]string{
	models.IntentDestination: {
		"What's your budget range for this trip?",
		"How many days are you planning to travel?",
		"What type of activities interest you most (adventure, culture, relaxation, nightlife)?",
	},
	models.IntentItinerary: {
		"What's your preferred pace (packed schedule vs. relaxed)?",
		"Are there any specific must-see attractions on your list?",
		"What's your accommodation preference (location, style)?",
	},
	models.IntentBudget: {
		"What's your total budget range?",
		"Which expenses are most important to you (accommodation, food, activities)?",
		"Are you flexible with travel dates for better deals?",
	},
}

// withFollowups appends up to two clarifying questions to the reply for
// planning-type intents classified with high confidence.
func withFollowups(reply string, intent models.TravelIntent) string {
	if intent.Confidence <= followupConfidence {
		return reply
	}
	questions, ok := followupQuestions[intent.Intent]
	if !ok {
		return reply
	}

	var b strings.Builder
	b.WriteString(reply)
	b.WriteString("\n\nTo help you better, I'd love to know:\n")
	for i, q := range questions {
		if i == 2 {
			break
		}
		b.WriteString("- ")
		b.WriteString(q)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
