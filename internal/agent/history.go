package agent

import (
	"sync"

	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/models"
	"github.com/pkoukk/tiktoken-go"
)

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
)

// countTokens estimates the token cost of a message. If the cl100k_base
// encoding cannot be loaded we fall back to a bytes/4 estimate, which is
// close enough for a windowing bound.
func countTokens(text string) int {
	encoderOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoder = enc
		}
	})
	if encoder == nil {
		return len(text)/4 + 1
	}
	return len(encoder.Encode(text, nil, nil))
}

// windowHistory trims history to the most recent maxMessages turns that also
// fit within maxTokens. The prompt sent to the provider must stay bounded no
// matter how long a session runs.
func windowHistory(history []models.Message, maxMessages, maxTokens int) []models.Message {
	if maxMessages > 0 && len(history) > maxMessages {
		history = history[len(history)-maxMessages:]
	}
	if maxTokens <= 0 {
		return history
	}

	total := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		total += countTokens(history[i].Content)
		if total > maxTokens {
			break
		}
		start = i
	}
	return history[start:]
}
