package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a conversation. Once appended to a session it
// is never edited or removed; history order is append order.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one ongoing conversation, keyed by an opaque identifier. It
// lives for the process lifetime; there is no persistence across restarts.
type Session struct {
	ID          string            `json:"session_id"`
	CreatedAt   time.Time         `json:"created_at"`
	LastUpdated time.Time         `json:"last_updated"`
	Messages    []Message         `json:"messages"`
	Preferences map[string]string `json:"preferences"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// TravelIntent is the classifier's verdict on what travel sub-topic a user
// message concerns.
type TravelIntent struct {
	Intent      string   `json:"intent"`
	Confidence  float64  `json:"confidence"`
	KeyEntities []string `json:"key_entities"`
}

// Intent categories the classifier may return.
const (
	IntentDestination    = "destination_inquiry"
	IntentItinerary      = "itinerary_planning"
	IntentBudget         = "budget_planning"
	IntentAccommodation  = "accommodation"
	IntentTransportation = "transportation"
	IntentDining         = "dining"
	IntentRequirements   = "requirements"
	IntentGeneralTravel  = "general_travel"
	IntentGreeting       = "greeting"
	IntentOther          = "other"
)
