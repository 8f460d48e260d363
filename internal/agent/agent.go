package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/models"
	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/session"
	"go.uber.org/zap"
)

// ErrEmptyMessage is returned when a chat turn carries no text.
var ErrEmptyMessage = errors.New("empty message")

// Provider is the external model behind one chat turn: classification and
// answer generation. It is opaque, possibly slow, and possibly failing.
type Provider interface {
	ClassifyIntent(ctx context.Context, message string) (models.TravelIntent, error)
	GenerateReply(ctx context.Context, intent models.TravelIntent, history []models.Message, message string) (string, error)
}

// Options bound a conversation turn.
type Options struct {
	// AutoCreateSessions makes an unknown session id on Chat create an empty
	// session instead of failing with ErrNotFound.
	AutoCreateSessions bool
	// MaxHistoryMessages is the most recent turns included in the prompt.
	MaxHistoryMessages int
	// MaxHistoryTokens bounds the prompt history by token count.
	MaxHistoryTokens int
}

func (o Options) withDefaults() Options {
	if o.MaxHistoryMessages == 0 {
		o.MaxHistoryMessages = 12
	}
	if o.MaxHistoryTokens == 0 {
		o.MaxHistoryTokens = 2048
	}
	return o
}

// Agent turns one incoming user message plus prior session state into one
// assistant reply plus updated state.
type Agent struct {
	provider Provider
	store    *session.Store
	logger   *zap.Logger
	opts     Options
	now      func() time.Time

	// turnLocks serializes whole turns per session id, so concurrent chats on
	// one session apply in some arrival order while unrelated sessions run in
	// parallel.
	turnLocks sync.Map
}

func New(provider Provider, store *session.Store, logger *zap.Logger, opts Options) *Agent {
	return &Agent{
		provider: provider,
		store:    store,
		logger:   logger,
		opts:     opts.withDefaults(),
		now:      time.Now,
	}
}

// ChatResult is one completed conversation turn.
type ChatResult struct {
	SessionID string
	Reply     string
	Intent    models.TravelIntent
	Session   *models.Session
}

// Chat runs one conversation turn. On provider failure the user message is
// still recorded but no assistant message is appended, and the caller gets a
// *llm.ProviderError to map; session state is never half-applied.
func (a *Agent) Chat(ctx context.Context, sessionID, text string) (*ChatResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	unlock := a.lockSession(sessionID)
	defer unlock()

	sess, err := a.lookupSession(sessionID)
	if err != nil {
		return nil, err
	}

	log := a.logger.With(zap.String("session_id", sessionID))

	intent, err := a.provider.ClassifyIntent(ctx, text)
	if err != nil {
		// Best effort: a failed classification falls back to general travel
		// advice; only a failed generation fails the turn.
		log.Warn("intent classification failed", zap.Error(err))
	} else {
		log.Debug("classified intent",
			zap.String("intent", intent.Intent),
			zap.Float64("confidence", intent.Confidence))
	}

	history := windowHistory(sess.Messages, a.opts.MaxHistoryMessages, a.opts.MaxHistoryTokens)

	userMsg := models.Message{Role: models.RoleUser, Content: text, CreatedAt: a.now()}

	reply, err := a.provider.GenerateReply(ctx, intent, history, text)
	if err != nil {
		log.Error("reply generation failed", zap.Error(err))
		if _, appendErr := a.store.AppendMessage(sessionID, userMsg); appendErr != nil {
			log.Error("failed to record user message", zap.Error(appendErr))
		}
		return nil, err
	}

	reply = withFollowups(reply, intent)

	assistantMsg := models.Message{Role: models.RoleAssistant, Content: reply, CreatedAt: a.now()}
	updated, err := a.store.AppendExchange(sessionID, userMsg, assistantMsg)
	if err != nil {
		return nil, err
	}

	if prefs := preferencesFromIntent(intent); len(prefs) > 0 {
		if updated, err = a.store.MergePreferences(sessionID, prefs); err != nil {
			return nil, err
		}
	}

	log.Info("chat turn completed", zap.Int("history_len", len(updated.Messages)))

	return &ChatResult{
		SessionID: sessionID,
		Reply:     reply,
		Intent:    intent,
		Session:   updated,
	}, nil
}

func (a *Agent) lookupSession(id string) (*models.Session, error) {
	if a.opts.AutoCreateSessions {
		sess, created := a.store.GetOrCreate(id)
		if created {
			a.logger.Info("auto-created session", zap.String("session_id", id))
		}
		return sess, nil
	}
	return a.store.Get(id)
}

func (a *Agent) lockSession(id string) func() {
	v, _ := a.turnLocks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// preferencesFromIntent turns a classified intent plus its entities into
// session preference updates, e.g. destination_inquiry about Lisbon yields
// destination=Lisbon.
func preferencesFromIntent(intent models.TravelIntent) map[string]string {
	prefs := make(map[string]string)
	if intent.Intent != "" {
		prefs["last_intent"] = intent.Intent
	}

	if len(intent.KeyEntities) == 0 {
		return prefs
	}
	value := strings.Join(intent.KeyEntities, ", ")

	switch intent.Intent {
	case models.IntentDestination:
		prefs["destination"] = value
	case models.IntentItinerary:
		prefs["itinerary_focus"] = value
	case models.IntentBudget:
		prefs["budget"] = value
	case models.IntentAccommodation:
		prefs["accommodation"] = value
	case models.IntentTransportation:
		prefs["transportation"] = value
	case models.IntentDining:
		prefs["dining"] = value
	}
	return prefs
}
