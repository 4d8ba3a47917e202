package events

import (
	"context"
	"sync"

	"budgetbet/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeUserSynced          EventType = "user_synced"
	EventTypeBetStatusChange     EventType = "bet_status_change"
	EventTypeTransactionRecorded EventType = "transaction_recorded"
	EventTypeBetFinalized        EventType = "bet_finalized"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// UserSyncedEvent represents a user profile upsert from the auth provider
type UserSyncedEvent struct {
	AuthID  string
	Email   string
	Created bool
}

func (e UserSyncedEvent) Type() EventType {
	return EventTypeUserSynced
}

// BetStatusChangeEvent represents a bet lifecycle transition
type BetStatusChangeEvent struct {
	BetID     int64
	GroupID   int64
	OldStatus models.BetStatus
	NewStatus models.BetStatus
}

func (e BetStatusChangeEvent) Type() EventType {
	return EventTypeBetStatusChange
}

// TransactionRecordedEvent represents a spending entry appended to a bet
type TransactionRecordedEvent struct {
	BetID         int64
	TransactionID int64
	AuthID        string
	Amount        float64
}

func (e TransactionRecordedEvent) Type() EventType {
	return EventTypeTransactionRecorded
}

// BetFinalizedEvent represents a settled bet with its winner
type BetFinalizedEvent struct {
	BetID        int64
	GroupID      int64
	WinnerAuthID string
}

func (e BetFinalizedEvent) Type() EventType {
	return EventTypeBetFinalized
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus only after a successful commit.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events are processed independently of the transaction lifecycle, so
	// a background context avoids issues with request context expiration.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events; called after rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
