package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"budgetbet/models"

	"github.com/stretchr/testify/assert"
)

func TestTransactionalBusFlushDelivers(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BetStatusChangeEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	mainBus.Subscribe(EventTypeBetStatusChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		eventReceived <- event.(BetStatusChangeEvent)
	})

	testEvent := BetStatusChangeEvent{
		BetID:     42,
		GroupID:   7,
		OldStatus: models.BetStatusPending,
		NewStatus: models.BetStatusActive,
	}

	// Publish stages the event; nothing reaches subscribers yet
	transactionalBus.Publish(testEvent)
	select {
	case <-eventReceived:
		t.Fatal("Event delivered before flush")
	case <-time.After(50 * time.Millisecond):
	}

	transactionalBus.Flush(context.Background())
	wg.Wait()

	received := <-eventReceived
	assert.Equal(t, testEvent.BetID, received.BetID)
	assert.Equal(t, testEvent.OldStatus, received.OldStatus)
	assert.Equal(t, testEvent.NewStatus, received.NewStatus)
}

func TestTransactionalBusDiscardDropsEvents(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan Event, 1)
	mainBus.Subscribe(EventTypeBetFinalized, func(ctx context.Context, event Event) {
		received <- event
	})

	transactionalBus.Publish(BetFinalizedEvent{BetID: 1, GroupID: 1, WinnerAuthID: "alice"})
	transactionalBus.Discard()
	transactionalBus.Flush(context.Background())

	select {
	case <-received:
		t.Fatal("Discarded event was delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBusDeliversToMultipleSubscribers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(2)
	counts := make(chan struct{}, 2)

	handler := func(ctx context.Context, event Event) {
		defer wg.Done()
		counts <- struct{}{}
	}
	bus.Subscribe(EventTypeTransactionRecorded, handler)
	bus.Subscribe(EventTypeTransactionRecorded, handler)

	bus.Emit(context.Background(), TransactionRecordedEvent{BetID: 5, AuthID: "alice", Amount: 12.50})
	wg.Wait()

	assert.Len(t, counts, 2)
}

func TestBusRecoversFromPanickingHandler(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(1)

	bus.Subscribe(EventTypeUserSynced, func(ctx context.Context, event Event) {
		panic("handler bug")
	})
	bus.Subscribe(EventTypeUserSynced, func(ctx context.Context, event Event) {
		wg.Done()
	})

	bus.Emit(context.Background(), UserSyncedEvent{AuthID: "alice", Created: true})

	// The healthy handler still runs
	wg.Wait()
}
