package cmd

import (
	"context"

	"budgetbet/events"

	log "github.com/sirupsen/logrus"
)

// subscribeEventLoggers attaches logging handlers for every domain event
func subscribeEventLoggers(bus *events.Bus) {
	bus.Subscribe(events.EventTypeUserSynced, func(ctx context.Context, event events.Event) {
		e := event.(events.UserSyncedEvent)
		log.WithFields(log.Fields{
			"authID":  e.AuthID,
			"created": e.Created,
		}).Info("User synced")
	})

	bus.Subscribe(events.EventTypeBetStatusChange, func(ctx context.Context, event events.Event) {
		e := event.(events.BetStatusChangeEvent)
		log.WithFields(log.Fields{
			"betID":     e.BetID,
			"groupID":   e.GroupID,
			"oldStatus": e.OldStatus,
			"newStatus": e.NewStatus,
		}).Info("Bet status changed")
	})

	bus.Subscribe(events.EventTypeTransactionRecorded, func(ctx context.Context, event events.Event) {
		e := event.(events.TransactionRecordedEvent)
		log.WithFields(log.Fields{
			"betID":  e.BetID,
			"authID": e.AuthID,
			"amount": e.Amount,
		}).Info("Transaction recorded")
	})

	bus.Subscribe(events.EventTypeBetFinalized, func(ctx context.Context, event events.Event) {
		e := event.(events.BetFinalizedEvent)
		log.WithFields(log.Fields{
			"betID":        e.BetID,
			"groupID":      e.GroupID,
			"winnerAuthID": e.WinnerAuthID,
		}).Info("Bet finalized")
	})
}
