// Package event forwards aggregate events to the event bus after a save.
package event

import (
	"context"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Dispatch publishes and clears the pending events of each aggregate.
// The state change is already persisted, so a failed publish is logged and
// not returned. A nil publisher only clears the events.
func Dispatch(ctx context.Context, publisher shared.EventPublisher, log *zap.Logger, aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		events := agg.PullDomainEvents()
		if publisher == nil || len(events) == 0 {
			continue
		}
		if err := publisher.Publish(ctx, events...); err != nil {
			logger.Or(ctx, log).Warn("Failed to publish domain events",
				zap.String("aggregate_id", agg.GetID().String()),
				zap.Int("events", len(events)),
				zap.Error(err),
			)
		}
	}
}
