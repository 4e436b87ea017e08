// Package events handles event emission for pie lifecycle changes
package events

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/fairslice/pie/pkg/kafka"
	"github.com/fairslice/pie/pkg/metrics"
	"github.com/fairslice/pie/pkg/models"
	"github.com/fairslice/pie/pkg/tracing"
)

// Emitter publishes activity trail entries to Kafka
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitActivity emits one lifecycle event. The durable trail is already
// committed by the time this runs; a publish failure is logged and counted
// but never fails the mutation.
func (e *Emitter) EmitActivity(ctx context.Context, workspaceID string, event *models.ActivityEvent) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitActivity")
	defer span.End()

	msg := &kafka.ActivityMessage{
		Type:         "pie.activity." + string(event.Action),
		WorkspaceID:  workspaceID,
		EventID:      event.ID,
		Action:       string(event.Action),
		TargetKind:   string(event.TargetKind),
		TargetID:     event.TargetID,
		TargetLabel:  event.TargetLabel,
		Slices:       event.Slices,
		CascadeCount: event.CascadeCount,
		Timestamp:    event.CreatedAt,
	}

	if err := e.producer.Publish(ctx, msg); err != nil {
		metrics.RecordKafkaPublish(e.producer.Topic(), "error")
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit activity event")
		return err
	}

	metrics.RecordKafkaPublish(e.producer.Topic(), "success")
	return nil
}
