// Package events handles event emission for mapping lifecycle changes
package events

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/tracing"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
)

// Emitter publishes mapping lifecycle events for downstream
// consumers (console views, warehouse loaders).
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

// EmitMappingCreated emits a mapping created event
func (e *Emitter) EmitMappingCreated(ctx context.Context, mapping *models.ExternalMapping) error {
	return e.emit(ctx, EventTypeMappingCreated, mapping)
}

// EmitMappingUpdated emits a mapping updated event
func (e *Emitter) EmitMappingUpdated(ctx context.Context, mapping *models.ExternalMapping) error {
	return e.emit(ctx, EventTypeMappingUpdated, mapping)
}

func (e *Emitter) emit(ctx context.Context, eventType EventType, mapping *models.ExternalMapping) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.emit")
	defer span.End()

	event := &kafka.MappingEvent{
		EventType:     string(eventType),
		SchemaVersion: SchemaVersion,
		MappingID:     mapping.ID,
		PartnerID:     mapping.PartnerID,
		Source:        string(mapping.Source),
		ExternalID:    mapping.ExternalID,
		Metadata:      mapping.Metadata,
	}

	if err := e.producer.PublishMappingEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"event_type": eventType}).Error("Failed to emit mapping event")
		return err
	}

	return nil
}
