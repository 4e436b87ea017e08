package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/fairslice/pie/pkg/tracing"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Config holds Kafka configuration
type Config struct {
	Brokers       []string
	ActivityTopic string
}

// ParseConfig parses a comma-separated broker string
func ParseConfig(brokers string, activityTopic string) Config {
	brokerList := strings.Split(brokers, ",")
	for i := range brokerList {
		brokerList[i] = strings.TrimSpace(brokerList[i])
	}

	return Config{
		Brokers:       brokerList,
		ActivityTopic: activityTopic,
	}
}

// Producer publishes lifecycle events to the activity topic
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg Config, logger ectologger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.ActivityTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		// Allow Kafka to auto-create the topic in dev environments when it doesn't exist yet.
		// Without this, a first publish may fail with "Unknown Topic Or Partition".
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.ActivityTopic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// ActivityMessage is a contributor or contribution lifecycle event. Downstream
// services (cap-table exports, notifications) consume these to react to
// deletions and restores without polling the API.
type ActivityMessage struct {
	// Type is the routing discriminator, "pie.activity." + action.
	Type        string  `json:"type"`
	WorkspaceID string  `json:"workspace_id"`
	EventID     string  `json:"event_id"`
	Action      string  `json:"action"` // "deleted" | "restored"
	TargetKind  string  `json:"target_kind"`
	TargetID    string  `json:"target_id"`
	TargetLabel string  `json:"target_label"`
	Slices      float64 `json:"slices"`
	// CascadeCount is how many contributions the operation swept along;
	// only set for contributor events.
	CascadeCount *int      `json:"cascade_count,omitempty"`
	Timestamp    time.Time `json:"timestamp"`

	// Tracing
	TraceID string `json:"trace_id,omitempty"`
	SpanID  string `json:"span_id,omitempty"`
}

// Publish publishes an activity message to Kafka
func (p *Producer) Publish(ctx context.Context, msg *ActivityMessage) error {
	ctx, span := tracing.StartSpan(ctx, "Kafka.Publish")
	defer span.End()

	// Add span attributes
	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination", p.topic),
		attribute.String("messaging.operation", "publish"),
		attribute.String("workspace_id", msg.WorkspaceID),
		attribute.String("action", msg.Action),
		attribute.String("target_kind", msg.TargetKind),
	)

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	// Inject trace context into the message
	msg.TraceID = tracing.GetTraceID(ctx)
	msg.SpanID = tracing.GetSpanID(ctx)

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal message")
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	// Key by workspace so one workspace's trail stays ordered on a partition
	key := msg.WorkspaceID

	// Build headers with trace context
	headers := []kafka.Header{
		{Key: "workspace_id", Value: []byte(msg.WorkspaceID)},
		{Key: "action", Value: []byte(msg.Action)},
		{Key: "target_kind", Value: []byte(msg.TargetKind)},
	}

	// Add W3C trace context headers for distributed tracing
	if traceparent := tracing.GetTraceParent(ctx); traceparent != "" {
		headers = append(headers, kafka.Header{Key: "traceparent", Value: []byte(traceparent)})
	}
	if tracestate := tracing.GetTraceState(ctx); tracestate != "" {
		headers = append(headers, kafka.Header{Key: "tracestate", Value: []byte(tracestate)})
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   data,
		Headers: headers,
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish message")
		p.logger.WithContext(ctx).WithError(err).Errorf("Failed to publish to Kafka topic %s", p.topic)
		return err
	}

	span.SetStatus(codes.Ok, "message published")
	p.logger.WithContext(ctx).Debugf("Published activity event to Kafka: workspace=%s action=%s target=%s trace=%s",
		msg.WorkspaceID, msg.Action, msg.TargetID, msg.TraceID)

	return nil
}

// Topic returns the activity topic name
func (p *Producer) Topic() string {
	return p.topic
}

// Stats returns producer statistics
func (p *Producer) Stats() kafka.WriterStats {
	return p.writer.Stats()
}
