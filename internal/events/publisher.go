package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	eventSource  = "skillpulse-assessment"
	eventVersion = "1.0"
)

// Event types published by the assessment core.
const (
	TypeResultCreated       = "assessment.result_created"
	TypeAssignmentCompleted = "assessment.assignment_completed"
	TypeAnalysisRecomputed  = "assessment.analysis_recomputed"
)

// Event is the envelope every notification rides in.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with a fresh id and timestamp.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// ResultCreatedEvent notifies downstream consumers (dashboard, email) that
// a result exists. Delivery is fire-and-forget; failures never roll back
// the core transaction.
type ResultCreatedEvent struct {
	ResultID   uint   `json:"result_id"`
	PersonID   string `json:"person_id"`
	TestID     uint   `json:"test_id"`
	SessionID  uint   `json:"session_id"`
	Percentage int    `json:"percentage"`
	Passed     bool   `json:"passed"`
}

// AssignmentCompletedEvent marks a ledger entry reaching its terminal state.
type AssignmentCompletedEvent struct {
	AssignmentID uint   `json:"assignment_id"`
	PersonID     string `json:"person_id"`
	TestID       uint   `json:"test_id"`
}

// EventPublisher publishes envelopes to the notification topic.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// KafkaEventPublisher publishes via watermill's Kafka transport.
type KafkaEventPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

func NewKafkaEventPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaEventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}, nil
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.Debug("event published", "event_id", event.ID, "event_type", event.Type)
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// MockEventPublisher records events in memory for tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []Event
	logger *slog.Logger

	// FailNext makes the next Publish return an error, for testing the
	// fire-and-forget paths.
	FailNext bool
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) Publish(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext {
		m.FailNext = false
		return fmt.Errorf("mock publish failure")
	}

	m.events = append(m.events, event)
	if m.logger != nil {
		m.logger.Debug("mock event published", "event_type", event.Type)
	}
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

func (m *MockEventPublisher) GetPublishedEvents() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
