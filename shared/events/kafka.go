package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/sbs-nexus/docrisk/shared/models"
)

// AlertEvent is the message published for every alert the core creates.
// The external notification pipeline (email/chat delivery) consumes these;
// the core itself never sends notifications.
type AlertEvent struct {
	AlertID            string    `json:"alert_id"`
	TenantID           string    `json:"tenant_id"`
	AlertType          string    `json:"alert_type"`
	Severity           string    `json:"severity"`
	Message            string    `json:"message"`
	SourceModule       string    `json:"source_module"`
	InvoiceDocumentID  string    `json:"invoice_document_id,omitempty"`
	ContractDocumentID string    `json:"contract_document_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// Publisher publishes alert events to Kafka through a worker pool.
// A nil *Publisher is valid and drops everything, so callers that run
// without Kafka (tests, the CLI scanner) need no special casing.
type Publisher struct {
	writer         *kafka.Writer
	alertEventChan chan AlertEvent
	workerCount    int
	shutdownChan   chan struct{}
	wg             sync.WaitGroup
}

// NewPublisher creates a Kafka alert publisher with a worker pool
func NewPublisher(broker string) (*Publisher, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        "risk-alerts",
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	p := &Publisher{
		writer:         writer,
		alertEventChan: make(chan AlertEvent, 1000),
		workerCount:    10,
		shutdownChan:   make(chan struct{}),
	}

	p.startWorkers()

	return p, nil
}

// startWorkers starts the worker pool for async event publishing
func (p *Publisher) startWorkers() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.alertEventWorker(i)
	}

	logrus.Infof("[Kafka] Started %d alert event workers", p.workerCount)
}

// alertEventWorker processes alert events from the channel
func (p *Publisher) alertEventWorker(id int) {
	defer p.wg.Done()

	for {
		select {
		case event := <-p.alertEventChan:
			if err := p.publishSync(event); err != nil {
				logrus.Warnf("[Kafka Worker %d] Failed to publish alert event: %v", id, err)
			}
		case <-p.shutdownChan:
			return
		}
	}
}

// PublishAlert queues an alert event asynchronously (non-blocking).
// Only call this for alerts whose transaction already committed; a
// rolled-back alert must never reach the notification pipeline.
func (p *Publisher) PublishAlert(alert *models.Alert) error {
	if p == nil {
		return nil
	}

	event := AlertEvent{
		AlertID:      alert.ID.String(),
		TenantID:     alert.TenantID,
		AlertType:    string(alert.AlertType),
		Severity:     string(alert.Severity),
		Message:      alert.Message,
		SourceModule: alert.SourceModule,
		CreatedAt:    alert.CreatedAt,
	}
	if alert.InvoiceDocumentID != nil {
		event.InvoiceDocumentID = alert.InvoiceDocumentID.String()
	}
	if alert.ContractDocumentID != nil {
		event.ContractDocumentID = alert.ContractDocumentID.String()
	}

	select {
	case p.alertEventChan <- event:
		return nil
	default:
		return fmt.Errorf("alert event queue full, event dropped")
	}
}

// publishSync writes one alert event to Kafka (called by workers)
func (p *Publisher) publishSync(event AlertEvent) error {
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.TenantID),
		Value: message,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("alert_created")},
			{Key: "tenant_id", Value: []byte(event.TenantID)},
			{Key: "alert_type", Value: []byte(event.AlertType)},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write alert event to Kafka: %w", err)
	}

	return nil
}

// Close gracefully shuts down the publisher and its workers
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}

	close(p.shutdownChan)
	p.wg.Wait()
	close(p.alertEventChan)

	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka writer: %w", err)
	}

	return nil
}
