package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/mtlmap/internal/core/domain"
)

const (
	// DatasetSubjectPrefix prefixes the per-layer dataset-updated subjects.
	DatasetSubjectPrefix = "mtlmap.dataset.updated."
	// DatasetSubjects matches every dataset-updated subject.
	DatasetSubjects = DatasetSubjectPrefix + ">"
	// BroadcastSubject carries free-form notices to WebSocket clients.
	BroadcastSubject = "mtlmap.updates.broadcast"
	// StreamName is the JetStream stream retaining dataset updates.
	StreamName = "DATASETS"
)

// DatasetSubject returns the subject announcing an import of layer.
func DatasetSubject(layer domain.Layer) string {
	return DatasetSubjectPrefix + string(layer)
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStream(js); err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishDatasetUpdated announces a finished layer import.
func (p *Publisher) PublishDatasetUpdated(ctx context.Context, ev *domain.DatasetUpdated) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(DatasetSubject(ev.Layer), data, nats.Context(ctx))
	return err
}

// PublishBroadcast sends data to WebSocket clients over core NATS.
func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish(BroadcastSubject, data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// ensureStream creates or updates the DATASETS stream holding the
// dataset-updated subjects for a week.
func ensureStream(js nats.JetStreamContext) error {
	cfg := nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{DatasetSubjects},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
