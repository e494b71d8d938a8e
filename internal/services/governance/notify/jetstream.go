package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/signoria/signoria/internal/platform/timeouts"
)

// JetStreamPublisher publishes governance events to a JetStream stream.
// Messages carry a sequence-derived id so redelivered events collapse
// inside the stream's duplicate window.
type JetStreamPublisher struct {
	js jetstream.JetStream
}

// NewJetStreamPublisher binds a publisher to conn and ensures the
// governance stream exists.
func NewJetStreamPublisher(ctx context.Context, conn *nats.Conn) (*JetStreamPublisher, error) {
	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: StreamSubjects(),
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure %s stream: %w", StreamName, err)
	}
	return &JetStreamPublisher{js: js}, nil
}

// Publish sends one event to the subject of its record kind.
func (p *JetStreamPublisher) Publish(ctx context.Context, event Event) error {
	if p == nil || p.js == nil {
		return fmt.Errorf("jetstream publisher is not connected")
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %d: %w", event.Seq, err)
	}
	subject := subjectPrefix + event.Kind
	msgID := fmt.Sprintf("governance-%d", event.Seq)
	if _, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(msgID)); err != nil {
		return fmt.Errorf("publish event %d to %s: %w", event.Seq, subject, err)
	}
	return nil
}

// StartEmbeddedServer runs an in-process NATS server with JetStream
// enabled, listening on a random port. An empty storeDir leaves stream
// storage in the server's default temp location.
func StartEmbeddedServer(storeDir string) (*server.Server, error) {
	opts := &server.Options{
		Port:      -1,
		JetStream: true,
		NoLog:     true,
		NoSigs:    true,
	}
	if storeDir != "" {
		opts.StoreDir = storeDir
	}
	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create embedded NATS server: %w", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(timeouts.NATSReady) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded NATS server failed to start")
	}
	return ns, nil
}
